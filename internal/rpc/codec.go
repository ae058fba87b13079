package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Serialize encodes a request parameter into its wire form.
//
// The parameter types used by this client (numbers, strings, bools, block
// selectors) always encode, so a failure here is a programming error and
// panics instead of being returned.
func Serialize(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("rpc: parameter of type %T does not serialize: %v", v, err))
	}
	return b
}

// Decode converts a raw result into T. Any mismatch between the payload and
// T's schema is returned as a *DecodeError.
//
// Decoding "null" into a pointer type yields a nil pointer and no error,
// which is how optional results ("no such block") are represented.
func Decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return out, de
		}
		return out, &DecodeError{Message: err.Error()}
	}
	return out, nil
}
