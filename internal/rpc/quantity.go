package rpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Quantity is a 64-bit numeric field that travels as a "0x"-prefixed hex string.
type Quantity uint64

// Uint64 returns the value as a plain integer.
func (q Quantity) Uint64() uint64 { return uint64(q) }

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + strconv.FormatUint(uint64(q), 16))
}

// UnmarshalJSON accepts a 0x-prefixed hex string only.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	n, err := ParseHexUint64(s)
	if err != nil {
		return err
	}
	*q = Quantity(n)
	return nil
}

// ParseHexUint64 parses a "0x"-prefixed hex quantity into a uint64.
//
// Examples:
//   - "0x0" -> 0
//   - "0x172721e" -> 24277534
func ParseHexUint64(s string) (uint64, error) {
	if !strings.HasPrefix(s, "0x") {
		return 0, &DecodeError{Message: fmt.Sprintf("invalid quantity %q: missing 0x prefix", s)}
	}
	n, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return 0, &DecodeError{Message: fmt.Sprintf("invalid quantity %q: %v", s, err)}
	}
	return n, nil
}

// BigQuantity is a numeric field that may exceed 64 bits (block score,
// reward, total block score). It accepts "0x" hex strings, decimal strings
// and bare JSON numbers.
type BigQuantity struct {
	v big.Int
}

// NewBigQuantity wraps a copy of x.
func NewBigQuantity(x *big.Int) *BigQuantity {
	q := new(BigQuantity)
	q.v.Set(x)
	return q
}

// BigInt returns a copy of the value.
func (q *BigQuantity) BigInt() *big.Int {
	return new(big.Int).Set(&q.v)
}

// String is the decimal form.
func (q *BigQuantity) String() string {
	return q.v.String()
}

func (q *BigQuantity) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + q.v.Text(16))
}

// UnmarshalJSON accepts a 0x hex string, a decimal string or a bare JSON
// number. Nodes encode block score and reward either way.
func (q *BigQuantity) UnmarshalJSON(data []byte) error {
	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		s, err := unquote(data)
		if err != nil {
			return err
		}
		text = s
	}

	base := 10
	digits := text
	if strings.HasPrefix(text, "0x") {
		base = 16
		digits = text[2:]
	}
	if digits == "" {
		return &DecodeError{Message: fmt.Sprintf("invalid big quantity %q: no digits", text)}
	}
	if _, ok := q.v.SetString(digits, base); !ok || q.v.Sign() < 0 {
		return &DecodeError{Message: fmt.Sprintf("invalid big quantity %q", text)}
	}
	return nil
}

// Hash is a 32-byte value encoded as "0x" followed by 64 hex digits.
type Hash string

const hashHexLen = 64

func (h *Hash) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(s, "0x") || len(s) != 2+hashHexLen {
		return &DecodeError{Message: fmt.Sprintf("invalid hash %q: expected 0x + %d hex digits", s, hashHexLen)}
	}
	if _, err := hex.DecodeString(s[2:]); err != nil {
		return &DecodeError{Message: fmt.Sprintf("invalid hash %q: %v", s, err)}
	}
	*h = Hash(strings.ToLower(s))
	return nil
}

func unquote(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", &DecodeError{Message: fmt.Sprintf("expected string, got %s", data)}
	}
	return s, nil
}
