package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// DecodeError reports a payload whose shape does not match the expected type:
// a missing required field, a wrong scalar kind or malformed hex.
type DecodeError struct {
	Message string
}

func (e *DecodeError) Error() string {
	return "decoder error: " + e.Message
}

// ProviderError is a transport-level failure. Code is set for a non-2xx HTTP
// status; otherwise Message describes what went wrong (connection, body read,
// malformed envelope).
type ProviderError struct {
	Code    uint16
	Message string

	err error // underlying cause, if any
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("provider error: code %d", e.Code)
	}
	return "provider error: " + e.Message
}

// Unwrap returns the underlying transport error, if any.
func (e *ProviderError) Unwrap() error { return e.err }

// IsStatus reports whether the error carries the given HTTP status code.
func (e *ProviderError) IsStatus(code int) bool {
	return e.Code != 0 && int(e.Code) == code
}

func providerStatus(code int) *ProviderError {
	return &ProviderError{Code: uint16(code)}
}

func providerMessage(format string, args ...any) *ProviderError {
	return &ProviderError{Message: fmt.Sprintf(format, args...)}
}

// providerCause is providerMessage with cause appended to the message and
// kept for errors.Is.
func providerCause(cause error, msg string) *ProviderError {
	return &ProviderError{Message: fmt.Sprintf("%s: %v", msg, cause), err: cause}
}

// RPCError is the error object of a well-formed JSON-RPC failure envelope,
// passed through verbatim from the node.
//
// Standard codes: -32700 parse error, -32600 invalid request, -32601 method
// not found, -32602 invalid params, -32603 internal error. Nodes use -32000
// and below for implementation-defined errors.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ErrorKind is a coarse failure category used for metrics and summaries.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindRateLimit   ErrorKind = "rate_limit"
	KindServerError ErrorKind = "server_error"
	KindHTTPStatus  ErrorKind = "http_status"
	KindTransport   ErrorKind = "transport"
	KindRPC         ErrorKind = "rpc_error"
	KindDecode      ErrorKind = "decode_error"
	KindOther       ErrorKind = "other"
)

// Classify maps an error returned by a Client call to its ErrorKind.
func Classify(err error) ErrorKind {
	var (
		pe *ProviderError
		re *RPCError
		de *DecodeError
		ne net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &ne) && ne.Timeout():
		return KindTimeout
	case errors.As(err, &pe):
		switch {
		case pe.IsStatus(http.StatusTooManyRequests):
			return KindRateLimit
		case pe.Code >= 500:
			return KindServerError
		case pe.Code != 0:
			return KindHTTPStatus
		}
		return KindTransport
	case errors.As(err, &re):
		return KindRPC
	case errors.As(err, &de):
		return KindDecode
	}
	return KindOther
}
