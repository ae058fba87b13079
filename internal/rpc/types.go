// Package rpc implements a small typed JSON-RPC 2.0 client for Klaytn nodes.
//
// A call flows through one pipeline regardless of the remote method:
//
//	Client.Call ──▶ Serialize(params) ──▶ Transport.Prepare (allocates id)
//	            ──▶ Transport.Send (HTTP POST) ──▶ Decode[T](result)
//
// Adding a method means adding a typed wrapper around that pipeline (see klay.go).
package rpc

import "encoding/json"

// Version is the JSON-RPC protocol tag sent with every request.
const Version = "2.0"

// RequestID identifies a request within a single transport instance.
type RequestID uint64

// Request is a single (non-batched) JSON-RPC 2.0 method call.
//
//	{"jsonrpc":"2.0","id":7,"method":"klay_getBlockByNumber","params":["latest",false]}
type Request struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      RequestID         `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

// Response is the envelope returned by the node. Exactly one of Result and
// Error is expected to be present.
//
// Result stays nil when the key is absent and holds the literal "null" when
// the node answers with a null result, so the two cases remain distinguishable.
// ID is a pointer because failure envelopes may carry "id": null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *RequestID      `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}
