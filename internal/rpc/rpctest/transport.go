// Package rpctest provides an in-memory rpc.Transport for tests.
package rpctest

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/dmagro/klay-bench/internal/rpc"
)

// HandlerFunc answers one prepared request with a raw result or an error.
type HandlerFunc func(req *rpc.Request) (json.RawMessage, error)

// Transport is a deterministic rpc.Transport. Prepare allocates ids the way
// the HTTP transport does; Send hands the request to Handler and returns its
// answer unchanged. Every sent request is kept for inspection.
type Transport struct {
	Handler HandlerFunc

	ids      rpc.IDAllocator
	mu       sync.Mutex
	prepared map[*rpc.Request]bool
	sent     []*rpc.Request
}

// NewTransport returns a transport answering with h.
func NewTransport(h HandlerFunc) *Transport {
	return &Transport{Handler: h}
}

// Prepare builds a request envelope with the next id.
func (t *Transport) Prepare(method string, params []json.RawMessage) *rpc.Request {
	if params == nil {
		params = []json.RawMessage{}
	}
	req := &rpc.Request{
		JSONRPC: rpc.Version,
		ID:      t.ids.Next(),
		Method:  method,
		Params:  params,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.prepared == nil {
		t.prepared = make(map[*rpc.Request]bool)
	}
	t.prepared[req] = true
	return req
}

// Send answers req through Handler. A request this transport did not
// prepare, or one sent twice, is rejected.
func (t *Transport) Send(ctx context.Context, req *rpc.Request) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	ok := t.prepared[req]
	delete(t.prepared, req)
	if ok {
		t.sent = append(t.sent, req)
	}
	t.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("rpctest: request %d was not prepared by this transport", req.ID)
	}
	return t.Handler(req)
}

// Sent returns the requests delivered so far, in order.
func (t *Transport) Sent() []*rpc.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.sent)
}
