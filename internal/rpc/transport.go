package rpc

import (
	"context"
	"encoding/json"
)

// Transport delivers prepared calls to a node.
//
// Prepare allocates the request id; ids are unique and increasing per
// transport instance. Send performs exactly one delivery attempt and returns
// the raw result of a success envelope, a *RPCError for a failure envelope,
// or a *ProviderError for anything that went wrong on the way.
type Transport interface {
	Prepare(method string, params []json.RawMessage) *Request
	Send(ctx context.Context, req *Request) (json.RawMessage, error)
}

// newRequest builds a call envelope with an id taken from ids.
func newRequest(ids *IDAllocator, method string, params []json.RawMessage) *Request {
	if params == nil {
		params = []json.RawMessage{}
	}
	return &Request{
		JSONRPC: Version,
		ID:      ids.Next(),
		Method:  method,
		Params:  params,
	}
}

// resolve checks a decoded envelope against the request it answers.
func resolve(req *Request, resp *Response) (json.RawMessage, error) {
	if resp.Error != nil {
		if resp.ID != nil && *resp.ID != req.ID {
			return nil, providerMessage("response id %d does not match request id %d", *resp.ID, req.ID)
		}
		return nil, resp.Error
	}
	if resp.ID == nil {
		return nil, providerMessage("response to request %d carries no id", req.ID)
	}
	if *resp.ID != req.ID {
		return nil, providerMessage("response id %d does not match request id %d", *resp.ID, req.ID)
	}
	if resp.Result == nil {
		return nil, providerMessage("response to request %d has neither result nor error", req.ID)
	}
	return resp.Result, nil
}
