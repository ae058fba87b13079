package rpc

import (
	"context"
	"encoding/json"
)

// Client is the method-namespace facade over a Transport. It holds no state
// of its own; request ids belong to the transport.
type Client struct {
	transport Transport
}

// NewClient returns a client sending through t. Request ids come from t, so
// a client is as concurrency-safe as its transport.
func NewClient(t Transport) *Client {
	return &Client{transport: t}
}

// Dial builds a client over a fresh HTTP transport for rawURL.
func Dial(rawURL string, opts ...HTTPOption) (*Client, error) {
	t, err := NewHTTPTransport(rawURL, opts...)
	if err != nil {
		return nil, err
	}
	return NewClient(t), nil
}

// Call runs the shared pipeline for any method: serialize params, allocate
// an id, send, and return the raw result. Errors come back unchanged.
func (c *Client) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	wire := make([]json.RawMessage, len(params))
	for i, p := range params {
		wire[i] = Serialize(p)
	}
	req := c.transport.Prepare(method, wire)
	return c.transport.Send(ctx, req)
}

// CallFor is Call followed by decoding the result into T.
func CallFor[T any](ctx context.Context, c *Client, method string, params ...any) (T, error) {
	raw, err := c.Call(ctx, method, params...)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](raw)
}

// Klay returns the klay_* method namespace.
func (c *Client) Klay() *Klay {
	return &Klay{client: c}
}
