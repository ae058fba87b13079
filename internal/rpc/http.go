package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPTransport sends calls as HTTP POST requests to a single endpoint.
type HTTPTransport struct {
	url        string
	httpClient *http.Client
	ids        IDAllocator
}

// HTTPOption customizes an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithTimeout bounds each call, including reading the response body.
// Zero (the default) means calls never time out.
func WithTimeout(d time.Duration) HTTPOption {
	return func(t *HTTPTransport) {
		t.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		t.httpClient = c
	}
}

// NewHTTPTransport validates rawURL and returns a transport bound to it.
// Only http and https endpoints are accepted.
func NewHTTPTransport(rawURL string, opts ...HTTPOption) (*HTTPTransport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint url %q (missing scheme or host)", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint url scheme %q (expected http or https)", u.Scheme)
	}

	t := &HTTPTransport{
		url:        u.String(),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// URL returns the endpoint the transport posts to.
func (t *HTTPTransport) URL() string { return t.url }

// Prepare builds the call envelope for method with the next request id of
// this transport. params must already be serialized.
func (t *HTTPTransport) Prepare(method string, params []json.RawMessage) *Request {
	return newRequest(&t.ids, method, params)
}

// Send POSTs req to the endpoint and returns the raw result.
// It makes exactly one attempt; nothing is retried.
//
// Parameters:
//   - ctx: Cancels the request, including reading the body
//   - req: Envelope returned by Prepare
//
// Returns:
//   - json.RawMessage: Result of a success envelope ("null" when the node has no value)
//   - error: *ProviderError for transport, status or envelope failures,
//     *RPCError for a failure envelope
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (json.RawMessage, error) {
	body := Serialize(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, providerMessage("failed to build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, providerCause(err, "failed to send request")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, providerStatus(httpResp.StatusCode)
	}

	buf, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providerCause(err, "failed to read response bytes")
	}

	var resp Response
	if err := json.Unmarshal(buf, &resp); err != nil {
		return nil, providerMessage("invalid JSON-RPC response: %v", err)
	}
	return resolve(req, &resp)
}
