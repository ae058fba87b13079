package rpc

import (
	"context"
	"encoding/json"
)

const methodGetBlockByNumber = "klay_getBlockByNumber"

// Klay groups the klay_* methods.
type Klay struct {
	client *Client
}

// GetBlockByNumber fetches a block with transaction hashes only.
// A nil block with a nil error means the node has no block for the selector.
func (k *Klay) GetBlockByNumber(ctx context.Context, number BlockNumber) (*HashBlock, error) {
	return CallFor[*HashBlock](ctx, k.client, methodGetBlockByNumber, number, false)
}

// GetBlockByNumberFull fetches a block with full transaction objects, kept
// as raw JSON.
func (k *Klay) GetBlockByNumberFull(ctx context.Context, number BlockNumber) (*Block[json.RawMessage], error) {
	return CallFor[*Block[json.RawMessage]](ctx, k.client, methodGetBlockByNumber, number, true)
}
