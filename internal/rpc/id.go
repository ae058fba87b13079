package rpc

import "sync/atomic"

// IDAllocator hands out request ids for one transport instance. The first id
// is 0 and every later id is strictly greater than all previous ones, also
// under concurrent use.
type IDAllocator struct {
	next atomic.Uint64
}

// Next returns a fresh request id.
func (a *IDAllocator) Next() RequestID {
	return RequestID(a.next.Add(1) - 1)
}
