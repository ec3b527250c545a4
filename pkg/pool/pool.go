// Package pool implements the fixed-capacity order object recycler: the
// hot path acquires and releases *matching.Order slots without ever
// touching the Go heap. Grounded on infra/memory/pool.go's generic pool
// shape, but backed by a plain slice free-list instead of sync.Pool —
// sync.Pool's entries can be evicted by the GC at any time, which would
// make "exhaustion" unobservable and silently reintroduce allocation on
// the hot path; a closed free-list gives the exhaustion counter spec.md
// §4.B requires.
package pool

import (
	"errors"

	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/matching"
)

// ErrPoolExhausted is returned by Acquire in strict mode once the free
// list is empty.
var ErrPoolExhausted = errors.New("pool: exhausted")

// Mode selects what happens when the free list is empty.
type Mode uint8

const (
	// Strict fails Acquire with ErrPoolExhausted.
	Strict Mode = iota
	// Degraded allocates a new slot on demand and counts it.
	Degraded
)

// Pool is a single fixed-capacity free list of *matching.Order. It is
// single-threaded: the matcher is the only caller on the hot path, exactly
// as spec.md §4.B requires ("the pool is single-threaded on the consumer
// side").
type Pool struct {
	free       []*matching.Order
	mode       Mode
	exhaustions uint64
	capacity    int
}

// New preallocates capacity order slots up front so the hot path never
// touches the allocator once running.
func New(capacity int, mode Mode) *Pool {
	free := make([]*matching.Order, capacity)
	for i := range free {
		free[i] = &matching.Order{}
	}
	return &Pool{free: free, mode: mode, capacity: capacity}
}

// Acquire returns a slot in constant time. On an empty pool it either
// allocates a new slot and increments Exhaustions (Degraded) or returns
// ErrPoolExhausted (Strict).
func (p *Pool) Acquire() (*matching.Order, error) {
	if n := len(p.free); n > 0 {
		o := p.free[n-1]
		p.free = p.free[:n-1]
		return o, nil
	}
	p.exhaustions++
	if p.mode == Strict {
		return nil, ErrPoolExhausted
	}
	return &matching.Order{}, nil
}

// Release returns o to the free list. Double-release is a programmer
// error; debug builds detect it (see release_debug.go / release.go).
func (p *Pool) Release(o *Order) {
	p.release(o)
}

// Exhaustions is the running count of Acquire calls that found the free
// list empty, whether or not they were satisfied by degraded allocation.
func (p *Pool) Exhaustions() uint64 { return p.exhaustions }

// Capacity returns the pool's initial fixed size.
func (p *Pool) Capacity() int { return p.capacity }

// Order is an alias so callers of this package don't need to import
// pkg/matching directly just to call Release.
type Order = matching.Order
