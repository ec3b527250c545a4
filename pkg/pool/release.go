//go:build !debug

package pool

import "github.com/ViraatC22/HFT-Orderbook-Engine/pkg/matching"

// release appends o back to the free list. In non-debug builds this is the
// whole story: double-release is documented as a programmer error but not
// detected, matching spec.md §4.B ("double-release is a programmer error —
// implementations may detect it in debug builds").
func (p *Pool) release(o *matching.Order) {
	p.free = append(p.free, o)
}
