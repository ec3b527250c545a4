//go:build debug

package pool

import (
	"fmt"

	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/matching"
)

// release in debug builds additionally detects a double-release: if o is
// already sitting in the free list, releasing it again is a programmer
// error and panics rather than silently corrupting the free list.
func (p *Pool) release(o *matching.Order) {
	for _, f := range p.free {
		if f == o {
			panic(fmt.Sprintf("pool: double-release of order %p", o))
		}
	}
	p.free = append(p.free, o)
}
