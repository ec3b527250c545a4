package engine

import (
	"sync/atomic"

	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/matching"
)

// Snapshot is a best-effort, point-in-time market-data view (spec.md §6:
// "freshness is best-effort"). It is a plain value — no slice aliases into
// live PriceLevel state — so a reader can hold it indefinitely without
// pinning matcher memory.
type Snapshot struct {
	Bids []matching.LevelView
	Asks []matching.LevelView
}

// snapshotPublisher republishes a Snapshot after every processed request
// via an atomic pointer swap, so external readers never synchronize with
// the matcher beyond a single atomic load — the same "any reader that can
// observe atomic integers suffices" contract spec.md §4.H states for
// metrics, extended here to book depth. This replaces the teacher's
// rcu.Reader epoch scheme, which exists to synchronize *reclamation*, not
// to hand a consistent read-only view to an unrelated goroutine.
type snapshotPublisher struct {
	current atomic.Pointer[Snapshot]
}

func newSnapshotPublisher() *snapshotPublisher {
	p := &snapshotPublisher{}
	p.current.Store(&Snapshot{})
	return p
}

func (p *snapshotPublisher) publish(book *matching.Book) {
	p.current.Store(&Snapshot{
		Bids: book.PeekLevels(matching.Buy),
		Asks: book.PeekLevels(matching.Sell),
	})
}

func (p *snapshotPublisher) load() Snapshot {
	return *p.current.Load()
}
