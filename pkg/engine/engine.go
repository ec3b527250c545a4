package engine

import (
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/journal"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/matching"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/metrics"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/pool"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/ringbuf"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/risk"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/sequence"
)

// TradeSink receives every Trade in emission order. It runs on the
// matcher thread — it must not block or mutate anything the matcher
// touches.
type TradeSink func(matching.Trade)

// ObservationSink receives every non-trade outcome the Add protocol or
// Cancel/Modify dispatch produces.
type ObservationSink func(Observation)

// Engine owns the consumer thread and every book mutation. Exactly one
// goroutine may call Run — the single-writer discipline spec.md §5
// requires — and Submit, Snapshot and Shutdown are the only methods safe
// to call concurrently with it.
type Engine struct {
	book *matching.Book
	pool *pool.Pool
	gate *risk.Gate
	seq  *sequence.Sequencer
	jr   *journal.Journal
	mx   *metrics.Metrics
	log  *zap.Logger

	ring *ringbuf.Ring[*Request]

	trades       TradeSink
	observations ObservationSink

	snapshots *snapshotPublisher
	stopping  atomic.Bool
}

// New wires an Engine from its collaborators. jr may be nil to run without
// journaling (used by tests exercising book/risk/discipline semantics in
// isolation).
func New(
	book *matching.Book,
	p *pool.Pool,
	gate *risk.Gate,
	seq *sequence.Sequencer,
	jr *journal.Journal,
	mx *metrics.Metrics,
	log *zap.Logger,
	ring *ringbuf.Ring[*Request],
	trades TradeSink,
	observations ObservationSink,
) *Engine {
	return &Engine{
		book:         book,
		pool:         p,
		gate:         gate,
		seq:          seq,
		jr:           jr,
		mx:           mx,
		log:          log,
		ring:         ring,
		trades:       trades,
		observations: observations,
		snapshots:    newSnapshotPublisher(),
	}
}

// Submit offers req to the inbound ring without blocking. The return value
// is the backpressure indicator spec.md §6 requires: false means the ring
// was full and the caller must spin-yield (strict) or count a shed (shed
// mode) — Submit itself takes no position on which.
func (e *Engine) Submit(req *Request) bool {
	ok := e.ring.Push(req)
	if ok {
		e.mx.IncOrdersReceived()
	}
	return ok
}

// Shutdown sets the cooperative stop flag. Run drains the ring and
// returns instead of stopping mid-request.
func (e *Engine) Shutdown() {
	e.stopping.Store(true)
}

// Snapshot returns the most recently published market-data view.
func (e *Engine) Snapshot() Snapshot {
	return e.snapshots.load()
}

// Run is the matcher's consumer loop. It never blocks on a synchronization
// primitive — an empty ring is handled by yielding to the scheduler and
// retrying, per spec.md §5.
func (e *Engine) Run() error {
	if e.log != nil {
		e.log.Info("matcher started")
		defer e.log.Info("matcher stopped")
	}
	for {
		req, ok := e.ring.Pop()
		if !ok {
			if e.stopping.Load() {
				return nil
			}
			runtime.Gosched()
			continue
		}
		e.process(req)
	}
}

func (e *Engine) process(req *Request) {
	tStart := nowNanos()

	switch req.Kind {
	case RequestAdd:
		e.processAdd(tStart, req.Add)
	case RequestCancel:
		e.processCancel(e.seq.Next(), tStart, req.Cancel)
	case RequestModify:
		e.processModify(e.seq.Next(), tStart, req.Modify)
	}

	if req.IngressTS != 0 {
		e.mx.ObserveLatency(tStart - req.IngressTS)
	}
	e.mx.IncOrdersProcessed()
	e.mx.SetQueueDepth(int64(e.ring.Len()))
	e.mx.SetBidLevels(int64(e.book.BidLevelCount()))
	e.mx.SetAskLevels(int64(e.book.AskLevelCount()))
	if price, _, ok := e.book.Top(matching.Buy); ok {
		e.mx.SetBestBid(int64(price))
	} else {
		e.mx.SetBestBid(0)
	}
	if price, _, ok := e.book.Top(matching.Sell); ok {
		e.mx.SetBestAsk(int64(price))
	} else {
		e.mx.SetBestAsk(0)
	}
	e.snapshots.publish(e.book)
}

// processAdd runs risk gate → journal → Add protocol, per spec.md §4.F
// steps 3–5. A risk rejection skips the journal entirely (step 3 says "go
// to step 7") and takes no sequence number, so journal sequences stay
// gapless over admitted requests.
func (e *Engine) processAdd(ns int64, a AddRequest) {
	result := e.gate.Check(a.Discipline, a.Price, a.Qty)
	if result != risk.Allowed {
		e.mx.IncOrdersRejected()
		e.emit(Observation{Kind: ObsRejected, OrderID: a.ID, RiskResult: result})
		return
	}

	e.enqueueJournalAdd(e.seq.Next(), ns, a)
	e.dispatchAdd(a)
}

func (e *Engine) dispatchAdd(a AddRequest) {
	if e.book.Resident(a.ID) {
		// duplicate id: silent no-op, spec.md §4.F Add protocol step 1.
		return
	}
	exhaustionsBefore := e.pool.Exhaustions()
	o, err := e.pool.Acquire()
	if e.pool.Exhaustions() != exhaustionsBefore {
		// counted in both modes: strict rejects below, degraded allocated.
		e.mx.IncPoolExhaustions()
	}
	if err != nil {
		e.mx.IncOrdersRejected()
		if e.log != nil {
			e.log.Warn("order pool exhausted, rejecting add", zap.Uint64("order_id", uint64(a.ID)))
		}
		e.emit(Observation{Kind: ObsRejected, OrderID: a.ID, PoolExhausted: true})
		return
	}
	o.Reset(a.ID, a.Discipline, a.Side, a.Price, a.Qty)
	e.admit(o)
}

func (e *Engine) processCancel(seq uint64, ns int64, c CancelRequest) {
	e.enqueueJournalCancel(seq, ns, uint64(c.ID), journal.CancelRequested)

	o, ok := e.book.Cancel(c.ID)
	if !ok {
		return
	}
	e.pool.Release(o)
	e.emit(Observation{Kind: ObsCanceled, OrderID: c.ID})
}

// processModify is Cancel(id) followed by Add(new_order) as spec.md §4.F
// describes, reusing the canceled order's slot rather than round-tripping
// through the pool, and inheriting the original discipline and side.
func (e *Engine) processModify(seq uint64, ns int64, m ModifyRequest) {
	e.enqueueJournalModify(seq, ns, m)

	old, ok := e.book.Cancel(m.ID)
	if !ok {
		return
	}
	old.Reset(old.ID, old.Discipline, old.Side, m.Price, m.Qty)
	e.admit(old)
}

// admit runs the discipline-specific pre-checks, places o, runs the match
// loop, and — for FillAndKill — cancels any residue. o must already be
// Reset with its final Discipline/Side/Price/RemainingQty.
func (e *Engine) admit(o *matching.Order) {
	switch o.Discipline {
	case matching.Market:
		opposite := oppositeSide(o.Side)
		worst, ok := e.book.Worst(opposite)
		if !ok {
			e.pool.Release(o)
			e.emit(Observation{Kind: ObsDropped, OrderID: o.ID, DropReason: DropMarketNoLiquidity})
			return
		}
		o.Price = worst
		o.Discipline = matching.GoodTillCancel

	case matching.FillAndKill:
		if !e.book.CanMatch(o.Side, o.Price) {
			e.pool.Release(o)
			e.emit(Observation{Kind: ObsDropped, OrderID: o.ID, DropReason: DropFAKUnfillable})
			return
		}

	case matching.FillOrKill:
		if !e.book.CanFullyFill(o.Side, o.Price, o.RemainingQty) {
			e.pool.Release(o)
			e.emit(Observation{Kind: ObsDropped, OrderID: o.ID, DropReason: DropFOKUnfillable})
			return
		}
	}

	fak := o.Discipline == matching.FillAndKill
	id := o.ID

	e.book.Place(o)
	e.matchLoop()

	if fak {
		if residue, ok := e.book.Cancel(id); ok {
			e.pool.Release(residue)
			e.enqueueJournalCancel(e.seq.Next(), nowNanos(), uint64(id), journal.CancelFillAndKillResidue)
			e.emit(Observation{Kind: ObsCanceled, OrderID: id})
		}
	}
}

// matchLoop crosses the book at its current top-of-book until the spread
// reopens or a side empties, per spec.md §4.F "Match loop". It has no
// notion of "the aggressor" — it always resolves whatever currently
// crosses, which is what makes it correct to call after every Add and
// every Modify's re-insertion.
func (e *Engine) matchLoop() {
	for {
		bidPrice, bidLvl, bidOK := e.book.Top(matching.Buy)
		if !bidOK {
			return
		}
		askPrice, askLvl, askOK := e.book.Top(matching.Sell)
		if !askOK || bidPrice < askPrice {
			return
		}

		bidHead := bidLvl.Head()
		askHead := askLvl.Head()
		qty := bidHead.RemainingQty
		if askHead.RemainingQty < qty {
			qty = askHead.RemainingQty
		}

		trade := matching.Trade{
			Buy:  matching.OrderFill{ID: bidHead.ID, Price: bidHead.Price, Qty: qty},
			Sell: matching.OrderFill{ID: askHead.ID, Price: askHead.Price, Qty: qty},
		}

		bidFilled := e.book.ApplyFill(bidHead, qty)
		askFilled := e.book.ApplyFill(askHead, qty)
		if bidFilled {
			e.pool.Release(bidHead)
		}
		if askFilled {
			e.pool.Release(askHead)
		}

		e.mx.IncTradesExecuted()
		e.mx.AddVolume(uint64(qty))
		if e.trades != nil {
			e.trades(trade)
		}
	}
}

func (e *Engine) emit(obs Observation) {
	if e.observations != nil {
		e.observations(obs)
	}
}

func (e *Engine) enqueueJournalAdd(seq uint64, ns int64, a AddRequest) {
	if e.jr == nil {
		return
	}
	e.jr.Enqueue(&journal.Record{
		Sequence: seq,
		NanosTS:  ns,
		Kind:     journal.KindAdd,
		Add: journal.AddPayload{
			ID:         uint64(a.ID),
			Side:       uint8(a.Side),
			Discipline: uint8(a.Discipline),
			Price:      int64(a.Price),
			Qty:        uint64(a.Qty),
		},
	})
}

func (e *Engine) enqueueJournalCancel(seq uint64, ns int64, id uint64, reason journal.CancelReason) {
	if e.jr == nil {
		return
	}
	e.jr.Enqueue(&journal.Record{
		Sequence: seq,
		NanosTS:  ns,
		Kind:     journal.KindCancel,
		Cancel:   journal.CancelPayload{ID: id, Reason: reason},
	})
}

func (e *Engine) enqueueJournalModify(seq uint64, ns int64, m ModifyRequest) {
	if e.jr == nil {
		return
	}
	e.jr.Enqueue(&journal.Record{
		Sequence: seq,
		NanosTS:  ns,
		Kind:     journal.KindModify,
		Modify: journal.ModifyPayload{
			ID:    uint64(m.ID),
			Price: int64(m.Price),
			Qty:   uint64(m.Qty),
		},
	})
}

func oppositeSide(s matching.Side) matching.Side {
	if s == matching.Buy {
		return matching.Sell
	}
	return matching.Buy
}

func nowNanos() int64 { return time.Now().UnixNano() }
