package engine

import (
	"testing"

	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/matching"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/metrics"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/pool"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/ringbuf"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/risk"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/sequence"
)

// newTestEngine builds an Engine with no journal (nil is a valid
// collaborator) and trade/observation sinks that just accumulate into
// slices the test can inspect.
func newTestEngine(t *testing.T) (*Engine, *[]matching.Trade, *[]Observation) {
	t.Helper()
	var trades []matching.Trade
	var obs []Observation

	e := New(
		matching.NewBook(),
		pool.New(64, pool.Strict),
		risk.New(risk.DefaultConfig()),
		sequence.New(0),
		nil,
		metrics.New(),
		nil,
		ringbuf.New[*Request](64),
		func(tr matching.Trade) { trades = append(trades, tr) },
		func(o Observation) { obs = append(obs, o) },
	)
	return e, &trades, &obs
}

func addReq(id uint64, side matching.Side, disc matching.Discipline, price, qty int64) *Request {
	return &Request{
		Kind: RequestAdd,
		Add: AddRequest{
			ID:         matching.OrderID(id),
			Discipline: disc,
			Side:       side,
			Price:      matching.Price(price),
			Qty:        matching.Quantity(qty),
		},
	}
}

func drain(e *Engine, n int) {
	for i := 0; i < n; i++ {
		req, ok := e.ring.Pop()
		if !ok {
			return
		}
		e.process(req)
	}
}

// Scenario 1: pure cross of opposites.
func TestPureCrossOfOpposites(t *testing.T) {
	e, trades, _ := newTestEngine(t)
	e.Submit(addReq(1, matching.Buy, matching.GoodTillCancel, 100, 10))
	e.Submit(addReq(2, matching.Sell, matching.GoodTillCancel, 100, 10))
	drain(e, 2)

	if len(*trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(*trades))
	}
	got := (*trades)[0]
	want := matching.Trade{
		Buy:  matching.OrderFill{ID: 1, Price: 100, Qty: 10},
		Sell: matching.OrderFill{ID: 2, Price: 100, Qty: 10},
	}
	if got != want {
		t.Errorf("trade mismatch: got %+v, want %+v", got, want)
	}
	if e.book.Resident(1) || e.book.Resident(2) {
		t.Error("expected book empty after full cross")
	}
}

// Scenario 2: partial fill with price improvement.
func TestPartialFillWithPriceImprovement(t *testing.T) {
	e, trades, _ := newTestEngine(t)
	e.Submit(addReq(1, matching.Sell, matching.GoodTillCancel, 100, 5))
	e.Submit(addReq(2, matching.Buy, matching.GoodTillCancel, 105, 8))
	drain(e, 2)

	if len(*trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(*trades))
	}
	want := matching.Trade{
		Buy:  matching.OrderFill{ID: 2, Price: 105, Qty: 5},
		Sell: matching.OrderFill{ID: 1, Price: 100, Qty: 5},
	}
	if (*trades)[0] != want {
		t.Errorf("trade mismatch: got %+v, want %+v", (*trades)[0], want)
	}
	resting, ok := e.book.Lookup(2)
	if !ok {
		t.Fatal("expected buy id=2 resident after partial fill")
	}
	if resting.RemainingQty != 3 {
		t.Errorf("expected remaining 3, got %d", resting.RemainingQty)
	}
	if e.book.Resident(1) {
		t.Error("expected ask id=1 fully filled and released")
	}
}

// Scenario 3: FillAndKill partial.
func TestFillAndKillPartial(t *testing.T) {
	e, trades, _ := newTestEngine(t)
	e.Submit(addReq(1, matching.Sell, matching.GoodTillCancel, 100, 3))
	e.Submit(addReq(2, matching.Buy, matching.FillAndKill, 100, 10))
	drain(e, 2)

	if len(*trades) != 1 || (*trades)[0].Buy.Qty != 3 {
		t.Fatalf("expected one trade of qty 3, got %+v", *trades)
	}
	if e.book.Resident(2) {
		t.Error("expected FAK residue canceled, not resident")
	}
}

// Scenario 4: FillOrKill unfillable.
func TestFillOrKillUnfillable(t *testing.T) {
	e, trades, obs := newTestEngine(t)
	e.Submit(addReq(1, matching.Sell, matching.GoodTillCancel, 100, 3))
	e.Submit(addReq(2, matching.Buy, matching.FillOrKill, 100, 10))
	drain(e, 2)

	if len(*trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(*trades))
	}
	if e.book.Resident(2) {
		t.Error("expected FOK order not resident")
	}
	resting, ok := e.book.Lookup(1)
	if !ok || resting.RemainingQty != 3 {
		t.Error("expected resting ask untouched")
	}
	found := false
	for _, o := range *obs {
		if o.Kind == ObsDropped && o.DropReason == DropFOKUnfillable && o.OrderID == 2 {
			found = true
		}
	}
	if !found {
		t.Error("expected a FOKUnfillable observation for id=2")
	}
}

// Scenario 5: market against liquidity.
func TestMarketAgainstLiquidity(t *testing.T) {
	e, trades, _ := newTestEngine(t)
	e.Submit(addReq(1, matching.Sell, matching.GoodTillCancel, 100, 4))
	e.Submit(addReq(2, matching.Sell, matching.GoodTillCancel, 101, 4))
	e.Submit(addReq(3, matching.Buy, matching.Market, 0, 6))
	drain(e, 3)

	if len(*trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(*trades))
	}
	if (*trades)[0] != (matching.Trade{
		Buy:  matching.OrderFill{ID: 3, Price: 101, Qty: 4},
		Sell: matching.OrderFill{ID: 1, Price: 100, Qty: 4},
	}) {
		t.Errorf("first trade mismatch: %+v", (*trades)[0])
	}
	if (*trades)[1] != (matching.Trade{
		Buy:  matching.OrderFill{ID: 3, Price: 101, Qty: 2},
		Sell: matching.OrderFill{ID: 2, Price: 101, Qty: 2},
	}) {
		t.Errorf("second trade mismatch: %+v", (*trades)[1])
	}
	if e.book.Resident(3) {
		t.Error("expected market buy id=3 fully filled, not resident")
	}
	resting, ok := e.book.Lookup(2)
	if !ok || resting.RemainingQty != 2 {
		t.Error("expected remaining ask id=2 with qty=2")
	}
}

// Scenario 6: time priority at a level.
func TestTimePriorityAtLevel(t *testing.T) {
	e, trades, _ := newTestEngine(t)
	e.Submit(addReq(1, matching.Sell, matching.GoodTillCancel, 100, 5))
	e.Submit(addReq(2, matching.Sell, matching.GoodTillCancel, 100, 5))
	e.Submit(addReq(3, matching.Buy, matching.GoodTillCancel, 100, 5))
	drain(e, 3)

	if len(*trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(*trades))
	}
	if (*trades)[0].Sell.ID != 1 {
		t.Errorf("expected trade against earlier-arrived id=1, got %+v", (*trades)[0])
	}
	resting, ok := e.book.Lookup(2)
	if !ok || resting.RemainingQty != 5 {
		t.Error("expected id=2 still resting with full remaining qty")
	}
}

func TestDuplicateAddIsSilentNoOp(t *testing.T) {
	e, trades, _ := newTestEngine(t)
	e.Submit(addReq(1, matching.Buy, matching.GoodTillCancel, 100, 5))
	e.Submit(addReq(1, matching.Buy, matching.GoodTillCancel, 200, 9))
	drain(e, 2)

	resting, ok := e.book.Lookup(1)
	if !ok {
		t.Fatal("expected id=1 resident")
	}
	if resting.Price != 100 || resting.RemainingQty != 5 {
		t.Errorf("expected the first Add to win, got %+v", resting)
	}
	if len(*trades) != 0 {
		t.Errorf("expected no trades, got %d", len(*trades))
	}
}

func TestCancelUnknownIDIsNoOp(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.Submit(&Request{Kind: RequestCancel, Cancel: CancelRequest{ID: 42}})
	drain(e, 1)
	if e.mx.OrdersProcessed() != 1 {
		t.Errorf("expected the no-op cancel to still count as processed, got %d", e.mx.OrdersProcessed())
	}
}

func TestModifyReplacesAtTailLosingTimePriority(t *testing.T) {
	e, trades, _ := newTestEngine(t)
	e.Submit(addReq(1, matching.Sell, matching.GoodTillCancel, 100, 5))
	e.Submit(addReq(2, matching.Sell, matching.GoodTillCancel, 100, 5))
	drain(e, 2)

	// Modify id=1's quantity; it should move to the tail of the 100 level.
	e.Submit(&Request{Kind: RequestModify, Modify: ModifyRequest{ID: 1, Price: 100, Qty: 5}})
	e.Submit(addReq(3, matching.Buy, matching.GoodTillCancel, 100, 5))
	drain(e, 2)

	if len(*trades) != 1 || (*trades)[0].Sell.ID != 2 {
		t.Errorf("expected the untouched id=2 to trade first, got %+v", *trades)
	}
}

func TestRiskGateRejectsOversizedQuantity(t *testing.T) {
	e, trades, obs := newTestEngine(t)
	e.Submit(addReq(1, matching.Buy, matching.GoodTillCancel, 100, 999999))
	drain(e, 1)

	if len(*trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(*trades))
	}
	if e.book.Resident(1) {
		t.Error("expected rejected order never placed")
	}
	if len(*obs) != 1 || (*obs)[0].Kind != ObsRejected || (*obs)[0].RiskResult != risk.RejectedMaxQuantity {
		t.Errorf("expected a RejectedMaxQuantity observation, got %+v", *obs)
	}
	if e.mx.OrdersRejected() != 1 {
		t.Errorf("expected orders_rejected=1, got %d", e.mx.OrdersRejected())
	}
}
