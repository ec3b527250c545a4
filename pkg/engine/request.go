// Package engine owns the matcher's consumer thread: it drains the
// inbound SPSC ring, gates each Add through the risk gate, runs the Add
// protocol (market price-binding, FillAndKill/FillOrKill pre-checks),
// mutates the book, journals, and records latency — spec.md §4.F.
// Grounded on the teacher's service.OrderService (the single write entry
// point) and orderbook.OrderBook.PlaceOrder/match (the protocol and match
// loop shape), generalized to the closed four-discipline union.
package engine

import (
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/matching"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/risk"
)

// RequestKind tags which payload variant a Request carries.
type RequestKind uint8

const (
	RequestAdd RequestKind = iota
	RequestCancel
	RequestModify
)

// AddRequest is the scalar payload for a new order. Unlike the original
// design's "order reference" framing (data model §3), the producer here
// submits fields, not a pre-acquired pool slot: the matcher itself owns
// Acquire, since it is the only pool caller the single-writer discipline
// ever requires to be lock-free (see DESIGN.md).
type AddRequest struct {
	ID         matching.OrderID
	Discipline matching.Discipline
	Side       matching.Side
	Price      matching.Price
	Qty        matching.Quantity
}

// CancelRequest names the order to remove.
type CancelRequest struct {
	ID matching.OrderID
}

// ModifyRequest carries the fields of the order's replacement. Side is
// intentionally absent: the journal's on-disk Modify payload (spec.md §6)
// carries only {id, price, qty}, so a modify can never change which side
// an order rests on — the replacement inherits the original order's side
// and discipline, exactly as a replay of the journal would reconstruct it.
type ModifyRequest struct {
	ID    matching.OrderID
	Price matching.Price
	Qty   matching.Quantity
}

// Request is the tagged union the producer pushes into the inbound ring.
// IngressTS is a monotonic nanosecond stamp set by the producer; zero
// means "unset", in which case the matcher skips latency accounting for
// this request (spec.md §4.F step 7).
type Request struct {
	Kind      RequestKind
	IngressTS int64

	Add    AddRequest
	Cancel CancelRequest
	Modify ModifyRequest
}

// DropReason is why an admitted Add never entered the book, distinct from
// a risk-gate rejection: the request passed risk, was journaled, and was
// dropped only by a discipline-specific pre-check in the Add protocol.
type DropReason uint8

const (
	DropNone DropReason = iota
	DropMarketNoLiquidity
	DropFAKUnfillable
	DropFOKUnfillable
)

func (d DropReason) String() string {
	switch d {
	case DropMarketNoLiquidity:
		return "market_no_liquidity"
	case DropFAKUnfillable:
		return "fak_unfillable"
	case DropFOKUnfillable:
		return "fok_unfillable"
	default:
		return "none"
	}
}

// ObservationKind tags what happened to a request that a caller might want
// to observe but that isn't a Trade.
type ObservationKind uint8

const (
	ObsRejected ObservationKind = iota
	ObsDropped
	ObsCanceled
)

// Observation is the non-trade outbound signal spec.md §4.F/§7 requires
// for every rejection, drop, and cancellation.
type Observation struct {
	Kind       ObservationKind
	OrderID    matching.OrderID
	RiskResult risk.Result
	DropReason DropReason
	// PoolExhausted distinguishes a strict-mode pool exhaustion from a
	// risk-gate rejection: both surface as ObsRejected (spec.md §7 treats
	// strict pool exhaustion as "reject the Add"), but RiskResult is
	// meaningless for this case since the gate was never the cause.
	PoolExhausted bool
}
