// Package risk implements the pure pre-match admission check: a closed
// predicate over an inbound order, grounded on original_source's
// RiskManager.h (CheckOrder / Result enum / default Config values).
package risk

import (
	"sync/atomic"

	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/matching"
)

// Result is the outcome of a Check call. It is a closed enum, not an
// error: rejection is an expected, terminal outcome for that request, not
// a failure of the gate itself.
type Result uint8

const (
	Allowed Result = iota
	RejectedMaxQuantity
	RejectedPriceRange
)

func (r Result) String() string {
	switch r {
	case Allowed:
		return "allowed"
	case RejectedMaxQuantity:
		return "rejected_max_quantity"
	case RejectedPriceRange:
		return "rejected_price_range"
	default:
		return "unknown"
	}
}

// Config bounds the risk gate. Defaults mirror
// original_source/RiskManager.h's RiskManager::Config verbatim.
type Config struct {
	MaxQuantity matching.Quantity
	MinPrice    matching.Price
	MaxPrice    matching.Price
}

// DefaultConfig matches RiskManager::Config{} in original_source.
func DefaultConfig() Config {
	return Config{
		MaxQuantity: 10000,
		MinPrice:    1,
		MaxPrice:    1000000,
	}
}

// Gate is a pure predicate, safe to call from the matcher's hot path: no
// allocation, no I/O. Its Config is held behind an atomic.Pointer rather
// than a plain field so an external config watcher (internal/config) can
// swap in a new Config — e.g. after a hot-reloaded limits file — without
// the matcher ever taking a lock on its hot path.
type Gate struct {
	cfg atomic.Pointer[Config]
}

// New builds a Gate from cfg.
func New(cfg Config) *Gate {
	g := &Gate{}
	g.cfg.Store(&cfg)
	return g
}

// SetConfig atomically replaces the gate's limits. Safe to call from any
// goroutine; the matcher's next Check picks it up without synchronizing
// with the caller beyond the pointer swap.
func (g *Gate) SetConfig(cfg Config) {
	g.cfg.Store(&cfg)
}

// Check admits or rejects an inbound order. Market orders skip the price
// range check because their effective price is chosen at admission time
// (bound to the worst opposite-side resting price), not supplied by the
// caller — spec.md §4.D.
func (g *Gate) Check(disc matching.Discipline, price matching.Price, qty matching.Quantity) Result {
	cfg := g.cfg.Load()
	if qty > cfg.MaxQuantity {
		return RejectedMaxQuantity
	}
	if disc != matching.Market {
		if price < cfg.MinPrice || price > cfg.MaxPrice {
			return RejectedPriceRange
		}
	}
	return Allowed
}
