// Package metrics is the matcher's observation surface: monotonic atomic
// counters, gauges, and a bounded logarithmic-bucket latency histogram, all
// written by the matcher with relaxed atomics and readable by any outside
// observer without synchronizing with it. Grounded on
// original_source/MetricsPublisher.h's cache-line-aligned Metrics struct.
package metrics

import (
	"math/bits"
	"sync/atomic"
)

// histogramBuckets bounds the latency histogram to a fixed, small number
// of buckets — spec.md §4.H requires a "bounded bucket count". Bucket i
// covers latencies in [2^(i-1), 2^i) nanoseconds, so 48 buckets resolve
// everything below 2^47ns (~1.6 days), far past anything a matching loop
// iteration should ever take; larger samples are clamped into the last
// bucket.
const histogramBuckets = 48

// Metrics is the full observation surface of one engine instance. There is
// deliberately no global instance — spec.md §9: "there is no global state
// in the core... the metrics surface is per-instance."
type Metrics struct {
	ordersReceived  atomic.Uint64
	ordersProcessed atomic.Uint64
	ordersRejected  atomic.Uint64
	tradesExecuted  atomic.Uint64
	totalVolume     atomic.Uint64
	journalDrops    atomic.Uint64
	poolExhaustions atomic.Uint64

	queueDepth atomic.Int64
	bidLevels  atomic.Int64
	askLevels  atomic.Int64
	bestBid    atomic.Int64
	bestAsk    atomic.Int64

	latencyBuckets [histogramBuckets]atomic.Uint64
}

// New returns a zeroed metrics surface.
func New() *Metrics { return &Metrics{} }

// --- counters ---

func (m *Metrics) IncOrdersReceived()            { m.ordersReceived.Add(1) }
func (m *Metrics) IncOrdersProcessed()           { m.ordersProcessed.Add(1) }
func (m *Metrics) IncOrdersRejected()            { m.ordersRejected.Add(1) }
func (m *Metrics) IncTradesExecuted()            { m.tradesExecuted.Add(1) }
func (m *Metrics) AddVolume(qty uint64)          { m.totalVolume.Add(qty) }
func (m *Metrics) IncJournalDrops()              { m.journalDrops.Add(1) }
func (m *Metrics) IncPoolExhaustions()           { m.poolExhaustions.Add(1) }

func (m *Metrics) OrdersReceived() uint64  { return m.ordersReceived.Load() }
func (m *Metrics) OrdersProcessed() uint64 { return m.ordersProcessed.Load() }
func (m *Metrics) OrdersRejected() uint64  { return m.ordersRejected.Load() }
func (m *Metrics) TradesExecuted() uint64  { return m.tradesExecuted.Load() }
func (m *Metrics) TotalVolume() uint64     { return m.totalVolume.Load() }
func (m *Metrics) JournalDrops() uint64    { return m.journalDrops.Load() }
func (m *Metrics) PoolExhaustions() uint64 { return m.poolExhaustions.Load() }

// --- gauges ---

func (m *Metrics) SetQueueDepth(v int64) { m.queueDepth.Store(v) }
func (m *Metrics) SetBidLevels(v int64)  { m.bidLevels.Store(v) }
func (m *Metrics) SetAskLevels(v int64)  { m.askLevels.Store(v) }
func (m *Metrics) SetBestBid(v int64)    { m.bestBid.Store(v) }
func (m *Metrics) SetBestAsk(v int64)    { m.bestAsk.Store(v) }

func (m *Metrics) QueueDepth() int64 { return m.queueDepth.Load() }
func (m *Metrics) BidLevels() int64  { return m.bidLevels.Load() }
func (m *Metrics) AskLevels() int64  { return m.askLevels.Load() }
func (m *Metrics) BestBid() int64    { return m.bestBid.Load() }
func (m *Metrics) BestAsk() int64    { return m.bestAsk.Load() }

// --- latency histogram ---

// ObserveLatency records a single processing-latency sample in
// nanoseconds. Skipped by the caller entirely when ingress_ts was unset
// (spec.md §4.F step 7).
func (m *Metrics) ObserveLatency(ns int64) {
	if ns < 0 {
		ns = 0
	}
	bucket := bucketFor(uint64(ns))
	m.latencyBuckets[bucket].Add(1)
}

// LatencySnapshot returns a copy of the histogram's bucket counts. Bucket i
// holds samples in [2^(i-1), 2^i) nanoseconds (bucket 0 holds exactly 0ns).
func (m *Metrics) LatencySnapshot() [histogramBuckets]uint64 {
	var out [histogramBuckets]uint64
	for i := range out {
		out[i] = m.latencyBuckets[i].Load()
	}
	return out
}

func bucketFor(ns uint64) int {
	if ns == 0 {
		return 0
	}
	b := bits.Len64(ns)
	if b >= histogramBuckets {
		return histogramBuckets - 1
	}
	return b
}
