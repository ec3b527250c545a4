package metrics

import "testing"

func TestCountersIncrement(t *testing.T) {
	m := New()
	m.IncOrdersReceived()
	m.IncOrdersReceived()
	m.IncTradesExecuted()
	m.AddVolume(42)

	if got := m.OrdersReceived(); got != 2 {
		t.Errorf("expected 2 orders received, got %d", got)
	}
	if got := m.TradesExecuted(); got != 1 {
		t.Errorf("expected 1 trade executed, got %d", got)
	}
	if got := m.TotalVolume(); got != 42 {
		t.Errorf("expected total volume 42, got %d", got)
	}
}

func TestGauges(t *testing.T) {
	m := New()
	m.SetBestBid(100)
	m.SetBestAsk(101)
	m.SetQueueDepth(7)

	if m.BestBid() != 100 || m.BestAsk() != 101 || m.QueueDepth() != 7 {
		t.Error("gauge readback mismatch")
	}
}

func TestLatencyHistogramBucketsMonotonically(t *testing.T) {
	m := New()
	m.ObserveLatency(0)
	m.ObserveLatency(1)
	m.ObserveLatency(1023)
	m.ObserveLatency(1 << 40)

	snap := m.LatencySnapshot()
	var total uint64
	for _, c := range snap {
		total += c
	}
	if total != 4 {
		t.Errorf("expected 4 total samples across buckets, got %d", total)
	}
	if snap[0] != 1 {
		t.Errorf("expected exactly one 0ns sample in bucket 0, got %d", snap[0])
	}
}

func TestLatencyHistogramClampsToLastBucket(t *testing.T) {
	m := New()
	m.ObserveLatency(1 << 62)
	snap := m.LatencySnapshot()
	if snap[histogramBuckets-1] != 1 {
		t.Errorf("expected an out-of-range sample to clamp into the last bucket, got %v", snap)
	}
}
