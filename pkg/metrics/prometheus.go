package metrics

import "github.com/prometheus/client_golang/prometheus"

// PrometheusCollector bridges a Metrics surface into a prometheus.Collector
// without ever synchronizing with the matcher: every Collect call just
// takes a relaxed atomic read, matching spec.md §4.H ("any reader that can
// observe atomic integers suffices"). Grounded on
// gopherex/pkg/metrics/custom.go's direct use of
// prometheus.NewCounterVec/MustRegister for exactly this kind of
// read-only bridge.
type PrometheusCollector struct {
	m *Metrics

	ordersReceived  *prometheus.Desc
	ordersProcessed *prometheus.Desc
	ordersRejected  *prometheus.Desc
	tradesExecuted  *prometheus.Desc
	totalVolume     *prometheus.Desc
	journalDrops    *prometheus.Desc
	poolExhaustions *prometheus.Desc
	queueDepth      *prometheus.Desc
	bidLevels       *prometheus.Desc
	askLevels       *prometheus.Desc
	bestBid         *prometheus.Desc
	bestAsk         *prometheus.Desc
}

// NewPrometheusCollector wraps m for registration with a
// prometheus.Registry. The namespace mirrors gopherex's convention of a
// short, lowercase application namespace on every metric name.
func NewPrometheusCollector(m *Metrics) *PrometheusCollector {
	const ns = "matchengine"
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(ns+"_"+name, help, nil, nil)
	}
	return &PrometheusCollector{
		m:               m,
		ordersReceived:  desc("orders_received_total", "Total requests submitted to the engine."),
		ordersProcessed: desc("orders_processed_total", "Total requests drained from the inbound ring."),
		ordersRejected:  desc("orders_rejected_total", "Total Add requests rejected by the risk gate or by strict-mode pool exhaustion."),
		tradesExecuted:  desc("trades_executed_total", "Total trades emitted by the match loop."),
		totalVolume:     desc("total_volume", "Total quantity traded."),
		journalDrops:    desc("journal_drops_total", "Total journal entries dropped on a full journal ring."),
		poolExhaustions: desc("pool_exhaustions_total", "Total order-pool acquisitions that found the free list empty."),
		queueDepth:      desc("queue_depth", "Current depth of the inbound request ring."),
		bidLevels:       desc("bid_levels", "Current number of distinct bid price levels."),
		askLevels:       desc("ask_levels", "Current number of distinct ask price levels."),
		bestBid:         desc("best_bid", "Current best bid price, or 0 if the bid side is empty."),
		bestAsk:         desc("best_ask", "Current best ask price, or 0 if the ask side is empty."),
	}
}

// Describe implements prometheus.Collector.
func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.ordersReceived
	ch <- c.ordersProcessed
	ch <- c.ordersRejected
	ch <- c.tradesExecuted
	ch <- c.totalVolume
	ch <- c.journalDrops
	ch <- c.poolExhaustions
	ch <- c.queueDepth
	ch <- c.bidLevels
	ch <- c.askLevels
	ch <- c.bestBid
	ch <- c.bestAsk
}

// Collect implements prometheus.Collector. Every value is a snapshot read
// of the underlying atomics taken at scrape time.
func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.ordersReceived, prometheus.CounterValue, float64(c.m.OrdersReceived()))
	ch <- prometheus.MustNewConstMetric(c.ordersProcessed, prometheus.CounterValue, float64(c.m.OrdersProcessed()))
	ch <- prometheus.MustNewConstMetric(c.ordersRejected, prometheus.CounterValue, float64(c.m.OrdersRejected()))
	ch <- prometheus.MustNewConstMetric(c.tradesExecuted, prometheus.CounterValue, float64(c.m.TradesExecuted()))
	ch <- prometheus.MustNewConstMetric(c.totalVolume, prometheus.CounterValue, float64(c.m.TotalVolume()))
	ch <- prometheus.MustNewConstMetric(c.journalDrops, prometheus.CounterValue, float64(c.m.JournalDrops()))
	ch <- prometheus.MustNewConstMetric(c.poolExhaustions, prometheus.CounterValue, float64(c.m.PoolExhaustions()))
	ch <- prometheus.MustNewConstMetric(c.queueDepth, prometheus.GaugeValue, float64(c.m.QueueDepth()))
	ch <- prometheus.MustNewConstMetric(c.bidLevels, prometheus.GaugeValue, float64(c.m.BidLevels()))
	ch <- prometheus.MustNewConstMetric(c.askLevels, prometheus.GaugeValue, float64(c.m.AskLevels()))
	ch <- prometheus.MustNewConstMetric(c.bestBid, prometheus.GaugeValue, float64(c.m.BestBid()))
	ch <- prometheus.MustNewConstMetric(c.bestAsk, prometheus.GaugeValue, float64(c.m.BestAsk()))
}
