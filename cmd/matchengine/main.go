// Command matchengine wires one instance of the core: pool, risk gate,
// book, inbound ring, journal, and the matcher loop, then blocks until an
// interrupt requests a cooperative shutdown. Grounded on the teacher's
// cmd/server/main.go for the overall wiring shape, with the gRPC listener
// and Kafka broadcaster dropped — spec.md's Non-goals exclude "any form of
// networking" from the core, and this binary only demonstrates the core.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ViraatC22/HFT-Orderbook-Engine/internal/config"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/engine"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/journal"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/matching"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/metrics"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/pool"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/ringbuf"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/risk"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/sequence"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("zap init failed: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load("matchengine", "./config", ".")
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	mx := metrics.New()
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.NewPrometheusCollector(mx)); err != nil {
		logger.Fatal("prometheus registration failed", zap.Error(err))
	}

	gate := risk.New(config.ToRiskConfig(cfg))

	poolMode := pool.Strict
	if cfg.Pool.Mode == "degraded" {
		poolMode = pool.Degraded
	}
	orderPool := pool.New(cfg.Pool.Capacity, poolMode)

	book := matching.NewBook()
	seq := sequence.New(0)

	var store journal.Store
	switch cfg.Journal.Backend {
	case "pebble":
		store, err = journal.OpenPebbleStore(cfg.Journal.Dir)
	default:
		store, err = journal.NewFileStore(cfg.Journal.Dir, cfg.Journal.SegmentMaxByte, cfg.Journal.FlushInterval)
	}
	if err != nil {
		logger.Fatal("journal store open failed", zap.Error(err))
	}

	journalRing := ringbuf.New[*journal.Record](cfg.Ring.JournalCapacity)
	jr := journal.New(store, journalRing, logger, mx)

	inboundRing := ringbuf.New[*engine.Request](cfg.Ring.InboundCapacity)

	trades := func(tr matching.Trade) {
		logger.Debug("trade",
			zap.Uint64("buy_id", uint64(tr.Buy.ID)), zap.Int64("buy_price", int64(tr.Buy.Price)),
			zap.Uint64("sell_id", uint64(tr.Sell.ID)), zap.Int64("sell_price", int64(tr.Sell.Price)),
			zap.Int64("qty", int64(tr.Buy.Qty)),
		)
	}
	observations := func(o engine.Observation) {
		logger.Debug("observation", zap.Uint8("kind", uint8(o.Kind)), zap.Uint64("order_id", uint64(o.OrderID)))
	}

	eng := engine.New(book, orderPool, gate, seq, jr, mx, logger, inboundRing, trades, observations)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	journalStop := make(chan struct{})
	g.Go(func() error {
		return jr.Run(journalStop)
	})

	g.Go(func() error {
		return eng.Run()
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received, draining")
		eng.Shutdown()
		close(journalStop)
		return nil
	})

	_, cfgErr := config.Watch("matchengine", func(next config.Config) {
		gate.SetConfig(config.ToRiskConfig(next))
		logger.Info("risk config hot-reloaded")
	}, "./config", ".")
	if cfgErr != nil {
		logger.Warn("config watch unavailable", zap.Error(cfgErr))
	}

	if err := g.Wait(); err != nil {
		logger.Error("matcher exited with error", zap.Error(err))
		os.Exit(1)
	}

	if err := jr.Close(); err != nil {
		logger.Error("journal close failed", zap.Error(err))
	}

	logger.Info("matchengine stopped cleanly", zap.Time("at", time.Now()))
}
