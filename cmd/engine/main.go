package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/joripage/lob-engine/config"
	"github.com/joripage/lob-engine/pkg/clock"
	"github.com/joripage/lob-engine/pkg/engine"
	"github.com/joripage/lob-engine/pkg/eventsink/kafka"
	"github.com/joripage/lob-engine/pkg/eventsink/postgres"
	"github.com/joripage/lob-engine/pkg/fixingress"
	"github.com/joripage/lob-engine/pkg/idgen"
	"github.com/joripage/lob-engine/pkg/logging"
	"github.com/joripage/lob-engine/pkg/matching"
	"github.com/joripage/lob-engine/pkg/orderbook"
	"github.com/joripage/lob-engine/pkg/riskrule"
	"github.com/joripage/lob-engine/pkg/snapshotcache"
)

func main() {
	configPath := flag.String("config", "", "path to engine config YAML (or set CONFIG_FILE)")
	flag.Parse()

	go func() {
		_ = http.ListenAndServe("localhost:6060", nil)
	}()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("failed to load config:", err)
		os.Exit(1)
	}

	log := logging.New(logging.INFO, cfg.ServiceName)
	defer log.Sync()

	// The matching engine needs a sink at construction time, but the
	// snapshot-cache sink needs a handle back to the engine it feeds
	// from — dyn breaks that cycle by letting sinks be registered after
	// the engine exists.
	dyn := &dynamicSink{}
	closers := buildEventSinks(cfg, log, dyn)

	inner := matching.New(idgen.New(1), clock.System{}, dyn.dispatch)
	concurrentEngine := engine.NewConcurrent(inner)
	for _, symbol := range cfg.Symbols {
		concurrentEngine.RegisterSymbol(symbol)
	}

	if snapCloser := wireSnapshotCache(cfg, log, inner, dyn); snapCloser != nil {
		closers = append(closers, snapCloser)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startGTDTicker(ctx, concurrentEngine, cfg)

	risk := buildRiskChain(cfg, log)
	app := fixingress.New(concurrentEngine, risk)

	if cfg.FIX != nil && cfg.FIX.SettingsFile != "" {
		acceptor, err := fixingress.Start(cfg.FIX.SettingsFile, app)
		if err != nil {
			log.Fatal("failed to start FIX acceptor", zap.Error(err))
		}
		_ = acceptor
		log.Info("FIX acceptor started", zap.String("settings", cfg.FIX.SettingsFile))
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	fmt.Println("engine started, press Ctrl+C to exit")
	<-sigs

	fmt.Println("shutting down...")
	cancel()
	fixingress.Stop(app)
	for _, closer := range closers {
		closer()
	}
	fmt.Println("exited cleanly")
}

// dynamicSink fans events out to a set of sinks that can grow after the
// matching engine has already been constructed with it, since some
// sinks (the snapshot cache) need a handle back to the engine.
type dynamicSink struct {
	mu    sync.RWMutex
	sinks []orderbook.EventSink
}

func (d *dynamicSink) add(s orderbook.EventSink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, s)
}

func (d *dynamicSink) dispatch(ev orderbook.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.sinks {
		s(ev)
	}
}

func buildEventSinks(cfg *config.AppConfig, log *logging.Logger, dyn *dynamicSink) []func() {
	var closers []func()

	if cfg.Kafka != nil && len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		dyn.add(producer.Sink())
		closers = append(closers, func() { _ = producer.Close() })
	}

	if cfg.EventsDB != nil {
		sink, err := postgres.NewSink(cfg.EventsDB)
		if err != nil {
			log.Error("failed to connect events db, continuing without durable event log", zap.Error(err))
		} else {
			dyn.add(sink.EventSink())
			closers = append(closers, sink.Close)
		}
	}

	return closers
}

// snapshotRefreshKinds are the event kinds that change a symbol's book
// shape enough to be worth pushing a fresh snapshot to Redis (§4.10 —
// the cache "subscribes to Trade/Cancel/Fill events to know when to
// refresh" rather than polling on a timer).
var snapshotRefreshKinds = map[orderbook.EventKind]bool{
	orderbook.EventTrade:           true,
	orderbook.EventPartiallyFilled: true,
	orderbook.EventFilled:          true,
	orderbook.EventCancelled:       true,
	orderbook.EventExpired:         true,
}

// wireSnapshotCache registers an event-driven sink that re-snapshots and
// caches a symbol as soon as its book changes, returning a closer, or
// nil if no cache is configured.
//
// It reads through inner, the un-shard-locked matching.Engine, rather
// than engine.ConcurrentEngine.Snapshot: a sink runs synchronously
// inside matching.Engine.emit, which itself runs inside
// ConcurrentEngine's per-symbol write lock, so taking that same lock's
// read side again here would deadlock. The surrounding write lock
// already makes this read safe.
func wireSnapshotCache(cfg *config.AppConfig, log *logging.Logger, inner *matching.Engine, dyn *dynamicSink) func() {
	if cfg.Snapshots == nil {
		return nil
	}
	cache, err := snapshotcache.New(cfg.Snapshots)
	if err != nil {
		log.Error("failed to connect snapshot cache, continuing without it", zap.Error(err))
		return nil
	}

	dyn.add(func(ev orderbook.Event) {
		if !snapshotRefreshKinds[ev.Kind] {
			return
		}
		if snap, ok := inner.Snapshot(ev.Symbol, false); ok {
			_ = cache.Put(context.Background(), snap)
		}
	})

	return func() { _ = cache.Close() }
}

func buildRiskChain(cfg *config.AppConfig, log *logging.Logger) riskrule.Chain {
	var chain riskrule.Chain
	if cfg.FIX != nil && cfg.FIX.TickSizeRuleFile != "" {
		rule, err := riskrule.NewTickSizeRuleFromFile(cfg.FIX.TickSizeRuleFile)
		if err != nil {
			log.Error("failed to load tick size rules, continuing without them", zap.Error(err))
		} else {
			chain = append(chain, rule)
		}
	}
	return chain
}

// startGTDTicker periodically drains due GTD orders (§4.6 "expire_due"),
// the clock-driven half of GTD expiry that complements the check done
// inline on Submit.
func startGTDTicker(ctx context.Context, e *engine.ConcurrentEngine, cfg *config.AppConfig) {
	interval := time.Duration(cfg.GTDScanIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.ExpireDue(orderbook.Timestamp(time.Now().UnixNano()))
			}
		}
	}()
}
