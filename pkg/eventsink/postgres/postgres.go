// Package postgres persists every emitted orderbook.Event to a durable
// engine_events table for audit and replay, using the same
// gorm/lib-pq/dbresolver/backoff stack joripage's OMS uses for order
// persistence.
package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cenkalti/backoff"
	_ "github.com/lib/pq" // nolint
	pg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/joripage/lob-engine/pkg/orderbook"
)

// Config is the same shape joripage's PostgresConfig takes, trimmed to
// the fields this sink actually uses.
type Config struct {
	DataSource                 string `yaml:"data_source"`
	MaxOpenConns               int    `yaml:"max_open_conns"`
	MaxIdleConns               int    `yaml:"max_idle_conns"`
	ConnMaxLifeTimeMiliseconds int64  `yaml:"conn_max_life_time_ms"`
	SlaveSources               []string           `yaml:"slave_sources"`
	LogLevel                   gormlogger.LogLevel `yaml:"log_level"`

	// BatchSize/FlushInterval bound the background writer: events are
	// buffered in memory and flushed in batches rather than one INSERT
	// per event, since the matching path must never wait on a publish.
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	QueueCapacity int           `yaml:"queue_capacity"`

	// MigrationSourceURL points cmd/migrate at the engine_events schema
	// migrations (e.g. "file://migration/sql"); empty disables migration
	// on startup.
	MigrationSourceURL string `yaml:"migration_source_url"`
}

func open(cfg *Config) (*gorm.DB, error) {
	newLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      cfg.LogLevel,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(pg.Open(cfg.DataSource), &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, err
	}

	var repl []gorm.Dialector
	for _, s := range cfg.SlaveSources {
		repl = append(repl, pg.Open(s))
	}
	if len(repl) > 0 {
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: repl,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifeTimeMiliseconds) * time.Millisecond)

	return db, nil
}

// openWithBackoff retries open with exponential backoff, the same
// pattern joripage's InitPostgresWithBackoff uses for startup
// resilience against a database that isn't accepting connections yet.
func openWithBackoff(cfg *Config) (*gorm.DB, error) {
	var db *gorm.DB
	boff := backoff.NewExponentialBackOff()
	err := backoff.Retry(func() error {
		var err error
		db, err = open(cfg)
		if err != nil {
			fmt.Printf("connect postgres error: %s\n", err.Error())
		}
		return err
	}, boff)
	return db, err
}

// Sink batches EventRecords in memory and flushes them to Postgres
// either when BatchSize rows have queued up or FlushInterval has
// elapsed, whichever comes first.
type Sink struct {
	db     *gorm.DB
	queue  chan orderbook.Event
	done   chan struct{}
	batch  int
	period time.Duration
}

// NewSink connects (with backoff) and starts the background flush loop.
func NewSink(cfg *Config) (*Sink, error) {
	db, err := openWithBackoff(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 500 * time.Millisecond
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 10_000
	}
	s := &Sink{
		db:     db,
		queue:  make(chan orderbook.Event, cfg.QueueCapacity),
		done:   make(chan struct{}),
		batch:  cfg.BatchSize,
		period: cfg.FlushInterval,
	}
	go s.run()
	return s, nil
}

// EventSink returns an orderbook.EventSink that enqueues without
// blocking matching; a full queue drops the event rather than stall
// the matcher, since durability is best-effort relative to the
// in-memory book which remains the source of truth for live state.
func (s *Sink) EventSink() orderbook.EventSink {
	return func(ev orderbook.Event) {
		select {
		case s.queue <- ev:
		default:
		}
	}
}

func (s *Sink) run() {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	buf := make([]*EventRecord, 0, s.batch)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		_ = s.db.WithContext(context.Background()).Create(buf).Error
		buf = buf[:0]
	}

	for {
		select {
		case ev, ok := <-s.queue:
			if !ok {
				flush()
				close(s.done)
				return
			}
			rec := toRecord(ev)
			buf = append(buf, &rec)
			if len(buf) >= s.batch {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Close stops accepting new events, flushes what remains, and waits for
// the background loop to exit.
func (s *Sink) Close() {
	close(s.queue)
	<-s.done
}
