// Package kafka publishes every orderbook.Event to a Kafka topic, keyed by
// symbol so all events for one book land on the same partition and
// preserve their emission order downstream.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/joripage/lob-engine/pkg/orderbook"
)

// ProducerConfig mirrors the handful of writer knobs the engine cares
// about; unset durations fall back to the same defaults joripage's
// kafka_wrapper uses.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchBytes   int64
	BatchTimeout time.Duration
}

// Producer publishes Events as JSON, partitioned by symbol.
type Producer struct {
	w     *kafkago.Writer
	topic string
}

func NewProducer(cfg ProducerConfig) *Producer {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchBytes == 0 {
		cfg.BatchBytes = 1 << 20
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Balancer:               &kafkago.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchBytes:             cfg.BatchBytes,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafkago.RequireOne,
		Async:                  true,
	}
	return &Producer{w: w, topic: cfg.Topic}
}

// eventRecord is the wire shape published to Kafka — Event plus a
// human-readable Kind label, since the numeric EventKind alone isn't
// self-describing to a downstream consumer in another service.
type eventRecord struct {
	orderbook.Event
	KindName string `json:"kind_name"`
}

// Sink returns an orderbook.EventSink (really a matching.Engine sink)
// that publishes every event asynchronously. Publish errors are
// swallowed here by design — matching must never block or fail on a
// downstream publish error, so a failed publish is only visible via the
// kafka-go writer's own error logging/metrics.
func (p *Producer) Sink() orderbook.EventSink {
	return func(ev orderbook.Event) {
		rec := eventRecord{Event: ev, KindName: ev.Kind.String()}
		b, err := json.Marshal(rec)
		if err != nil {
			return
		}
		_ = p.w.WriteMessages(context.Background(), kafkago.Message{
			Topic: p.topic,
			Key:   []byte(ev.Symbol),
			Value: b,
			Time:  time.Now(),
		})
	}
}

func (p *Producer) Close() error {
	if p == nil || p.w == nil {
		return nil
	}
	return p.w.Close()
}
