// Package publish hands finished index documents to the message bus.
// Delivery is at-least-once: a failed batch surfaces as an Error so the
// outer consumption layer redelivers the input events; nothing is rolled
// back against the cache.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"enricher/internal/platform/metrics"
)

// Error marks a batch-level publish failure for a topic.
type Error struct {
	Topic string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("publish to %s: %v", e.Topic, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Document is one keyed payload bound for a topic. Key drives partition
// affinity so updates to the same entity stay ordered.
type Document struct {
	Key   string
	Value any
}

// Producer is the transport slice the publisher needs.
type Producer interface {
	Produce(ctx context.Context, records ...*kgo.Record) error
}

// Publisher encodes documents and pushes them as one synchronous batch.
type Publisher struct {
	producer Producer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// New creates a publisher over the given producer.
func New(producer Producer, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{producer: producer, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Push publishes all documents to topic. Any failed record fails the whole
// batch; callers treat that as not-delivered and rely on redelivery.
func (p *Publisher) Push(ctx context.Context, topic string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	records := make([]*kgo.Record, 0, len(docs))
	for _, doc := range docs {
		value, err := json.Marshal(doc.Value)
		if err != nil {
			return &Error{Topic: topic, Err: fmt.Errorf("encode document: %w", err)}
		}
		key := doc.Key
		if key == "" {
			key = uuid.NewString()
		}
		records = append(records, &kgo.Record{Topic: topic, Key: []byte(key), Value: value})
	}

	if err := p.producer.Produce(ctx, records...); err != nil {
		if p.metrics != nil {
			p.metrics.PublishFailures.WithLabelValues(topic).Inc()
		}
		return &Error{Topic: topic, Err: err}
	}

	if p.metrics != nil {
		p.metrics.DocumentsPublished.WithLabelValues(topic).Add(float64(len(docs)))
	}
	p.logger.Info("published documents",
		"topic", topic,
		"count", len(docs),
	)
	return nil
}
