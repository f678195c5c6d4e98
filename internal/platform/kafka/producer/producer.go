// Package producer wraps the franz-go produce side behind the small surface
// the publisher needs.
package producer

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer publishes records synchronously. The publisher layers batch
// semantics on top; this type is transport only.
type Producer struct {
	client *kgo.Client
}

// New connects a producer to the given brokers.
func New(brokers []string) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Producer{client: client}, nil
}

// Produce writes all records and blocks until every one is acknowledged.
// The first error fails the whole call.
func (p *Producer) Produce(ctx context.Context, records ...*kgo.Record) error {
	if len(records) == 0 {
		return nil
	}
	return p.client.ProduceSync(ctx, records...).FirstErr()
}

// Close flushes and tears down the kafka client.
func (p *Producer) Close() {
	p.client.Close()
}
