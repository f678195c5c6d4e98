// Package consumer wraps franz-go group consumption. It polls, fans each
// topic/partition batch to the handler on its own goroutine, and commits only
// the batches the handler accepted. A handler failure stops the consumer
// without committing: the restarted process resumes from the last committed
// offset and redelivers the batch (at-least-once; downstream consumption is
// idempotent).
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"
)

// Message is one record lifted out of the transport client.
type Message struct {
	Topic     string
	Partition int32
	Key       []byte
	Value     []byte
}

// Handler processes one batch of messages from a single topic/partition.
// Returning an error leaves the batch uncommitted.
type Handler interface {
	Handle(ctx context.Context, msgs []*Message) error
}

// Consumer is a kafka group consumer driving a Handler.
type Consumer struct {
	client  *kgo.Client
	handler Handler
	logger  *slog.Logger
}

// New connects a group consumer for the given topics.
func New(brokers []string, group string, topics []string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("consumer handler is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &Consumer{client: client, handler: handler, logger: logger}, nil
}

// Run polls until the context is canceled or a handler fails. Each poll's
// partitions are handled concurrently; one partition batch stays on one
// goroutine so records within a partition keep their order. On a handler
// failure Run returns with the failed batch uncommitted.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		g, gctx := errgroup.WithContext(ctx)
		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			records := p.Records
			if len(records) == 0 {
				return
			}
			g.Go(func() error {
				msgs := make([]*Message, 0, len(records))
				for _, r := range records {
					msgs = append(msgs, &Message{
						Topic:     r.Topic,
						Partition: r.Partition,
						Key:       r.Key,
						Value:     r.Value,
					})
				}
				if err := c.handler.Handle(gctx, msgs); err != nil {
					// Returning the error stops Run before this batch is
					// committed; the poll position is not a commit, so the
					// restarted group resumes here and redelivers.
					c.logger.Error("batch handling failed, leaving uncommitted",
						"topic", p.Topic,
						"partition", p.Partition,
						"records", len(records),
						"error", err,
					)
					return fmt.Errorf("handle batch %s/%d: %w", p.Topic, p.Partition, err)
				}
				if err := c.client.CommitRecords(gctx, records...); err != nil {
					c.logger.Error("commit failed",
						"topic", p.Topic,
						"partition", p.Partition,
						"error", err,
					)
				}
				return nil
			})
		})
		if err := g.Wait(); err != nil {
			return err
		}
	}
}

// Close tears down the kafka client.
func (c *Consumer) Close() {
	c.client.Close()
}
