// Package consume routes consumed message batches to the enrichment
// pipeline. One batch holds messages from a single topic partition; the
// router decodes them and dispatches on topic. Unknown topics and malformed
// messages are logged and skipped so one bad producer cannot wedge the
// group.
package consume

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"enricher/internal/models"
	"enricher/internal/platform/config"
	"enricher/internal/platform/kafka/consumer"
	"enricher/internal/platform/metrics"
)

// Pipeline is the enrichment surface the router dispatches into.
type Pipeline interface {
	HandleStock(ctx context.Context, events []models.StockEvent) error
	HandleServiceTasks(ctx context.Context, events []models.ServiceTaskEvent) error
	HandleProjectStaff(ctx context.Context, events []models.ProjectStaffEvent) error
	HandleProductVariants(ctx context.Context, events []models.ProductVariantEvent) error
}

type batchFunc func(ctx context.Context, values [][]byte) error

// Router maps consumed topics onto pipeline entry points.
type Router struct {
	routes   map[string]batchFunc
	pipeline Pipeline
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures the Router.
type Option func(*Router)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

// NewRouter binds every configured consume topic to its handler.
func NewRouter(pipeline Pipeline, topics config.Topics, logger *slog.Logger, opts ...Option) *Router {
	r := &Router{
		routes:   map[string]batchFunc{},
		pipeline: pipeline,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, t := range topics.StockConsume {
		r.routes[t] = r.handleStock
	}
	for _, t := range topics.ServiceTaskConsume {
		r.routes[t] = r.handleServiceTasks
	}
	for _, t := range topics.ProjectStaffConsume {
		r.routes[t] = r.handleProjectStaff
	}
	for _, t := range topics.ProductVariantConsume {
		r.routes[t] = r.handleProductVariants
	}
	return r
}

// Handle dispatches one partition batch. Returning an error leaves the batch
// uncommitted for redelivery.
func (r *Router) Handle(ctx context.Context, msgs []*consumer.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	topic := msgs[0].Topic
	route, ok := r.routes[topic]
	if !ok {
		r.logger.Warn("no route for topic, skipping batch", "topic", topic, "count", len(msgs))
		return nil
	}
	if r.metrics != nil {
		r.metrics.BatchesConsumed.WithLabelValues(topic).Inc()
	}
	values := make([][]byte, 0, len(msgs))
	for _, m := range msgs {
		values = append(values, m.Value)
	}
	return route(ctx, values)
}

func (r *Router) handleStock(ctx context.Context, values [][]byte) error {
	events := decodeAll[models.StockEvent](values, []string{"Stock", "StockReconciliation"}, r.logger, string(models.KindStock))
	return r.pipeline.HandleStock(ctx, events)
}

func (r *Router) handleServiceTasks(ctx context.Context, values [][]byte) error {
	events := decodeAll[models.ServiceTaskEvent](values, []string{"Service", "ServiceTask"}, r.logger, string(models.KindServiceTask))
	return r.pipeline.HandleServiceTasks(ctx, events)
}

func (r *Router) handleProjectStaff(ctx context.Context, values [][]byte) error {
	events := decodeAll[models.ProjectStaffEvent](values, []string{"ProjectStaff"}, r.logger, string(models.KindProjectStaff))
	return r.pipeline.HandleProjectStaff(ctx, events)
}

func (r *Router) handleProductVariants(ctx context.Context, values [][]byte) error {
	events := decodeAll[models.ProductVariantEvent](values, []string{"ProductVariant"}, r.logger, string(models.KindProductVariant))
	return r.pipeline.HandleProductVariants(ctx, events)
}

// decodeAll flattens a batch of payloads into events. Each payload may be a
// bare event, an array of events, or an envelope keyed by entity name
// carrying either. Payloads that fit none of those shapes are dropped with a
// warning; the rest of the batch still flows.
func decodeAll[E any](values [][]byte, envelopeKeys []string, logger *slog.Logger, kind string) []E {
	var events []E
	for _, value := range values {
		evs, err := decodeOne[E](value, envelopeKeys)
		if err != nil {
			logger.Warn("undecodable message dropped", "kind", kind, "error", err)
			continue
		}
		events = append(events, evs...)
	}
	return events
}

func decodeOne[E any](value []byte, envelopeKeys []string) ([]E, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var evs []E
		return evs, json.Unmarshal(trimmed, &evs)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	for _, key := range envelopeKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		inner := bytes.TrimSpace(raw)
		if len(inner) > 0 && inner[0] == '[' {
			var evs []E
			return evs, json.Unmarshal(inner, &evs)
		}
		var ev E
		if err := json.Unmarshal(inner, &ev); err != nil {
			return nil, err
		}
		return []E{ev}, nil
	}

	var ev E
	if err := json.Unmarshal(trimmed, &ev); err != nil {
		return nil, err
	}
	return []E{ev}, nil
}
