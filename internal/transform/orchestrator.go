package transform

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"enricher/internal/boundary"
	"enricher/internal/cache"
	"enricher/internal/models"
	"enricher/internal/platform/config"
	"enricher/internal/platform/metrics"
	"enricher/internal/publish"
	"enricher/pkg/platform/sentinel"
)

// Transformer slices the orchestrator dispatches to, one per event family.
type (
	StockTransformer interface {
		Transform(ctx context.Context, ev models.StockEvent) (models.StockIndex, error)
	}
	ServiceTaskTransformer interface {
		Transform(ctx context.Context, ev models.ServiceTaskEvent) (models.ServiceIndex, error)
	}
	ProjectStaffTransformer interface {
		Transform(ctx context.Context, ev models.ProjectStaffEvent) (models.ProjectStaffIndex, error)
	}
	ProductVariantTransformer interface {
		Transform(ctx context.Context, ev models.ProductVariantEvent) (models.ProductVariantIndex, error)
	}
)

// Publisher is the outbound slice the orchestrator needs.
type Publisher interface {
	Push(ctx context.Context, topic string, docs []publish.Document) error
}

// Orchestrator fans a batch of events across bounded workers, isolates
// per-record failures, and publishes the surviving documents. A cache
// backend failure aborts the whole batch so the consumer redelivers it;
// everything else skips only the affected record.
type Orchestrator struct {
	topics   config.Topics
	parallel int

	stock    StockTransformer
	tasks    ServiceTaskTransformer
	staff    ProjectStaffTransformer
	variants ProductVariantTransformer

	finance  *FinanceFilter
	spraying *SprayingFilter

	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// NewOrchestrator wires the transformers, filters and publisher together.
func NewOrchestrator(
	cfg config.Pipeline,
	topics config.Topics,
	stock StockTransformer,
	tasks ServiceTaskTransformer,
	staff ProjectStaffTransformer,
	variants ProductVariantTransformer,
	publisher Publisher,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	parallel := cfg.Parallelism
	if parallel <= 0 {
		parallel = 1
	}
	o := &Orchestrator{
		topics:    topics,
		parallel:  parallel,
		stock:     stock,
		tasks:     tasks,
		staff:     staff,
		variants:  variants,
		finance:   NewFinanceFilter(cfg.FinanceChecklistNames, logger),
		spraying:  NewSprayingFilter(cfg.SpecialSprayingChecklist, cfg.Remap, logger),
		publisher: publisher,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// HandleStock transforms and publishes a batch of stock events.
func (o *Orchestrator) HandleStock(ctx context.Context, events []models.StockEvent) error {
	docs, err := runBatch(ctx, o, string(models.KindStock), events, o.stock.Transform)
	if err != nil {
		return err
	}
	return o.publisher.Push(ctx, o.topics.StockIndex, keyed(docs, func(d models.StockIndex) string { return d.ID }))
}

// HandleServiceTasks transforms a batch of service tasks and publishes the
// generic documents plus any derivative finance and spraying variants.
func (o *Orchestrator) HandleServiceTasks(ctx context.Context, events []models.ServiceTaskEvent) error {
	docs, err := runBatch(ctx, o, string(models.KindServiceTask), events, o.tasks.Transform)
	if err != nil {
		return err
	}
	if err := o.publisher.Push(ctx, o.topics.ServiceTaskIndex, keyed(docs, serviceKey)); err != nil {
		return err
	}

	var finance, spraying []models.ServiceIndex
	for _, doc := range docs {
		if o.finance.Matches(doc) {
			finance = append(finance, o.finance.Apply(doc))
		}
		if o.spraying.Matches(doc) {
			spraying = append(spraying, o.spraying.Apply(doc))
		}
	}
	if err := o.publisher.Push(ctx, o.topics.FinanceChecklistIndex, keyed(finance, serviceKey)); err != nil {
		return err
	}
	return o.publisher.Push(ctx, o.topics.SpecialSprayingIndex, keyed(spraying, serviceKey))
}

// HandleProjectStaff transforms and publishes a batch of staff assignments.
func (o *Orchestrator) HandleProjectStaff(ctx context.Context, events []models.ProjectStaffEvent) error {
	docs, err := runBatch(ctx, o, string(models.KindProjectStaff), events, o.staff.Transform)
	if err != nil {
		return err
	}
	return o.publisher.Push(ctx, o.topics.ProjectStaffIndex, keyed(docs, func(d models.ProjectStaffIndex) string { return d.ID }))
}

// HandleProductVariants transforms and publishes a batch of variant events.
func (o *Orchestrator) HandleProductVariants(ctx context.Context, events []models.ProductVariantEvent) error {
	docs, err := runBatch(ctx, o, string(models.KindProductVariant), events, o.variants.Transform)
	if err != nil {
		return err
	}
	return o.publisher.Push(ctx, o.topics.ProductVariantIndex, keyed(docs, func(d models.ProductVariantIndex) string { return d.ID }))
}

func serviceKey(d models.ServiceIndex) string { return d.ID }

// runBatch transforms each event on a bounded worker, preserving input order
// in the output. A failed record is logged, counted and dropped; a cache
// backend failure cancels the group and surfaces as the batch error.
func runBatch[E, D any](ctx context.Context, o *Orchestrator, kind string, events []E, fn func(context.Context, E) (D, error)) ([]D, error) {
	results := make([]*D, len(events))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallel)
	for i, ev := range events {
		g.Go(func() error {
			start := time.Now()
			doc, err := fn(gctx, ev)
			if o.metrics != nil {
				o.metrics.TransformDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
			}
			if err != nil {
				if errors.Is(err, cache.ErrBackend) {
					return err
				}
				reason := skipReason(err)
				o.logger.Warn("record skipped", "kind", kind, "reason", reason, "error", err)
				if o.metrics != nil {
					o.metrics.RecordsSkipped.WithLabelValues(kind, reason).Inc()
				}
				return nil
			}
			results[i] = &doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make([]D, 0, len(results))
	for _, r := range results {
		if r != nil {
			docs = append(docs, *r)
		}
	}
	if o.metrics != nil {
		o.metrics.RecordsTransformed.WithLabelValues(kind).Add(float64(len(docs)))
	}
	return docs, nil
}

func keyed[D any](docs []D, key func(D) string) []publish.Document {
	out := make([]publish.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, publish.Document{Key: key(d), Value: d})
	}
	return out
}

func skipReason(err error) string {
	var cycle *boundary.CycleError
	switch {
	case errors.As(err, &cycle):
		return "cycle"
	case errors.Is(err, sentinel.ErrNotFound):
		return "not_found"
	case errors.Is(err, sentinel.ErrUnavailable):
		return "unavailable"
	default:
		return "invalid"
	}
}
