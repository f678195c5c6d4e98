package consume

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"enricher/internal/models"
	"enricher/internal/platform/config"
	"enricher/internal/platform/kafka/consumer"
	"enricher/internal/platform/logger"
)

type capturingPipeline struct {
	stock    []models.StockEvent
	tasks    []models.ServiceTaskEvent
	staff    []models.ProjectStaffEvent
	variants []models.ProductVariantEvent
	err      error
}

func (p *capturingPipeline) HandleStock(_ context.Context, events []models.StockEvent) error {
	p.stock = append(p.stock, events...)
	return p.err
}

func (p *capturingPipeline) HandleServiceTasks(_ context.Context, events []models.ServiceTaskEvent) error {
	p.tasks = append(p.tasks, events...)
	return p.err
}

func (p *capturingPipeline) HandleProjectStaff(_ context.Context, events []models.ProjectStaffEvent) error {
	p.staff = append(p.staff, events...)
	return p.err
}

func (p *capturingPipeline) HandleProductVariants(_ context.Context, events []models.ProductVariantEvent) error {
	p.variants = append(p.variants, events...)
	return p.err
}

type RouterSuite struct {
	suite.Suite
	pipeline *capturingPipeline
	router   *Router
}

func (s *RouterSuite) SetupTest() {
	s.pipeline = &capturingPipeline{}
	s.router = NewRouter(s.pipeline, config.Topics{
		StockConsume:          []string{"save-stock", "update-stock"},
		ServiceTaskConsume:    []string{"save-service-task"},
		ProjectStaffConsume:   []string{"save-project-staff"},
		ProductVariantConsume: []string{"save-product-variant"},
	}, logger.New())
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func msg(topic, value string) *consumer.Message {
	return &consumer.Message{Topic: topic, Value: []byte(value)}
}

func (s *RouterSuite) TestHandle() {
	ctx := context.Background()

	s.Run("routes each configured topic", func() {
		s.SetupTest()
		s.Require().NoError(s.router.Handle(ctx, []*consumer.Message{
			msg("save-stock", `{"id":"stock-1","tenantId":"mz"}`),
		}))
		s.Require().NoError(s.router.Handle(ctx, []*consumer.Message{
			msg("update-stock", `{"id":"stock-2","tenantId":"mz"}`),
		}))
		s.Require().NoError(s.router.Handle(ctx, []*consumer.Message{
			msg("save-project-staff", `{"id":"staff-1"}`),
		}))

		s.Len(s.pipeline.stock, 2)
		s.Len(s.pipeline.staff, 1)
		s.Equal("stock-2", s.pipeline.stock[1].ID)
	})

	s.Run("an unknown topic is skipped without error", func() {
		s.SetupTest()
		s.Require().NoError(s.router.Handle(ctx, []*consumer.Message{
			msg("mystery-topic", `{"id":"x"}`),
		}))
		s.Empty(s.pipeline.stock)
	})

	s.Run("an empty batch is a no-op", func() {
		s.SetupTest()
		s.Require().NoError(s.router.Handle(ctx, nil))
	})

	s.Run("pipeline failure propagates so the batch stays uncommitted", func() {
		s.SetupTest()
		s.pipeline.err = errors.New("publish failed")
		err := s.router.Handle(ctx, []*consumer.Message{
			msg("save-stock", `{"id":"stock-1"}`),
		})
		s.Require().Error(err)
	})
}

func (s *RouterSuite) TestDecoding() {
	ctx := context.Background()

	s.Run("accepts a bare event object", func() {
		s.SetupTest()
		s.Require().NoError(s.router.Handle(ctx, []*consumer.Message{
			msg("save-stock", `{"id":"stock-1","quantity":40}`),
		}))
		s.Require().Len(s.pipeline.stock, 1)
		s.Equal(int64(40), s.pipeline.stock[0].Quantity)
	})

	s.Run("accepts an array of events", func() {
		s.SetupTest()
		s.Require().NoError(s.router.Handle(ctx, []*consumer.Message{
			msg("save-stock", `[{"id":"stock-1"},{"id":"stock-2"}]`),
		}))
		s.Len(s.pipeline.stock, 2)
	})

	s.Run("accepts an enveloped single event", func() {
		s.SetupTest()
		s.Require().NoError(s.router.Handle(ctx, []*consumer.Message{
			msg("save-service-task", `{"ServiceTask":{"id":"svc-1","serviceDefId":"def-1"}}`),
		}))
		s.Require().Len(s.pipeline.tasks, 1)
		s.Equal("def-1", s.pipeline.tasks[0].ServiceDefID)
	})

	s.Run("accepts an enveloped event array", func() {
		s.SetupTest()
		s.Require().NoError(s.router.Handle(ctx, []*consumer.Message{
			msg("save-stock", `{"Stock":[{"id":"stock-1"},{"id":"stock-2"},{"id":"stock-3"}]}`),
		}))
		s.Len(s.pipeline.stock, 3)
	})

	s.Run("drops undecodable payloads and keeps the rest", func() {
		s.SetupTest()
		s.Require().NoError(s.router.Handle(ctx, []*consumer.Message{
			msg("save-stock", `not json at all`),
			msg("save-stock", `{"id":"stock-ok"}`),
		}))
		s.Require().Len(s.pipeline.stock, 1)
		s.Equal("stock-ok", s.pipeline.stock[0].ID)
	})
}
