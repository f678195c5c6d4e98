package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"enricher/internal/boundary"
	"enricher/internal/cache"
	"enricher/internal/consume"
	"enricher/internal/platform/config"
	"enricher/internal/platform/httpserver"
	"enricher/internal/platform/kafka/consumer"
	"enricher/internal/platform/kafka/producer"
	"enricher/internal/platform/logger"
	"enricher/internal/platform/metrics"
	redisplatform "enricher/internal/platform/redis"
	"enricher/internal/publish"
	"enricher/internal/registry"
	"enricher/internal/transform"
)

// main wires the pipeline: consumers feed the router, the router feeds the
// orchestrator, the orchestrator publishes through the producer. Business
// logic lives in the internal packages; this file only assembles them.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("enricher exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	m := metrics.New()

	var store cache.Store = cache.NewMemory()
	rdb, err := redisplatform.New(cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		store = cache.NewRedis(rdb.Client)
		log.Info("using shared redis cache tier")
	} else {
		log.Info("redis not configured, using in-memory cache tier")
	}

	auth := registry.NewTokenSource(cfg.AuthSigningKey)
	sc := registry.NewServiceClient(cfg.Registries.Timeout, auth, log)
	projects := registry.NewProjectClient(sc, store, cfg.Registries, cfg.Cache.Entity)
	facilities := registry.NewFacilityClient(sc, store, cfg.Registries, cfg.Cache.Entity)
	users := registry.NewUserClient(sc, store, cfg.Registries, cfg.Cache.Entity)
	products := registry.NewProductClient(sc, store, cfg.Registries, cfg.Cache.Entity)
	servicedefs := registry.NewServiceDefinitionClient(sc, cfg.Registries)
	boundaries := registry.NewBoundaryClient(sc, cfg.Registries)

	resolver := boundary.NewResolver(boundaries, projects, store, cfg.Registries.HierarchyType, cfg.Cache.Boundary, log)
	descriptors := transform.NewDescriptorCache(servicedefs, store, cfg.Cache.Entity)

	prod, err := producer.New(cfg.Kafka.Brokers)
	if err != nil {
		return err
	}
	defer prod.Close()
	publisher := publish.New(prod, log, publish.WithMetrics(m))

	orch := transform.NewOrchestrator(
		cfg.Pipeline,
		cfg.Kafka.Topics,
		transform.NewStock(projects, facilities, users, products, resolver, log),
		transform.NewServiceTask(projects, users, resolver, descriptors, log),
		transform.NewProjectStaff(projects, users, resolver, log),
		transform.NewProductVariant(products, log),
		publisher,
		log,
		transform.WithMetrics(m),
	)
	router := consume.NewRouter(orch, cfg.Kafka.Topics, log, consume.WithMetrics(m))

	cons, err := consumer.New(cfg.Kafka.Brokers, cfg.Kafka.Group, consumeTopics(cfg.Kafka.Topics), router, log)
	if err != nil {
		return err
	}
	defer cons.Close()

	ops := chi.NewRouter()
	ops.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if rdb != nil {
			if err := rdb.Health(r.Context()); err != nil {
				http.Error(w, "cache tier unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	ops.Handle("/metrics", promhttp.Handler())
	srv := httpserver.New(cfg.Addr, ops)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		log.Info("consumer starting", "group", cfg.Kafka.Group, "brokers", cfg.Kafka.Brokers)
		if err := cons.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	go func() {
		log.Info("ops server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		stop()
		shutdown(srv, log)
		return err
	}

	shutdown(srv, log)
	return nil
}

func shutdown(srv *http.Server, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func consumeTopics(t config.Topics) []string {
	var topics []string
	topics = append(topics, t.StockConsume...)
	topics = append(topics, t.ServiceTaskConsume...)
	topics = append(topics, t.ProjectStaffConsume...)
	topics = append(topics, t.ProductVariantConsume...)
	return topics
}
