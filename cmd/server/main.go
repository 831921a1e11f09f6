// Command server runs the manifest submission service: document intake,
// validation, BorderConnect submission, and the per-user workflow API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"borderlink/internal/events"
	"borderlink/internal/gateway/borderconnect"
	"borderlink/internal/intake"
	"borderlink/internal/manifest/handler"
	"borderlink/internal/manifest/service"
	"borderlink/internal/manifest/store"
	"borderlink/internal/manifest/wire"
	"borderlink/internal/platform/config"
	"borderlink/internal/platform/httpserver"
	"borderlink/internal/platform/logger"
	"borderlink/internal/platform/metrics"
	"borderlink/internal/platform/middleware"
	"borderlink/internal/platform/redis"
	"borderlink/internal/workflow"
)

func main() {
	if err := run(); err != nil {
		logger.New().Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manifestStore, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	var drafts workflow.DraftStore
	var health handler.HealthFunc
	if redisClient != nil {
		defer redisClient.Close()
		drafts = workflow.NewRedisDraftStore(redisClient, cfg.Redis.DraftTTL)
		health = redisClient.Health
		log.Info("draft checkpointing enabled", "backend", "redis")
	} else {
		drafts = workflow.NewMemoryDraftStore()
		log.Info("draft checkpointing enabled", "backend", "memory")
	}

	publisher, closeEvents, err := buildEvents(cfg, log)
	if err != nil {
		return err
	}
	defer closeEvents()

	gateway := borderconnect.NewClient(cfg.BorderConnect.BaseURL, cfg.BorderConnect.APIKey, cfg.BorderConnect.Timeout, log)
	intakeClient := intake.NewClient(cfg.IntakeBaseURL, cfg.IntakeTimeout, log, intake.WithMetrics(m))
	formatter := wire.NewFormatter(cfg.BorderConnect.CompanyKey)

	svc := service.New(manifestStore, gateway, formatter,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithEvents(publisher),
	)
	sessions := workflow.NewManager(intakeClient, svc, drafts, log)

	h := handler.New(sessions, svc, log, cfg.WebhookKey)
	router := handler.NewRouter(h, middleware.NewHMACValidator(cfg.JWTSigningKey), m, log, health)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildStore picks Postgres when a DSN is configured, memory otherwise.
func buildStore(ctx context.Context, cfg config.Server) (service.ManifestStore, func(), error) {
	if cfg.PostgresDSN == "" {
		return store.NewMemory(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	pg := store.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return pg, func() { _ = db.Close() }, nil
}

// buildEvents picks Kafka when brokers are configured, memory otherwise.
func buildEvents(cfg config.Server, log *slog.Logger) (service.EventPublisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("lifecycle events enabled", "backend", "memory")
		return events.NewMemory(), func() {}, nil
	}

	kafka, err := events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	if err != nil {
		return nil, nil, err
	}
	log.Info("lifecycle events enabled", "backend", "kafka", "topic", cfg.Kafka.Topic)
	return kafka, func() { _ = kafka.Close() }, nil
}
