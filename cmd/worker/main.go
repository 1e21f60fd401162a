package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"relay/internal/config"
	"relay/internal/infra/postgresql"
	infraredis "relay/internal/infra/redis"
	"relay/internal/notifier"
	"relay/internal/observability"
	"relay/internal/queue"
	"relay/internal/repository"
	"relay/internal/service"
)

const metricsPort = 9090

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel, "relay-worker")
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	rateLimiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer rabbit.Close()

	publisher := queue.NewRabbitMQPublisher(rabbit)
	consumer := queue.NewRabbitMQConsumer(rabbit, cfg.WorkerConcurrency, logger)

	push, err := notifier.NewPushNotifier(
		cfg.NotifyEndpointURL,
		time.Duration(cfg.NotifyTimeoutSec)*time.Second,
	)
	if err != nil {
		logger.Fatal("push notifier initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	contactRepo := repository.NewGormContactRepo(db)
	voiceRepo := repository.NewGormVoiceMessageRepo(db)
	deliveryRepo := repository.NewGormDeliveryRepo(db)
	auditRepo := repository.NewGormAuditRepo(db)

	auditor := service.NewAuditor(auditRepo, logger)

	engine, err := service.NewAttemptEngine(
		voiceRepo,
		deliveryRepo,
		contactRepo,
		push,
		rateLimiter,
		auditor,
		cfg.MaxRetries,
		time.Duration(cfg.NotifyTimeoutSec)*time.Second,
		logger,
	)
	if err != nil {
		logger.Fatal("attempt engine initialization failed", zap.Error(err))
	}
	engine.SetMetrics(metrics)

	worker, err := service.NewWorker(engine, consumer, cfg.WorkerConcurrency, logger)
	if err != nil {
		logger.Fatal("worker initialization failed", zap.Error(err))
	}

	sweeper, err := service.NewSweeper(
		voiceRepo,
		publisher,
		auditor,
		time.Duration(cfg.SweepIntervalSec)*time.Second,
		logger,
	)
	if err != nil {
		logger.Fatal("sweeper initialization failed", zap.Error(err))
	}
	sweeper.SetMetrics(metrics)

	scanner, err := service.NewRetryScanner(voiceRepo, publisher, 0, 0, logger)
	if err != nil {
		logger.Fatal("retry scanner initialization failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", metricsPort),
		Handler: metrics.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Start(gctx)
	})
	g.Go(func() error {
		return sweeper.Start(gctx)
	})
	g.Go(func() error {
		return scanner.Start(gctx)
	})
	g.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	logger.Info("relay worker started",
		zap.Int("concurrency", cfg.WorkerConcurrency),
		zap.Int("sweepIntervalSec", cfg.SweepIntervalSec),
	)

	if err := g.Wait(); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
	logger.Info("worker shut down cleanly")
}
