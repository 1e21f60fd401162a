package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"relay/internal/auth"
	"relay/internal/config"
	"relay/internal/handler"
	"relay/internal/infra/postgresql"
	"relay/internal/infra/postgresql/migrations"
	infraredis "relay/internal/infra/redis"
	"relay/internal/observability"
	"relay/internal/queue"
	"relay/internal/repository"
	"relay/internal/service"
	"relay/internal/storage"
	"relay/internal/stt"
	"relay/internal/transport"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel, "relay-api")
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
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

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer rabbit.Close()

	publisher := queue.NewRabbitMQPublisher(rabbit)

	store, err := storage.NewMinioStore(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioBucket,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Fatal("object storage initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	contactRepo := repository.NewGormContactRepo(db)
	groupRepo := repository.NewGormGroupRepo(db)
	voiceRepo := repository.NewGormVoiceMessageRepo(db)
	deliveryRepo := repository.NewGormDeliveryRepo(db)
	auditRepo := repository.NewGormAuditRepo(db)
	boardRepo := repository.NewGormBoardMessageRepo(db)
	replyRepo := repository.NewGormReplyRepo(db)
	templateRepo := repository.NewGormTemplateRepo(db)

	auditor := service.NewAuditor(auditRepo, logger)

	resolver, err := service.NewResolver(contactRepo)
	if err != nil {
		logger.Fatal("resolver initialization failed", zap.Error(err))
	}

	ledger, err := service.NewLedger(deliveryRepo, auditor, logger)
	if err != nil {
		logger.Fatal("ledger initialization failed", zap.Error(err))
	}
	ledger.SetMetrics(metrics)

	voiceService, err := service.NewVoiceMessageService(
		voiceRepo,
		resolver,
		ledger,
		stt.NewStubTranscriber(),
		publisher,
		cfg.MaxRetries,
		logger,
	)
	if err != nil {
		logger.Fatal("voice message service initialization failed", zap.Error(err))
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

	boardService, err := service.NewBoardService(boardRepo, replyRepo, templateRepo, logger)
	if err != nil {
		logger.Fatal("board service initialization failed", zap.Error(err))
	}

	statsService, err := service.NewStatsService(boardRepo, logger)
	if err != nil {
		logger.Fatal("stats service initialization failed", zap.Error(err))
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	if err != nil {
		logger.Fatal("token service initialization failed", zap.Error(err))
	}

	verifier, err := auth.NewAccountVerifier(contactRepo)
	if err != nil {
		logger.Fatal("account verifier initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	v1 := app.Group("/v1")
	handler.RegisterEmergencyRoute(v1)
	if err := handler.RegisterAuthRoutes(v1, verifier, tokens); err != nil {
		logger.Fatal("auth route registration failed", zap.Error(err))
	}

	protected := v1.Group("", auth.Middleware(tokens))
	if err := handler.RegisterVoiceMessageRoutes(protected, voiceService, sweeper, auditor, store); err != nil {
		logger.Fatal("voice message route registration failed", zap.Error(err))
	}
	if err := handler.RegisterBoardRoutes(protected, boardService, statsService); err != nil {
		logger.Fatal("board route registration failed", zap.Error(err))
	}
	if err := handler.RegisterContactRoutes(protected, contactRepo, groupRepo); err != nil {
		logger.Fatal("contact route registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("relay api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			logger.Error("api listener stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down api")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("api shutdown failed", zap.Error(err))
	}
}
