package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"relay/internal/domain"
	"relay/internal/observability"
	"relay/internal/queue"
)

const minWorkerConcurrency = 1

// Worker consumes fan-out jobs and drives the Attempt Engine.
type Worker struct {
	engine      *AttemptEngine
	consumer    queue.Consumer
	logger      *zap.Logger
	concurrency int
}

func NewWorker(engine *AttemptEngine, consumer queue.Consumer, concurrency int, logger *zap.Logger) (*Worker, error) {
	if engine == nil {
		return nil, fmt.Errorf("attempt engine is required")
	}
	if consumer == nil {
		return nil, fmt.Errorf("consumer is required")
	}
	if concurrency < minWorkerConcurrency {
		concurrency = minWorkerConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Worker{
		engine:      engine,
		consumer:    consumer,
		logger:      logger,
		concurrency: concurrency,
	}, nil
}

// Start consumes the fan-out queue until context cancellation.
func (w *Worker) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		workerID := i + 1

		g.Go(func() error {
			w.logger.Info("worker started",
				zap.Int("workerId", workerID),
				zap.String("queue", queue.FanoutQueueName),
			)

			err := w.consumer.Consume(groupCtx, queue.FanoutQueueName, w.processJob)
			if err != nil {
				w.logger.Error("worker stopped with error",
					zap.Int("workerId", workerID),
					zap.Error(err),
				)
				return err
			}

			w.logger.Info("worker stopped", zap.Int("workerId", workerID))
			return nil
		})
	}

	return g.Wait()
}

func (w *Worker) processJob(ctx context.Context, job queue.FanoutJob) error {
	if job.CorrelationID != "" {
		ctx = observability.WithCorrelationID(ctx, job.CorrelationID)
	}
	logger := observability.WithContextLogger(w.logger, ctx)

	status, err := w.engine.Attempt(ctx, job.MessageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("message not found for attempt round, skipping",
				zap.String("messageId", job.MessageID),
			)
			return nil
		}
		return err
	}

	logger.Info("attempt round completed",
		zap.String("messageId", job.MessageID),
		zap.String("status", status.String()),
	)
	return nil
}
