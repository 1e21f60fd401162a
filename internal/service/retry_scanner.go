package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"relay/internal/queue"
	"relay/internal/repository"
)

const (
	defaultRetryScanInterval = 15 * time.Second
	defaultRetryScanLimit    = 100
)

// RetryScanner periodically re-enqueues SENT messages whose deliveries are
// still PENDING, so their retry budget keeps being consumed without an
// operator-triggered round.
type RetryScanner struct {
	messages  repository.VoiceMessageRepository
	publisher queue.Publisher
	logger    *zap.Logger
	interval  time.Duration
	limit     int
}

func NewRetryScanner(
	messages repository.VoiceMessageRepository,
	publisher queue.Publisher,
	interval time.Duration,
	limit int,
	logger *zap.Logger,
) (*RetryScanner, error) {
	if messages == nil {
		return nil, fmt.Errorf("voice message repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if interval <= 0 {
		interval = defaultRetryScanInterval
	}
	if limit <= 0 {
		limit = defaultRetryScanLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RetryScanner{
		messages:  messages,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		limit:     limit,
	}, nil
}

func (s *RetryScanner) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Run an initial scan so already-pending retries do not wait for the
	// first ticker edge.
	if err := s.scanPending(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("retry scanner initial scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.scanPending(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("retry scanner scan failed", zap.Error(err))
			}
		}
	}
}

func (s *RetryScanner) scanPending(ctx context.Context) error {
	awaiting, err := s.messages.ListAwaitingRetry(ctx, s.limit)
	if err != nil {
		return fmt.Errorf("failed to fetch messages awaiting retry: %w", err)
	}

	for i := range awaiting {
		message := awaiting[i]
		job := queue.FanoutJob{
			MessageID:     message.ID,
			CorrelationID: uuid.NewString(),
			Priority:      message.Priority,
		}

		if err := s.publisher.Publish(ctx, queue.FanoutQueueName, job); err != nil {
			s.logger.Error("failed to enqueue retry round",
				zap.String("messageId", message.ID),
				zap.Error(err),
			)
			continue
		}
	}

	return nil
}
