package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"relay/internal/domain"
	"relay/internal/observability"
	"relay/internal/queue"
	"relay/internal/repository"
)

const defaultSweepInterval = 30 * time.Second

// IsDue reports whether a message is eligible for an attempt round. A
// message with no schedule is always due; a scheduled one becomes due the
// moment the clock reaches the timestamp.
func IsDue(message *domain.VoiceMessage, now time.Time) bool {
	if message == nil {
		return false
	}
	if message.ScheduledFor == nil {
		return true
	}
	return !message.ScheduledFor.After(now)
}

// Sweeper re-enqueues due QUEUED messages for attempt rounds. It can run on
// an internal ticker or be triggered on demand.
type Sweeper struct {
	messages  repository.VoiceMessageRepository
	publisher queue.Publisher
	auditor   *Auditor
	logger    *zap.Logger
	metrics   *observability.Metrics
	interval  time.Duration
	now       func() time.Time
}

func NewSweeper(
	messages repository.VoiceMessageRepository,
	publisher queue.Publisher,
	auditor *Auditor,
	interval time.Duration,
	logger *zap.Logger,
) (*Sweeper, error) {
	if messages == nil {
		return nil, fmt.Errorf("voice message repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sweeper{
		messages:  messages,
		publisher: publisher,
		auditor:   auditor,
		logger:    logger,
		interval:  interval,
		now:       time.Now,
	}, nil
}

func (s *Sweeper) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Start runs periodic sweeps until context cancellation.
func (s *Sweeper) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("initial sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep enqueues an attempt round for every due QUEUED message and returns
// the number of messages processed. Not-yet-due messages stay untouched and
// are reconsidered on the next sweep.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	queued, err := s.messages.ListQueued(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list queued messages: %w", err)
	}

	now := s.now()
	processed := 0
	for i := range queued {
		message := queued[i]
		if !IsDue(&message, now) {
			continue
		}

		job := queue.FanoutJob{
			MessageID:     message.ID,
			CorrelationID: uuid.NewString(),
			Priority:      message.Priority,
		}
		if err := s.publisher.Publish(ctx, queue.FanoutQueueName, job); err != nil {
			s.logger.Error("failed to enqueue due message",
				zap.String("messageId", message.ID),
				zap.Error(err),
			)
			continue
		}
		processed++
	}

	if s.metrics != nil && processed > 0 {
		s.metrics.AddSweepProcessed(processed)
	}
	if s.auditor != nil && processed > 0 {
		s.auditor.Record(ctx, domain.AuditSweepCompleted,
			fmt.Sprintf("queued=%d processed=%d", len(queued), processed))
	}

	return processed, nil
}
