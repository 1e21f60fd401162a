package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"relay/internal/domain"
	"relay/internal/observability"
	"relay/internal/queue"
	"relay/internal/repository"
	"relay/internal/stt"
)

const defaultListLimit = 50

// CreateVoiceMessageInput carries a sender's broadcast request.
type CreateVoiceMessageInput struct {
	SenderName   string
	SenderRole   domain.Role
	TargetGroup  domain.TargetGroup
	AudioURL     string
	Priority     domain.Priority
	ScheduledFor *time.Time
}

// VoiceMessageService creates broadcasts, runs the transcription step, fans
// deliveries out through the ledger, and enqueues due messages for attempts.
type VoiceMessageService struct {
	messages    repository.VoiceMessageRepository
	resolver    *Resolver
	ledger      *Ledger
	transcriber stt.Transcriber
	publisher   queue.Publisher
	logger      *zap.Logger
	maxRetries  int
	now         func() time.Time
}

func NewVoiceMessageService(
	messages repository.VoiceMessageRepository,
	resolver *Resolver,
	ledger *Ledger,
	transcriber stt.Transcriber,
	publisher queue.Publisher,
	maxRetries int,
	logger *zap.Logger,
) (*VoiceMessageService, error) {
	if messages == nil {
		return nil, fmt.Errorf("voice message repository is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &VoiceMessageService{
		messages:    messages,
		resolver:    resolver,
		ledger:      ledger,
		transcriber: transcriber,
		publisher:   publisher,
		logger:      logger,
		maxRetries:  maxRetries,
		now:         time.Now,
	}, nil
}

// Create accepts a broadcast, fans it out, and enqueues it when due. The
// message enters QUEUED immediately; delivery progress is observable only by
// later polling.
func (s *VoiceMessageService) Create(ctx context.Context, input CreateVoiceMessageInput) (*domain.VoiceMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	message := &domain.VoiceMessage{
		ID:           uuid.NewString(),
		SenderName:   strings.TrimSpace(input.SenderName),
		SenderRole:   input.SenderRole,
		TargetGroup:  input.TargetGroup,
		AudioURL:     strings.TrimSpace(input.AudioURL),
		STTStatus:    domain.TranscriptionPending,
		Priority:     priority,
		ScheduledFor: input.ScheduledFor,
		Status:       domain.MessageStatusQueued,
		MaxRetries:   s.maxRetries,
	}
	if err := message.Validate(); err != nil {
		return nil, err
	}

	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create voice message: %w", err)
	}

	s.transcribe(ctx, message)

	recipients, err := s.resolver.Resolve(ctx, message.TargetGroup)
	if err != nil {
		return nil, err
	}

	created, err := s.ledger.FanOut(ctx, message.ID, recipients)
	if err != nil {
		return nil, err
	}
	s.logger.Info("voice message fanned out",
		zap.String("messageId", message.ID),
		zap.Int("recipients", len(recipients)),
		zap.Int("created", created),
	)

	if IsDue(message, s.now()) {
		correlationID, ok := observability.CorrelationIDFromContext(ctx)
		if !ok {
			correlationID = uuid.NewString()
		}
		job := queue.FanoutJob{
			MessageID:     message.ID,
			CorrelationID: correlationID,
			Priority:      message.Priority,
		}
		// Publish failure is non-fatal: the message stays QUEUED and the
		// next sweep re-enqueues it.
		if err := s.publisher.Publish(ctx, queue.FanoutQueueName, job); err != nil {
			s.logger.Warn("failed to enqueue attempt round, deferring to sweep",
				zap.String("messageId", message.ID),
				zap.Error(err),
			)
		}
	}

	return message, nil
}

// transcribe runs the speech-to-text step. Unavailability is non-fatal: the
// message keeps its placeholder PENDING transcription state.
func (s *VoiceMessageService) transcribe(ctx context.Context, message *domain.VoiceMessage) {
	if s.transcriber == nil || message.AudioURL == "" {
		return
	}

	result, err := s.transcriber.Transcribe(ctx, message.AudioURL)
	if err != nil {
		s.logger.Warn("transcription unavailable, leaving message pending review",
			zap.String("messageId", message.ID),
			zap.Error(err),
		)
		if markErr := s.messages.MarkTranscriptionFailed(ctx, message.ID, domain.TranscriptionPending); markErr != nil {
			s.logger.Warn("failed to record transcription state",
				zap.String("messageId", message.ID),
				zap.Error(markErr),
			)
		}
		return
	}

	if err := s.messages.SetTranscription(ctx, message.ID, result.Text, result.Confidence, domain.TranscriptionCompleted); err != nil {
		s.logger.Warn("failed to store transcription",
			zap.String("messageId", message.ID),
			zap.Error(err),
		)
		return
	}

	message.Transcript = &result.Text
	message.STTConfidence = &result.Confidence
	message.STTStatus = domain.TranscriptionCompleted
}

func (s *VoiceMessageService) GetByID(ctx context.Context, id string) (*domain.VoiceMessage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: message id is required", domain.ErrValidation)
	}
	return s.messages.GetByID(ctx, strings.TrimSpace(id))
}

func (s *VoiceMessageService) ListRecent(ctx context.Context, limit int) ([]domain.VoiceMessage, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.messages.ListRecent(ctx, limit)
}

func (s *VoiceMessageService) Deliveries(ctx context.Context, messageID string) ([]domain.Delivery, error) {
	return s.ledger.Deliveries(ctx, messageID)
}

func (s *VoiceMessageService) Acknowledge(ctx context.Context, deliveryID string) error {
	return s.ledger.Acknowledge(ctx, deliveryID)
}
