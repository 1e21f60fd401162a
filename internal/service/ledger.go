package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"relay/internal/domain"
	"relay/internal/observability"
	"relay/internal/repository"
)

// Ledger owns all per-recipient delivery state. Fan-out, acknowledgment, and
// aggregate status reads all pass through it.
type Ledger struct {
	deliveries repository.DeliveryRepository
	auditor    *Auditor
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

func NewLedger(deliveries repository.DeliveryRepository, auditor *Auditor, logger *zap.Logger) (*Ledger, error) {
	if deliveries == nil {
		return nil, fmt.Errorf("delivery repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ledger{
		deliveries: deliveries,
		auditor:    auditor,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (l *Ledger) SetMetrics(metrics *observability.Metrics) {
	if l == nil {
		return
	}
	l.metrics = metrics
}

// FanOut ensures one PENDING delivery per recipient and returns the number of
// newly created rows. Re-running for the same message never duplicates rows.
func (l *Ledger) FanOut(ctx context.Context, messageID string, recipients []domain.Contact) (int, error) {
	if strings.TrimSpace(messageID) == "" {
		return 0, fmt.Errorf("%w: message id is required", domain.ErrValidation)
	}

	recipientIDs := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		recipientIDs = append(recipientIDs, recipient.ID)
	}

	created, err := l.deliveries.EnsureDeliveries(ctx, messageID, recipientIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure deliveries: %w", err)
	}

	if l.metrics != nil && created > 0 {
		l.metrics.AddFanoutCreated(created)
	}
	if l.auditor != nil {
		l.auditor.Record(ctx, domain.AuditDeliveryCreated,
			fmt.Sprintf("message=%s recipients=%d created=%d", messageID, len(recipientIDs), created))
	}

	return created, nil
}

func (l *Ledger) Deliveries(ctx context.Context, messageID string) ([]domain.Delivery, error) {
	if strings.TrimSpace(messageID) == "" {
		return nil, fmt.Errorf("%w: message id is required", domain.ErrValidation)
	}
	return l.deliveries.ListByMessage(ctx, messageID)
}

// Acknowledge moves a DELIVERED delivery to READ and stamps the read time.
// Any other current status is rejected with ErrConflict.
func (l *Ledger) Acknowledge(ctx context.Context, deliveryID string) error {
	if strings.TrimSpace(deliveryID) == "" {
		return fmt.Errorf("%w: delivery id is required", domain.ErrValidation)
	}

	if err := l.deliveries.Acknowledge(ctx, deliveryID, l.now().UTC()); err != nil {
		return err
	}

	if l.metrics != nil {
		l.metrics.IncAcknowledged()
	}
	return nil
}

func (l *Ledger) AggregateStatus(ctx context.Context, messageID string) (domain.MessageStatus, error) {
	if strings.TrimSpace(messageID) == "" {
		return "", fmt.Errorf("%w: message id is required", domain.ErrValidation)
	}
	return l.deliveries.AggregateStatus(ctx, messageID)
}
