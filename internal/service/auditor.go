package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"relay/internal/domain"
	"relay/internal/repository"
)

// Auditor appends events to the audit trail. Recording is fire-and-forget:
// an unavailable sink is logged locally and never fails the caller.
type Auditor struct {
	audits repository.AuditRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewAuditor(audits repository.AuditRepository, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Auditor{
		audits: audits,
		logger: logger,
		now:    time.Now,
	}
}

func (a *Auditor) Record(ctx context.Context, event, details string) {
	if a == nil || a.audits == nil {
		return
	}

	entry := &domain.AuditLog{
		ID:        uuid.NewString(),
		Event:     event,
		Details:   details,
		CreatedAt: a.now().UTC(),
	}

	if err := a.audits.Create(ctx, entry); err != nil {
		a.logger.Warn("audit record dropped",
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

func (a *Auditor) ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	return a.audits.ListRecent(ctx, limit)
}
