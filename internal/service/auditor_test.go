package service

import (
	"context"
	"errors"
	"testing"

	"relay/internal/domain"
)

func TestAuditorRecord(t *testing.T) {
	t.Parallel()

	var recorded *domain.AuditLog
	audits := &fakeAuditRepo{
		createFn: func(ctx context.Context, entry *domain.AuditLog) error {
			recorded = entry
			return nil
		},
	}

	NewAuditor(audits, nil).Record(context.Background(), domain.AuditDeliveryCreated, "message=m1 created=3")

	if recorded == nil {
		t.Fatal("expected an audit entry")
	}
	if recorded.Event != domain.AuditDeliveryCreated {
		t.Fatalf("event = %s, want DELIVERY_CREATED", recorded.Event)
	}
	if recorded.ID == "" {
		t.Fatal("entry id should be generated")
	}
}

func TestAuditorSwallowsSinkFailure(t *testing.T) {
	t.Parallel()

	audits := &fakeAuditRepo{
		createFn: func(ctx context.Context, entry *domain.AuditLog) error {
			return errors.New("sink unavailable")
		},
	}

	// Must not panic or propagate.
	NewAuditor(audits, nil).Record(context.Background(), domain.AuditDeliveryAttempted, "message=m1")
}
