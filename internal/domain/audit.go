package domain

import "time"

// Audit event names recorded by the relay core.
const (
	AuditDeliveryCreated   = "DELIVERY_CREATED"
	AuditDeliveryAttempted = "DELIVERY_ATTEMPTED"
	AuditSweepCompleted    = "SWEEP_COMPLETED"
)

// AuditLog is an append-only record of fan-out and attempt events.
type AuditLog struct {
	ID        string
	Event     string
	Details   string
	CreatedAt time.Time
}
