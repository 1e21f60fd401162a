package domain

import (
	"fmt"
	"strings"
	"time"
)

// DeliveryStatus represents the per-recipient delivery state.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "PENDING"
	DeliverySent      DeliveryStatus = "SENT"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
	DeliveryRead      DeliveryStatus = "READ"
	DeliveryFailed    DeliveryStatus = "FAILED"
)

func (s DeliveryStatus) String() string { return string(s) }

func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryPending, DeliverySent, DeliveryDelivered, DeliveryRead, DeliveryFailed:
		return true
	}
	return false
}

func ParseDeliveryStatusFromString(s string) (DeliveryStatus, error) {
	st := DeliveryStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid delivery status %q", ErrValidation, s)
	}
	return st, nil
}

// deliveryTransitions is the forward-only transition table. A status moves
// only along these edges; everything else is an illegal transition.
var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryPending:   {DeliverySent, DeliveryDelivered, DeliveryFailed, DeliveryPending},
	DeliverySent:      {DeliveryDelivered, DeliveryFailed},
	DeliveryDelivered: {DeliveryRead},
	DeliveryRead:      {},
	DeliveryFailed:    {},
}

// CanTransition reports whether a delivery may move from one status to another.
// PENDING -> PENDING models a failed attempt that still has retry budget.
func (s DeliveryStatus) CanTransition(to DeliveryStatus) bool {
	for _, next := range deliveryTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// AttemptTerminal reports whether the status is excluded from attempt
// processing. FAILED is terminal for automatic retry but not listed here:
// the engine skips it explicitly so the retry counter stays frozen too.
func (s DeliveryStatus) AttemptTerminal() bool {
	return s == DeliveryDelivered || s == DeliveryRead
}

// RollupStatus derives the message-level status from its delivery statuses.
// A single FAILED delivery is sticky and wins over partial success. An empty
// set rolls up to COMPLETED: a fan-out that resolved zero recipients has
// nothing left to deliver, and leaving it QUEUED would re-sweep it forever.
func RollupStatus(statuses []DeliveryStatus) MessageStatus {
	if len(statuses) == 0 {
		return MessageStatusCompleted
	}

	allDone := true
	for _, s := range statuses {
		if s == DeliveryFailed {
			return MessageStatusFailed
		}
		if !s.AttemptTerminal() {
			allDone = false
		}
	}
	if allDone {
		return MessageStatusCompleted
	}
	return MessageStatusSent
}

// Delivery is the unit of per-recipient delivery state. Exactly one row
// exists per (message, recipient) pair.
type Delivery struct {
	ID          string
	MessageID   string
	RecipientID string
	Status      DeliveryStatus
	Retries     int
	LastError   string
	ReadAt      *time.Time
	UpdatedAt   time.Time
	CreatedAt   time.Time
}
