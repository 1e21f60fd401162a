package domain

import (
	"fmt"
	"strings"
	"time"
)

// MessageStatus represents the aggregate lifecycle state of a voice message.
type MessageStatus string

const (
	MessageStatusQueued    MessageStatus = "QUEUED"
	MessageStatusSent      MessageStatus = "SENT"
	MessageStatusCompleted MessageStatus = "COMPLETED"
	MessageStatusFailed    MessageStatus = "FAILED"
)

func (s MessageStatus) String() string { return string(s) }

func (s MessageStatus) IsValid() bool {
	switch s {
	case MessageStatusQueued, MessageStatusSent, MessageStatusCompleted, MessageStatusFailed:
		return true
	}
	return false
}

func ParseMessageStatusFromString(s string) (MessageStatus, error) {
	st := MessageStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid message status %q", ErrValidation, s)
	}
	return st, nil
}

// TargetGroup selects the audience of a voice message.
type TargetGroup string

const (
	TargetGroupHOD   TargetGroup = "HOD"
	TargetGroupStaff TargetGroup = "STAFF"
	TargetGroupBoth  TargetGroup = "BOTH"
)

func (t TargetGroup) String() string { return string(t) }

func (t TargetGroup) IsValid() bool {
	switch t {
	case TargetGroupHOD, TargetGroupStaff, TargetGroupBoth:
		return true
	}
	return false
}

func ParseTargetGroupFromString(s string) (TargetGroup, error) {
	tg := TargetGroup(strings.ToUpper(strings.TrimSpace(s)))
	if !tg.IsValid() {
		return "", fmt.Errorf("%w: invalid target group %q", ErrValidation, s)
	}
	return tg, nil
}

// GroupNames expands the selector into concrete group names. BOTH expands
// to the HOD and STAFF groups.
func (t TargetGroup) GroupNames() []string {
	switch t {
	case TargetGroupHOD:
		return []string{string(TargetGroupHOD)}
	case TargetGroupStaff:
		return []string{string(TargetGroupStaff)}
	case TargetGroupBoth:
		return []string{string(TargetGroupHOD), string(TargetGroupStaff)}
	}
	return nil
}

// Priority represents the message priority level.
type Priority string

const (
	PriorityNormal Priority = "NORMAL"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) String() string { return string(p) }

func (p Priority) IsValid() bool {
	switch p {
	case PriorityNormal, PriorityUrgent:
		return true
	}
	return false
}

func ParsePriorityFromString(s string) (Priority, error) {
	pr := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if !pr.IsValid() {
		return "", fmt.Errorf("%w: invalid priority %q", ErrValidation, s)
	}
	return pr, nil
}

// TranscriptionStatus tracks the speech-to-text step of a voice message.
type TranscriptionStatus string

const (
	TranscriptionPending   TranscriptionStatus = "PENDING"
	TranscriptionCompleted TranscriptionStatus = "COMPLETED"
	TranscriptionFailed    TranscriptionStatus = "FAILED"
)

func (s TranscriptionStatus) IsValid() bool {
	switch s {
	case TranscriptionPending, TranscriptionCompleted, TranscriptionFailed:
		return true
	}
	return false
}

// VoiceMessage is a broadcast unit fanned out to per-recipient deliveries.
// Status is QUEUED until the first attempt round; afterwards it is derived
// from the deliveries via RollupStatus.
type VoiceMessage struct {
	ID            string
	SenderName    string
	SenderRole    Role
	TargetGroup   TargetGroup
	AudioURL      string
	Transcript    *string
	STTConfidence *float64
	STTStatus     TranscriptionStatus
	Priority      Priority
	ScheduledFor  *time.Time
	Status        MessageStatus
	MaxRetries    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (m *VoiceMessage) Validate() error {
	if strings.TrimSpace(m.SenderName) == "" {
		return fmt.Errorf("%w: sender name is required", ErrValidation)
	}
	if !m.SenderRole.IsValid() {
		return fmt.Errorf("%w: invalid sender role %q", ErrValidation, m.SenderRole)
	}
	if !m.TargetGroup.IsValid() {
		return fmt.Errorf("%w: invalid target group %q", ErrValidation, m.TargetGroup)
	}
	if !m.Priority.IsValid() {
		return fmt.Errorf("%w: invalid priority %q", ErrValidation, m.Priority)
	}
	return nil
}
