package domain

import (
	"fmt"
	"strings"
	"time"
)

// ModerationStatus is the approval state of a board message.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "PENDING"
	ModerationApproved ModerationStatus = "APPROVED"
	ModerationRejected ModerationStatus = "REJECTED"
)

func (s ModerationStatus) String() string { return string(s) }

func (s ModerationStatus) IsValid() bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationRejected:
		return true
	}
	return false
}

// TargetRoleAll addresses a board message to every role.
const TargetRoleAll = "ALL"

// ValidTargetRole reports whether s names a role audience, including ALL.
func ValidTargetRole(s string) bool {
	if s == TargetRoleAll {
		return true
	}
	return Role(s).IsValid()
}

// BoardMessage is a role-targeted text/audio/image post with a flat
// moderation lifecycle. It shares only role-targeted visibility with
// VoiceMessage and has no retry semantics.
type BoardMessage struct {
	ID         string
	Text       string
	AudioURL   *string
	ImageURL   *string
	AuthorID   string
	AuthorName string
	Status     ModerationStatus
	TargetRole string
	CreatedAt  time.Time
}

func (m *BoardMessage) Validate() error {
	if strings.TrimSpace(m.Text) == "" && m.AudioURL == nil && m.ImageURL == nil {
		return fmt.Errorf("%w: message text, audio, or image is required", ErrValidation)
	}
	if !ValidTargetRole(m.TargetRole) {
		return fmt.Errorf("%w: invalid target role %q", ErrValidation, m.TargetRole)
	}
	return nil
}

// ReplyMessage is a staff-side reply to a board message.
type ReplyMessage struct {
	ID         string
	MessageID  string
	SenderID   string
	SenderName string
	Text       string
	CreatedAt  time.Time
}

// MessageTemplate is a reusable broadcast body.
type MessageTemplate struct {
	ID    string
	Title string
	Body  string
}
