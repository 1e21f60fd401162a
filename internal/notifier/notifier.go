package notifier

import (
	"context"

	"relay/internal/domain"
)

// Notifier is the outbound delivery port. The attempt engine only records
// outcomes; the wire transport behind Send is pluggable.
type Notifier interface {
	Send(ctx context.Context, recipient domain.Contact, message domain.VoiceMessage) error
}
