package queue

import (
	"fmt"
	"strings"

	"relay/internal/domain"
)

// FanoutJob is the broker payload telling a worker to run a delivery attempt
// round for one voice message.
type FanoutJob struct {
	MessageID     string          `json:"messageId"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Priority      domain.Priority `json:"priority"`
}

func (j FanoutJob) Validate() error {
	if strings.TrimSpace(j.MessageID) == "" {
		return fmt.Errorf("messageId is required")
	}
	if !j.Priority.IsValid() {
		return fmt.Errorf("invalid priority %q", j.Priority)
	}
	return nil
}
