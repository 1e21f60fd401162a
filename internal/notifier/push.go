package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"relay/internal/domain"
)

const defaultPushTimeout = 5 * time.Second

type pushRequest struct {
	RecipientID string `json:"recipientId"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	MessageID   string `json:"messageId"`
	Text        string `json:"text,omitempty"`
	AudioURL    string `json:"audioUrl,omitempty"`
	Priority    string `json:"priority"`
}

// PushNotifier delivers voice messages to recipients through an HTTP push
// endpoint.
type PushNotifier struct {
	client   *resty.Client
	endpoint string
}

func NewPushNotifier(endpoint string, timeout time.Duration) (*PushNotifier, error) {
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)

	return NewPushNotifierWithClient(endpoint, client)
}

func NewPushNotifierWithClient(endpoint string, client *resty.Client) (*PushNotifier, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("push endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid push endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultPushTimeout)
	}
	client.SetRetryCount(0)

	return &PushNotifier{
		client:   client,
		endpoint: trimmedEndpoint,
	}, nil
}

func (n *PushNotifier) Send(ctx context.Context, recipient domain.Contact, message domain.VoiceMessage) error {
	if n == nil || n.client == nil {
		return fmt.Errorf("notifier is not initialized")
	}

	reqBody := pushRequest{
		RecipientID: recipient.ID,
		Name:        recipient.Name,
		Email:       recipient.Email,
		Phone:       recipient.Phone,
		MessageID:   message.ID,
		AudioURL:    message.AudioURL,
		Priority:    strings.ToLower(message.Priority.String()),
	}
	if message.Transcript != nil {
		reqBody.Text = *message.Transcript
	}

	response, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post(n.endpoint)
	if err != nil {
		return &NotifierError{
			Message:   "push request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return &NotifierError{
			Message:   "push endpoint returned empty response",
			Transient: true,
		}
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	return &NotifierError{
		StatusCode: statusCode,
		Message:    pushErrorMessage(statusCode, strings.TrimSpace(response.String())),
		Transient:  isTransientHTTPStatus(statusCode),
	}
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

func pushErrorMessage(statusCode int, body string) string {
	base := fmt.Sprintf("push endpoint returned status %d", statusCode)
	if body == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, body)
}
