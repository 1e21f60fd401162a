package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"relay/internal/domain"
	"relay/internal/notifier"
	"relay/internal/observability"
	"relay/internal/ratelimit"
	"relay/internal/repository"
)

const (
	defaultMaxRetries     = 3
	defaultAttemptTimeout = 5 * time.Second

	// attemptRateScope is the rate limiter scope for outbound sends.
	attemptRateScope = "push"
)

// AttemptEngine runs delivery attempt rounds. A round visits every delivery
// of one message that is not yet terminal, records each outcome, and applies
// all mutations plus the recomputed message status as one atomic unit.
// Rounds for the same message are serialized through a per-message lock;
// different messages proceed concurrently.
type AttemptEngine struct {
	messages    repository.VoiceMessageRepository
	deliveries  repository.DeliveryRepository
	contacts    repository.ContactRepository
	transport   notifier.Notifier
	rateLimiter ratelimit.RateLimiter
	auditor     *Auditor
	logger      *zap.Logger
	metrics     *observability.Metrics

	maxRetries     int
	attemptTimeout time.Duration
	locks          keyedMutex
	now            func() time.Time
}

func NewAttemptEngine(
	messages repository.VoiceMessageRepository,
	deliveries repository.DeliveryRepository,
	contacts repository.ContactRepository,
	transport notifier.Notifier,
	rateLimiter ratelimit.RateLimiter,
	auditor *Auditor,
	maxRetries int,
	attemptTimeout time.Duration,
	logger *zap.Logger,
) (*AttemptEngine, error) {
	if messages == nil {
		return nil, fmt.Errorf("voice message repository is required")
	}
	if deliveries == nil {
		return nil, fmt.Errorf("delivery repository is required")
	}
	if contacts == nil {
		return nil, fmt.Errorf("contact repository is required")
	}
	if transport == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AttemptEngine{
		messages:       messages,
		deliveries:     deliveries,
		contacts:       contacts,
		transport:      transport,
		rateLimiter:    rateLimiter,
		auditor:        auditor,
		logger:         logger,
		maxRetries:     maxRetries,
		attemptTimeout: attemptTimeout,
		now:            time.Now,
	}, nil
}

func (e *AttemptEngine) SetMetrics(metrics *observability.Metrics) {
	if e == nil {
		return
	}
	e.metrics = metrics
}

// Attempt runs one attempt round for the message and returns the resulting
// aggregate status. Deliveries already DELIVERED, READ, or FAILED are
// skipped, so repeated rounds converge instead of double-sending.
func (e *AttemptEngine) Attempt(ctx context.Context, messageID string) (domain.MessageStatus, error) {
	unlock := e.locks.lock(messageID)
	defer unlock()

	message, err := e.messages.GetByID(ctx, messageID)
	if err != nil {
		return "", err
	}

	deliveries, err := e.deliveries.ListByMessage(ctx, messageID)
	if err != nil {
		return "", fmt.Errorf("failed to list deliveries: %w", err)
	}

	maxRetries := message.MaxRetries
	if maxRetries <= 0 {
		maxRetries = e.maxRetries
	}

	updates := make([]repository.AttemptUpdate, 0, len(deliveries))
	attempted := 0
	failed := 0

	for i := range deliveries {
		delivery := deliveries[i]
		if delivery.Status.AttemptTerminal() || delivery.Status == domain.DeliveryFailed {
			continue
		}

		attempted++
		update, sendErr := e.attemptOne(ctx, *message, delivery, maxRetries)
		if sendErr != nil {
			failed++
		}
		updates = append(updates, update)
	}

	rollup, err := e.deliveries.ApplyAttemptRound(ctx, messageID, updates)
	if err != nil {
		return "", fmt.Errorf("failed to apply attempt round: %w", err)
	}

	if rollup != message.Status {
		e.logger.Info("message status changed",
			zap.String("messageId", messageID),
			zap.String("from", message.Status.String()),
			zap.String("to", rollup.String()),
		)
	}

	if e.auditor != nil {
		e.auditor.Record(ctx, domain.AuditDeliveryAttempted,
			fmt.Sprintf("message=%s status=%s attempted=%d failed=%d", messageID, rollup, attempted, failed))
	}

	return rollup, nil
}

// attemptOne sends to a single recipient and computes the delivery mutation.
// The returned error reports a failed send; it never aborts the round.
func (e *AttemptEngine) attemptOne(
	ctx context.Context,
	message domain.VoiceMessage,
	delivery domain.Delivery,
	maxRetries int,
) (repository.AttemptUpdate, error) {
	if e.metrics != nil {
		e.metrics.IncAttemptInflight()
		defer e.metrics.DecAttemptInflight()
	}

	sendErr := e.send(ctx, message, delivery)
	if sendErr == nil {
		if e.metrics != nil {
			e.metrics.IncDelivered()
		}
		return repository.AttemptUpdate{
			DeliveryID: delivery.ID,
			Status:     domain.DeliveryDelivered,
			Retries:    delivery.Retries,
			LastError:  "",
		}, nil
	}

	retries := delivery.Retries + 1
	status := domain.DeliveryPending
	if retries >= maxRetries {
		status = domain.DeliveryFailed
		if e.metrics != nil {
			reason := "retry_exhausted"
			if !notifier.IsTransient(sendErr) {
				reason = "permanent_error"
			}
			e.metrics.IncDeliveryFailed(reason)
		}
	}

	e.logger.Warn("delivery attempt failed",
		zap.String("messageId", message.ID),
		zap.String("deliveryId", delivery.ID),
		zap.Int("retries", retries),
		zap.String("status", status.String()),
		zap.Error(sendErr),
	)

	return repository.AttemptUpdate{
		DeliveryID: delivery.ID,
		Status:     status,
		Retries:    retries,
		LastError:  sendErr.Error(),
	}, sendErr
}

func (e *AttemptEngine) send(ctx context.Context, message domain.VoiceMessage, delivery domain.Delivery) error {
	if e.rateLimiter != nil {
		if err := e.rateLimiter.Wait(ctx, attemptRateScope); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	recipient, err := e.contacts.GetByID(ctx, delivery.RecipientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("recipient %s no longer exists", delivery.RecipientID)
		}
		return fmt.Errorf("failed to load recipient: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()

	start := e.now()
	sendErr := e.transport.Send(sendCtx, *recipient, message)
	if e.metrics != nil {
		e.metrics.ObserveAttemptDuration(e.now().Sub(start))
	}

	return sendErr
}

// keyedMutex serializes attempt rounds per message id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*lockEntry)
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
