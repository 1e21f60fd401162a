package service

import (
	"context"
	"time"

	"relay/internal/domain"
	"relay/internal/queue"
	"relay/internal/repository"
	"relay/internal/stt"
)

type fakeContactRepo struct {
	createFn            func(ctx context.Context, c *domain.Contact) error
	getByIDFn           func(ctx context.Context, id string) (*domain.Contact, error)
	getByAccountIDFn    func(ctx context.Context, accountID string) (*domain.Contact, error)
	listActiveFn        func(ctx context.Context) ([]domain.Contact, error)
	getActiveByGroupsFn func(ctx context.Context, groupNames []string) ([]domain.Contact, error)
}

func (f *fakeContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, c)
}

func (f *fakeContactRepo) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	if f.getByIDFn == nil {
		return &domain.Contact{ID: id, Name: "contact", Role: domain.RoleStaff, Active: true}, nil
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeContactRepo) GetByAccountID(ctx context.Context, accountID string) (*domain.Contact, error) {
	if f.getByAccountIDFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getByAccountIDFn(ctx, accountID)
}

func (f *fakeContactRepo) ListActive(ctx context.Context) ([]domain.Contact, error) {
	if f.listActiveFn == nil {
		return nil, nil
	}
	return f.listActiveFn(ctx)
}

func (f *fakeContactRepo) GetActiveByGroups(ctx context.Context, groupNames []string) ([]domain.Contact, error) {
	if f.getActiveByGroupsFn == nil {
		return nil, nil
	}
	return f.getActiveByGroupsFn(ctx, groupNames)
}

type fakeVoiceMessageRepo struct {
	createFn                  func(ctx context.Context, m *domain.VoiceMessage) error
	getByIDFn                 func(ctx context.Context, id string) (*domain.VoiceMessage, error)
	listRecentFn              func(ctx context.Context, limit int) ([]domain.VoiceMessage, error)
	listQueuedFn              func(ctx context.Context) ([]domain.VoiceMessage, error)
	listAwaitingRetryFn       func(ctx context.Context, limit int) ([]domain.VoiceMessage, error)
	setTranscriptionFn        func(ctx context.Context, id string, text string, confidence float64, status domain.TranscriptionStatus) error
	markTranscriptionFailedFn func(ctx context.Context, id string, status domain.TranscriptionStatus) error
}

func (f *fakeVoiceMessageRepo) Create(ctx context.Context, m *domain.VoiceMessage) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, m)
}

func (f *fakeVoiceMessageRepo) GetByID(ctx context.Context, id string) (*domain.VoiceMessage, error) {
	if f.getByIDFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeVoiceMessageRepo) ListRecent(ctx context.Context, limit int) ([]domain.VoiceMessage, error) {
	if f.listRecentFn == nil {
		return nil, nil
	}
	return f.listRecentFn(ctx, limit)
}

func (f *fakeVoiceMessageRepo) ListQueued(ctx context.Context) ([]domain.VoiceMessage, error) {
	if f.listQueuedFn == nil {
		return nil, nil
	}
	return f.listQueuedFn(ctx)
}

func (f *fakeVoiceMessageRepo) ListAwaitingRetry(ctx context.Context, limit int) ([]domain.VoiceMessage, error) {
	if f.listAwaitingRetryFn == nil {
		return nil, nil
	}
	return f.listAwaitingRetryFn(ctx, limit)
}

func (f *fakeVoiceMessageRepo) SetTranscription(ctx context.Context, id string, text string, confidence float64, status domain.TranscriptionStatus) error {
	if f.setTranscriptionFn == nil {
		return nil
	}
	return f.setTranscriptionFn(ctx, id, text, confidence, status)
}

func (f *fakeVoiceMessageRepo) MarkTranscriptionFailed(ctx context.Context, id string, status domain.TranscriptionStatus) error {
	if f.markTranscriptionFailedFn == nil {
		return nil
	}
	return f.markTranscriptionFailedFn(ctx, id, status)
}

type fakeDeliveryRepo struct {
	ensureDeliveriesFn  func(ctx context.Context, messageID string, recipientIDs []string) (int, error)
	listByMessageFn     func(ctx context.Context, messageID string) ([]domain.Delivery, error)
	applyAttemptRoundFn func(ctx context.Context, messageID string, updates []repository.AttemptUpdate) (domain.MessageStatus, error)
	acknowledgeFn       func(ctx context.Context, deliveryID string, at time.Time) error
	aggregateStatusFn   func(ctx context.Context, messageID string) (domain.MessageStatus, error)
}

func (f *fakeDeliveryRepo) EnsureDeliveries(ctx context.Context, messageID string, recipientIDs []string) (int, error) {
	if f.ensureDeliveriesFn == nil {
		return len(recipientIDs), nil
	}
	return f.ensureDeliveriesFn(ctx, messageID, recipientIDs)
}

func (f *fakeDeliveryRepo) ListByMessage(ctx context.Context, messageID string) ([]domain.Delivery, error) {
	if f.listByMessageFn == nil {
		return nil, nil
	}
	return f.listByMessageFn(ctx, messageID)
}

func (f *fakeDeliveryRepo) ApplyAttemptRound(ctx context.Context, messageID string, updates []repository.AttemptUpdate) (domain.MessageStatus, error) {
	if f.applyAttemptRoundFn == nil {
		return domain.MessageStatusSent, nil
	}
	return f.applyAttemptRoundFn(ctx, messageID, updates)
}

func (f *fakeDeliveryRepo) Acknowledge(ctx context.Context, deliveryID string, at time.Time) error {
	if f.acknowledgeFn == nil {
		return nil
	}
	return f.acknowledgeFn(ctx, deliveryID, at)
}

func (f *fakeDeliveryRepo) AggregateStatus(ctx context.Context, messageID string) (domain.MessageStatus, error) {
	if f.aggregateStatusFn == nil {
		return domain.MessageStatusQueued, nil
	}
	return f.aggregateStatusFn(ctx, messageID)
}

type fakeAuditRepo struct {
	createFn     func(ctx context.Context, entry *domain.AuditLog) error
	listRecentFn func(ctx context.Context, limit int) ([]domain.AuditLog, error)
}

func (f *fakeAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, entry)
}

func (f *fakeAuditRepo) ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if f.listRecentFn == nil {
		return nil, nil
	}
	return f.listRecentFn(ctx, limit)
}

type fakePublisher struct {
	publishFn func(ctx context.Context, queueName string, job queue.FanoutJob) error
}

func (f *fakePublisher) Publish(ctx context.Context, queueName string, job queue.FanoutJob) error {
	if f.publishFn == nil {
		return nil
	}
	return f.publishFn(ctx, queueName, job)
}

func (f *fakePublisher) Close() error { return nil }

type fakeNotifier struct {
	sendFn func(ctx context.Context, recipient domain.Contact, message domain.VoiceMessage) error
}

func (f *fakeNotifier) Send(ctx context.Context, recipient domain.Contact, message domain.VoiceMessage) error {
	if f.sendFn == nil {
		return nil
	}
	return f.sendFn(ctx, recipient, message)
}

type fakeRateLimiter struct {
	allowFn func(ctx context.Context, scope string) (bool, error)
	waitFn  func(ctx context.Context, scope string) error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, scope string) (bool, error) {
	if f.allowFn == nil {
		return true, nil
	}
	return f.allowFn(ctx, scope)
}

func (f *fakeRateLimiter) Wait(ctx context.Context, scope string) error {
	if f.waitFn == nil {
		return nil
	}
	return f.waitFn(ctx, scope)
}

type fakeTranscriber struct {
	transcribeFn func(ctx context.Context, audioURL string) (stt.Result, error)
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioURL string) (stt.Result, error) {
	if f.transcribeFn == nil {
		return stt.Result{Text: "transcribed", Confidence: 0.9}, nil
	}
	return f.transcribeFn(ctx, audioURL)
}

type fakeBoardRepo struct {
	createFn         func(ctx context.Context, m *domain.BoardMessage) error
	getByIDFn        func(ctx context.Context, id string) (*domain.BoardMessage, error)
	listInboxFn      func(ctx context.Context, role string, limit int) ([]domain.BoardMessage, error)
	listPendingFn    func(ctx context.Context) ([]domain.BoardMessage, error)
	setStatusFn      func(ctx context.Context, id string, status domain.ModerationStatus) error
	countAllFn       func(ctx context.Context) (int64, error)
	countSinceFn     func(ctx context.Context, since time.Time) (int64, error)
	countPerAuthorFn func(ctx context.Context) ([]repository.AuthorCount, error)
	countPerDayFn    func(ctx context.Context, since time.Time) ([]repository.DailyCount, error)
}

func (f *fakeBoardRepo) Create(ctx context.Context, m *domain.BoardMessage) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, m)
}

func (f *fakeBoardRepo) GetByID(ctx context.Context, id string) (*domain.BoardMessage, error) {
	if f.getByIDFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeBoardRepo) ListInbox(ctx context.Context, role string, limit int) ([]domain.BoardMessage, error) {
	if f.listInboxFn == nil {
		return nil, nil
	}
	return f.listInboxFn(ctx, role, limit)
}

func (f *fakeBoardRepo) ListPending(ctx context.Context) ([]domain.BoardMessage, error) {
	if f.listPendingFn == nil {
		return nil, nil
	}
	return f.listPendingFn(ctx)
}

func (f *fakeBoardRepo) SetStatus(ctx context.Context, id string, status domain.ModerationStatus) error {
	if f.setStatusFn == nil {
		return nil
	}
	return f.setStatusFn(ctx, id, status)
}

func (f *fakeBoardRepo) CountAll(ctx context.Context) (int64, error) {
	if f.countAllFn == nil {
		return 0, nil
	}
	return f.countAllFn(ctx)
}

func (f *fakeBoardRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	if f.countSinceFn == nil {
		return 0, nil
	}
	return f.countSinceFn(ctx, since)
}

func (f *fakeBoardRepo) CountPerAuthor(ctx context.Context) ([]repository.AuthorCount, error) {
	if f.countPerAuthorFn == nil {
		return nil, nil
	}
	return f.countPerAuthorFn(ctx)
}

func (f *fakeBoardRepo) CountPerDay(ctx context.Context, since time.Time) ([]repository.DailyCount, error) {
	if f.countPerDayFn == nil {
		return nil, nil
	}
	return f.countPerDayFn(ctx, since)
}

type fakeReplyRepo struct {
	createFn        func(ctx context.Context, r *domain.ReplyMessage) error
	listByMessageFn func(ctx context.Context, messageID string) ([]domain.ReplyMessage, error)
}

func (f *fakeReplyRepo) Create(ctx context.Context, r *domain.ReplyMessage) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, r)
}

func (f *fakeReplyRepo) ListByMessage(ctx context.Context, messageID string) ([]domain.ReplyMessage, error) {
	if f.listByMessageFn == nil {
		return nil, nil
	}
	return f.listByMessageFn(ctx, messageID)
}

type fakeTemplateRepo struct {
	listFn func(ctx context.Context) ([]domain.MessageTemplate, error)
}

func (f *fakeTemplateRepo) List(ctx context.Context) ([]domain.MessageTemplate, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx)
}
