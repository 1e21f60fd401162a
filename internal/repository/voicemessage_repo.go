package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"relay/internal/domain"
)

type VoiceMessageRepository interface {
	Create(ctx context.Context, m *domain.VoiceMessage) error
	GetByID(ctx context.Context, id string) (*domain.VoiceMessage, error)
	ListRecent(ctx context.Context, limit int) ([]domain.VoiceMessage, error)
	ListQueued(ctx context.Context) ([]domain.VoiceMessage, error)
	// ListAwaitingRetry returns SENT messages that still carry PENDING
	// deliveries, oldest first.
	ListAwaitingRetry(ctx context.Context, limit int) ([]domain.VoiceMessage, error)
	SetTranscription(ctx context.Context, id string, text string, confidence float64, status domain.TranscriptionStatus) error
	MarkTranscriptionFailed(ctx context.Context, id string, status domain.TranscriptionStatus) error
}

type GormVoiceMessageRepo struct {
	db *gorm.DB
}

func NewGormVoiceMessageRepo(db *gorm.DB) *GormVoiceMessageRepo {
	return &GormVoiceMessageRepo{db: db}
}

func (r *GormVoiceMessageRepo) Create(ctx context.Context, m *domain.VoiceMessage) error {
	model := voiceMessageModelFromDomain(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if m != nil {
		*m = *voiceMessageModelToDomain(model)
	}
	return nil
}

func (r *GormVoiceMessageRepo) GetByID(ctx context.Context, id string) (*domain.VoiceMessage, error) {
	var model VoiceMessageModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return voiceMessageModelToDomain(&model), nil
}

func (r *GormVoiceMessageRepo) ListRecent(ctx context.Context, limit int) ([]domain.VoiceMessage, error) {
	if limit < 1 {
		limit = 20
	}

	var models []VoiceMessageModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	messages := make([]domain.VoiceMessage, 0, len(models))
	for i := range models {
		messages = append(messages, *voiceMessageModelToDomain(&models[i]))
	}
	return messages, nil
}

func (r *GormVoiceMessageRepo) ListQueued(ctx context.Context) ([]domain.VoiceMessage, error) {
	var models []VoiceMessageModel
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.MessageStatusQueued).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	messages := make([]domain.VoiceMessage, 0, len(models))
	for i := range models {
		messages = append(messages, *voiceMessageModelToDomain(&models[i]))
	}
	return messages, nil
}

func (r *GormVoiceMessageRepo) ListAwaitingRetry(ctx context.Context, limit int) ([]domain.VoiceMessage, error) {
	if limit < 1 {
		limit = 100
	}

	var models []VoiceMessageModel
	err := r.db.WithContext(ctx).
		Distinct("voice_messages.*").
		Joins("JOIN deliveries ON deliveries.message_id = voice_messages.id").
		Where("voice_messages.status = ?", domain.MessageStatusSent).
		Where("deliveries.status = ?", domain.DeliveryPending).
		Order("voice_messages.created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	messages := make([]domain.VoiceMessage, 0, len(models))
	for i := range models {
		messages = append(messages, *voiceMessageModelToDomain(&models[i]))
	}
	return messages, nil
}

func (r *GormVoiceMessageRepo) SetTranscription(ctx context.Context, id string, text string, confidence float64, status domain.TranscriptionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&VoiceMessageModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"transcript":     text,
			"stt_confidence": confidence,
			"stt_status":     status,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormVoiceMessageRepo) MarkTranscriptionFailed(ctx context.Context, id string, status domain.TranscriptionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&VoiceMessageModel{}).
		Where("id = ?", id).
		Update("stt_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
