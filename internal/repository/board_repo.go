package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"relay/internal/domain"
)

// DailyCount is one day's worth of posted board messages.
type DailyCount struct {
	Day   time.Time `gorm:"column:day"`
	Count int       `gorm:"column:count"`
}

// AuthorCount aggregates posted messages per author.
type AuthorCount struct {
	AuthorName string `gorm:"column:author_name"`
	Count      int    `gorm:"column:count"`
}

type BoardMessageRepository interface {
	Create(ctx context.Context, m *domain.BoardMessage) error
	GetByID(ctx context.Context, id string) (*domain.BoardMessage, error)
	// ListInbox returns approved messages addressed to the role or to ALL,
	// newest first.
	ListInbox(ctx context.Context, role string, limit int) ([]domain.BoardMessage, error)
	ListPending(ctx context.Context) ([]domain.BoardMessage, error)
	SetStatus(ctx context.Context, id string, status domain.ModerationStatus) error
	CountAll(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountPerAuthor(ctx context.Context) ([]AuthorCount, error)
	CountPerDay(ctx context.Context, since time.Time) ([]DailyCount, error)
}

type ReplyRepository interface {
	Create(ctx context.Context, r *domain.ReplyMessage) error
	ListByMessage(ctx context.Context, messageID string) ([]domain.ReplyMessage, error)
}

type TemplateRepository interface {
	List(ctx context.Context) ([]domain.MessageTemplate, error)
}

type GormBoardMessageRepo struct {
	db *gorm.DB
}

func NewGormBoardMessageRepo(db *gorm.DB) *GormBoardMessageRepo {
	return &GormBoardMessageRepo{db: db}
}

func (r *GormBoardMessageRepo) Create(ctx context.Context, m *domain.BoardMessage) error {
	model := boardMessageModelFromDomain(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if m != nil {
		*m = *boardMessageModelToDomain(model)
	}
	return nil
}

func (r *GormBoardMessageRepo) GetByID(ctx context.Context, id string) (*domain.BoardMessage, error) {
	var model BoardMessageModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return boardMessageModelToDomain(&model), nil
}

func (r *GormBoardMessageRepo) ListInbox(ctx context.Context, role string, limit int) ([]domain.BoardMessage, error) {
	if limit < 1 {
		limit = 50
	}

	var models []BoardMessageModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND target_role IN ?", domain.ModerationApproved, []string{role, domain.TargetRoleAll}).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	return boardModelsToDomain(models), nil
}

func (r *GormBoardMessageRepo) ListPending(ctx context.Context) ([]domain.BoardMessage, error) {
	var models []BoardMessageModel
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.ModerationPending).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	return boardModelsToDomain(models), nil
}

func (r *GormBoardMessageRepo) SetStatus(ctx context.Context, id string, status domain.ModerationStatus) error {
	result := r.db.WithContext(ctx).
		Model(&BoardMessageModel{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormBoardMessageRepo) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&BoardMessageModel{}).Count(&total).Error
	return total, err
}

func (r *GormBoardMessageRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&BoardMessageModel{}).
		Where("created_at >= ?", since).
		Count(&total).Error
	return total, err
}

func (r *GormBoardMessageRepo) CountPerAuthor(ctx context.Context) ([]AuthorCount, error) {
	var counts []AuthorCount
	err := r.db.WithContext(ctx).
		Model(&BoardMessageModel{}).
		Select("author_name, COUNT(*) as count").
		Group("author_name").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *GormBoardMessageRepo) CountPerDay(ctx context.Context, since time.Time) ([]DailyCount, error) {
	var counts []DailyCount
	err := r.db.WithContext(ctx).
		Model(&BoardMessageModel{}).
		Select("DATE_TRUNC('day', created_at) as day, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("day").
		Order("day ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func boardModelsToDomain(models []BoardMessageModel) []domain.BoardMessage {
	messages := make([]domain.BoardMessage, 0, len(models))
	for i := range models {
		messages = append(messages, *boardMessageModelToDomain(&models[i]))
	}
	return messages
}

type GormReplyRepo struct {
	db *gorm.DB
}

func NewGormReplyRepo(db *gorm.DB) *GormReplyRepo {
	return &GormReplyRepo{db: db}
}

func (r *GormReplyRepo) Create(ctx context.Context, reply *domain.ReplyMessage) error {
	model := &ReplyMessageModel{
		ID:         reply.ID,
		MessageID:  reply.MessageID,
		SenderID:   reply.SenderID,
		SenderName: reply.SenderName,
		Text:       reply.Text,
		CreatedAt:  reply.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	reply.CreatedAt = model.CreatedAt
	return nil
}

func (r *GormReplyRepo) ListByMessage(ctx context.Context, messageID string) ([]domain.ReplyMessage, error) {
	var models []ReplyMessageModel
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	replies := make([]domain.ReplyMessage, 0, len(models))
	for i := range models {
		replies = append(replies, domain.ReplyMessage{
			ID:         models[i].ID,
			MessageID:  models[i].MessageID,
			SenderID:   models[i].SenderID,
			SenderName: models[i].SenderName,
			Text:       models[i].Text,
			CreatedAt:  models[i].CreatedAt,
		})
	}
	return replies, nil
}

type GormTemplateRepo struct {
	db *gorm.DB
}

func NewGormTemplateRepo(db *gorm.DB) *GormTemplateRepo {
	return &GormTemplateRepo{db: db}
}

func (r *GormTemplateRepo) List(ctx context.Context) ([]domain.MessageTemplate, error) {
	var models []MessageTemplateModel
	err := r.db.WithContext(ctx).
		Order("title ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	templates := make([]domain.MessageTemplate, 0, len(models))
	for i := range models {
		templates = append(templates, domain.MessageTemplate{
			ID:    models[i].ID,
			Title: models[i].Title,
			Body:  models[i].Body,
		})
	}
	return templates, nil
}
