package repository

import (
	"context"

	"gorm.io/gorm"

	"relay/internal/domain"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error)
}

type GormAuditRepo struct {
	db *gorm.DB
}

func NewGormAuditRepo(db *gorm.DB) *GormAuditRepo {
	return &GormAuditRepo{db: db}
}

func (r *GormAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	model := &AuditLogModel{
		ID:        entry.ID,
		Event:     entry.Event,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	entry.CreatedAt = model.CreatedAt
	return nil
}

func (r *GormAuditRepo) ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 50
	}

	var models []AuditLogModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.AuditLog, 0, len(models))
	for i := range models {
		entries = append(entries, domain.AuditLog{
			ID:        models[i].ID,
			Event:     models[i].Event,
			Details:   models[i].Details,
			CreatedAt: models[i].CreatedAt,
		})
	}
	return entries, nil
}
