package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"relay/internal/domain"
)

// AttemptUpdate carries the outcome of one delivery attempt back to the ledger.
type AttemptUpdate struct {
	DeliveryID string
	Status     domain.DeliveryStatus
	Retries    int
	LastError  string
}

// DeliveryRepository is the delivery ledger: the single authoritative store
// of per-recipient delivery state. All delivery mutation flows through it.
type DeliveryRepository interface {
	// EnsureDeliveries creates one PENDING row per recipient unless a row
	// already exists for that (message, recipient) pair. Returns the number
	// of newly created rows. Safe to call repeatedly.
	EnsureDeliveries(ctx context.Context, messageID string, recipientIDs []string) (int, error)
	ListByMessage(ctx context.Context, messageID string) ([]domain.Delivery, error)
	// ApplyAttemptRound applies all per-delivery mutations of one attempt
	// round and the recomputed message status in a single transaction, and
	// returns the resulting message status.
	ApplyAttemptRound(ctx context.Context, messageID string, updates []AttemptUpdate) (domain.MessageStatus, error)
	// Acknowledge moves a DELIVERED delivery to READ and stamps read_at.
	// Acknowledging a delivery in any other state returns ErrConflict.
	Acknowledge(ctx context.Context, deliveryID string, at time.Time) error
	AggregateStatus(ctx context.Context, messageID string) (domain.MessageStatus, error)
}

type GormDeliveryRepo struct {
	db *gorm.DB
}

func NewGormDeliveryRepo(db *gorm.DB) *GormDeliveryRepo {
	return &GormDeliveryRepo{db: db}
}

func (r *GormDeliveryRepo) EnsureDeliveries(ctx context.Context, messageID string, recipientIDs []string) (int, error) {
	if len(recipientIDs) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	models := make([]DeliveryModel, 0, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		models = append(models, DeliveryModel{
			ID:          uuid.NewString(),
			MessageID:   messageID,
			RecipientID: recipientID,
			Status:      domain.DeliveryPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "recipient_id"}},
			DoNothing: true,
		}).
		Create(&models)
	if result.Error != nil {
		return 0, result.Error
	}

	return int(result.RowsAffected), nil
}

func (r *GormDeliveryRepo) ListByMessage(ctx context.Context, messageID string) ([]domain.Delivery, error) {
	var models []DeliveryModel
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	deliveries := make([]domain.Delivery, 0, len(models))
	for i := range models {
		deliveries = append(deliveries, *deliveryModelToDomain(&models[i]))
	}
	return deliveries, nil
}

func (r *GormDeliveryRepo) ApplyAttemptRound(ctx context.Context, messageID string, updates []AttemptUpdate) (domain.MessageStatus, error) {
	var rollup domain.MessageStatus

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, u := range updates {
			result := tx.Model(&DeliveryModel{}).
				Where("id = ? AND message_id = ?", u.DeliveryID, messageID).
				Updates(map[string]any{
					"status":     u.Status,
					"retries":    u.Retries,
					"last_error": u.LastError,
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return domain.ErrNotFound
			}
		}

		statuses, err := deliveryStatuses(tx, messageID)
		if err != nil {
			return err
		}

		rollup = domain.RollupStatus(statuses)
		result := tx.Model(&VoiceMessageModel{}).
			Where("id = ?", messageID).
			Update("status", rollup)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return rollup, nil
}

func (r *GormDeliveryRepo) Acknowledge(ctx context.Context, deliveryID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&DeliveryModel{}).
		Where("id = ? AND status = ?", deliveryID, domain.DeliveryDelivered).
		Updates(map[string]any{
			"status":  domain.DeliveryRead,
			"read_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var model DeliveryModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", deliveryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrConflict
}

func (r *GormDeliveryRepo) AggregateStatus(ctx context.Context, messageID string) (domain.MessageStatus, error) {
	statuses, err := deliveryStatuses(r.db.WithContext(ctx), messageID)
	if err != nil {
		return "", err
	}
	return domain.RollupStatus(statuses), nil
}

func deliveryStatuses(db *gorm.DB, messageID string) ([]domain.DeliveryStatus, error) {
	var statuses []domain.DeliveryStatus
	err := db.Model(&DeliveryModel{}).
		Where("message_id = ?", messageID).
		Pluck("status", &statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}
