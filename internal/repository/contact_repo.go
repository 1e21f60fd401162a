package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"relay/internal/domain"
)

type ContactRepository interface {
	Create(ctx context.Context, c *domain.Contact) error
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	GetByAccountID(ctx context.Context, accountID string) (*domain.Contact, error)
	ListActive(ctx context.Context) ([]domain.Contact, error)
	// GetActiveByGroups returns the deduplicated set of active contacts
	// belonging to any of the named groups. Unknown group names contribute
	// nothing.
	GetActiveByGroups(ctx context.Context, groupNames []string) ([]domain.Contact, error)
}

type GroupRepository interface {
	List(ctx context.Context) ([]domain.Group, error)
}

type GormContactRepo struct {
	db *gorm.DB
}

func NewGormContactRepo(db *gorm.DB) *GormContactRepo {
	return &GormContactRepo{db: db}
}

func (r *GormContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	model := contactModelFromDomain(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if c != nil {
		*c = *contactModelToDomain(model)
	}
	return nil
}

func (r *GormContactRepo) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	var model ContactModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return contactModelToDomain(&model), nil
}

func (r *GormContactRepo) GetByAccountID(ctx context.Context, accountID string) (*domain.Contact, error) {
	var model ContactModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return contactModelToDomain(&model), nil
}

func (r *GormContactRepo) ListActive(ctx context.Context) ([]domain.Contact, error) {
	var models []ContactModel
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	contacts := make([]domain.Contact, 0, len(models))
	for i := range models {
		contacts = append(contacts, *contactModelToDomain(&models[i]))
	}
	return contacts, nil
}

func (r *GormContactRepo) GetActiveByGroups(ctx context.Context, groupNames []string) ([]domain.Contact, error) {
	if len(groupNames) == 0 {
		return nil, nil
	}

	var models []ContactModel
	err := r.db.WithContext(ctx).
		Model(&ContactModel{}).
		Distinct("contacts.*").
		Joins("JOIN group_contacts ON group_contacts.contact_id = contacts.id").
		Joins("JOIN groups ON groups.id = group_contacts.group_id").
		Where("groups.name IN ? AND contacts.active = ?", groupNames, true).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	contacts := make([]domain.Contact, 0, len(models))
	for i := range models {
		contacts = append(contacts, *contactModelToDomain(&models[i]))
	}
	return contacts, nil
}

type GormGroupRepo struct {
	db *gorm.DB
}

func NewGormGroupRepo(db *gorm.DB) *GormGroupRepo {
	return &GormGroupRepo{db: db}
}

func (r *GormGroupRepo) List(ctx context.Context) ([]domain.Group, error) {
	var models []GroupModel
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	groups := make([]domain.Group, 0, len(models))
	for i := range models {
		groups = append(groups, domain.Group{
			ID:        models[i].ID,
			Name:      models[i].Name,
			CreatedAt: models[i].CreatedAt,
		})
	}
	return groups, nil
}
