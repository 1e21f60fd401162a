package service

import (
	"context"
	"fmt"

	"relay/internal/domain"
	"relay/internal/repository"
)

// Resolver expands a target-group selector into the deduplicated set of
// active recipient contacts.
type Resolver struct {
	contacts repository.ContactRepository
}

func NewResolver(contacts repository.ContactRepository) (*Resolver, error) {
	if contacts == nil {
		return nil, fmt.Errorf("contact repository is required")
	}
	return &Resolver{contacts: contacts}, nil
}

// Resolve returns the union of active contacts across the selector's groups.
// A contact in two target groups appears exactly once. Unknown group names
// contribute nothing rather than failing the resolution.
func (r *Resolver) Resolve(ctx context.Context, target domain.TargetGroup) ([]domain.Contact, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: invalid target group %q", domain.ErrValidation, target)
	}

	contacts, err := r.contacts.GetActiveByGroups(ctx, target.GroupNames())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}

	return contacts, nil
}
