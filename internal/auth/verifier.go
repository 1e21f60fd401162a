package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"relay/internal/domain"
	"relay/internal/repository"
)

// ErrInvalidCredential is returned when a credential resolves to no subject.
var ErrInvalidCredential = errors.New("invalid credential")

// IdentityVerifier resolves an externally issued credential to a subject.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*domain.Contact, error)
}

// AccountVerifier maps a pre-verified upstream account id to a contact. The
// upstream identity provider has already authenticated the credential; this
// side only resolves the subject and its role.
type AccountVerifier struct {
	contacts repository.ContactRepository
}

func NewAccountVerifier(contacts repository.ContactRepository) (*AccountVerifier, error) {
	if contacts == nil {
		return nil, fmt.Errorf("contact repository is required")
	}
	return &AccountVerifier{contacts: contacts}, nil
}

func (v *AccountVerifier) Verify(ctx context.Context, credential string) (*domain.Contact, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrInvalidCredential
	}

	contact, err := v.contacts.GetByAccountID(ctx, credential)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}
	if !contact.Active {
		return nil, ErrInvalidCredential
	}

	return contact, nil
}
