package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"relay/internal/auth"
	"relay/internal/domain"
)

type ContactStore interface {
	Create(ctx context.Context, c *domain.Contact) error
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	ListActive(ctx context.Context) ([]domain.Contact, error)
}

type GroupStore interface {
	List(ctx context.Context) ([]domain.Group, error)
}

type ContactHandler struct {
	contacts ContactStore
	groups   GroupStore
}

func NewContactHandler(contacts ContactStore, groups GroupStore) (*ContactHandler, error) {
	if contacts == nil {
		return nil, fmt.Errorf("contact store is required")
	}
	return &ContactHandler{contacts: contacts, groups: groups}, nil
}

func RegisterContactRoutes(router fiber.Router, contacts ContactStore, groups GroupStore) error {
	h, err := NewContactHandler(contacts, groups)
	if err != nil {
		return err
	}

	router.Post("/contacts", auth.RequireAction(auth.ActionManageContacts), h.CreateContact)
	router.Get("/contacts", auth.RequireAction(auth.ActionManageContacts), h.ListContacts)
	router.Get("/contacts/:id", auth.RequireAction(auth.ActionManageContacts), h.GetContact)
	router.Get("/groups", auth.RequireAction(auth.ActionManageContacts), h.ListGroups)

	return nil
}

type createContactRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	AccountID string `json:"accountId"`
}

type contactResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

func (h *ContactHandler) CreateContact(c *fiber.Ctx) error {
	var req createContactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	role, err := domain.ParseRoleFromString(req.Role)
	if err != nil {
		return toHTTPError(err)
	}

	contact := &domain.Contact{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Role:      role,
		Active:    true,
		AccountID: strings.TrimSpace(req.AccountID),
	}
	if err := contact.Validate(); err != nil {
		return toHTTPError(err)
	}

	if err := h.contacts.Create(c.Context(), contact); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toContactResponse(contact))
}

func (h *ContactHandler) GetContact(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	contact, err := h.contacts.GetByID(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toContactResponse(contact))
}

func (h *ContactHandler) ListContacts(c *fiber.Ctx) error {
	contacts, err := h.contacts.ListActive(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]contactResponse, 0, len(contacts))
	for i := range contacts {
		responses = append(responses, toContactResponse(&contacts[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": responses})
}

func (h *ContactHandler) ListGroups(c *fiber.Ctx) error {
	if h.groups == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "group store is not configured")
	}

	groups, err := h.groups.List(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": groups})
}

func toContactResponse(c *domain.Contact) contactResponse {
	if c == nil {
		return contactResponse{}
	}

	return contactResponse{
		ID:     c.ID,
		Name:   c.Name,
		Email:  c.Email,
		Phone:  c.Phone,
		Role:   c.Role.String(),
		Active: c.Active,
	}
}
