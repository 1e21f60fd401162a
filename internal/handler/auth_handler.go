package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"relay/internal/auth"
)

type AuthHandler struct {
	verifier auth.IdentityVerifier
	tokens   *auth.TokenService
}

func NewAuthHandler(verifier auth.IdentityVerifier, tokens *auth.TokenService) (*AuthHandler, error) {
	if verifier == nil {
		return nil, fmt.Errorf("identity verifier is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}
	return &AuthHandler{verifier: verifier, tokens: tokens}, nil
}

func RegisterAuthRoutes(router fiber.Router, verifier auth.IdentityVerifier, tokens *auth.TokenService) error {
	h, err := NewAuthHandler(verifier, tokens)
	if err != nil {
		return err
	}

	router.Post("/auth/login", h.Login)
	return nil
}

type loginRequest struct {
	Credential string `json:"credential"`
}

type loginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	contact, err := h.verifier.Verify(c.Context(), req.Credential)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredential) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credential")
		}
		return err
	}

	token, err := h.tokens.Issue(contact.ID, contact.Name, contact.Role)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(loginResponse{
		Token: token,
		Name:  contact.Name,
		Role:  contact.Role.String(),
	})
}
