package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"relay/internal/auth"
	"relay/internal/domain"
	"relay/internal/service"
)

type BoardService interface {
	Create(ctx context.Context, input service.CreateBoardMessageInput) (*domain.BoardMessage, error)
	Moderate(ctx context.Context, id string, approve bool) (*domain.BoardMessage, error)
	Inbox(ctx context.Context, role domain.Role, limit int) ([]domain.BoardMessage, error)
	Pending(ctx context.Context) ([]domain.BoardMessage, error)
	Reply(ctx context.Context, input service.CreateReplyInput) (*domain.ReplyMessage, error)
	Replies(ctx context.Context, messageID string) ([]domain.ReplyMessage, error)
	Templates(ctx context.Context) ([]domain.MessageTemplate, error)
}

type StatsService interface {
	Overview(ctx context.Context) (*service.StatsOverview, error)
}

type BoardHandler struct {
	service BoardService
	stats   StatsService
}

func NewBoardHandler(service BoardService, stats StatsService) (*BoardHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("board service is required")
	}
	return &BoardHandler{service: service, stats: stats}, nil
}

func RegisterBoardRoutes(router fiber.Router, service BoardService, stats StatsService) error {
	h, err := NewBoardHandler(service, stats)
	if err != nil {
		return err
	}

	router.Post("/board/messages", auth.RequireAction(auth.ActionSendBroadcast), h.CreateBoardMessage)
	router.Get("/board/inbox", auth.RequireAction(auth.ActionReadInbox), h.Inbox)
	router.Get("/board/pending", auth.RequireAction(auth.ActionModerate), h.ListPending)
	router.Post("/board/messages/:id/approve", auth.RequireAction(auth.ActionModerate), h.Approve)
	router.Post("/board/messages/:id/reject", auth.RequireAction(auth.ActionModerate), h.Reject)
	router.Post("/board/messages/:id/replies", auth.RequireAction(auth.ActionReply), h.CreateReply)
	router.Get("/board/messages/:id/replies", auth.RequireAction(auth.ActionReadInbox), h.ListReplies)
	router.Get("/board/templates", auth.RequireAction(auth.ActionSendBroadcast), h.ListTemplates)
	router.Get("/admin/stats", auth.RequireAction(auth.ActionViewStats), h.StatsOverview)

	return nil
}

type createBoardMessageRequest struct {
	Text       string  `json:"text"`
	AudioURL   *string `json:"audioUrl"`
	ImageURL   *string `json:"imageUrl"`
	TargetRole string  `json:"targetRole"`
}

type createReplyRequest struct {
	Text string `json:"text"`
}

type boardMessageResponse struct {
	ID         string    `json:"id"`
	Text       string    `json:"text,omitempty"`
	AudioURL   *string   `json:"audioUrl,omitempty"`
	ImageURL   *string   `json:"imageUrl,omitempty"`
	AuthorName string    `json:"authorName"`
	Status     string    `json:"status"`
	TargetRole string    `json:"targetRole"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

type replyResponse struct {
	ID         string    `json:"id"`
	MessageID  string    `json:"messageId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

func (h *BoardHandler) CreateBoardMessage(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}

	var req createBoardMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.service.Create(c.Context(), service.CreateBoardMessageInput{
		Text:       req.Text,
		AudioURL:   req.AudioURL,
		ImageURL:   req.ImageURL,
		AuthorID:   claims.Subject,
		AuthorName: claims.Name,
		TargetRole: req.TargetRole,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toBoardMessageResponse(message))
}

func (h *BoardHandler) Inbox(c *fiber.Ctx) error {
	role := auth.RoleFromCtx(c)
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxPageSize))
	}

	messages, err := h.service.Inbox(c.Context(), role, limit)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": toBoardMessageResponses(messages)})
}

func (h *BoardHandler) ListPending(c *fiber.Ctx) error {
	messages, err := h.service.Pending(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": toBoardMessageResponses(messages)})
}

func (h *BoardHandler) Approve(c *fiber.Ctx) error {
	return h.moderate(c, true)
}

func (h *BoardHandler) Reject(c *fiber.Ctx) error {
	return h.moderate(c, false)
}

func (h *BoardHandler) moderate(c *fiber.Ctx, approve bool) error {
	id := strings.TrimSpace(c.Params("id"))
	message, err := h.service.Moderate(c.Context(), id, approve)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toBoardMessageResponse(message))
}

func (h *BoardHandler) CreateReply(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}

	var req createReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	reply, err := h.service.Reply(c.Context(), service.CreateReplyInput{
		MessageID:  c.Params("id"),
		SenderID:   claims.Subject,
		SenderName: claims.Name,
		Text:       req.Text,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toReplyResponse(reply))
}

func (h *BoardHandler) ListReplies(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	replies, err := h.service.Replies(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]replyResponse, 0, len(replies))
	for i := range replies {
		responses = append(responses, toReplyResponse(&replies[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": responses})
}

func (h *BoardHandler) ListTemplates(c *fiber.Ctx) error {
	templates, err := h.service.Templates(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": templates})
}

func (h *BoardHandler) StatsOverview(c *fiber.Ctx) error {
	if h.stats == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "stats are not configured")
	}

	overview, err := h.stats.Overview(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(overview)
}

func toBoardMessageResponse(m *domain.BoardMessage) boardMessageResponse {
	if m == nil {
		return boardMessageResponse{}
	}

	return boardMessageResponse{
		ID:         m.ID,
		Text:       m.Text,
		AudioURL:   m.AudioURL,
		ImageURL:   m.ImageURL,
		AuthorName: m.AuthorName,
		Status:     m.Status.String(),
		TargetRole: m.TargetRole,
		CreatedAt:  m.CreatedAt,
	}
}

func toBoardMessageResponses(messages []domain.BoardMessage) []boardMessageResponse {
	responses := make([]boardMessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, toBoardMessageResponse(&messages[i]))
	}
	return responses
}

func toReplyResponse(r *domain.ReplyMessage) replyResponse {
	if r == nil {
		return replyResponse{}
	}

	return replyResponse{
		ID:         r.ID,
		MessageID:  r.MessageID,
		SenderName: r.SenderName,
		Text:       r.Text,
		CreatedAt:  r.CreatedAt,
	}
}
