package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"relay/internal/auth"
	"relay/internal/domain"
	"relay/internal/service"
	"relay/internal/storage"
)

const (
	defaultPageSize   = 50
	maxPageSize       = 100
	uploadURLLifetime = 24 * time.Hour
)

type VoiceMessageService interface {
	Create(ctx context.Context, input service.CreateVoiceMessageInput) (*domain.VoiceMessage, error)
	GetByID(ctx context.Context, id string) (*domain.VoiceMessage, error)
	ListRecent(ctx context.Context, limit int) ([]domain.VoiceMessage, error)
	Deliveries(ctx context.Context, messageID string) ([]domain.Delivery, error)
	Acknowledge(ctx context.Context, deliveryID string) error
}

type SweepTrigger interface {
	Sweep(ctx context.Context) (int, error)
}

type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error)
}

type VoiceMessageHandler struct {
	service VoiceMessageService
	sweeper SweepTrigger
	audits  AuditReader
	store   storage.ObjectStore
}

func NewVoiceMessageHandler(
	service VoiceMessageService,
	sweeper SweepTrigger,
	audits AuditReader,
	store storage.ObjectStore,
) (*VoiceMessageHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("voice message service is required")
	}
	return &VoiceMessageHandler{
		service: service,
		sweeper: sweeper,
		audits:  audits,
		store:   store,
	}, nil
}

func RegisterVoiceMessageRoutes(
	router fiber.Router,
	service VoiceMessageService,
	sweeper SweepTrigger,
	audits AuditReader,
	store storage.ObjectStore,
) error {
	h, err := NewVoiceMessageHandler(service, sweeper, audits, store)
	if err != nil {
		return err
	}

	router.Post("/voice-messages", auth.RequireAction(auth.ActionSendVoice), h.CreateVoiceMessage)
	router.Get("/voice-messages", auth.RequireAction(auth.ActionSendVoice), h.ListVoiceMessages)
	router.Get("/voice-messages/:id", auth.RequireAction(auth.ActionSendVoice), h.GetVoiceMessage)
	router.Get("/voice-messages/:id/deliveries", auth.RequireAction(auth.ActionSendVoice), h.ListDeliveries)
	router.Post("/deliveries/:id/ack", auth.RequireAction(auth.ActionAcknowledge), h.AcknowledgeDelivery)
	router.Post("/scheduler/run", auth.RequireAction(auth.ActionRunScheduler), h.RunSweep)
	router.Get("/audit", auth.RequireAction(auth.ActionViewStats), h.ListAudit)
	router.Post("/audio", auth.RequireAction(auth.ActionSendVoice), h.UploadAudio)

	return nil
}

type createVoiceMessageRequest struct {
	TargetGroup  string `json:"targetGroup"`
	Priority     string `json:"priority"`
	AudioURL     string `json:"audioUrl"`
	ScheduledFor string `json:"scheduledFor"`
}

type voiceMessageResponse struct {
	ID            string     `json:"id"`
	SenderName    string     `json:"senderName"`
	SenderRole    string     `json:"senderRole"`
	TargetGroup   string     `json:"targetGroup"`
	AudioURL      string     `json:"audioUrl,omitempty"`
	Transcript    *string    `json:"transcript,omitempty"`
	STTConfidence *float64   `json:"sttConfidence,omitempty"`
	STTStatus     string     `json:"sttStatus"`
	Priority      string     `json:"priority"`
	ScheduledFor  *time.Time `json:"scheduledFor,omitempty"`
	Status        string     `json:"status"`
	MaxRetries    int        `json:"maxRetries"`
	CreatedAt     time.Time  `json:"createdAt,omitempty"`
}

type deliveryResponse struct {
	ID          string     `json:"id"`
	MessageID   string     `json:"messageId"`
	RecipientID string     `json:"recipientId"`
	Status      string     `json:"status"`
	Retries     int        `json:"retries"`
	LastError   string     `json:"lastError,omitempty"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
}

func (h *VoiceMessageHandler) CreateVoiceMessage(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}

	var req createVoiceMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	targetGroup, err := domain.ParseTargetGroupFromString(req.TargetGroup)
	if err != nil {
		return toHTTPError(err)
	}

	input := service.CreateVoiceMessageInput{
		SenderName:  claims.Name,
		SenderRole:  claims.Role,
		TargetGroup: targetGroup,
		AudioURL:    strings.TrimSpace(req.AudioURL),
	}

	if rawPriority := strings.TrimSpace(req.Priority); rawPriority != "" {
		priority, err := domain.ParsePriorityFromString(rawPriority)
		if err != nil {
			return toHTTPError(err)
		}
		input.Priority = priority
	}

	if rawScheduled := strings.TrimSpace(req.ScheduledFor); rawScheduled != "" {
		scheduledFor, err := time.Parse(time.RFC3339, rawScheduled)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "scheduledFor must be RFC3339")
		}
		input.ScheduledFor = &scheduledFor
	}

	message, err := h.service.Create(c.Context(), input)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusAccepted).JSON(toVoiceMessageResponse(message))
}

func (h *VoiceMessageHandler) GetVoiceMessage(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	message, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toVoiceMessageResponse(message))
}

func (h *VoiceMessageHandler) ListVoiceMessages(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxPageSize))
	}

	messages, err := h.service.ListRecent(c.Context(), limit)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]voiceMessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, toVoiceMessageResponse(&messages[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": responses})
}

func (h *VoiceMessageHandler) ListDeliveries(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	deliveries, err := h.service.Deliveries(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]deliveryResponse, 0, len(deliveries))
	for _, d := range deliveries {
		responses = append(responses, deliveryResponse{
			ID:          d.ID,
			MessageID:   d.MessageID,
			RecipientID: d.RecipientID,
			Status:      d.Status.String(),
			Retries:     d.Retries,
			LastError:   d.LastError,
			ReadAt:      d.ReadAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": responses})
}

func (h *VoiceMessageHandler) AcknowledgeDelivery(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.Acknowledge(c.Context(), id); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"deliveryId": id,
		"status":     domain.DeliveryRead.String(),
	})
}

func (h *VoiceMessageHandler) RunSweep(c *fiber.Ctx) error {
	if h.sweeper == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "sweep trigger is not configured")
	}

	processed, err := h.sweeper.Sweep(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"processed": processed})
}

func (h *VoiceMessageHandler) ListAudit(c *fiber.Ctx) error {
	if h.audits == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "audit trail is not configured")
	}

	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxPageSize))
	}

	entries, err := h.audits.ListRecent(c.Context(), limit)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": entries})
}

func (h *VoiceMessageHandler) UploadAudio(c *fiber.Ctx) error {
	if h.store == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "object storage is not configured")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	key, err := h.store.PutAudio(c.Context(), file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("failed to store audio: %w", err)
	}

	url, err := h.store.PresignGet(c.Context(), key, uploadURLLifetime)
	if err != nil {
		return fmt.Errorf("failed to presign audio url: %w", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"key": key,
		"url": url,
	})
}

func toVoiceMessageResponse(m *domain.VoiceMessage) voiceMessageResponse {
	if m == nil {
		return voiceMessageResponse{}
	}

	return voiceMessageResponse{
		ID:            m.ID,
		SenderName:    m.SenderName,
		SenderRole:    m.SenderRole.String(),
		TargetGroup:   m.TargetGroup.String(),
		AudioURL:      m.AudioURL,
		Transcript:    m.Transcript,
		STTConfidence: m.STTConfidence,
		STTStatus:     string(m.STTStatus),
		Priority:      m.Priority.String(),
		ScheduledFor:  m.ScheduledFor,
		Status:        m.Status.String(),
		MaxRetries:    m.MaxRetries,
		CreatedAt:     m.CreatedAt,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
