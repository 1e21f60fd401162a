package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"relay/internal/domain"
	"relay/internal/repository"
)

// CreateBoardMessageInput carries an elevated sender's board post.
type CreateBoardMessageInput struct {
	Text       string
	AudioURL   *string
	ImageURL   *string
	AuthorID   string
	AuthorName string
	TargetRole string
}

// CreateReplyInput carries a recipient's reply to a board message.
type CreateReplyInput struct {
	MessageID  string
	SenderID   string
	SenderName string
	Text       string
}

// BoardService handles the moderated broadcast board: posting, moderation,
// the role-filtered inbox, replies, and templates.
type BoardService struct {
	messages  repository.BoardMessageRepository
	replies   repository.ReplyRepository
	templates repository.TemplateRepository
	logger    *zap.Logger
	now       func() time.Time
}

func NewBoardService(
	messages repository.BoardMessageRepository,
	replies repository.ReplyRepository,
	templates repository.TemplateRepository,
	logger *zap.Logger,
) (*BoardService, error) {
	if messages == nil {
		return nil, fmt.Errorf("board message repository is required")
	}
	if replies == nil {
		return nil, fmt.Errorf("reply repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BoardService{
		messages:  messages,
		replies:   replies,
		templates: templates,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Create stores a new board message in the PENDING moderation state.
func (s *BoardService) Create(ctx context.Context, input CreateBoardMessageInput) (*domain.BoardMessage, error) {
	targetRole := strings.ToUpper(strings.TrimSpace(input.TargetRole))
	if targetRole == "" {
		targetRole = domain.TargetRoleAll
	}

	message := &domain.BoardMessage{
		ID:         uuid.NewString(),
		Text:       strings.TrimSpace(input.Text),
		AudioURL:   input.AudioURL,
		ImageURL:   input.ImageURL,
		AuthorID:   strings.TrimSpace(input.AuthorID),
		AuthorName: strings.TrimSpace(input.AuthorName),
		Status:     domain.ModerationPending,
		TargetRole: targetRole,
	}
	if err := message.Validate(); err != nil {
		return nil, err
	}
	if message.AuthorName == "" {
		return nil, fmt.Errorf("%w: author name is required", domain.ErrValidation)
	}

	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create board message: %w", err)
	}

	return message, nil
}

// Moderate approves or rejects a pending board message. Moderating an
// already decided message returns ErrConflict.
func (s *BoardService) Moderate(ctx context.Context, id string, approve bool) (*domain.BoardMessage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: message id is required", domain.ErrValidation)
	}

	message, err := s.messages.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if message.Status != domain.ModerationPending {
		return nil, fmt.Errorf("%w: message already %s", domain.ErrConflict, strings.ToLower(message.Status.String()))
	}

	status := domain.ModerationRejected
	if approve {
		status = domain.ModerationApproved
	}
	if err := s.messages.SetStatus(ctx, message.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update moderation status: %w", err)
	}

	message.Status = status
	s.logger.Info("board message moderated",
		zap.String("messageId", message.ID),
		zap.String("status", status.String()),
	)

	return message, nil
}

// Inbox returns approved messages visible to the role, newest first. This
// includes messages targeted at the role itself and at ALL.
func (s *BoardService) Inbox(ctx context.Context, role domain.Role, limit int) ([]domain.BoardMessage, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrValidation, role)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.messages.ListInbox(ctx, role.String(), limit)
}

func (s *BoardService) Pending(ctx context.Context) ([]domain.BoardMessage, error) {
	return s.messages.ListPending(ctx)
}

// Reply appends a reply to an existing board message.
func (s *BoardService) Reply(ctx context.Context, input CreateReplyInput) (*domain.ReplyMessage, error) {
	if strings.TrimSpace(input.MessageID) == "" {
		return nil, fmt.Errorf("%w: message id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("%w: reply text is required", domain.ErrValidation)
	}

	if _, err := s.messages.GetByID(ctx, strings.TrimSpace(input.MessageID)); err != nil {
		return nil, err
	}

	reply := &domain.ReplyMessage{
		ID:         uuid.NewString(),
		MessageID:  strings.TrimSpace(input.MessageID),
		SenderID:   strings.TrimSpace(input.SenderID),
		SenderName: strings.TrimSpace(input.SenderName),
		Text:       strings.TrimSpace(input.Text),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, fmt.Errorf("failed to create reply: %w", err)
	}

	return reply, nil
}

func (s *BoardService) Replies(ctx context.Context, messageID string) ([]domain.ReplyMessage, error) {
	if strings.TrimSpace(messageID) == "" {
		return nil, fmt.Errorf("%w: message id is required", domain.ErrValidation)
	}
	return s.replies.ListByMessage(ctx, strings.TrimSpace(messageID))
}

func (s *BoardService) Templates(ctx context.Context) ([]domain.MessageTemplate, error) {
	if s.templates == nil {
		return nil, nil
	}
	return s.templates.List(ctx)
}
