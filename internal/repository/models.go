package repository

import (
	"time"

	"relay/internal/domain"
)

// ContactModel is the persistence model for the contacts table.
type ContactModel struct {
	ID        string      `gorm:"type:uuid;primaryKey"`
	Name      string      `gorm:"type:varchar(120);not null"`
	Email     string      `gorm:"type:varchar(255)"`
	Phone     string      `gorm:"type:varchar(20)"`
	Role      domain.Role `gorm:"type:varchar(20);not null"`
	Active    bool        `gorm:"not null;default:true"`
	AccountID string      `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ContactModel) TableName() string {
	return "contacts"
}

// GroupModel is the persistence model for the groups table.
type GroupModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"type:varchar(120);not null;uniqueIndex"`
	CreatedAt time.Time
}

func (GroupModel) TableName() string {
	return "groups"
}

// GroupContactModel is the membership join table. Membership is set-valued:
// the composite primary key keeps a contact from appearing twice in a group.
type GroupContactModel struct {
	GroupID   string `gorm:"type:uuid;primaryKey"`
	ContactID string `gorm:"type:uuid;primaryKey"`
}

func (GroupContactModel) TableName() string {
	return "group_contacts"
}

// VoiceMessageModel is the persistence model for voice_messages.
type VoiceMessageModel struct {
	ID            string                     `gorm:"type:uuid;primaryKey"`
	SenderName    string                     `gorm:"type:varchar(120);not null"`
	SenderRole    domain.Role                `gorm:"type:varchar(20);not null"`
	TargetGroup   domain.TargetGroup         `gorm:"type:varchar(10);not null"`
	AudioURL      string                     `gorm:"type:text"`
	Transcript    *string                    `gorm:"type:text"`
	STTConfidence *float64                   `gorm:"type:double precision"`
	STTStatus     domain.TranscriptionStatus `gorm:"type:varchar(20);not null"`
	Priority      domain.Priority            `gorm:"type:varchar(10);not null"`
	ScheduledFor  *time.Time                 `gorm:"type:timestamptz"`
	Status        domain.MessageStatus       `gorm:"type:varchar(20);not null"`
	MaxRetries    int                        `gorm:"not null;default:3"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (VoiceMessageModel) TableName() string {
	return "voice_messages"
}

// DeliveryModel is the persistence model for deliveries. The unique composite
// index on (message_id, recipient_id) is the structural duplicate guard.
type DeliveryModel struct {
	ID          string                `gorm:"type:uuid;primaryKey"`
	MessageID   string                `gorm:"type:uuid;not null;uniqueIndex:idx_deliveries_message_recipient"`
	RecipientID string                `gorm:"type:uuid;not null;uniqueIndex:idx_deliveries_message_recipient"`
	Status      domain.DeliveryStatus `gorm:"type:varchar(10);not null"`
	Retries     int                   `gorm:"not null;default:0"`
	LastError   string                `gorm:"type:text;not null;default:''"`
	ReadAt      *time.Time            `gorm:"type:timestamptz"`
	UpdatedAt   time.Time
	CreatedAt   time.Time
}

func (DeliveryModel) TableName() string {
	return "deliveries"
}

// AuditLogModel is the persistence model for audit_logs.
type AuditLogModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Event     string `gorm:"type:varchar(100);not null"`
	Details   string `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time
}

func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// BoardMessageModel is the persistence model for board_messages.
type BoardMessageModel struct {
	ID         string                  `gorm:"type:uuid;primaryKey"`
	Text       string                  `gorm:"type:text"`
	AudioURL   *string                 `gorm:"type:text"`
	ImageURL   *string                 `gorm:"type:text"`
	AuthorID   string                  `gorm:"type:varchar(255);not null"`
	AuthorName string                  `gorm:"type:varchar(120);not null"`
	Status     domain.ModerationStatus `gorm:"type:varchar(20);not null"`
	TargetRole string                  `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time
}

func (BoardMessageModel) TableName() string {
	return "board_messages"
}

// ReplyMessageModel is the persistence model for reply_messages.
type ReplyMessageModel struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	MessageID  string `gorm:"type:uuid;not null"`
	SenderID   string `gorm:"type:uuid;not null"`
	SenderName string `gorm:"type:varchar(120);not null"`
	Text       string `gorm:"type:text;not null"`
	CreatedAt  time.Time
}

func (ReplyMessageModel) TableName() string {
	return "reply_messages"
}

// MessageTemplateModel is the persistence model for message_templates.
type MessageTemplateModel struct {
	ID    string `gorm:"type:uuid;primaryKey"`
	Title string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Body  string `gorm:"type:text;not null"`
}

func (MessageTemplateModel) TableName() string {
	return "message_templates"
}

func contactModelToDomain(m *ContactModel) *domain.Contact {
	if m == nil {
		return nil
	}

	return &domain.Contact{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Role:      m.Role,
		Active:    m.Active,
		AccountID: m.AccountID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func contactModelFromDomain(c *domain.Contact) *ContactModel {
	if c == nil {
		return nil
	}

	return &ContactModel{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Role:      c.Role,
		Active:    c.Active,
		AccountID: c.AccountID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func voiceMessageModelFromDomain(m *domain.VoiceMessage) *VoiceMessageModel {
	if m == nil {
		return nil
	}

	return &VoiceMessageModel{
		ID:            m.ID,
		SenderName:    m.SenderName,
		SenderRole:    m.SenderRole,
		TargetGroup:   m.TargetGroup,
		AudioURL:      m.AudioURL,
		Transcript:    m.Transcript,
		STTConfidence: m.STTConfidence,
		STTStatus:     m.STTStatus,
		Priority:      m.Priority,
		ScheduledFor:  m.ScheduledFor,
		Status:        m.Status,
		MaxRetries:    m.MaxRetries,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func voiceMessageModelToDomain(m *VoiceMessageModel) *domain.VoiceMessage {
	if m == nil {
		return nil
	}

	return &domain.VoiceMessage{
		ID:            m.ID,
		SenderName:    m.SenderName,
		SenderRole:    m.SenderRole,
		TargetGroup:   m.TargetGroup,
		AudioURL:      m.AudioURL,
		Transcript:    m.Transcript,
		STTConfidence: m.STTConfidence,
		STTStatus:     m.STTStatus,
		Priority:      m.Priority,
		ScheduledFor:  m.ScheduledFor,
		Status:        m.Status,
		MaxRetries:    m.MaxRetries,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func deliveryModelToDomain(m *DeliveryModel) *domain.Delivery {
	if m == nil {
		return nil
	}

	return &domain.Delivery{
		ID:          m.ID,
		MessageID:   m.MessageID,
		RecipientID: m.RecipientID,
		Status:      m.Status,
		Retries:     m.Retries,
		LastError:   m.LastError,
		ReadAt:      m.ReadAt,
		UpdatedAt:   m.UpdatedAt,
		CreatedAt:   m.CreatedAt,
	}
}

func boardMessageModelFromDomain(m *domain.BoardMessage) *BoardMessageModel {
	if m == nil {
		return nil
	}

	return &BoardMessageModel{
		ID:         m.ID,
		Text:       m.Text,
		AudioURL:   m.AudioURL,
		ImageURL:   m.ImageURL,
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		Status:     m.Status,
		TargetRole: m.TargetRole,
		CreatedAt:  m.CreatedAt,
	}
}

func boardMessageModelToDomain(m *BoardMessageModel) *domain.BoardMessage {
	if m == nil {
		return nil
	}

	return &domain.BoardMessage{
		ID:         m.ID,
		Text:       m.Text,
		AudioURL:   m.AudioURL,
		ImageURL:   m.ImageURL,
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		Status:     m.Status,
		TargetRole: m.TargetRole,
		CreatedAt:  m.CreatedAt,
	}
}
