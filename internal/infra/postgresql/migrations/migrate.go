package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"relay/internal/repository"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_contacts_groups",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(
					&repository.ContactModel{},
					&repository.GroupModel{},
					&repository.GroupContactModel{},
				); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_contacts_active_role ON contacts (active, role)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&repository.GroupContactModel{},
					&repository.GroupModel{},
					&repository.ContactModel{},
				)
			},
		},
		{
			ID: "000002_create_voice_messages",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.VoiceMessageModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_voice_messages_status_created ON voice_messages (status, created_at)`,
					`CREATE INDEX IF NOT EXISTS idx_voice_messages_scheduled ON voice_messages (scheduled_for) WHERE status = 'QUEUED'`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.VoiceMessageModel{})
			},
		},
		{
			ID: "000003_create_deliveries",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.DeliveryModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE UNIQUE INDEX IF NOT EXISTS idx_deliveries_message_recipient ON deliveries (message_id, recipient_id)`,
					`CREATE INDEX IF NOT EXISTS idx_deliveries_message_status ON deliveries (message_id, status)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.DeliveryModel{})
			},
		},
		{
			ID: "000004_create_audit_logs",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.AuditLogModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_audit_logs_event_created ON audit_logs (event, created_at)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.AuditLogModel{})
			},
		},
		{
			ID: "000005_create_board_messages",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(
					&repository.BoardMessageModel{},
					&repository.ReplyMessageModel{},
					&repository.MessageTemplateModel{},
				); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_board_messages_status_role_created ON board_messages (status, target_role, created_at)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&repository.MessageTemplateModel{},
					&repository.ReplyMessageModel{},
					&repository.BoardMessageModel{},
				)
			},
		},
		{
			ID: "000006_seed_audience_groups",
			Migrate: func(tx *gorm.DB) error {
				// The HOD and STAFF groups back the target-group selector
				// expansion; membership is managed by the admin flow.
				for _, name := range []string{"HOD", "STAFF"} {
					var count int64
					if err := tx.Model(&repository.GroupModel{}).
						Where("name = ?", name).
						Count(&count).Error; err != nil {
						return err
					}
					if count > 0 {
						continue
					}
					if err := tx.Create(&repository.GroupModel{
						ID:   uuid.NewString(),
						Name: name,
					}).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Where("name IN ?", []string{"HOD", "STAFF"}).
					Delete(&repository.GroupModel{}).Error
			},
		},
	})

	return m.Migrate()
}
