package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UsageLog is an append-only record of a significant action taken inside
// a tenant-scoped app. Rows are never updated or deleted.
type UsageLog struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:uuid;index;not null"`
	TenantID  string    `json:"tenant_id" gorm:"type:uuid;index;not null"`
	AppID     string    `json:"app_id" gorm:"type:uuid;index;not null"`
	Action    string    `json:"action" gorm:"type:varchar(100);not null"`
	Metadata  string    `json:"metadata" gorm:"type:jsonb"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *UsageLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
