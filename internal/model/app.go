package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// App approval states. New submissions start as pending and transition
// to approved or rejected exactly once by an administrator action.
const (
	AppStatusPending  = "pending"
	AppStatusApproved = "approved"
	AppStatusRejected = "rejected"
)

// App represents a catalog entry for an installable capability
type App struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	Description string         `json:"description" gorm:"type:text"`
	Icon        string         `json:"icon" gorm:"type:varchar(100)"`
	Version     string         `json:"version" gorm:"type:varchar(20)"`
	Category    string         `json:"category" gorm:"type:varchar(50)"`
	Permissions string         `json:"permissions" gorm:"type:jsonb"`
	Author      string         `json:"author,omitempty" gorm:"type:varchar(100)"`
	Homepage    string         `json:"homepage,omitempty" gorm:"type:varchar(255)"`
	Status      string         `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	ApprovedAt  *time.Time     `json:"approved_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (a *App) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
