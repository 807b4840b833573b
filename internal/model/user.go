package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. Super admins operate the platform itself and never hold
// tenant-scoped app access.
const (
	RoleSuperAdmin = "super_admin"
	RoleMember     = "member"
)

// User represents a console user stored in the database
type User struct {
	ID           string         `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255)"`
	Name         string         `json:"name" gorm:"type:varchar(100)"`
	Role         string         `json:"role" gorm:"type:varchar(50);not null;default:'member'"`
	TenantID     *string        `json:"tenant_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsSuperAdmin reports whether the user is a platform operator.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}
