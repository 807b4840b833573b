package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// APIKey holds an encrypted third-party provider credential scoped to one
// tenant and one provider. At most one key exists per (tenant, provider)
// pair; rotations overwrite the row in place.
type APIKey struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID     string    `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_api_keys_tenant_provider"`
	Provider     string    `json:"provider" gorm:"type:varchar(50);not null;uniqueIndex:idx_api_keys_tenant_provider"`
	EncryptedKey string    `json:"-" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (k *APIKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}
