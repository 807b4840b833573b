package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrgApp records that a tenant has turned a catalog app on or off.
// Row absence and enabled=false both mean disabled.
type OrgApp struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  string    `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_org_apps_tenant_app"`
	AppID     string    `json:"app_id" gorm:"type:uuid;not null;uniqueIndex:idx_org_apps_tenant_app"`
	Enabled   bool      `json:"enabled" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *OrgApp) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
