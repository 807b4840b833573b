package store

import (
	"context"
	"errors"

	"console-service/internal/model"
)

// ErrNotFound signals that a query matched no row. Callers are expected to
// distinguish it from genuine access errors.
var ErrNotFound = errors.New("record not found")

// Store is the data-access capability consumed by the authorization engine,
// the access gateway and the usage recorder. Implementations return
// ErrNotFound for missing rows and wrap everything else as-is.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetTenantByID(ctx context.Context, id string) (*model.Tenant, error)
	GetAppByName(ctx context.Context, name string) (*model.App, error)
	ListApps(ctx context.Context) ([]model.App, error)
	GetEnablement(ctx context.Context, tenantID, appID string) (*model.OrgApp, error)
	ListAPIKeysByTenant(ctx context.Context, tenantID string) ([]model.APIKey, error)
	CreateUsageLog(ctx context.Context, log *model.UsageLog) error
}
