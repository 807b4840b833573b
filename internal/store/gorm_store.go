package store

import (
	"context"
	"errors"
	"time"

	"console-service/internal/model"
	"console-service/prometheus"

	"gorm.io/gorm"
)

// gormStore implements Store on top of the shared gorm handle.
type gormStore struct {
	db *gorm.DB
}

// New returns a Store backed by the given database handle.
func New(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if result.Error != nil {
		return nil, mapError(result.Error)
	}
	return &user, nil
}

func (s *gormStore) GetTenantByID(ctx context.Context, id string) (*model.Tenant, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var tenant model.Tenant
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&tenant)
	if result.Error != nil {
		return nil, mapError(result.Error)
	}
	return &tenant, nil
}

func (s *gormStore) GetAppByName(ctx context.Context, name string) (*model.App, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var app model.App
	result := s.db.WithContext(ctx).Where("name = ?", name).First(&app)
	if result.Error != nil {
		return nil, mapError(result.Error)
	}
	return &app, nil
}

func (s *gormStore) ListApps(ctx context.Context) ([]model.App, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var apps []model.App
	result := s.db.WithContext(ctx).Order("name").Find(&apps)
	if result.Error != nil {
		return nil, mapError(result.Error)
	}
	return apps, nil
}

func (s *gormStore) GetEnablement(ctx context.Context, tenantID, appID string) (*model.OrgApp, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var orgApp model.OrgApp
	result := s.db.WithContext(ctx).
		Where("tenant_id = ? AND app_id = ? AND enabled = ?", tenantID, appID, true).
		First(&orgApp)
	if result.Error != nil {
		return nil, mapError(result.Error)
	}
	return &orgApp, nil
}

func (s *gormStore) ListAPIKeysByTenant(ctx context.Context, tenantID string) ([]model.APIKey, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var keys []model.APIKey
	result := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&keys)
	if result.Error != nil {
		return nil, mapError(result.Error)
	}
	return keys, nil
}

func (s *gormStore) CreateUsageLog(ctx context.Context, log *model.UsageLog) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := s.db.WithContext(ctx).Create(log); result.Error != nil {
		return mapError(result.Error)
	}
	return nil
}

// mapError translates the driver's "no rows" signal into ErrNotFound so that
// callers never depend on gorm sentinels.
func mapError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
