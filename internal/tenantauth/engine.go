// Package tenantauth resolves identity, tenant membership and app enablement
// into a single authorization decision with a closed set of reason codes.
package tenantauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"console-service/internal/model"
	"console-service/internal/store"
	"console-service/prometheus"
)

// Code identifies why an authorization check failed. The set is closed so
// that callers can render precise messages and tests can assert on cause.
type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeSuperAdmin      Code = "SUPER_ADMIN"
	CodeNoTenant        Code = "NO_TENANT"
	CodeOrgNotFound     Code = "ORG_NOT_FOUND"
	CodeAppNotFound     Code = "APP_NOT_FOUND"
	CodeAppNotEnabled   Code = "APP_NOT_ENABLED"
	CodeDBError         Code = "DB_ERROR"
	CodeConfigError     Code = "CONFIG_ERROR"
)

// Error is a terminal, user-facing authorization failure.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AppRef identifies the resolved catalog app.
type AppRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Success carries the authorized user, their tenant and, when an app name
// was given, the resolved app.
type Success struct {
	User   *model.User
	Tenant *model.Tenant
	App    *AppRef
}

// UserSource resolves the acting user from the request context. A nil user
// with a nil error means the request is unauthenticated.
type UserSource interface {
	CurrentUser(ctx context.Context) (*model.User, error)
}

// Engine performs tenant authorization checks against current persisted
// state. It holds no per-request state and never caches: concurrent
// enablement changes are picked up by the next check.
type Engine struct {
	store store.Store
	users UserSource
}

// NewEngine creates an authorization engine over the given data-access
// capability and identity resolver.
func NewEngine(st store.Store, users UserSource) *Engine {
	return &Engine{store: st, users: users}
}

// Authorize determines whether the acting user may access the named app.
// An empty appName checks tenant membership only. The checks are strictly
// ordered and short-circuit; each failure maps to exactly one code.
// Authorize never panics and never returns a raw error.
func (e *Engine) Authorize(ctx context.Context, appName string) (*Success, *Error) {
	result, authErr := e.authorize(ctx, appName)
	if authErr != nil {
		prometheus.RecordAuthzDecision(string(authErr.Code))
		return nil, authErr
	}
	prometheus.RecordAuthzDecision("ok")
	return result, nil
}

func (e *Engine) authorize(ctx context.Context, appName string) (*Success, *Error) {
	if e.store == nil {
		return nil, &Error{
			Code:    CodeConfigError,
			Message: "Database connection not available",
			Status:  http.StatusInternalServerError,
		}
	}

	user, err := e.users.CurrentUser(ctx)
	if err != nil {
		return nil, &Error{
			Code:    CodeDBError,
			Message: "Failed to resolve current user",
			Status:  http.StatusInternalServerError,
		}
	}
	if user == nil {
		return nil, &Error{
			Code:    CodeUnauthenticated,
			Message: "User is not authenticated",
			Status:  http.StatusUnauthorized,
		}
	}

	if user.IsSuperAdmin() {
		return nil, &Error{
			Code:    CodeSuperAdmin,
			Message: "Super admins cannot access member apps",
			Status:  http.StatusForbidden,
		}
	}

	if user.TenantID == nil || *user.TenantID == "" {
		return nil, &Error{
			Code:    CodeNoTenant,
			Message: "User is not assigned to an organization",
			Status:  http.StatusForbidden,
		}
	}

	tenant, err := e.store.GetTenantByID(ctx, *user.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &Error{
				Code:    CodeOrgNotFound,
				Message: "Organization not found",
				Status:  http.StatusNotFound,
			}
		}
		return nil, &Error{
			Code:    CodeDBError,
			Message: "Failed to fetch organization",
			Status:  http.StatusInternalServerError,
		}
	}

	result := &Success{User: user, Tenant: tenant}

	// Membership-only authorization: no app to resolve.
	if appName == "" {
		return result, nil
	}

	app, authErr := e.resolveApp(ctx, appName)
	if authErr != nil {
		return nil, authErr
	}
	result.App = app

	if _, err := e.store.GetEnablement(ctx, tenant.ID, app.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &Error{
				Code:    CodeAppNotEnabled,
				Message: "App not enabled for your organization",
				Status:  http.StatusForbidden,
			}
		}
		return nil, &Error{
			Code:    CodeDBError,
			Message: "Failed to verify app access",
			Status:  http.StatusInternalServerError,
		}
	}

	return result, nil
}

// resolveApp looks the app up by exact name and, only when that misses,
// scans the catalog case-insensitively. Exact matches always win, keeping
// the lookup deterministic while tolerating display-name casing.
func (e *Engine) resolveApp(ctx context.Context, appName string) (*AppRef, *Error) {
	app, err := e.store.GetAppByName(ctx, appName)
	if err == nil {
		return &AppRef{ID: app.ID, Name: app.Name}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, &Error{
			Code:    CodeDBError,
			Message: "Failed to query application",
			Status:  http.StatusInternalServerError,
		}
	}

	apps, err := e.store.ListApps(ctx)
	if err != nil {
		return nil, &Error{
			Code:    CodeDBError,
			Message: "Failed to query application",
			Status:  http.StatusInternalServerError,
		}
	}
	for i := range apps {
		if strings.EqualFold(apps[i].Name, appName) {
			return &AppRef{ID: apps[i].ID, Name: apps[i].Name}, nil
		}
	}

	return nil, &Error{
		Code:    CodeAppNotFound,
		Message: fmt.Sprintf("App '%s' not found", appName),
		Status:  http.StatusNotFound,
	}
}
