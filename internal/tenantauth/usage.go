package tenantauth

import (
	"context"
	"encoding/json"

	"console-service/internal/model"
	"console-service/internal/store"
	"console-service/prometheus"

	"go.uber.org/zap"
)

// Recorder writes usage log entries. Recording is strictly best-effort:
// a failed write must never fail the action that triggered it.
type Recorder struct {
	store store.Store
	log   *zap.Logger
}

// NewRecorder creates a usage recorder.
func NewRecorder(st store.Store, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.L()
	}
	return &Recorder{store: st, log: log}
}

// Record persists one usage log entry. Failures are logged for operators
// and swallowed.
func (r *Recorder) Record(ctx context.Context, userID, tenantID, appID, action string, metadata map[string]any) {
	entry := &model.UsageLog{
		UserID:   userID,
		TenantID: tenantID,
		AppID:    appID,
		Action:   action,
		Metadata: "{}",
	}

	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			r.log.Warn("Failed to encode usage metadata",
				zap.String("action", action),
				zap.Error(err))
		} else {
			entry.Metadata = string(raw)
		}
	}

	if err := r.store.CreateUsageLog(ctx, entry); err != nil {
		prometheus.RecordUsageLogWrite("failed")
		r.log.Warn("Failed to record usage",
			zap.String("user_id", userID),
			zap.String("tenant_id", tenantID),
			zap.String("app_id", appID),
			zap.String("action", action),
			zap.Error(err))
		return
	}
	prometheus.RecordUsageLogWrite("ok")
}
