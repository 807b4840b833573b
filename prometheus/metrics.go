package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "console_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Authorization decision counter by reason code ("ok" on success)
	AuthzDecisionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_authz_decisions_total",
			Help: "Total number of tenant authorization decisions by outcome code",
		},
		[]string{"code"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "invalid_password", "invalid_session", "db_error" etc.
	)

	// App execution counter
	AppExecutionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_app_executions_total",
			Help: "Total number of tenant app executions",
		},
		[]string{"app"},
	)

	// Usage log write counter
	UsageLogCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_usage_log_writes_total",
			Help: "Total number of usage log writes by result",
		},
		[]string{"result"}, // "ok" or "failed"
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)

	// Provider call duration
	ProviderCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_provider_call_duration_seconds",
			Help:    "Duration of outbound provider API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)

// Gauge metrics
var (
	// Active sessions
	ActiveSessionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "console_active_sessions",
			Help: "Number of currently active console sessions",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "console_info",
			Help: "Information about the console service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(AuthzDecisionCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(AppExecutionCounter)
	prometheus.MustRegister(UsageLogCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)
	prometheus.MustRegister(ProviderCallDuration)

	// Register gauges
	prometheus.MustRegister(ActiveSessionsGauge)
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// TrackProviderCall measures outbound provider call durations
func TrackProviderCall(provider string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		ProviderCallDuration.With(prometheus.Labels{
			"provider": provider,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			// Record metrics
			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthzDecision records the outcome of a tenant authorization check
func RecordAuthzDecision(code string) {
	AuthzDecisionCounter.With(prometheus.Labels{"code": code}).Inc()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordAppExecution records an execution of a tenant-scoped app
func RecordAppExecution(app string) {
	AppExecutionCounter.With(prometheus.Labels{"app": app}).Inc()
}

// RecordUsageLogWrite records the result of a usage log write
func RecordUsageLogWrite(result string) {
	UsageLogCounter.With(prometheus.Labels{"result": result}).Inc()
}

// IncreaseActiveSessions increments the active sessions gauge
func IncreaseActiveSessions() {
	ActiveSessionsGauge.Inc()
}

// DecreaseActiveSessions decrements the active sessions gauge
func DecreaseActiveSessions() {
	ActiveSessionsGauge.Dec()
}
