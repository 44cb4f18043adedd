// internal/handlers/health.go
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/logistics-be/internal/core/ports"
	"github.com/ammerola/logistics-be/internal/pkg/config"
)

// SchemaVersioner reports the applied migration version of the ledger schema.
type SchemaVersioner interface {
	Version(ctx context.Context) (uint, bool, error)
}

// QueueInspector reads the state of an asynq queue.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// HealthDeps lists what the health endpoints probe. Nil members are not
// configured in this process and are left out of the report.
type HealthDeps struct {
	Database ports.Database
	Schema   SchemaVersioner
	Redis    *redis.Client
	Queues   QueueInspector
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	deps      HealthDeps
	config    *config.Config
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(deps HealthDeps, cfg *config.Config, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		deps:      deps,
		config:    cfg,
		logger:    logger.With(slog.String("handler", "health")),
		startTime: time.Now(),
	}
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Uptime      string                 `json:"uptime"`
	Timestamp   time.Time              `json:"timestamp"`
	Drivers     DriverInfo             `json:"drivers"`
	Services    map[string]ServiceInfo `json:"services"`
}

// DriverInfo names the backends this process was started with.
type DriverInfo struct {
	Storage           string `json:"storage"`
	Locking           string `json:"locking"`
	Cache             bool   `json:"cache"`
	NotificationQueue string `json:"notification_queue"`
}

// ServiceInfo represents the status of a service dependency
type ServiceInfo struct {
	Status       string                 `json:"status"`
	Message      string                 `json:"message,omitempty"`
	ResponseTime string                 `json:"response_time,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// Health handles the /health endpoint
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := HealthStatus{
		Status:      statusHealthy,
		Version:     h.config.App.Version,
		Environment: h.config.App.Environment,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:   time.Now(),
		Drivers: DriverInfo{
			Storage:           h.config.Storage.Driver,
			Locking:           h.config.Locking.Driver,
			Cache:             h.config.Cache.Enabled,
			NotificationQueue: h.config.Notifications.Queue,
		},
		Services: make(map[string]ServiceInfo),
	}

	report := func(name string, info ServiceInfo) {
		health.Services[name] = info
		if info.Status != statusHealthy {
			health.Status = statusDegraded
		}
	}

	if h.deps.Database != nil {
		report("database", h.checkDatabase(ctx))
	}
	if h.deps.Schema != nil {
		report("schema", h.checkSchema(ctx))
	}
	if h.deps.Redis != nil {
		report("redis", h.checkRedis(ctx))
	}
	if h.deps.Queues != nil {
		report("notifications", h.checkNotificationQueue(ctx))
	}

	statusCode := http.StatusOK
	if health.Status != statusHealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respondJSON(w, h.logger, statusCode, health)
}

// Readiness handles the /ready endpoint. The process is ready when the
// ledger store answers, its schema is clean, and Redis answers when locking
// or caching depends on it.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ready := true
	details := make(map[string]string)
	mark := func(name string, err error) {
		if err != nil {
			ready = false
			details[name] = "not ready"
			h.logger.WarnContext(ctx, "dependency not ready",
				slog.String("dependency", name),
				slog.String("error", err.Error()))
			return
		}
		details[name] = "ready"
	}

	if h.deps.Database != nil {
		mark("database", h.deps.Database.Ping(ctx))
	}
	if h.deps.Schema != nil {
		mark("schema", h.schemaError(ctx))
	}
	if h.deps.Redis != nil {
		mark("redis", h.deps.Redis.Ping(ctx).Err())
	}

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respondJSON(w, h.logger, statusCode, map[string]interface{}{
		"ready":   ready,
		"storage": h.config.Storage.Driver,
		"details": details,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) ServiceInfo {
	start := time.Now()

	if err := h.deps.Database.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "database health check failed",
			slog.String("error", err.Error()))
		return ServiceInfo{Status: statusUnhealthy, Message: err.Error()}
	}

	return ServiceInfo{
		Status:       statusHealthy,
		ResponseTime: time.Since(start).String(),
		Details:      h.deps.Database.Health(ctx),
	}
}

func (h *HealthHandler) checkSchema(ctx context.Context) ServiceInfo {
	version, dirty, err := h.deps.Schema.Version(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "schema version check failed",
			slog.String("error", err.Error()))
		return ServiceInfo{Status: statusUnhealthy, Message: err.Error()}
	}

	info := ServiceInfo{
		Status:  statusHealthy,
		Details: map[string]interface{}{"version": version, "dirty": dirty},
	}
	if dirty {
		info.Status = statusUnhealthy
		info.Message = "a migration failed part way; the schema needs manual repair"
	}
	return info
}

func (h *HealthHandler) schemaError(ctx context.Context) error {
	_, dirty, err := h.deps.Schema.Version(ctx)
	if err != nil {
		return err
	}
	if dirty {
		return errors.New("schema is dirty")
	}
	return nil
}

func (h *HealthHandler) checkRedis(ctx context.Context) ServiceInfo {
	start := time.Now()

	if err := h.deps.Redis.Ping(ctx).Err(); err != nil {
		h.logger.ErrorContext(ctx, "redis health check failed",
			slog.String("error", err.Error()))
		return ServiceInfo{Status: statusUnhealthy, Message: err.Error()}
	}

	stats := h.deps.Redis.PoolStats()
	return ServiceInfo{
		Status:       statusHealthy,
		ResponseTime: time.Since(start).String(),
		Details: map[string]interface{}{
			"total_conns": stats.TotalConns,
			"idle_conns":  stats.IdleConns,
		},
	}
}

// checkNotificationQueue reports how many lifecycle notifications are still
// waiting to be pushed. A queue that was never written to has no backlog.
func (h *HealthHandler) checkNotificationQueue(ctx context.Context) ServiceInfo {
	queue := h.config.Notifications.Queue

	qInfo, err := h.deps.Queues.GetQueueInfo(queue)
	if errors.Is(err, asynq.ErrQueueNotFound) {
		return ServiceInfo{
			Status:  statusHealthy,
			Details: map[string]interface{}{"queue": queue, "backlog": 0},
		}
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "notification queue check failed",
			slog.String("queue", queue),
			slog.String("error", err.Error()))
		return ServiceInfo{Status: statusUnhealthy, Message: err.Error()}
	}

	info := ServiceInfo{
		Status: statusHealthy,
		Details: map[string]interface{}{
			"queue":    queue,
			"backlog":  qInfo.Pending + qInfo.Scheduled + qInfo.Retry,
			"active":   qInfo.Active,
			"retry":    qInfo.Retry,
			"archived": qInfo.Archived,
			"latency":  qInfo.Latency.String(),
			"paused":   qInfo.Paused,
		},
	}
	if qInfo.Paused {
		info.Status = statusUnhealthy
		info.Message = "notification queue is paused"
	}
	return info
}
