package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"zvgcli/internal/contacts"
	"zvgcli/internal/infrastructure"
)

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth reports one dependency's state inside a HealthStatus.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthService answers health probes. The collector is optional; without it
// the runtime block falls back to direct runtime package reads.
type HealthService struct {
	version   string
	startTime time.Time
	store     contacts.Store
	collector *infrastructure.SystemMetricsCollector
	logger    *slog.Logger
}

// NewHealthService creates a health service.
func NewHealthService(version string, store contacts.Store, collector *infrastructure.SystemMetricsCollector, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		startTime: time.Now(),
		store:     store,
		collector: collector,
		logger:    logger,
	}
}

// HealthCheck returns the overall state including the contact store probe.
// A failing store degrades the status instead of failing the probe, since
// searching still works without suppression.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   hs.runtimeStats(ctx),
		Services:  make(map[string]interface{}),
	}

	storeHealth := hs.checkStore(ctx)
	status.Services["contacts"] = storeHealth
	if storeHealth.Status != "ok" {
		status.Status = "degraded"
	}

	hs.logger.DebugContext(ctx, "health check",
		slog.String("status", status.Status),
		slog.String("contacts", storeHealth.Status))
	return status
}

// LivenessCheck is the cheap probe for process liveness.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// Version returns build and runtime identification.
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) runtimeStats(ctx context.Context) map[string]interface{} {
	if hs.collector != nil {
		return hs.collector.GetCurrentStats(ctx).FormatStats()
	}
	return map[string]interface{}{
		"goroutines":     runtime.NumGoroutine(),
		"go_version":     runtime.Version(),
		"uptime_seconds": time.Since(hs.startTime).Seconds(),
	}
}

func (hs *HealthService) checkStore(ctx context.Context) ServiceHealth {
	if hs.store == nil {
		return ServiceHealth{Status: "disabled", Message: "no contact store configured"}
	}

	history, err := hs.store.Load(ctx)
	if err != nil {
		return ServiceHealth{
			Status:  "error",
			Message: fmt.Sprintf("contact store: %v", err),
		}
	}
	return ServiceHealth{
		Status:  "ok",
		Message: fmt.Sprintf("%d history entries", len(history)),
	}
}
