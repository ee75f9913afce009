package http

import (
	"LinkGate-Backend/internal/analytics"
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger reports storage reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsSource exposes recorder counters.
type StatsSource interface {
	Stats() analytics.RecorderStats
}

// HealthHandler serves liveness, readiness and metrics.
type HealthHandler struct {
	storage   Pinger
	recorder  StatsSource
	version   string
	startedAt time.Time
	log       *zap.Logger
}

func NewHealthHandler(storage Pinger, recorder StatsSource, version string, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		storage:   storage,
		recorder:  recorder,
		version:   version,
		startedAt: time.Now(),
		log:       log,
	}
}

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	DatabaseStatus string    `json:"database_status"`
	Uptime         string    `json:"uptime,omitempty"`
}

// MetricsResponse is the body of /metrics.
type MetricsResponse struct {
	UptimeSeconds int64                   `json:"uptime_seconds"`
	Recorder      analytics.RecorderStats `json:"click_recorder"`
}

// Health checks the database.
//
//	@Summary	Liveness check
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := h.storage.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
		h.log.Error("database health check failed", zap.Error(err))
	}

	status, code := "healthy", http.StatusOK
	if dbStatus != "healthy" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	writeJSON(w, HealthResponse{
		Status:         status,
		Timestamp:      time.Now(),
		Version:        h.version,
		DatabaseStatus: dbStatus,
		Uptime:         time.Since(h.startedAt).Round(time.Second).String(),
	}, code)
}

// Ready additionally requires the click recorder to be running.
//
//	@Summary	Readiness check
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ready", Timestamp: time.Now(), Version: h.version, DatabaseStatus: "healthy"}
	code := http.StatusOK

	if err := h.storage.Ping(ctx); err != nil {
		resp.Status, resp.DatabaseStatus, code = "not_ready", "unhealthy", http.StatusServiceUnavailable
	} else if !h.recorder.Stats().Running {
		resp.Status, code = "not_ready", http.StatusServiceUnavailable
	}
	writeJSON(w, resp, code)
}

// Metrics reports recorder counters.
//
//	@Summary	Service metrics
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	MetricsResponse
//	@Router		/metrics [get]
func (h *HealthHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, MetricsResponse{
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Recorder:      h.recorder.Stats(),
	}, http.StatusOK)
}
