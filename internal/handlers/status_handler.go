package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/interfaces"
)

// healthProbeTimeout bounds the outbound metrics health check so a dead
// provider cannot stall the health endpoint.
const healthProbeTimeout = 2 * time.Second

// StatusHandler reports process health and the readiness of the two remote
// dependencies.
type StatusHandler struct {
	metrics   interfaces.MetricsService
	enhancer  interfaces.AIEnhancer
	startTime time.Time
	logger    arbor.ILogger
}

// NewStatusHandler creates a new status handler anchored at process start.
func NewStatusHandler(metrics interfaces.MetricsService, enhancer interfaces.AIEnhancer, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		metrics:   metrics,
		enhancer:  enhancer,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthHandler handles GET /health
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	services := map[string]bool{
		"metrics": h.metrics != nil && h.metrics.Healthy(ctx),
		"ai":      h.enhancer != nil && h.enhancer.Available(),
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"uptime":   time.Since(h.startTime).Round(time.Second).String(),
		"services": services,
	})
}
