package api

import (
	"net/http"

	"github.com/ashureev/taskboard/internal/buildinfo"
	"github.com/ashureev/taskboard/internal/config"
	"github.com/go-chi/chi/v5"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	cfg *config.Config
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// Health reports liveness along with the build and gateway wiring.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "healthy",
		"checks":  map[string]string{"api": "ok"},
		"version": buildinfo.Version,
		"mode":    string(buildinfo.CurrentMode()),
	}
	if h.cfg != nil {
		status["gateway_prefix"] = h.cfg.GatewayPrefix
	}

	JSON(w, http.StatusOK, status)
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
