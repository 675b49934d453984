package handler

import (
	"context"
	"net/http"

	"github.com/aditya/go-gigs/pkg/utils"
	"github.com/go-chi/chi/v5"
)

// Checker is a dependency that can report its health.
type Checker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Checker
}

func NewHealthHandler(checks map[string]Checker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
}

// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	services := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Health(r.Context()); err != nil {
			services[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		services[name] = "up"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	utils.JSON(w, status, map[string]interface{}{
		"status":   overall,
		"services": services,
	})
}
