package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"user-table-service/pkg/version"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger func(ctx context.Context) error

// SystemHandler serves health and build information.
type SystemHandler struct {
	service string
	checks  map[string]Pinger
	info    version.Info
}

// NewSystemHandler creates a SystemHandler. checks maps a dependency name to its probe.
func NewSystemHandler(service string, info version.Info, checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{service: service, checks: checks, info: info}
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":       state,
		"service":      h.service,
		"dependencies": deps,
	})
}

// Version handles GET /version
func (h *SystemHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, h.info)
}
