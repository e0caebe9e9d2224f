// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version   string
	storeMode string
	sessions  SessionManager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, storeMode string, sessions SessionManager) HealthHandler {
	return &HealthHandlerImpl{
		version:   version,
		storeMode: storeMode,
		sessions:  sessions,
	}
}

// HandleHealth reports server health, the backing record store and the
// number of live import sessions.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"records":        h.storeMode,
		"activeSessions": h.sessions.ActiveSessions(),
	})
}
