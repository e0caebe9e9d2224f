// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/bizdesk/backend/internal/models"
)

// ImportHandler handles import wizard session operations
type ImportHandler interface {
	HandleCreateSession(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleSelectEntityType(c echo.Context) error
	HandleUpload(c echo.Context) error
	HandleGetMapping(c echo.Context) error
	HandlePutMapping(c echo.Context) error
	HandlePreview(c echo.Context) error
	HandlePreviewMsgpack(c echo.Context) error
	HandleBack(c echo.Context) error
	HandleCommit(c echo.Context) error
	HandleResult(c echo.Context) error
	HandleDeleteSession(c echo.Context) error
	HandleKeepAlive(c echo.Context) error
}

// FileHandler handles stored upload file operations
type FileHandler interface {
	HandleUploadFile(c echo.Context) error
	HandleRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SessionManager defines the interface for import session management
// This allows mocking in tests
type SessionManager interface {
	Create(tenantID, accountID string, entityType models.EntityType) (*models.SessionView, error)
	Get(id string) (*models.SessionView, bool)
	SelectEntityType(id string, entityType models.EntityType) error
	Upload(id string, data []byte, delimiter rune) error
	Mapping(id string) (*models.FieldMapping, []string, error)
	ConfirmMapping(id string, mapping *models.FieldMapping) error
	Preview(ctx context.Context, id string) ([]models.CandidateEntity, error)
	Candidates(id string) ([]models.CandidateEntity, error)
	Back(id string) error
	Commit(ctx context.Context, id string, includeDuplicates bool) (*models.ImportResult, error)
	Result(id string) (*models.ImportResult, bool)
	Delete(id string) bool
	Touch(id string) bool
	ActiveSessions() int
}
