// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/bizdesk/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Sessions  SessionManager
	Files     storage.Store
	Version   string
	StoreMode string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Import ImportHandler
	File   FileHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Version, deps.StoreMode, deps.Sessions),
		Import: NewImportHandler(deps.Sessions, deps.Files),
		File:   NewFileHandler(deps.Files),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Import wizard sessions
	imports := e.Group("/api/imports")
	imports.POST("", handlers.Import.HandleCreateSession)
	imports.GET("/:sessionId", handlers.Import.HandleGetSession)
	imports.POST("/:sessionId/entity-type", handlers.Import.HandleSelectEntityType)
	imports.POST("/:sessionId/upload", handlers.Import.HandleUpload)
	imports.GET("/:sessionId/mapping", handlers.Import.HandleGetMapping)
	imports.PUT("/:sessionId/mapping", handlers.Import.HandlePutMapping)
	imports.POST("/:sessionId/preview", handlers.Import.HandlePreview)
	imports.GET("/:sessionId/preview/msgpack", handlers.Import.HandlePreviewMsgpack)
	imports.POST("/:sessionId/back", handlers.Import.HandleBack)
	imports.POST("/:sessionId/commit", handlers.Import.HandleCommit)
	imports.GET("/:sessionId/result", handlers.Import.HandleResult)
	imports.POST("/:sessionId/keepalive", handlers.Import.HandleKeepAlive)
	imports.DELETE("/:sessionId", handlers.Import.HandleDeleteSession)

	// Stored upload files
	files := e.Group("/api/files")
	files.POST("/upload", handlers.File.HandleUploadFile)
	files.GET("/recent", handlers.File.HandleRecentFiles)
	files.GET("/:id", handlers.File.HandleGetFile)
	files.DELETE("/:id", handlers.File.HandleDeleteFile)
}
