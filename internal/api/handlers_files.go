// handlers_files.go - Stored upload file handlers
package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bizdesk/backend/internal/storage"
)

// FileHandlerImpl implements the FileHandler interface
type FileHandlerImpl struct {
	store storage.Store
}

// NewFileHandler creates a new file handler instance
func NewFileHandler(store storage.Store) FileHandler {
	return &FileHandlerImpl{store: store}
}

// HandleUploadFile stores a multipart file upload for later import.
func (h *FileHandlerImpl) HandleUploadFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewValidationError("file")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return NewInternalError("failed to open upload", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return NewInternalError("failed to read upload", err)
	}

	info, err := h.store.SaveBytes(fileHeader.Filename, data)
	if err != nil {
		return NewInternalError("failed to store file", err)
	}
	return c.JSON(http.StatusCreated, info)
}

// HandleRecentFiles lists stored files, most recent first.
func (h *FileHandlerImpl) HandleRecentFiles(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	files, err := h.store.List(limit)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for one stored file.
func (h *FileHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDeleteFile removes a stored file.
func (h *FileHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}
	return c.NoContent(http.StatusNoContent)
}
