// handlers_imports.go - Import wizard session handlers
package api

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bizdesk/backend/internal/models"
	"github.com/bizdesk/backend/internal/parser"
	"github.com/bizdesk/backend/internal/session"
	"github.com/bizdesk/backend/internal/storage"
)

// TenantHeader carries the caller's tenant id. Access control happens
// upstream; the header is trusted here.
const TenantHeader = "X-Tenant-ID"

// ImportHandlerImpl implements the ImportHandler interface
type ImportHandlerImpl struct {
	sessions SessionManager
	files    storage.Store
}

// NewImportHandler creates a new import handler instance
func NewImportHandler(sessions SessionManager, files storage.Store) ImportHandler {
	return &ImportHandlerImpl{sessions: sessions, files: files}
}

// HandleCreateSession starts a new import session for the caller's tenant.
// The entity type may be supplied now or via the select step later.
func (h *ImportHandlerImpl) HandleCreateSession(c echo.Context) error {
	tenantID := c.Request().Header.Get(TenantHeader)
	if tenantID == "" {
		return NewValidationError(TenantHeader)
	}

	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	view, err := h.sessions.Create(tenantID, req.AccountID, models.EntityType(req.EntityType))
	if err != nil {
		return NewBadRequestError("failed to create session", err)
	}

	return c.JSON(http.StatusCreated, view)
}

// HandleGetSession returns the session status view.
func (h *ImportHandlerImpl) HandleGetSession(c echo.Context) error {
	id := c.Param("sessionId")
	view, ok := h.sessions.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, view)
}

// HandleSelectEntityType handles a deferred entity-type selection.
func (h *ImportHandlerImpl) HandleSelectEntityType(c echo.Context) error {
	id := c.Param("sessionId")

	var req selectEntityTypeRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.EntityType == "" {
		return NewValidationError("entityType")
	}

	if err := h.sessions.SelectEntityType(id, models.EntityType(req.EntityType)); err != nil {
		return mapSessionError(id, err)
	}

	view, _ := h.sessions.Get(id)
	return c.JSON(http.StatusOK, view)
}

// HandleUpload attaches the import file: either inline base64 content or a
// reference to a previously stored file.
func (h *ImportHandlerImpl) HandleUpload(c echo.Context) error {
	id := c.Param("sessionId")

	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	data, err := h.resolveUploadBytes(&req)
	if err != nil {
		return err
	}

	if err := h.sessions.Upload(id, data, req.delimiter()); err != nil {
		return mapSessionError(id, err)
	}

	view, _ := h.sessions.Get(id)
	return c.JSON(http.StatusOK, view)
}

// HandleGetMapping returns the current mapping together with the file's
// headers, so the client can render the column picker.
func (h *ImportHandlerImpl) HandleGetMapping(c echo.Context) error {
	id := c.Param("sessionId")

	m, headers, err := h.sessions.Mapping(id)
	if err != nil {
		return mapSessionError(id, err)
	}

	return c.JSON(http.StatusOK, mappingResponse{Mapping: m, Headers: headers})
}

// HandlePutMapping replaces the working mapping with the user's edits.
func (h *ImportHandlerImpl) HandlePutMapping(c echo.Context) error {
	id := c.Param("sessionId")

	var m models.FieldMapping
	if err := c.Bind(&m); err != nil {
		return NewBadRequestError("invalid mapping body", err)
	}

	if err := h.sessions.ConfirmMapping(id, &m); err != nil {
		return mapSessionError(id, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandlePreview runs transform, matching and duplicate detection, and
// returns the annotated candidate rows.
func (h *ImportHandlerImpl) HandlePreview(c echo.Context) error {
	id := c.Param("sessionId")

	candidates, err := h.sessions.Preview(c.Request().Context(), id)
	if err != nil {
		return mapSessionError(id, err)
	}

	view, _ := h.sessions.Get(id)
	return c.JSON(http.StatusOK, previewResponse{Session: view, Candidates: candidates})
}

// HandlePreviewMsgpack serves the computed preview in MessagePack form for
// large files where the JSON payload gets heavy.
func (h *ImportHandlerImpl) HandlePreviewMsgpack(c echo.Context) error {
	id := c.Param("sessionId")

	candidates, err := h.sessions.Candidates(id)
	if err != nil {
		return mapSessionError(id, err)
	}

	payload, err := msgpack.Marshal(candidates)
	if err != nil {
		return NewInternalError("failed to encode preview", err)
	}
	return c.Blob(http.StatusOK, "application/x-msgpack", payload)
}

// HandleBack steps the wizard backwards one step.
func (h *ImportHandlerImpl) HandleBack(c echo.Context) error {
	id := c.Param("sessionId")

	if err := h.sessions.Back(id); err != nil {
		return mapSessionError(id, err)
	}

	view, _ := h.sessions.Get(id)
	return c.JSON(http.StatusOK, view)
}

// HandleCommit triggers the import of the accepted candidates. A commit
// already in flight yields 409; the client must not retry blindly.
func (h *ImportHandlerImpl) HandleCommit(c echo.Context) error {
	id := c.Param("sessionId")

	var req commitRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	result, err := h.sessions.Commit(c.Request().Context(), id, req.IncludeDuplicates)
	if err != nil {
		return mapSessionError(id, err)
	}
	return c.JSON(http.StatusOK, result)
}

// HandleResult returns the commit outcome once available.
func (h *ImportHandlerImpl) HandleResult(c echo.Context) error {
	id := c.Param("sessionId")

	if _, ok := h.sessions.Get(id); !ok {
		return NewNotFoundError("session", id)
	}
	result, ok := h.sessions.Result(id)
	if !ok {
		return NewConflictError("no result available yet")
	}
	return c.JSON(http.StatusOK, result)
}

// HandleDeleteSession abandons a session.
func (h *ImportHandlerImpl) HandleDeleteSession(c echo.Context) error {
	id := c.Param("sessionId")
	if !h.sessions.Delete(id) {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleKeepAlive extends session lifetime while the wizard is open.
func (h *ImportHandlerImpl) HandleKeepAlive(c echo.Context) error {
	id := c.Param("sessionId")
	if !h.sessions.Touch(id) {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// Request/Response types

type createSessionRequest struct {
	EntityType string `json:"entityType"`
	AccountID  string `json:"accountId"`
}

type selectEntityTypeRequest struct {
	EntityType string `json:"entityType"`
}

type uploadRequest struct {
	FileID    string `json:"fileId"`
	FileName  string `json:"fileName"`
	Content   string `json:"content"` // base64-encoded file bytes
	Delimiter string `json:"delimiter"`
}

func (r *uploadRequest) delimiter() rune {
	if r.Delimiter == "" {
		return ','
	}
	return []rune(r.Delimiter)[0]
}

type mappingResponse struct {
	Mapping *models.FieldMapping `json:"mapping"`
	Headers []string             `json:"headers"`
}

type previewResponse struct {
	Session    *models.SessionView      `json:"session"`
	Candidates []models.CandidateEntity `json:"candidates"`
}

type commitRequest struct {
	IncludeDuplicates bool `json:"include_duplicates"`
}

// Helpers

func (h *ImportHandlerImpl) resolveUploadBytes(req *uploadRequest) ([]byte, error) {
	switch {
	case req.FileID != "":
		data, err := h.files.ReadBytes(req.FileID)
		if err != nil {
			return nil, NewNotFoundError("file", req.FileID)
		}
		return data, nil
	case req.Content != "":
		data, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			return nil, NewBadRequestError("content is not valid base64", err)
		}
		return data, nil
	default:
		return nil, NewValidationError("fileId or content")
	}
}

// mapSessionError translates domain errors into API errors.
func mapSessionError(id string, err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return NewNotFoundError("session", id)
	case errors.Is(err, session.ErrCommitInFlight):
		return NewConflictError(err.Error())
	case errors.Is(err, session.ErrInvalidTransition):
		return NewConflictError(err.Error())
	case errors.Is(err, session.ErrNothingToImport):
		return NewBadRequestError("nothing to import", err)
	case errors.Is(err, session.ErrStoreUnavailable):
		return NewInternalError("record store failure", err)
	case errors.Is(err, parser.ErrNoDataRows):
		return NewBadRequestError("file has no data rows", err)
	default:
		return NewBadRequestError("request failed", err)
	}
}
