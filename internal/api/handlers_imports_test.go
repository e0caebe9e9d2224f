package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bizdesk/backend/internal/models"
	"github.com/bizdesk/backend/internal/session"
	"github.com/bizdesk/backend/internal/storage"
	"github.com/bizdesk/backend/internal/testutil"
)

func newTestHandlers(t *testing.T) (*echo.Echo, *Handlers, *testutil.MemoryStore) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler

	records := testutil.NewMemoryStore()
	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	handlers := NewHandlers(&Dependencies{
		Sessions:  session.NewManager(records),
		Files:     files,
		Version:   "test",
		StoreMode: "in-memory",
	})
	return e, handlers, records
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func callSession(e *echo.Echo, h func(echo.Context) error, req *http.Request, sessionID string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sessionID != "" {
		c.SetParamNames("sessionId")
		c.SetParamValues(sessionID)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHealthReportsStoreAndSessions(t *testing.T) {
	e, h, _ := newTestHandlers(t)

	req := jsonRequest(http.MethodPost, "/api/imports", map[string]string{"entityType": "lead"})
	req.Header.Set(TenantHeader, "tenant-1")
	require.Equal(t, http.StatusCreated, callSession(e, h.Import.HandleCreateSession, req, "").Code)

	rec := callSession(e, h.Health.HandleHealth, httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"records":"in-memory"`)
	assert.Contains(t, rec.Body.String(), `"activeSessions":1`)
}

func TestCreateSessionRequiresTenant(t *testing.T) {
	e, h, _ := newTestHandlers(t)

	req := jsonRequest(http.MethodPost, "/api/imports", map[string]string{"entityType": "transaction"})
	rec := callSession(e, h.Import.HandleCreateSession, req, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestImportWizardOverHTTP(t *testing.T) {
	e, h, records := newTestHandlers(t)

	// Create session
	req := jsonRequest(http.MethodPost, "/api/imports", map[string]string{
		"entityType": "transaction",
		"accountId":  "acct-1",
	})
	req.Header.Set(TenantHeader, "tenant-1")
	rec := callSession(e, h.Import.HandleCreateSession, req, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var view models.SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, models.StepUpload, view.Step)
	id := view.ID

	// Upload inline content
	csv := "Date,Amount,Memo\n2024-01-01,-50.00,Coffee\n2024-01-02,1200.00,Payroll\n"
	req = jsonRequest(http.MethodPost, "/upload", map[string]string{
		"fileName": "statement.csv",
		"content":  base64.StdEncoding.EncodeToString([]byte(csv)),
	})
	rec = callSession(e, h.Import.HandleUpload, req, id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"step":"map-columns"`)

	// Proposed mapping includes the detected columns and headers
	rec = callSession(e, h.Import.HandleGetMapping, httptest.NewRequest(http.MethodGet, "/mapping", nil), id)
	require.Equal(t, http.StatusOK, rec.Code)
	var mr mappingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mr))
	assert.Equal(t, []string{"Date", "Amount", "Memo"}, mr.Headers)
	assert.Equal(t, 0, mr.Mapping.Fields["date"])

	// Confirm the proposal unchanged
	req = jsonRequest(http.MethodPut, "/mapping", mr.Mapping)
	rec = callSession(e, h.Import.HandlePutMapping, req, id)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Preview
	rec = callSession(e, h.Import.HandlePreview, httptest.NewRequest(http.MethodPost, "/preview", nil), id)
	require.Equal(t, http.StatusOK, rec.Code)
	var pr previewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pr))
	assert.Len(t, pr.Candidates, 2)
	assert.Equal(t, 2, pr.Session.ValidCount)

	// Commit
	req = jsonRequest(http.MethodPost, "/commit", map[string]bool{"include_duplicates": false})
	rec = callSession(e, h.Import.HandleCommit, req, id)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, records.TransactionCount())

	// Result stays retrievable afterwards
	rec = callSession(e, h.Import.HandleResult, httptest.NewRequest(http.MethodGet, "/result", nil), id)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"imported":2`)
}

func TestUploadFromStoredFile(t *testing.T) {
	e, h, _ := newTestHandlers(t)

	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	h.Import = NewImportHandler(session.NewManager(testutil.NewMemoryStore()), files)

	info, err := files.SaveBytes("leads.csv", []byte("Company,Website\nAcme Corp,acme.com\n"))
	require.NoError(t, err)

	req := jsonRequest(http.MethodPost, "/api/imports", map[string]string{"entityType": "lead"})
	req.Header.Set(TenantHeader, "tenant-1")
	rec := callSession(e, h.Import.HandleCreateSession, req, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var view models.SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))

	req = jsonRequest(http.MethodPost, "/upload", map[string]string{"fileId": info.ID})
	rec = callSession(e, h.Import.HandleUpload, req, view.ID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rowCount":1`)
}

func TestSessionNotFoundIs404(t *testing.T) {
	e, h, _ := newTestHandlers(t)

	rec := callSession(e, h.Import.HandleGetSession, httptest.NewRequest(http.MethodGet, "/", nil), "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = callSession(e, h.Import.HandlePreview, httptest.NewRequest(http.MethodPost, "/preview", nil), "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestCommitOutOfOrderIsConflict(t *testing.T) {
	e, h, _ := newTestHandlers(t)

	req := jsonRequest(http.MethodPost, "/api/imports", map[string]string{"entityType": "transaction", "accountId": "a"})
	req.Header.Set(TenantHeader, "tenant-1")
	rec := callSession(e, h.Import.HandleCreateSession, req, "")
	var view models.SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))

	// Commit before upload/preview is a step violation.
	req = jsonRequest(http.MethodPost, "/commit", map[string]bool{"include_duplicates": false})
	rec = callSession(e, h.Import.HandleCommit, req, view.ID)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPreviewStoreFailureIs500(t *testing.T) {
	e, h, records := newTestHandlers(t)

	req := jsonRequest(http.MethodPost, "/api/imports", map[string]string{"entityType": "transaction", "accountId": "a"})
	req.Header.Set(TenantHeader, "tenant-1")
	rec := callSession(e, h.Import.HandleCreateSession, req, "")
	var view models.SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))

	csv := "Date,Amount,Memo\n2024-01-01,-50.00,Coffee\n"
	req = jsonRequest(http.MethodPost, "/upload", map[string]string{
		"content": base64.StdEncoding.EncodeToString([]byte(csv)),
	})
	require.Equal(t, http.StatusOK, callSession(e, h.Import.HandleUpload, req, view.ID).Code)

	// A failing duplicate-check fetch is a server-side fault, not a bad request.
	records.FailFetch = errors.New("connection refused")
	rec = callSession(e, h.Import.HandlePreview, httptest.NewRequest(http.MethodPost, "/preview", nil), view.ID)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestPreviewMsgpackRoundTrip(t *testing.T) {
	e, h, _ := newTestHandlers(t)

	req := jsonRequest(http.MethodPost, "/api/imports", map[string]string{"entityType": "transaction", "accountId": "a"})
	req.Header.Set(TenantHeader, "tenant-1")
	rec := callSession(e, h.Import.HandleCreateSession, req, "")
	var view models.SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))

	csv := "Date,Amount,Memo\n2024-01-01,-50.00,Coffee\n"
	req = jsonRequest(http.MethodPost, "/upload", map[string]string{
		"content": base64.StdEncoding.EncodeToString([]byte(csv)),
	})
	require.Equal(t, http.StatusOK, callSession(e, h.Import.HandleUpload, req, view.ID).Code)
	require.Equal(t, http.StatusOK,
		callSession(e, h.Import.HandlePreview, httptest.NewRequest(http.MethodPost, "/preview", nil), view.ID).Code)

	rec = callSession(e, h.Import.HandlePreviewMsgpack, httptest.NewRequest(http.MethodGet, "/preview/msgpack", nil), view.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-msgpack", rec.Header().Get(echo.HeaderContentType))

	var candidates []models.CandidateEntity
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &candidates))
	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].IsValid)
}

func TestBackAndDeleteSession(t *testing.T) {
	e, h, _ := newTestHandlers(t)

	req := jsonRequest(http.MethodPost, "/api/imports", map[string]string{"entityType": "contact"})
	req.Header.Set(TenantHeader, "tenant-1")
	rec := callSession(e, h.Import.HandleCreateSession, req, "")
	var view models.SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))

	rec = callSession(e, h.Import.HandleBack, httptest.NewRequest(http.MethodPost, "/back", nil), view.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`"step":%q`, models.StepSelectType))

	rec = callSession(e, h.Import.HandleDeleteSession, httptest.NewRequest(http.MethodDelete, "/", nil), view.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = callSession(e, h.Import.HandleGetSession, httptest.NewRequest(http.MethodGet, "/", nil), view.ID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
