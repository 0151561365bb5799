package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khrees2412/cvbuilder/internal/auth"
	"github.com/khrees2412/cvbuilder/internal/database"
	"github.com/khrees2412/cvbuilder/internal/gateway"
	"github.com/khrees2412/cvbuilder/internal/history"
	"github.com/khrees2412/cvbuilder/internal/stats"
	"github.com/khrees2412/cvbuilder/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	tokens *auth.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := database.OpenSQLite(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenIssuer("test-secret", "cvbuilder", time.Hour)
	srv := New(gateway.New(store, logger), history.New(store, logger), store, tokens, logger)
	return &testServer{router: srv.Router(), tokens: tokens}
}

func (ts *testServer) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		token, err := ts.tokens.Issue(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func sampleDocument() models.CVDocument {
	doc := models.NewDocument()
	doc.PersonalData = models.PersonalData{FullName: "Ana Silva", Email: "ana@x.com"}
	doc.Skills = "Go, SQL"
	return doc
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{name: "valid", header: "Bearer abc.def", expected: "abc.def"},
		{name: "lowercase scheme", header: "bearer abc", expected: "abc"},
		{name: "missing", header: "", expected: ""},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz", expected: ""},
		{name: "no token", header: "Bearer", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.expected, extractBearerToken(c))
		})
	}
}

func TestHealthzNeedsNoToken(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRejectsMissingAndInvalidTokens(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/cvs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/cvs", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateGetUpdateDeleteCV(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/cvs", "user-1", saveRequest{Title: "Backend CV", Document: sampleDocument()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[models.SavedCV](t, w)
	require.NotEmpty(t, created.Document.ID)
	id := created.Document.ID

	w = ts.do(t, http.MethodGet, "/api/cvs/"+id, "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana Silva", decodeBody[models.SavedCV](t, w).Document.PersonalData.FullName)

	doc := created.Document
	doc.Skills = "Go, SQL, Kafka"
	w = ts.do(t, http.MethodPut, "/api/cvs/"+id, "user-1", saveRequest{Title: "Backend CV v2", Document: doc})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeBody[models.SavedCV](t, w)
	assert.Equal(t, id, updated.Document.ID)
	assert.Equal(t, "Backend CV v2", updated.Title)

	w = ts.do(t, http.MethodGet, "/api/cvs/"+id+"/history", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decodeBody[[]models.CVHistoryEntry](t, w)
	require.Len(t, entries, 1)
	assert.Equal(t, "Backend CV", entries[0].Title)
	assert.Equal(t, "Go, SQL", entries[0].Document.Skills)

	w = ts.do(t, http.MethodDelete, "/api/cvs/"+id, "user-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/cvs/"+id, "user-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateIgnoresClientSuppliedID(t *testing.T) {
	ts := newTestServer(t)
	doc := sampleDocument()
	doc.ID = "client-chosen"

	w := ts.do(t, http.MethodPost, "/api/cvs", "user-1", saveRequest{Title: "CV", Document: doc})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEqual(t, "client-chosen", decodeBody[models.SavedCV](t, w).Document.ID)
}

func TestCVsAreScopedToTokenOwner(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/cvs", "user-1", saveRequest{Title: "Mine", Document: sampleDocument()})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody[models.SavedCV](t, w).Document.ID

	w = ts.do(t, http.MethodGet, "/api/cvs", "user-2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[[]models.SavedCV](t, w))

	w = ts.do(t, http.MethodGet, "/api/cvs/"+id, "user-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/cvs/"+id, "user-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveErrorsMapToStatusCodes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/cvs", "user-1", saveRequest{Title: "   ", Document: sampleDocument()})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(t, http.MethodPut, "/api/cvs/missing", "user-1", saveRequest{Title: "CV", Document: sampleDocument()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/cvs", strings.NewReader("{"))
	token, err := ts.tokens.Issue("user-1")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	doc := sampleDocument()
	doc.SelectedTemplate = models.TemplateClassic
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/cvs", "user-1", saveRequest{Title: "A", Document: doc}).Code)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/cvs", "user-2", saveRequest{Title: "B", Document: sampleDocument()}).Code)

	w := ts.do(t, http.MethodGet, "/api/stats", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	st := decodeBody[stats.Statistics](t, w)
	assert.Equal(t, 2, st.TotalCVs)
	assert.Equal(t, 1, st.User.TotalCVs)
	assert.Equal(t, "classic", st.User.MostUsedDesign)
}

func TestRenderReturnsHTML(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/render", "user-1", sampleDocument())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Ana Silva")
	assert.Contains(t, w.Body.String(), `id="cv-preview"`)
}
