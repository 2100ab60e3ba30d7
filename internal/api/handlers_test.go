package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmorales/devbank-mcp/internal/storage"
	"github.com/pmorales/devbank-mcp/pkg/types"
)

func setupTestServer(t *testing.T) (*Server, storage.Store) {
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(store, logger, ":0"), store
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func createTestDiagram(t *testing.T, s *Server, name string) int64 {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/api/diagrams", map[string]interface{}{
		"name":    name,
		"type":    "architecture",
		"content": "<mxGraphModel/>",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	id := env.Data.(map[string]interface{})["id"].(float64)
	return int64(id)
}

func TestCreateDiagramEndpoint(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/diagrams", map[string]interface{}{
		"name":        "payments",
		"description": "payment flow",
		"type":        "sequence",
		"content":     map[string]interface{}{"nodes": []string{"gateway", "bank"}},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Empty(t, env.Error)
	assert.NotZero(t, env.Data.(map[string]interface{})["id"])
}

func TestCreateDiagramValidationError(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/diagrams", map[string]interface{}{
		"name":    "",
		"type":    "architecture",
		"content": "<x/>",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestCreateDiagramMalformedBody(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/diagrams", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDiagramEndpoint(t *testing.T) {
	s, _ := setupTestServer(t)
	id := createTestDiagram(t, s, "auth")

	rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/diagrams/%d", id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, "auth", data["name"])
	assert.Equal(t, "architecture", data["type"])
	assert.Equal(t, "medium", data["confidence_level"])
	assert.Equal(t, "raw", data["content_format"])
	assert.Equal(t, "<mxGraphModel/>", data["content"])
}

func TestGetDiagramNotFound(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/diagrams/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "not found")
}

func TestGetDiagramBadID(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/diagrams/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDiagramsEndpoint(t *testing.T) {
	s, _ := setupTestServer(t)
	createTestDiagram(t, s, "one")
	createTestDiagram(t, s, "two")

	rec := doRequest(t, s, http.MethodGet, "/api/diagrams", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	items := env.Data.([]interface{})
	require.Len(t, items, 2)
	// list results exclude content
	for _, item := range items {
		m := item.(map[string]interface{})
		assert.NotContains(t, m, "content")
	}
}

func TestListDiagramsByTypeEndpoint(t *testing.T) {
	s, store := setupTestServer(t)
	createTestDiagram(t, s, "arch")
	seedDiagram(t, store, "states", "state")

	rec := doRequest(t, s, http.MethodGet, "/api/diagrams?type=state", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	items := env.Data.([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "states", items[0].(map[string]interface{})["name"])

	rec = doRequest(t, s, http.MethodGet, "/api/diagrams?type=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateDiagramEndpoint(t *testing.T) {
	s, _ := setupTestServer(t)
	id := createTestDiagram(t, s, "before")

	rec := doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/diagrams/%d", id), map[string]interface{}{
		"name": "after",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/diagrams/%d", id), nil)
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, "after", data["name"])
	// content was not in the update body and is untouched
	assert.Equal(t, "<mxGraphModel/>", data["content"])
}

func TestUpdateDiagramNotFound(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/diagrams/9999", map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteDiagramEndpoint(t *testing.T) {
	s, _ := setupTestServer(t)
	id := createTestDiagram(t, s, "doomed")

	rec := doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/diagrams/%d", id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/diagrams/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyDiagramEndpoint(t *testing.T) {
	s, _ := setupTestServer(t)
	id := createTestDiagram(t, s, "reviewed")

	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/diagrams/%d/verify", id), map[string]interface{}{
		"verified_by": "alice",
		"status":      "approved",
		"notes":       "matches production",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/diagrams/%d", id), nil)
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, "verified", data["confidence_level"])
	assert.NotNil(t, data["last_verified_at"])
}

func TestVerifyDiagramBadStatus(t *testing.T) {
	s, _ := setupTestServer(t)
	id := createTestDiagram(t, s, "d")

	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/diagrams/%d/verify", id), map[string]interface{}{
		"verified_by": "alice",
		"status":      "maybe",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchDiagramsEndpoint(t *testing.T) {
	s, _ := setupTestServer(t)
	createTestDiagram(t, s, "auth service")
	createTestDiagram(t, s, "billing pipeline")

	rec := doRequest(t, s, http.MethodGet, "/api/diagrams/search?q=show+me+the+billing+diagram", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	items := env.Data.([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "billing pipeline", items[0].(map[string]interface{})["name"])
}

func TestSearchDiagramsMissingQuery(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/diagrams/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchDiagramsMinConfidence(t *testing.T) {
	s, _ := setupTestServer(t)
	verified := createTestDiagram(t, s, "trusted flow")
	createTestDiagram(t, s, "untrusted flow")

	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/diagrams/%d/verify", verified), map[string]interface{}{
		"verified_by": "alice",
		"status":      "approved",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/diagrams/search?q=flow&min_confidence=high", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	items := env.Data.([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "trusted flow", items[0].(map[string]interface{})["name"])

	rec = doRequest(t, s, http.MethodGet, "/api/diagrams/search?q=flow&min_confidence=certain", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// seedDiagram inserts a diagram directly through the store
func seedDiagram(t *testing.T, store storage.Store, name, dtype string) int64 {
	t.Helper()
	id, err := store.CreateDiagram(context.Background(), name, "", types.DiagramType(dtype), types.RawContent("<x/>"))
	require.NoError(t, err)
	return id
}
