package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmorales/devbank-mcp/internal/storage"
)

func setupTestServer(t *testing.T) *Server {
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(store, logger)
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Arguments = args
	return request
}

// toolEnvelope is the decoded response envelope shared by every operation
type toolEnvelope struct {
	Status    string          `json:"status"`
	RequestID string          `json:"request_id"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) toolEnvelope {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var env toolEnvelope
	require.NoError(t, json.Unmarshal([]byte(text.Text), &env))
	assert.NotEmpty(t, env.RequestID)
	assert.NotEmpty(t, env.Timestamp)
	return env
}

func mustCreateDiagram(t *testing.T, s *Server, name string) int64 {
	t.Helper()
	result, err := s.handleCreateDiagram(context.Background(), toolRequest(map[string]interface{}{
		"name":    name,
		"type":    "architecture",
		"content": "<mxGraphModel/>",
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)

	var data struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.ID
}

func TestCreateDiagramTool(t *testing.T) {
	s := setupTestServer(t)

	result, err := s.handleCreateDiagram(context.Background(), toolRequest(map[string]interface{}{
		"name":        "services",
		"description": "service map",
		"type":        "component",
		"content":     map[string]interface{}{"nodes": []interface{}{"api", "db"}},
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	assert.Equal(t, "success", env.Status)
	assert.Empty(t, env.Error)
}

func TestCreateDiagramToolValidation(t *testing.T) {
	s := setupTestServer(t)

	// Domain failures come back inside the envelope, not as a Go error
	result, err := s.handleCreateDiagram(context.Background(), toolRequest(map[string]interface{}{
		"name":    "x",
		"type":    "flowchart",
		"content": "<x/>",
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	assert.Equal(t, "error", env.Status)
	assert.NotEmpty(t, env.Error)
}

func TestGetDiagramTool(t *testing.T) {
	s := setupTestServer(t)
	id := mustCreateDiagram(t, s, "auth")

	result, err := s.handleGetDiagram(context.Background(), toolRequest(map[string]interface{}{
		"id": float64(id),
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "auth", data["name"])
	assert.Equal(t, "medium", data["confidence_level"])
	assert.Equal(t, "raw", data["content_format"])
	assert.Equal(t, "<mxGraphModel/>", data["content"])
	assert.Contains(t, data, "relationships")
}

func TestGetDiagramToolNotFound(t *testing.T) {
	s := setupTestServer(t)

	result, err := s.handleGetDiagram(context.Background(), toolRequest(map[string]interface{}{
		"id": float64(9999),
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Error, "not found")
}

func TestGetDiagramToolMissingID(t *testing.T) {
	s := setupTestServer(t)

	result, err := s.handleGetDiagram(context.Background(), toolRequest(map[string]interface{}{}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	assert.Equal(t, "error", env.Status)
}

func TestGetDiagramsToolExcludesContent(t *testing.T) {
	s := setupTestServer(t)
	mustCreateDiagram(t, s, "one")
	mustCreateDiagram(t, s, "two")

	result, err := s.handleGetDiagrams(context.Background(), toolRequest(nil))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)

	var data []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data, 2)
	for _, entry := range data {
		assert.NotContains(t, entry, "content")
	}
}

func TestGetDiagramsByTypeTool(t *testing.T) {
	s := setupTestServer(t)
	mustCreateDiagram(t, s, "arch one")

	result, err := s.handleGetDiagramsByType(context.Background(), toolRequest(map[string]interface{}{
		"type": "state",
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)

	var data []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Empty(t, data)

	result, err = s.handleGetDiagramsByType(context.Background(), toolRequest(map[string]interface{}{
		"type": "bogus",
	}))
	require.NoError(t, err)
	env = decodeResult(t, result)
	assert.Equal(t, "error", env.Status)
}

func TestUpdateDiagramTool(t *testing.T) {
	s := setupTestServer(t)
	id := mustCreateDiagram(t, s, "before")

	result, err := s.handleUpdateDiagram(context.Background(), toolRequest(map[string]interface{}{
		"id":   float64(id),
		"name": "after",
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)

	var data struct {
		Updated bool `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Updated)
}

func TestUpdateDiagramToolMissing(t *testing.T) {
	s := setupTestServer(t)

	result, err := s.handleUpdateDiagram(context.Background(), toolRequest(map[string]interface{}{
		"id":   float64(9999),
		"name": "x",
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)

	var data struct {
		Updated bool `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.False(t, data.Updated)
}

func TestVerifyDiagramTool(t *testing.T) {
	s := setupTestServer(t)
	id := mustCreateDiagram(t, s, "reviewed")

	result, err := s.handleVerifyDiagram(context.Background(), toolRequest(map[string]interface{}{
		"id":          float64(id),
		"verified_by": "alice",
		"status":      "approved",
		"notes":       "checked against deploy",
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)

	result, err = s.handleGetDiagram(context.Background(), toolRequest(map[string]interface{}{
		"id": float64(id),
	}))
	require.NoError(t, err)
	env = decodeResult(t, result)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "verified", data["confidence_level"])
	assert.NotNil(t, data["last_verified_at"])
}

func TestSearchDiagramsTool(t *testing.T) {
	s := setupTestServer(t)
	mustCreateDiagram(t, s, "auth service")
	mustCreateDiagram(t, s, "billing pipeline")

	result, err := s.handleSearchDiagrams(context.Background(), toolRequest(map[string]interface{}{
		"query": "show me the billing diagram",
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)

	var data []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data, 1)
	assert.Equal(t, "billing pipeline", data[0]["name"])
}

func TestSearchDiagramsToolRequiresQuery(t *testing.T) {
	s := setupTestServer(t)

	result, err := s.handleSearchDiagrams(context.Background(), toolRequest(map[string]interface{}{}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	assert.Equal(t, "error", env.Status)
}

func mustCreateCategory(t *testing.T, s *Server, name string) {
	t.Helper()
	result, err := s.handleCreateNoteCategory(context.Background(), toolRequest(map[string]interface{}{
		"name": name,
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)
}

func TestCreateAndGetNoteTool(t *testing.T) {
	s := setupTestServer(t)
	mustCreateCategory(t, s, "decisions")

	result, err := s.handleCreateNote(context.Background(), toolRequest(map[string]interface{}{
		"title":    "use WAL mode",
		"content":  "single writer",
		"category": "decisions",
		"priority": float64(2),
		"tags":     []interface{}{"sqlite", "performance"},
		"context":  map[string]interface{}{"ticket": "DB-7"},
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)

	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	result, err = s.handleGetNote(context.Background(), toolRequest(map[string]interface{}{
		"id": float64(created.ID),
	}))
	require.NoError(t, err)
	env = decodeResult(t, result)
	require.Equal(t, "success", env.Status)

	var note map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &note))
	assert.Equal(t, "use WAL mode", note["title"])
	assert.Equal(t, "decisions", note["category"])
	assert.Equal(t, "active", note["status"]) // defaulted
	assert.Equal(t, float64(2), note["priority"])
	assert.ElementsMatch(t, []interface{}{"sqlite", "performance"}, note["tags"])
}

func TestCreateNoteToolUnknownCategory(t *testing.T) {
	s := setupTestServer(t)

	result, err := s.handleCreateNote(context.Background(), toolRequest(map[string]interface{}{
		"title":    "orphan",
		"category": "missing",
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Error, "not found")
}

func TestUpdateNoteToolCompletion(t *testing.T) {
	s := setupTestServer(t)
	mustCreateCategory(t, s, "general")

	result, err := s.handleCreateNote(context.Background(), toolRequest(map[string]interface{}{
		"title":    "finish this",
		"category": "general",
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	result, err = s.handleUpdateNote(context.Background(), toolRequest(map[string]interface{}{
		"id":     float64(created.ID),
		"status": "completed",
	}))
	require.NoError(t, err)
	env = decodeResult(t, result)
	require.Equal(t, "success", env.Status)

	result, err = s.handleGetNote(context.Background(), toolRequest(map[string]interface{}{
		"id": float64(created.ID),
	}))
	require.NoError(t, err)
	env = decodeResult(t, result)
	var note map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &note))
	assert.Equal(t, "completed", note["status"])
	assert.Contains(t, note, "completed_at")
}

func TestSearchNotesTool(t *testing.T) {
	s := setupTestServer(t)
	mustCreateCategory(t, s, "bugs")

	result, err := s.handleCreateNote(context.Background(), toolRequest(map[string]interface{}{
		"title":    "fix search crash",
		"content":  "nil filter panics",
		"category": "bugs",
		"tags":     []interface{}{"panic"},
	}))
	require.NoError(t, err)
	require.Equal(t, "success", decodeResult(t, result).Status)

	result, err = s.handleSearchNotes(context.Background(), toolRequest(map[string]interface{}{
		"tags": []interface{}{"panic", "unused"},
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)

	var notes []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "fix search crash", notes[0]["title"])
}

func TestLinkNotesTool(t *testing.T) {
	s := setupTestServer(t)
	mustCreateCategory(t, s, "general")

	createNote := func(title string) int64 {
		result, err := s.handleCreateNote(context.Background(), toolRequest(map[string]interface{}{
			"title":    title,
			"category": "general",
		}))
		require.NoError(t, err)
		env := decodeResult(t, result)
		require.Equal(t, "success", env.Status)
		var created struct {
			ID int64 `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &created))
		return created.ID
	}
	src := createNote("source")
	dst := createNote("target")

	result, err := s.handleLinkNotes(context.Background(), toolRequest(map[string]interface{}{
		"source_id": float64(src),
		"target_id": float64(dst),
		"link_type": "depends_on",
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)

	var data struct {
		Linked    bool `json:"linked"`
		Duplicate bool `json:"duplicate"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Linked)
	assert.False(t, data.Duplicate)

	// Same edge again is a reported no-op, still a success envelope
	result, err = s.handleLinkNotes(context.Background(), toolRequest(map[string]interface{}{
		"source_id": float64(src),
		"target_id": float64(dst),
		"link_type": "depends_on",
	}))
	require.NoError(t, err)
	env = decodeResult(t, result)
	require.Equal(t, "success", env.Status)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.False(t, data.Linked)
	assert.True(t, data.Duplicate)
}

func TestCreateTagToolIdempotent(t *testing.T) {
	s := setupTestServer(t)

	result, err := s.handleCreateTag(context.Background(), toolRequest(map[string]interface{}{
		"name": "sqlite",
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)
	var first struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &first))

	result, err = s.handleCreateTag(context.Background(), toolRequest(map[string]interface{}{
		"name":        "sqlite",
		"description": "storage engine",
	}))
	require.NoError(t, err)
	env = decodeResult(t, result)
	require.Equal(t, "success", env.Status)
	var second struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.Equal(t, first.ID, second.ID)
}

func TestRelationshipsInGetDiagram(t *testing.T) {
	s := setupTestServer(t)

	result, err := s.handleCreateDiagram(context.Background(), toolRequest(map[string]interface{}{
		"name": "rel",
		"type": "relationship",
		"content": map[string]interface{}{
			"relationships": []interface{}{
				map[string]interface{}{"source": "api", "target": "db", "type": "reads"},
			},
		},
	}))
	require.NoError(t, err)
	env := decodeResult(t, result)
	require.Equal(t, "success", env.Status)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	result, err = s.handleGetDiagram(context.Background(), toolRequest(map[string]interface{}{
		"id": float64(created.ID),
	}))
	require.NoError(t, err)
	env = decodeResult(t, result)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	rels := data["relationships"].([]interface{})
	require.Len(t, rels, 1)
	edge := rels[0].(map[string]interface{})
	assert.Equal(t, "api", edge["source"])
	assert.Equal(t, "db", edge["target"])
	assert.Equal(t, "reads", edge["type"])
}
