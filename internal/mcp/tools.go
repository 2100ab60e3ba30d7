package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pmorales/devbank-mcp/internal/query"
	"github.com/pmorales/devbank-mcp/internal/storage"
	"github.com/pmorales/devbank-mcp/pkg/types"
)

// Every operation responds with the same envelope:
//
//	{status: success|error, request_id, timestamp, data|error}
//
// Domain failures (validation, not found, storage) travel inside the
// envelope; a Go error is only returned for malformed tool invocations.

// success wraps data in a success envelope
func success(data interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"status":     "success",
		"request_id": uuid.NewString(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"data":       data,
	}))
}

// failure wraps an error message in an error envelope
func failure(message string) *mcp.CallToolResult {
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"status":     "error",
		"request_id": uuid.NewString(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"error":      message,
	}))
}

// fail maps a domain error to an error envelope, logging storage
// failures once at this boundary
func (s *Server) fail(op string, err error) *mcp.CallToolResult {
	if !types.IsValidation(err) && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("operation failed", "operation", op, "error", err)
	}
	return failure(err.Error())
}

// Diagram handlers

func (s *Server) handleGetDiagrams(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	diagrams, err := s.store.ListDiagrams(ctx)
	if err != nil {
		return s.fail("get_diagrams", err), nil
	}
	return success(diagramListJSON(diagrams)), nil
}

func (s *Server) handleGetDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}
	id, ok := getInt64(args, "id")
	if !ok {
		return failure("id parameter is required"), nil
	}

	diagram, err := s.store.GetDiagram(ctx, id)
	if err == storage.ErrNotFound {
		return failure(fmt.Sprintf("diagram %d not found", id)), nil
	}
	if err != nil {
		return s.fail("get_diagram", err), nil
	}

	out := diagramJSON(diagram)
	rels, err := s.store.ListRelationships(ctx, id)
	if err != nil {
		return s.fail("get_diagram", err), nil
	}
	out["relationships"] = relationshipListJSON(rels)
	return success(out), nil
}

func (s *Server) handleCreateDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}

	name := getStringDefault(args, "name", "")
	description := getStringDefault(args, "description", "")
	dtype := types.DiagramType(getStringDefault(args, "type", ""))

	content, err := contentFromArg(args["content"])
	if err != nil {
		return failure(err.Error()), nil
	}

	id, err := s.store.CreateDiagram(ctx, name, description, dtype, content)
	if err != nil {
		return s.fail("create_diagram", err), nil
	}
	return success(map[string]interface{}{"id": id}), nil
}

func (s *Server) handleUpdateDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}
	id, ok := getInt64(args, "id")
	if !ok {
		return failure("id parameter is required"), nil
	}

	var upd storage.DiagramUpdate
	if name, ok := args["name"].(string); ok {
		upd.Name = &name
	}
	if description, ok := args["description"].(string); ok {
		upd.Description = &description
	}
	if raw, ok := args["content"]; ok && raw != nil {
		content, err := contentFromArg(raw)
		if err != nil {
			return failure(err.Error()), nil
		}
		upd.Content = &content
	}

	updated, err := s.store.UpdateDiagram(ctx, id, upd)
	if err != nil {
		return s.fail("update_diagram", err), nil
	}
	return success(map[string]interface{}{"updated": updated}), nil
}

func (s *Server) handleVerifyDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}
	id, ok := getInt64(args, "id")
	if !ok {
		return failure("id parameter is required"), nil
	}
	verifiedBy := getStringDefault(args, "verified_by", "")
	status := types.VerificationStatus(getStringDefault(args, "status", ""))
	notes := getStringDefault(args, "notes", "")

	verified, err := s.store.VerifyDiagram(ctx, id, verifiedBy, status, notes)
	if err != nil {
		return s.fail("verify_diagram", err), nil
	}
	return success(map[string]interface{}{"verified": verified}), nil
}

func (s *Server) handleSearchDiagrams(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}
	q := getStringDefault(args, "query", "")
	if q == "" {
		return failure("query parameter is required"), nil
	}

	filter := storage.DiagramFilter{Terms: query.ExtractTerms(q)}
	if min := getStringDefault(args, "min_confidence", ""); min != "" {
		levels := query.LevelsAtOrAbove(types.ConfidenceLevel(min))
		if levels == nil {
			return failure(fmt.Sprintf("invalid min_confidence %q", min)), nil
		}
		filter.Confidence = levels
	}

	diagrams, err := s.store.SearchDiagrams(ctx, filter)
	if err != nil {
		return s.fail("search_diagrams", err), nil
	}
	return success(diagramListJSON(diagrams)), nil
}

func (s *Server) handleGetDiagramsByType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}
	dtype := types.DiagramType(getStringDefault(args, "type", ""))

	diagrams, err := s.store.ListDiagramsByType(ctx, dtype)
	if err != nil {
		return s.fail("get_diagrams_by_type", err), nil
	}
	return success(diagramListJSON(diagrams)), nil
}

// Note handlers

func (s *Server) handleCreateNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}

	note := storage.NewNote{
		Title:    getStringDefault(args, "title", ""),
		Content:  getStringDefault(args, "content", ""),
		Category: getStringDefault(args, "category", ""),
		Status:   types.NoteStatus(getStringDefault(args, "status", string(types.NoteActive))),
		Priority: types.Priority(getIntDefault(args, "priority", 0)),
		Tags:     getStringSlice(args, "tags"),
	}
	if sessionID, ok := args["session_id"].(string); ok {
		note.SessionID = &sessionID
	}
	if parentID, ok := getInt64(args, "parent_note_id"); ok {
		note.ParentNoteID = &parentID
	}
	if contextArg, ok := args["context"].(map[string]interface{}); ok {
		blob, err := json.Marshal(contextArg)
		if err != nil {
			return failure("context must be a JSON object"), nil
		}
		note.Context = blob
	}

	id, err := s.store.CreateNote(ctx, note)
	if err != nil {
		return s.fail("create_note", err), nil
	}
	return success(map[string]interface{}{"id": id}), nil
}

func (s *Server) handleGetNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}
	id, ok := getInt64(args, "id")
	if !ok {
		return failure("id parameter is required"), nil
	}

	note, err := s.store.GetNote(ctx, id)
	if err == storage.ErrNotFound {
		return failure(fmt.Sprintf("note %d not found", id)), nil
	}
	if err != nil {
		return s.fail("get_note", err), nil
	}
	return success(noteJSON(note)), nil
}

func (s *Server) handleUpdateNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}
	id, ok := getInt64(args, "id")
	if !ok {
		return failure("id parameter is required"), nil
	}

	var upd storage.NoteUpdate
	if title, ok := args["title"].(string); ok {
		upd.Title = &title
	}
	if content, ok := args["content"].(string); ok {
		upd.Content = &content
	}
	if category, ok := args["category"].(string); ok {
		upd.Category = &category
	}
	if status, ok := args["status"].(string); ok {
		ns := types.NoteStatus(status)
		upd.Status = &ns
	}
	if _, ok := args["priority"]; ok {
		p := types.Priority(getIntDefault(args, "priority", 0))
		upd.Priority = &p
	}
	if sessionID, ok := args["session_id"].(string); ok {
		upd.SessionID = &sessionID
	}
	if contextArg, ok := args["context"].(map[string]interface{}); ok {
		blob, err := json.Marshal(contextArg)
		if err != nil {
			return failure("context must be a JSON object"), nil
		}
		raw := json.RawMessage(blob)
		upd.Context = &raw
	}
	if _, ok := args["tags"]; ok {
		tags := getStringSlice(args, "tags")
		upd.Tags = &tags
	}

	updated, err := s.store.UpdateNote(ctx, id, upd)
	if err != nil {
		return s.fail("update_note", err), nil
	}
	return success(map[string]interface{}{"updated": updated}), nil
}

func (s *Server) handleSearchNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}

	filter := storage.NoteFilter{
		Query:     getStringDefault(args, "query", ""),
		Category:  getStringDefault(args, "category", ""),
		Status:    types.NoteStatus(getStringDefault(args, "status", "")),
		Tags:      getStringSlice(args, "tags"),
		SessionID: getStringDefault(args, "session_id", ""),
		Limit:     getIntDefault(args, "limit", 0),
	}
	if _, ok := args["priority"]; ok {
		p := types.Priority(getIntDefault(args, "priority", 0))
		filter.Priority = &p
	}

	notes, err := s.store.SearchNotes(ctx, filter)
	if err != nil {
		return s.fail("search_notes", err), nil
	}

	out := make([]map[string]interface{}, 0, len(notes))
	for _, note := range notes {
		out = append(out, noteJSON(note))
	}
	return success(out), nil
}

func (s *Server) handleLinkNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}
	sourceID, ok := getInt64(args, "source_id")
	if !ok {
		return failure("source_id parameter is required"), nil
	}
	targetID, ok := getInt64(args, "target_id")
	if !ok {
		return failure("target_id parameter is required"), nil
	}
	linkType := types.LinkType(getStringDefault(args, "link_type", ""))

	linked, err := s.store.LinkNotes(ctx, sourceID, targetID, linkType)
	if err != nil {
		return s.fail("link_notes", err), nil
	}
	return success(map[string]interface{}{"linked": linked, "duplicate": !linked}), nil
}

func (s *Server) handleCreateNoteCategory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}
	id, err := s.store.UpsertCategory(ctx,
		getStringDefault(args, "name", ""),
		getStringDefault(args, "description", ""))
	if err != nil {
		return s.fail("create_note_category", err), nil
	}
	return success(map[string]interface{}{"id": id}), nil
}

func (s *Server) handleCreateTag(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments")
	}
	id, err := s.store.UpsertTag(ctx,
		getStringDefault(args, "name", ""),
		getStringDefault(args, "description", ""))
	if err != nil {
		return s.fail("create_tag", err), nil
	}
	return success(map[string]interface{}{"id": id}), nil
}

// Response shaping

func diagramJSON(d *storage.Diagram) map[string]interface{} {
	out := map[string]interface{}{
		"id":               d.ID,
		"name":             d.Name,
		"description":      d.Description,
		"type":             string(d.Type),
		"confidence_level": string(d.Confidence),
		"created_at":       d.CreatedAt.UTC().Format(time.RFC3339),
	}
	if d.LastVerifiedAt != nil {
		out["last_verified_at"] = d.LastVerifiedAt.UTC().Format(time.RFC3339)
	} else {
		out["last_verified_at"] = nil
	}
	switch d.Content.Format {
	case types.FormatStructured:
		out["content"] = d.Content.Structured
		out["content_format"] = string(types.FormatStructured)
	case types.FormatRaw:
		out["content"] = d.Content.Raw
		out["content_format"] = string(types.FormatRaw)
	default:
		out["content"] = nil
		out["content_format"] = nil
	}
	return out
}

// diagramListJSON shapes summary rows; content is excluded from lists
func diagramListJSON(diagrams []*storage.Diagram) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(diagrams))
	for _, d := range diagrams {
		entry := diagramJSON(d)
		delete(entry, "content")
		delete(entry, "content_format")
		out = append(out, entry)
	}
	return out
}

func relationshipListJSON(rels []*storage.Relationship) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rels))
	for _, rel := range rels {
		out = append(out, map[string]interface{}{
			"source": rel.Source,
			"target": rel.Target,
			"type":   rel.Type,
		})
	}
	return out
}

func noteJSON(n *storage.Note) map[string]interface{} {
	out := map[string]interface{}{
		"id":         n.ID,
		"title":      n.Title,
		"content":    n.Content,
		"category":   n.CategoryName,
		"status":     string(n.Status),
		"priority":   int(n.Priority),
		"tags":       n.Tags,
		"created_at": n.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": n.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if n.SessionID != nil {
		out["session_id"] = *n.SessionID
	}
	if n.ParentNoteID != nil {
		out["parent_note_id"] = *n.ParentNoteID
	}
	if n.Context != nil {
		out["context"] = n.Context
	}
	if n.CompletedAt != nil {
		out["completed_at"] = n.CompletedAt.UTC().Format(time.RFC3339)
	}
	links := make([]map[string]interface{}, 0, len(n.Links))
	for _, link := range n.Links {
		links = append(links, map[string]interface{}{
			"target_id": link.TargetID,
			"link_type": string(link.Type),
		})
	}
	out["links"] = links
	return out
}

// Helper functions

// contentFromArg classifies a tool content argument: JSON objects and
// arrays become structured content, strings are re-detected by shape
func contentFromArg(v interface{}) (types.Content, error) {
	switch val := v.(type) {
	case string:
		return types.DetectContent(val), nil
	case map[string]interface{}, []interface{}:
		raw, err := json.Marshal(val)
		if err != nil {
			return types.Content{}, fmt.Errorf("invalid structured content: %w", err)
		}
		return types.StructuredContent(raw), nil
	default:
		return types.Content{}, errors.New("content must be a string or a JSON object")
	}
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getInt64 extracts an integer parameter, accepting the float64 shape
// JSON decoding produces
func getInt64(args map[string]interface{}, key string) (int64, bool) {
	if val, ok := args[key].(float64); ok {
		return int64(val), true
	}
	if val, ok := args[key].(int64); ok {
		return val, true
	}
	if val, ok := args[key].(int); ok {
		return int64(val), true
	}
	return 0, false
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
