package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pmorales/devbank-mcp/internal/query"
	"github.com/pmorales/devbank-mcp/internal/storage"
	"github.com/pmorales/devbank-mcp/pkg/types"
)

// envelope is the uniform REST response shape
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// writeJSON writes an envelope with the given status code
func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// writeData writes a success envelope
func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeError maps a domain error onto the HTTP status taxonomy:
// validation 400, not found 404, anything else 500
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case types.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Error: err.Error()})
	default:
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Error: "internal server error"})
	}
}

// writeNotFound writes a 404 for a missing diagram id
func writeNotFound(w http.ResponseWriter, id int64) {
	writeJSON(w, http.StatusNotFound, envelope{Error: "diagram " + strconv.FormatInt(id, 10) + " not found"})
}

// diagramID parses the id path parameter
func diagramID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, types.NewValidationError("id", raw, "id must be an integer")
	}
	return id, nil
}

// diagramView is the JSON shape of a diagram in REST responses
type diagramView struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Type           string      `json:"type"`
	Confidence     string      `json:"confidence_level"`
	LastVerifiedAt *string     `json:"last_verified_at"`
	CreatedAt      string      `json:"created_at"`
	Content        interface{} `json:"content,omitempty"`
	ContentFormat  string      `json:"content_format,omitempty"`
}

func toDiagramView(d *storage.Diagram, includeContent bool) diagramView {
	view := diagramView{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Type:        string(d.Type),
		Confidence:  string(d.Confidence),
		CreatedAt:   d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if d.LastVerifiedAt != nil {
		ts := d.LastVerifiedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		view.LastVerifiedAt = &ts
	}
	if includeContent && !d.Content.IsZero() {
		view.ContentFormat = string(d.Content.Format)
		if d.Content.Format == types.FormatStructured {
			view.Content = json.RawMessage(d.Content.Structured)
		} else {
			view.Content = d.Content.Raw
		}
	}
	return view
}

func toDiagramViews(diagrams []*storage.Diagram) []diagramView {
	views := make([]diagramView, 0, len(diagrams))
	for _, d := range diagrams {
		views = append(views, toDiagramView(d, false))
	}
	return views
}

// handleListDiagrams serves GET /api/diagrams, optionally filtered by type
func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	var diagrams []*storage.Diagram
	var err error
	if dtype := r.URL.Query().Get("type"); dtype != "" {
		diagrams, err = s.store.ListDiagramsByType(r.Context(), types.DiagramType(dtype))
	} else {
		diagrams, err = s.store.ListDiagrams(r.Context())
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toDiagramViews(diagrams))
}

// handleGetDiagram serves GET /api/diagrams/{id}
func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	id, err := diagramID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	diagram, err := s.store.GetDiagram(r.Context(), id)
	if err == storage.ErrNotFound {
		writeNotFound(w, id)
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toDiagramView(diagram, true))
}

// createDiagramRequest is the POST /api/diagrams body
type createDiagramRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Content     json.RawMessage `json:"content"`
}

// contentFromJSON classifies a request content value: JSON objects and
// arrays are structured, JSON strings carry raw markup
func contentFromJSON(raw json.RawMessage) (types.Content, error) {
	if len(raw) == 0 {
		return types.Content{}, nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return types.DetectContent(asString), nil
	}
	var probe interface{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return types.Content{}, types.NewValidationError("content", "", "content must be valid JSON or a string")
	}
	switch probe.(type) {
	case map[string]interface{}, []interface{}:
		return types.StructuredContent(raw), nil
	}
	return types.Content{}, types.NewValidationError("content", "", "content must be an object, array or string")
}

// handleCreateDiagram serves POST /api/diagrams
func (s *Server) handleCreateDiagram(w http.ResponseWriter, r *http.Request) {
	var req createDiagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, types.NewValidationError("body", "", "request body must be valid JSON"))
		return
	}
	content, err := contentFromJSON(req.Content)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := s.store.CreateDiagram(r.Context(), req.Name, req.Description, types.DiagramType(req.Type), content)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]int64{"id": id})
}

// updateDiagramRequest is the PUT /api/diagrams/{id} body; absent fields
// leave the stored values untouched
type updateDiagramRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Content     json.RawMessage `json:"content"`
}

// handleUpdateDiagram serves PUT /api/diagrams/{id}
func (s *Server) handleUpdateDiagram(w http.ResponseWriter, r *http.Request) {
	id, err := diagramID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req updateDiagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, types.NewValidationError("body", "", "request body must be valid JSON"))
		return
	}

	upd := storage.DiagramUpdate{Name: req.Name, Description: req.Description}
	if len(req.Content) > 0 {
		content, err := contentFromJSON(req.Content)
		if err != nil {
			s.writeError(w, err)
			return
		}
		upd.Content = &content
	}

	updated, err := s.store.UpdateDiagram(r.Context(), id, upd)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !updated {
		writeNotFound(w, id)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"updated": true})
}

// handleDeleteDiagram serves DELETE /api/diagrams/{id}
func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	id, err := diagramID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	deleted, err := s.store.DeleteDiagram(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !deleted {
		writeNotFound(w, id)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

// verifyDiagramRequest is the POST /api/diagrams/{id}/verify body
type verifyDiagramRequest struct {
	VerifiedBy string `json:"verified_by"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

// handleVerifyDiagram serves POST /api/diagrams/{id}/verify
func (s *Server) handleVerifyDiagram(w http.ResponseWriter, r *http.Request) {
	id, err := diagramID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req verifyDiagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, types.NewValidationError("body", "", "request body must be valid JSON"))
		return
	}
	verified, err := s.store.VerifyDiagram(r.Context(), id, req.VerifiedBy, types.VerificationStatus(req.Status), req.Notes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !verified {
		writeNotFound(w, id)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"verified": true})
}

// handleSearchDiagrams serves GET /api/diagrams/search?q=...&min_confidence=...
func (s *Server) handleSearchDiagrams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.writeError(w, types.NewValidationError("q", "", "query parameter q is required"))
		return
	}

	filter := storage.DiagramFilter{Terms: query.ExtractTerms(q)}
	if min := r.URL.Query().Get("min_confidence"); min != "" {
		levels := query.LevelsAtOrAbove(types.ConfidenceLevel(min))
		if levels == nil {
			s.writeError(w, types.NewValidationError("min_confidence", min, "unknown confidence level"))
			return
		}
		filter.Confidence = levels
	}

	diagrams, err := s.store.SearchDiagrams(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toDiagramViews(diagrams))
}
