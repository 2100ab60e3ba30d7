package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pmorales/devbank-mcp/pkg/types"
)

// Store defines the interface for persisting diagrams and notes
type Store interface {
	// Diagram operations
	CreateDiagram(ctx context.Context, name, description string, dtype types.DiagramType, content types.Content) (int64, error)
	GetDiagram(ctx context.Context, id int64) (*Diagram, error)
	ListDiagrams(ctx context.Context) ([]*Diagram, error)
	ListDiagramsByType(ctx context.Context, dtype types.DiagramType) ([]*Diagram, error)
	SearchDiagrams(ctx context.Context, filter DiagramFilter) ([]*Diagram, error)
	UpdateDiagram(ctx context.Context, id int64, upd DiagramUpdate) (bool, error)
	DeleteDiagram(ctx context.Context, id int64) (bool, error)
	VerifyDiagram(ctx context.Context, id int64, verifiedBy string, status types.VerificationStatus, notes string) (bool, error)
	ListVerifications(ctx context.Context, diagramID int64) ([]*VerificationRecord, error)
	ListRelationships(ctx context.Context, diagramID int64) ([]*Relationship, error)

	// Category and tag operations
	UpsertCategory(ctx context.Context, name, description string) (int64, error)
	UpsertTag(ctx context.Context, name, description string) (int64, error)

	// Note operations
	CreateNote(ctx context.Context, note NewNote) (int64, error)
	GetNote(ctx context.Context, id int64) (*Note, error)
	UpdateNote(ctx context.Context, id int64, upd NoteUpdate) (bool, error)
	LinkNotes(ctx context.Context, sourceID, targetID int64, linkType types.LinkType) (bool, error)
	SearchNotes(ctx context.Context, filter NoteFilter) ([]*Note, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Store // Embed Store interface for transaction operations
}

// Diagram represents a named, typed documentation artifact. Content is
// zero-valued in list results, which exclude content by contract.
type Diagram struct {
	ID             int64
	Name           string
	Description    string
	Type           types.DiagramType
	Confidence     types.ConfidenceLevel
	LastVerifiedAt *time.Time // Nullable
	CreatedAt      time.Time
	Content        types.Content
}

// DiagramUpdate carries a partial update: only non-nil fields change.
// Supplying Content re-detects its structured/raw kind and migrates the
// backing row when the kind differs from the stored one.
type DiagramUpdate struct {
	Name        *string
	Description *string
	Content     *types.Content
}

// DiagramFilter narrows a diagram search. Terms match name OR description
// with OR semantics across tokens; Confidence is an inclusion set.
type DiagramFilter struct {
	Terms      []string
	Confidence []types.ConfidenceLevel
	Limit      int // 0 means the free-text default of 10
}

// VerificationRecord is one entry in a diagram's verification history.
// DiagramName is a display snapshot taken at verification time; the row
// survives deletion of the diagram it references.
type VerificationRecord struct {
	ID          int64
	DiagramID   int64
	DiagramName string
	VerifiedBy  string
	Status      types.VerificationStatus
	Notes       string
	VerifiedAt  time.Time
}

// Relationship is a component edge extracted from structured diagram content
type Relationship struct {
	ID        int64
	DiagramID int64
	Source    string
	Target    string
	Type      string
	CreatedAt time.Time
}

// Category groups notes; created lazily by name upsert
type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// Tag labels notes; names are globally unique
type Tag struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// Note is a categorized, taggable, linkable unit of documentation
type Note struct {
	ID           int64
	Title        string
	Content      string
	CategoryID   int64
	CategoryName string
	Status       types.NoteStatus
	Priority     types.Priority
	SessionID    *string         // Nullable
	ParentNoteID *int64          // Nullable
	Context      json.RawMessage // Nullable structured blob
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time // Nullable
	Tags         []string
	Links        []NoteLink
}

// NoteLink is a typed directed edge from the owning note to Target
type NoteLink struct {
	TargetID int64
	Type     types.LinkType
}

// NewNote carries the fields for note creation. Category is resolved by
// name and must already exist.
type NewNote struct {
	Title        string
	Content      string
	Category     string
	Status       types.NoteStatus
	Priority     types.Priority
	SessionID    *string
	ParentNoteID *int64
	Context      json.RawMessage
	Tags         []string
}

// NoteUpdate carries a partial update: only non-nil fields change.
// Tags, when supplied, replaces the full tag set.
type NoteUpdate struct {
	Title     *string
	Content   *string
	Category  *string
	Status    *types.NoteStatus
	Priority  *types.Priority
	SessionID *string
	Context   *json.RawMessage
	Tags      *[]string
}

// NoteFilter narrows a note search. All supplied filters are conjunctive;
// Tags matches notes carrying ANY of the given tag names.
type NoteFilter struct {
	Query     string
	Category  string
	Status    types.NoteStatus
	Priority  *types.Priority
	Tags      []string
	SessionID string
	Limit     int // 0 means the default of 50
}

// DefaultNoteLimit caps note search results when no limit is supplied
const DefaultNoteLimit = 50

// DefaultDiagramSearchLimit caps free-text diagram search results
const DefaultDiagramSearchLimit = 10
