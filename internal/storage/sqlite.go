package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pmorales/devbank-mcp/pkg/types"
)

// ErrNotFound is returned when a requested entity doesn't exist
var ErrNotFound = errors.New("not found")

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, store: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx    *sql.Tx
	store *SQLiteStore
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// inTx runs fn inside a transaction, committing on success and rolling
// back on any error. Every logical multi-statement write goes through
// here so no partial commit is externally observable.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// querier returns the DB querier
func (s *SQLiteStore) querier() querier {
	return s.db
}

// Diagram operations

// createDiagramWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) createDiagramWithQuerier(ctx context.Context, q querier, name, description string, dtype types.DiagramType, content types.Content) (int64, error) {
	if name == "" {
		return 0, types.NewValidationError("name", "", "name is required")
	}
	if !dtype.Valid() {
		return 0, types.NewValidationError("diagram_type", string(dtype), "unknown diagram type")
	}
	if content.IsZero() {
		return 0, types.NewValidationError("content", "", "content is required")
	}

	now := time.Now()
	result, err := q.ExecContext(ctx, `
		INSERT INTO diagrams (name, description, diagram_type, confidence_level, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, name, description, string(dtype), string(types.ConfidenceMedium), now)
	if err != nil {
		return 0, fmt.Errorf("failed to create diagram: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := insertContent(ctx, q, id, content); err != nil {
		return 0, err
	}
	if err := syncRelationships(ctx, q, id, content); err != nil {
		return 0, err
	}

	return id, nil
}

// CreateDiagram inserts a diagram row and its single content row atomically
func (s *SQLiteStore) CreateDiagram(ctx context.Context, name, description string, dtype types.DiagramType, content types.Content) (int64, error) {
	var id int64
	err := s.inTx(ctx, func(q querier) error {
		var err error
		id, err = s.createDiagramWithQuerier(ctx, q, name, description, dtype, content)
		return err
	})
	return id, err
}

// contentTable maps a content format to its backing table
func contentTable(format types.ContentFormat) string {
	if format == types.FormatStructured {
		return "diagram_json_content"
	}
	return "diagram_xml_content"
}

// insertContent writes the content body into the table matching its format
func insertContent(ctx context.Context, q querier, diagramID int64, content types.Content) error {
	body := content.Raw
	if content.Format == types.FormatStructured {
		body = string(content.Structured)
	}
	_, err := q.ExecContext(ctx,
		"INSERT INTO "+contentTable(content.Format)+" (diagram_id, content) VALUES (?, ?)",
		diagramID, body)
	if err != nil {
		return fmt.Errorf("failed to insert %s content: %w", content.Format, err)
	}
	return nil
}

// structuredEdges is the shape probed inside structured content for
// component relationship extraction
type structuredEdges struct {
	Relationships []struct {
		Source string `json:"source"`
		Target string `json:"target"`
		Type   string `json:"type"`
	} `json:"relationships"`
}

// syncRelationships replaces a diagram's component relationship rows from
// the relationships array of structured content. Raw content and
// structured content without the array leave existing rows untouched.
func syncRelationships(ctx context.Context, q querier, diagramID int64, content types.Content) error {
	if content.Format != types.FormatStructured {
		return nil
	}
	var edges structuredEdges
	if err := json.Unmarshal(content.Structured, &edges); err != nil || edges.Relationships == nil {
		return nil
	}

	if _, err := q.ExecContext(ctx, "DELETE FROM diagram_relationships WHERE diagram_id = ?", diagramID); err != nil {
		return fmt.Errorf("failed to clear relationships: %w", err)
	}
	now := time.Now()
	for _, edge := range edges.Relationships {
		if edge.Source == "" || edge.Target == "" {
			continue
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO diagram_relationships (diagram_id, source_component, target_component, relationship_type, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, diagramID, edge.Source, edge.Target, edge.Type, now)
		if err != nil {
			return fmt.Errorf("failed to insert relationship: %w", err)
		}
	}
	return nil
}

// scanDiagram scans a diagram row from the shared column list
func scanDiagram(row interface{ Scan(dest ...interface{}) error }) (*Diagram, error) {
	var d Diagram
	var dtype, confidence string
	var lastVerifiedAt sql.NullTime
	err := row.Scan(&d.ID, &d.Name, &d.Description, &dtype, &confidence, &lastVerifiedAt, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.Type = types.DiagramType(dtype)
	d.Confidence = types.ConfidenceLevel(confidence)
	if lastVerifiedAt.Valid {
		t := lastVerifiedAt.Time
		d.LastVerifiedAt = &t
	}
	return &d, nil
}

const diagramColumns = "id, name, description, diagram_type, confidence_level, last_verified_at, created_at"

// getDiagramWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getDiagramWithQuerier(ctx context.Context, q querier, id int64) (*Diagram, error) {
	row := q.QueryRowContext(ctx, "SELECT "+diagramColumns+" FROM diagrams WHERE id = ?", id)
	diagram, err := scanDiagram(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// Structured content first, raw as fallback. Neither existing is a
	// reachable degenerate state; content stays zero-valued.
	var body string
	err = q.QueryRowContext(ctx, "SELECT content FROM diagram_json_content WHERE diagram_id = ?", id).Scan(&body)
	if err == nil {
		diagram.Content = types.StructuredContent(json.RawMessage(body))
		return diagram, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	err = q.QueryRowContext(ctx, "SELECT content FROM diagram_xml_content WHERE diagram_id = ?", id).Scan(&body)
	if err == nil {
		diagram.Content = types.RawContent(body)
		return diagram, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	return diagram, nil
}

// GetDiagram returns the full diagram including its content body
func (s *SQLiteStore) GetDiagram(ctx context.Context, id int64) (*Diagram, error) {
	return s.getDiagramWithQuerier(ctx, s.querier(), id)
}

// listDiagramsWithQuerier runs a summary query; content is excluded
func (s *SQLiteStore) listDiagramsWithQuerier(ctx context.Context, q querier, where string, args ...interface{}) ([]*Diagram, error) {
	query := "SELECT " + diagramColumns + " FROM diagrams" + where + " ORDER BY created_at DESC"
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	diagrams := make([]*Diagram, 0)
	for rows.Next() {
		diagram, err := scanDiagram(rows)
		if err != nil {
			return nil, err
		}
		diagrams = append(diagrams, diagram)
	}
	return diagrams, rows.Err()
}

// ListDiagrams returns all diagrams in summary form, newest first
func (s *SQLiteStore) ListDiagrams(ctx context.Context) ([]*Diagram, error) {
	return s.listDiagramsWithQuerier(ctx, s.querier(), "")
}

// ListDiagramsByType returns diagrams of one type, newest first
func (s *SQLiteStore) ListDiagramsByType(ctx context.Context, dtype types.DiagramType) ([]*Diagram, error) {
	if !dtype.Valid() {
		return nil, types.NewValidationError("diagram_type", string(dtype), "unknown diagram type")
	}
	return s.listDiagramsWithQuerier(ctx, s.querier(), " WHERE diagram_type = ?", string(dtype))
}

// searchDiagramsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) searchDiagramsWithQuerier(ctx context.Context, q querier, filter DiagramFilter) ([]*Diagram, error) {
	var conds []string
	var args []interface{}

	if len(filter.Terms) > 0 {
		// OR semantics across tokens, each matched against name and description
		termConds := make([]string, 0, len(filter.Terms))
		for _, term := range filter.Terms {
			pattern := "%" + strings.ToLower(term) + "%"
			termConds = append(termConds, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
			args = append(args, pattern, pattern)
		}
		conds = append(conds, "("+strings.Join(termConds, " OR ")+")")
	}

	if len(filter.Confidence) > 0 {
		placeholders := make([]string, len(filter.Confidence))
		for i, level := range filter.Confidence {
			placeholders[i] = "?"
			args = append(args, string(level))
		}
		conds = append(conds, "confidence_level IN ("+strings.Join(placeholders, ",")+")")
	}

	query := "SELECT " + diagramColumns + " FROM diagrams"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultDiagramSearchLimit
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	diagrams := make([]*Diagram, 0)
	for rows.Next() {
		diagram, err := scanDiagram(rows)
		if err != nil {
			return nil, err
		}
		diagrams = append(diagrams, diagram)
	}
	return diagrams, rows.Err()
}

// SearchDiagrams returns diagrams matching the filter, newest first
func (s *SQLiteStore) SearchDiagrams(ctx context.Context, filter DiagramFilter) ([]*Diagram, error) {
	return s.searchDiagramsWithQuerier(ctx, s.querier(), filter)
}

// updateDiagramWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) updateDiagramWithQuerier(ctx context.Context, q querier, id int64, upd DiagramUpdate) (bool, error) {
	var exists int64
	err := q.QueryRowContext(ctx, "SELECT id FROM diagrams WHERE id = ?", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var sets []string
	var args []interface{}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if len(sets) > 0 {
		args = append(args, id)
		_, err := q.ExecContext(ctx, "UPDATE diagrams SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return false, fmt.Errorf("failed to update diagram: %w", err)
		}
	}

	if upd.Content != nil {
		if err := s.replaceContent(ctx, q, id, *upd.Content); err != nil {
			return false, err
		}
		if err := syncRelationships(ctx, q, id, *upd.Content); err != nil {
			return false, err
		}
	}

	return true, nil
}

// replaceContent updates the stored content body, migrating it to the
// other backing table when the supplied kind differs from the stored one
func (s *SQLiteStore) replaceContent(ctx context.Context, q querier, id int64, content types.Content) error {
	var current types.ContentFormat
	var probe int64
	err := q.QueryRowContext(ctx, "SELECT diagram_id FROM diagram_json_content WHERE diagram_id = ?", id).Scan(&probe)
	switch {
	case err == nil:
		current = types.FormatStructured
	case err != sql.ErrNoRows:
		return err
	default:
		err = q.QueryRowContext(ctx, "SELECT diagram_id FROM diagram_xml_content WHERE diagram_id = ?", id).Scan(&probe)
		switch {
		case err == nil:
			current = types.FormatRaw
		case err != sql.ErrNoRows:
			return err
		}
	}

	body := content.Raw
	if content.Format == types.FormatStructured {
		body = string(content.Structured)
	}

	if current == content.Format {
		_, err := q.ExecContext(ctx,
			"UPDATE "+contentTable(content.Format)+" SET content = ? WHERE diagram_id = ?", body, id)
		if err != nil {
			return fmt.Errorf("failed to update content: %w", err)
		}
		return nil
	}

	// Kind changed (or no row existed): drop the old row, insert the new one
	if current != "" {
		if _, err := q.ExecContext(ctx,
			"DELETE FROM "+contentTable(current)+" WHERE diagram_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete old content: %w", err)
		}
	}
	return insertContent(ctx, q, id, content)
}

// UpdateDiagram applies a partial update; only non-nil fields change.
// Returns false when the diagram does not exist.
func (s *SQLiteStore) UpdateDiagram(ctx context.Context, id int64, upd DiagramUpdate) (bool, error) {
	var updated bool
	err := s.inTx(ctx, func(q querier) error {
		var err error
		updated, err = s.updateDiagramWithQuerier(ctx, q, id, upd)
		return err
	})
	return updated, err
}

// deleteDiagramWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) deleteDiagramWithQuerier(ctx context.Context, q querier, id int64) (bool, error) {
	// Content and relationship rows cascade; verification history
	// intentionally survives and becomes orphaned.
	result, err := q.ExecContext(ctx, "DELETE FROM diagrams WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete diagram: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteDiagram removes a diagram and its content rows.
// Returns false when the diagram does not exist.
func (s *SQLiteStore) DeleteDiagram(ctx context.Context, id int64) (bool, error) {
	return s.deleteDiagramWithQuerier(ctx, s.querier(), id)
}

// verifyDiagramWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) verifyDiagramWithQuerier(ctx context.Context, q querier, id int64, verifiedBy string, status types.VerificationStatus, notes string) (bool, error) {
	if !status.Valid() {
		return false, types.NewValidationError("status", string(status), "unknown verification status")
	}

	var name string
	err := q.QueryRowContext(ctx, "SELECT name FROM diagrams WHERE id = ?", id).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	now := time.Now()
	_, err = q.ExecContext(ctx, `
		INSERT INTO verification_history (diagram_id, diagram_name, verified_by, status, notes, verified_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, name, verifiedBy, string(status), notes, now)
	if err != nil {
		return false, fmt.Errorf("failed to record verification: %w", err)
	}

	confidence := types.ConfidenceMedium
	if status == types.VerificationApproved {
		confidence = types.ConfidenceVerified
	}
	_, err = q.ExecContext(ctx,
		"UPDATE diagrams SET last_verified_at = ?, confidence_level = ? WHERE id = ?",
		now, string(confidence), id)
	if err != nil {
		return false, fmt.Errorf("failed to update verification state: %w", err)
	}

	return true, nil
}

// VerifyDiagram appends a verification record and advances the diagram's
// trust state in one transaction. This is the only path that changes
// confidence_level. Returns false when the diagram does not exist.
func (s *SQLiteStore) VerifyDiagram(ctx context.Context, id int64, verifiedBy string, status types.VerificationStatus, notes string) (bool, error) {
	var verified bool
	err := s.inTx(ctx, func(q querier) error {
		var err error
		verified, err = s.verifyDiagramWithQuerier(ctx, q, id, verifiedBy, status, notes)
		return err
	})
	return verified, err
}

// listVerificationsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) listVerificationsWithQuerier(ctx context.Context, q querier, diagramID int64) ([]*VerificationRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, diagram_id, diagram_name, verified_by, status, notes, verified_at
		FROM verification_history
		WHERE diagram_id = ?
		ORDER BY verified_at DESC
	`, diagramID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	records := make([]*VerificationRecord, 0)
	for rows.Next() {
		var rec VerificationRecord
		var status string
		err := rows.Scan(&rec.ID, &rec.DiagramID, &rec.DiagramName, &rec.VerifiedBy, &status, &rec.Notes, &rec.VerifiedAt)
		if err != nil {
			return nil, err
		}
		rec.Status = types.VerificationStatus(status)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// ListVerifications returns a diagram's verification history, newest first
func (s *SQLiteStore) ListVerifications(ctx context.Context, diagramID int64) ([]*VerificationRecord, error) {
	return s.listVerificationsWithQuerier(ctx, s.querier(), diagramID)
}

// listRelationshipsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) listRelationshipsWithQuerier(ctx context.Context, q querier, diagramID int64) ([]*Relationship, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, diagram_id, source_component, target_component, relationship_type, created_at
		FROM diagram_relationships
		WHERE diagram_id = ?
		ORDER BY id
	`, diagramID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	rels := make([]*Relationship, 0)
	for rows.Next() {
		var rel Relationship
		err := rows.Scan(&rel.ID, &rel.DiagramID, &rel.Source, &rel.Target, &rel.Type, &rel.CreatedAt)
		if err != nil {
			return nil, err
		}
		rels = append(rels, &rel)
	}
	return rels, rows.Err()
}

// ListRelationships returns a diagram's component relationships
func (s *SQLiteStore) ListRelationships(ctx context.Context, diagramID int64) ([]*Relationship, error) {
	return s.listRelationshipsWithQuerier(ctx, s.querier(), diagramID)
}

// Transaction implementations - delegate to the store's querier helpers

func (t *sqliteTx) CreateDiagram(ctx context.Context, name, description string, dtype types.DiagramType, content types.Content) (int64, error) {
	return t.store.createDiagramWithQuerier(ctx, t.querier(), name, description, dtype, content)
}

func (t *sqliteTx) GetDiagram(ctx context.Context, id int64) (*Diagram, error) {
	return t.store.getDiagramWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) ListDiagrams(ctx context.Context) ([]*Diagram, error) {
	return t.store.listDiagramsWithQuerier(ctx, t.querier(), "")
}

func (t *sqliteTx) ListDiagramsByType(ctx context.Context, dtype types.DiagramType) ([]*Diagram, error) {
	if !dtype.Valid() {
		return nil, types.NewValidationError("diagram_type", string(dtype), "unknown diagram type")
	}
	return t.store.listDiagramsWithQuerier(ctx, t.querier(), " WHERE diagram_type = ?", string(dtype))
}

func (t *sqliteTx) SearchDiagrams(ctx context.Context, filter DiagramFilter) ([]*Diagram, error) {
	return t.store.searchDiagramsWithQuerier(ctx, t.querier(), filter)
}

func (t *sqliteTx) UpdateDiagram(ctx context.Context, id int64, upd DiagramUpdate) (bool, error) {
	return t.store.updateDiagramWithQuerier(ctx, t.querier(), id, upd)
}

func (t *sqliteTx) DeleteDiagram(ctx context.Context, id int64) (bool, error) {
	return t.store.deleteDiagramWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) VerifyDiagram(ctx context.Context, id int64, verifiedBy string, status types.VerificationStatus, notes string) (bool, error) {
	return t.store.verifyDiagramWithQuerier(ctx, t.querier(), id, verifiedBy, status, notes)
}

func (t *sqliteTx) ListVerifications(ctx context.Context, diagramID int64) ([]*VerificationRecord, error) {
	return t.store.listVerificationsWithQuerier(ctx, t.querier(), diagramID)
}

func (t *sqliteTx) ListRelationships(ctx context.Context, diagramID int64) ([]*Relationship, error) {
	return t.store.listRelationshipsWithQuerier(ctx, t.querier(), diagramID)
}

func (t *sqliteTx) UpsertCategory(ctx context.Context, name, description string) (int64, error) {
	return t.store.upsertCategoryWithQuerier(ctx, t.querier(), name, description)
}

func (t *sqliteTx) UpsertTag(ctx context.Context, name, description string) (int64, error) {
	return t.store.upsertTagWithQuerier(ctx, t.querier(), name, description)
}

func (t *sqliteTx) CreateNote(ctx context.Context, note NewNote) (int64, error) {
	return t.store.createNoteWithQuerier(ctx, t.querier(), note)
}

func (t *sqliteTx) GetNote(ctx context.Context, id int64) (*Note, error) {
	return t.store.getNoteWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) UpdateNote(ctx context.Context, id int64, upd NoteUpdate) (bool, error) {
	return t.store.updateNoteWithQuerier(ctx, t.querier(), id, upd)
}

func (t *sqliteTx) LinkNotes(ctx context.Context, sourceID, targetID int64, linkType types.LinkType) (bool, error) {
	return t.store.linkNotesWithQuerier(ctx, t.querier(), sourceID, targetID, linkType)
}

func (t *sqliteTx) SearchNotes(ctx context.Context, filter NoteFilter) ([]*Note, error) {
	return t.store.searchNotesWithQuerier(ctx, t.querier(), filter)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
