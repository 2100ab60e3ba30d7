package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pmorales/devbank-mcp/pkg/types"
)

// Category and tag operations

// upsertCategoryWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) upsertCategoryWithQuerier(ctx context.Context, q querier, name, description string) (int64, error) {
	if name == "" {
		return 0, types.NewValidationError("name", "", "category name is required")
	}
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO note_categories (name, description, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET description = excluded.description
		RETURNING id
	`, name, description, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert category: %w", err)
	}
	return id, nil
}

// UpsertCategory creates a category or updates its description when the
// name already exists. Returns the category id in both cases.
func (s *SQLiteStore) UpsertCategory(ctx context.Context, name, description string) (int64, error) {
	return s.upsertCategoryWithQuerier(ctx, s.querier(), name, description)
}

// upsertTagWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) upsertTagWithQuerier(ctx context.Context, q querier, name, description string) (int64, error) {
	if name == "" {
		return 0, types.NewValidationError("name", "", "tag name is required")
	}
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO tags (name, description, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET description = excluded.description
		RETURNING id
	`, name, description, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert tag: %w", err)
	}
	return id, nil
}

// UpsertTag creates a tag or updates its description when the name
// already exists. Returns the tag id in both cases.
func (s *SQLiteStore) UpsertTag(ctx context.Context, name, description string) (int64, error) {
	return s.upsertTagWithQuerier(ctx, s.querier(), name, description)
}

// resolveCategory looks up a category id by name
func resolveCategory(ctx context.Context, q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, "SELECT id FROM note_categories WHERE name = ?", name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Note operations

// createNoteWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) createNoteWithQuerier(ctx context.Context, q querier, note NewNote) (int64, error) {
	if note.Title == "" {
		return 0, types.NewValidationError("title", "", "title is required")
	}
	if !note.Status.Valid() {
		return 0, types.NewValidationError("status", string(note.Status), "unknown note status")
	}
	if !note.Priority.Valid() {
		return 0, types.NewValidationError("priority", fmt.Sprintf("%d", note.Priority), "priority must be 0, 1 or 2")
	}

	// Categories are never auto-created; the name must resolve first
	categoryID, err := resolveCategory(ctx, q, note.Category)
	if err != nil {
		return 0, err
	}

	var contextBlob interface{}
	if note.Context != nil {
		contextBlob = string(note.Context)
	}

	now := time.Now()
	result, err := q.ExecContext(ctx, `
		INSERT INTO notes (title, content, category_id, status, priority, session_id, parent_note_id, context, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, note.Title, note.Content, categoryID, string(note.Status), int(note.Priority),
		note.SessionID, note.ParentNoteID, contextBlob, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to create note: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := attachTags(ctx, q, id, note.Tags); err != nil {
		return 0, err
	}

	return id, nil
}

// attachTags upserts each tag by name and joins it to the note,
// ignoring duplicate edges
func attachTags(ctx context.Context, q querier, noteID int64, tags []string) error {
	now := time.Now()
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		var tagID int64
		err := q.QueryRowContext(ctx, `
			INSERT INTO tags (name, description, created_at)
			VALUES (?, '', ?)
			ON CONFLICT(name) DO UPDATE SET name = excluded.name
			RETURNING id
		`, tag, now).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("failed to upsert tag %q: %w", tag, err)
		}
		_, err = q.ExecContext(ctx,
			"INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)", noteID, tagID)
		if err != nil {
			return fmt.Errorf("failed to tag note: %w", err)
		}
	}
	return nil
}

// CreateNote validates, resolves the category by name and inserts the
// note with its tags in one transaction
func (s *SQLiteStore) CreateNote(ctx context.Context, note NewNote) (int64, error) {
	var id int64
	err := s.inTx(ctx, func(q querier) error {
		var err error
		id, err = s.createNoteWithQuerier(ctx, q, note)
		return err
	})
	return id, err
}

// getNoteWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getNoteWithQuerier(ctx context.Context, q querier, id int64) (*Note, error) {
	row := q.QueryRowContext(ctx, `
		SELECT n.id, n.title, n.content, n.category_id, c.name, n.status, n.priority,
		       n.session_id, n.parent_note_id, n.context, n.created_at, n.updated_at, n.completed_at
		FROM notes n
		JOIN note_categories c ON n.category_id = c.id
		WHERE n.id = ?
	`, id)
	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if note.Tags, err = noteTags(ctx, q, id); err != nil {
		return nil, err
	}
	if note.Links, err = noteLinks(ctx, q, id); err != nil {
		return nil, err
	}
	return note, nil
}

// scanNote scans a note row from the shared column list
func scanNote(row interface{ Scan(dest ...interface{}) error }) (*Note, error) {
	var n Note
	var status string
	var priority int
	var sessionID sql.NullString
	var parentID sql.NullInt64
	var contextBlob sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.CategoryID, &n.CategoryName, &status, &priority,
		&sessionID, &parentID, &contextBlob, &n.CreatedAt, &n.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	n.Status = types.NoteStatus(status)
	n.Priority = types.Priority(priority)
	if sessionID.Valid {
		n.SessionID = &sessionID.String
	}
	if parentID.Valid {
		n.ParentNoteID = &parentID.Int64
	}
	if contextBlob.Valid {
		n.Context = []byte(contextBlob.String)
	}
	if completedAt.Valid {
		t := completedAt.Time
		n.CompletedAt = &t
	}
	return &n, nil
}

// noteTags returns the tag name set for a note
func noteTags(ctx context.Context, q querier, noteID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT t.name FROM tags t
		JOIN note_tags nt ON t.id = nt.tag_id
		WHERE nt.note_id = ?
		ORDER BY t.name
	`, noteID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	tags := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// noteLinks returns the outgoing typed edges for a note
func noteLinks(ctx context.Context, q querier, noteID int64) ([]NoteLink, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT target_note_id, link_type FROM note_links
		WHERE source_note_id = ?
		ORDER BY id
	`, noteID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	links := make([]NoteLink, 0)
	for rows.Next() {
		var link NoteLink
		var linkType string
		if err := rows.Scan(&link.TargetID, &linkType); err != nil {
			return nil, err
		}
		link.Type = types.LinkType(linkType)
		links = append(links, link)
	}
	return links, rows.Err()
}

// GetNote returns a note with its category name, tag set and outgoing links
func (s *SQLiteStore) GetNote(ctx context.Context, id int64) (*Note, error) {
	return s.getNoteWithQuerier(ctx, s.querier(), id)
}

// updateNoteWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) updateNoteWithQuerier(ctx context.Context, q querier, id int64, upd NoteUpdate) (bool, error) {
	if upd.Status != nil && !upd.Status.Valid() {
		return false, types.NewValidationError("status", string(*upd.Status), "unknown note status")
	}
	if upd.Priority != nil && !upd.Priority.Valid() {
		return false, types.NewValidationError("priority", fmt.Sprintf("%d", *upd.Priority), "priority must be 0, 1 or 2")
	}

	var exists int64
	err := q.QueryRowContext(ctx, "SELECT id FROM notes WHERE id = ?", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	now := time.Now()
	sets := []string{"updated_at = ?"}
	args := []interface{}{now}

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.Category != nil {
		categoryID, err := resolveCategory(ctx, q, *upd.Category)
		if err != nil {
			return false, err
		}
		sets = append(sets, "category_id = ?")
		args = append(args, categoryID)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
		if *upd.Status == types.NoteCompleted {
			sets = append(sets, "completed_at = ?")
			args = append(args, now)
		}
	}
	if upd.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, int(*upd.Priority))
	}
	if upd.SessionID != nil {
		sets = append(sets, "session_id = ?")
		args = append(args, *upd.SessionID)
	}
	if upd.Context != nil {
		sets = append(sets, "context = ?")
		args = append(args, string(*upd.Context))
	}

	args = append(args, id)
	if _, err := q.ExecContext(ctx, "UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return false, fmt.Errorf("failed to update note: %w", err)
	}

	// Supplying tags replaces the full set, not a diff
	if upd.Tags != nil {
		if _, err := q.ExecContext(ctx, "DELETE FROM note_tags WHERE note_id = ?", id); err != nil {
			return false, fmt.Errorf("failed to clear tags: %w", err)
		}
		if err := attachTags(ctx, q, id, *upd.Tags); err != nil {
			return false, err
		}
	}

	return true, nil
}

// UpdateNote applies a partial update; only non-nil fields change.
// A status transition to completed stamps completed_at. Returns false
// when the note does not exist.
func (s *SQLiteStore) UpdateNote(ctx context.Context, id int64, upd NoteUpdate) (bool, error) {
	var updated bool
	err := s.inTx(ctx, func(q querier) error {
		var err error
		updated, err = s.updateNoteWithQuerier(ctx, q, id, upd)
		return err
	})
	return updated, err
}

// linkNotesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) linkNotesWithQuerier(ctx context.Context, q querier, sourceID, targetID int64, linkType types.LinkType) (bool, error) {
	if !linkType.Valid() {
		return false, types.NewValidationError("link_type", string(linkType), "unknown link type")
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO note_links (source_note_id, target_note_id, link_type, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_note_id, target_note_id, link_type) DO NOTHING
	`, sourceID, targetID, string(linkType), time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to link notes: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	// Zero rows means the edge already existed; a duplicate is a no-op
	return affected > 0, nil
}

// LinkNotes creates a typed directed edge between two notes. Returns
// false without error when the identical edge already exists.
func (s *SQLiteStore) LinkNotes(ctx context.Context, sourceID, targetID int64, linkType types.LinkType) (bool, error) {
	return s.linkNotesWithQuerier(ctx, s.querier(), sourceID, targetID, linkType)
}

// searchNotesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) searchNotesWithQuerier(ctx context.Context, q querier, filter NoteFilter) ([]*Note, error) {
	var conds []string
	var args []interface{}

	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		conds = append(conds, "(LOWER(n.title) LIKE ? OR LOWER(n.content) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if filter.Category != "" {
		conds = append(conds, "c.name = ?")
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		conds = append(conds, "n.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Priority != nil {
		conds = append(conds, "n.priority = ?")
		args = append(args, int(*filter.Priority))
	}
	if filter.SessionID != "" {
		conds = append(conds, "n.session_id = ?")
		args = append(args, filter.SessionID)
	}
	if len(filter.Tags) > 0 {
		// ANY-of semantics: a note matches when it carries at least one
		// of the given tags
		placeholders := make([]string, len(filter.Tags))
		for i, tag := range filter.Tags {
			placeholders[i] = "?"
			args = append(args, tag)
		}
		conds = append(conds, `EXISTS (
			SELECT 1 FROM note_tags nt
			JOIN tags t ON nt.tag_id = t.id
			WHERE nt.note_id = n.id AND t.name IN (`+strings.Join(placeholders, ",")+`)
		)`)
	}

	query := `
		SELECT n.id, n.title, n.content, n.category_id, c.name, n.status, n.priority,
		       n.session_id, n.parent_note_id, n.context, n.created_at, n.updated_at, n.completed_at
		FROM notes n
		JOIN note_categories c ON n.category_id = c.id
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultNoteLimit
	}
	query += " ORDER BY n.created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	notes := make([]*Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, note := range notes {
		if note.Tags, err = noteTags(ctx, q, note.ID); err != nil {
			return nil, err
		}
	}
	return notes, nil
}

// SearchNotes returns notes matching all supplied filters, newest first
func (s *SQLiteStore) SearchNotes(ctx context.Context, filter NoteFilter) ([]*Note, error) {
	return s.searchNotesWithQuerier(ctx, s.querier(), filter)
}
