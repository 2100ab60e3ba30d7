// Package storage provides SQLite-based persistence for diagrams and notes.
//
// The storage layer manages:
//   - Diagram metadata and the two content tables (structured vs raw)
//   - Component relationships extracted from structured content
//   - Verification history and the confidence state machine
//   - Notes, categories, tags and typed note links
//
// # Database Schema
//
// Tables:
//   - diagrams: diagram metadata, confidence level, verification timestamp
//   - diagram_json_content / diagram_xml_content: exactly one row per
//     diagram, selected by the content's structured/raw kind
//   - diagram_relationships: free-text component edges
//   - verification_history: append-only verification records; rows
//     survive diagram deletion (diagram_id carries no FK constraint)
//   - note_categories, notes, tags, note_tags, note_links
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStore("~/.devbank/devbank.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	id, err := store.CreateDiagram(ctx, "auth flow", "login sequence",
//	    types.DiagramSequence, types.RawContent("<mxGraphModel/>"))
//
// # Transactions
//
// Every multi-statement write (create, update, verify) runs inside one
// transaction internally. Callers composing several operations can use
// BeginTx; transaction handles expose the full Store interface:
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//	// ... tx.CreateNote, tx.LinkNotes ...
//	return tx.Commit()
//
// # Invariants
//
// A diagram's content table membership is mutually exclusive and total
// after creation. confidence_level only changes through VerifyDiagram.
// Tag and category names are case-sensitive unique keys with upsert
// semantics. The (source, target, type) triple on note_links is unique;
// duplicate link creation is a no-op.
package storage
