// Package mcp exposes the diagram and note repositories over the Model
// Context Protocol.
//
// The server registers a fixed operation table as MCP tools:
//
//	get_diagrams, get_diagram, create_diagram, update_diagram,
//	verify_diagram, search_diagrams, get_diagrams_by_type,
//	create_note, get_note, update_note, search_notes, link_notes,
//	create_note_category, create_tag
//
// Every operation responds with a uniform envelope:
//
//	{
//	  "status": "success" | "error",
//	  "request_id": "<uuid>",
//	  "timestamp": "<RFC3339>",
//	  "data": { ... } | "error": "message"
//	}
//
// Domain failures (validation, not found, storage) are reported inside
// the envelope with status "error"; protocol-level errors are reserved
// for malformed tool invocations. The server speaks stdio, so all
// logging goes to stderr.
package mcp
