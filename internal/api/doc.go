// Package api exposes the diagram repository over HTTP.
//
// Resource endpoints under /api/diagrams mirror the repository
// operations: list (optionally filtered by type), get, create, update,
// delete, verify and search. Responses use a uniform envelope:
//
//	{"success": true, "data": ...}
//	{"success": false, "error": "message"}
//
// Validation failures map to 400, missing ids to 404 and storage
// failures to 500.
package api
