// Package types provides shared type definitions for the DevBank server.
//
// This package defines the domain vocabulary used across components:
// diagram classifications, confidence levels, verification outcomes, note
// lifecycle states, priorities, and link kinds.
//
// # Content Variant
//
// Diagram content is a tagged variant. Exactly one of the two shapes is
// populated, selected by Format:
//
//	content := types.StructuredContent(json.RawMessage(`{"components": []}`))
//	content := types.RawContent("<mxGraphModel>...</mxGraphModel>")
//
// DetectContent classifies an arbitrary payload: JSON objects and arrays
// are structured, everything else is raw markup:
//
//	content := types.DetectContent(body)
//
// # Closed Enums
//
// Every enum carries a Valid method checked before any write:
//
//	if !req.Status.Valid() {
//	    return types.NewValidationError("status", string(req.Status), "unknown status")
//	}
//
// # Confidence Ordering
//
// Confidence levels form an ordinal scale, low < medium < high < verified,
// exposed through Ordinal for threshold filtering.
package types
