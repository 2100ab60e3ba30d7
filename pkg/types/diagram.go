package types

import "encoding/json"

// DiagramType classifies a diagram artifact
type DiagramType string

const (
	DiagramArchitecture DiagramType = "architecture"
	DiagramComponent    DiagramType = "component"
	DiagramRelationship DiagramType = "relationship"
	DiagramSequence     DiagramType = "sequence"
	DiagramState        DiagramType = "state"
	DiagramMemorySystem DiagramType = "memory_system"
)

// DiagramTypes is the closed set of valid diagram types
var DiagramTypes = []DiagramType{
	DiagramArchitecture,
	DiagramComponent,
	DiagramRelationship,
	DiagramSequence,
	DiagramState,
	DiagramMemorySystem,
}

// Valid reports whether t is a member of the allowed set
func (t DiagramType) Valid() bool {
	for _, dt := range DiagramTypes {
		if t == dt {
			return true
		}
	}
	return false
}

// ConfidenceLevel is an ordinal trust rating attached to a diagram
type ConfidenceLevel string

const (
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceVerified ConfidenceLevel = "verified"
)

// ConfidenceLevels lists all levels in ascending trust order
var ConfidenceLevels = []ConfidenceLevel{
	ConfidenceLow,
	ConfidenceMedium,
	ConfidenceHigh,
	ConfidenceVerified,
}

// Ordinal returns the position of the level in the trust ordering,
// or -1 for an unknown level
func (c ConfidenceLevel) Ordinal() int {
	for i, level := range ConfidenceLevels {
		if c == level {
			return i
		}
	}
	return -1
}

// VerificationStatus is the outcome recorded by a verification pass
type VerificationStatus string

const (
	VerificationApproved      VerificationStatus = "approved"
	VerificationRejected      VerificationStatus = "rejected"
	VerificationNeedsRevision VerificationStatus = "needs_revision"
)

// Valid reports whether s is a recognized verification outcome
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationApproved, VerificationRejected, VerificationNeedsRevision:
		return true
	}
	return false
}

// ContentFormat discriminates the two content storage shapes
type ContentFormat string

const (
	// FormatStructured marks machine-generated JSON diagram content
	FormatStructured ContentFormat = "structured"
	// FormatRaw marks hand-authored markup stored as text
	FormatRaw ContentFormat = "raw"
)

// Content is the tagged variant for diagram content. Exactly one of
// Structured or Raw is populated, selected by Format. The zero value
// (empty Format) represents absent content.
type Content struct {
	Format     ContentFormat
	Structured json.RawMessage
	Raw        string
}

// StructuredContent wraps a JSON value as structured diagram content
func StructuredContent(value json.RawMessage) Content {
	return Content{Format: FormatStructured, Structured: value}
}

// RawContent wraps markup text as raw diagram content
func RawContent(text string) Content {
	return Content{Format: FormatRaw, Raw: text}
}

// IsZero reports whether the content is absent
func (c Content) IsZero() bool {
	return c.Format == ""
}

// DetectContent classifies an arbitrary content payload: values that
// parse as a JSON object or array are structured, everything else is raw
func DetectContent(payload string) Content {
	trimmed := []byte(payload)
	if json.Valid(trimmed) {
		var probe interface{}
		if err := json.Unmarshal(trimmed, &probe); err == nil {
			switch probe.(type) {
			case map[string]interface{}, []interface{}:
				return StructuredContent(json.RawMessage(trimmed))
			}
		}
	}
	return RawContent(payload)
}
