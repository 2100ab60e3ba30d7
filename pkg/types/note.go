package types

// NoteStatus tracks the lifecycle of a development note
type NoteStatus string

const (
	NoteActive    NoteStatus = "active"
	NoteCompleted NoteStatus = "completed"
	NoteArchived  NoteStatus = "archived"
)

// Valid reports whether s is a recognized note status
func (s NoteStatus) Valid() bool {
	switch s {
	case NoteActive, NoteCompleted, NoteArchived:
		return true
	}
	return false
}

// Priority is the note priority scale
type Priority int

const (
	PriorityLow    Priority = 0
	PriorityMedium Priority = 1
	PriorityHigh   Priority = 2
)

// Valid reports whether p is within the priority scale
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// LinkType is the kind of a directed edge between two notes
type LinkType string

const (
	LinkDependsOn  LinkType = "depends_on"
	LinkRelatedTo  LinkType = "related_to"
	LinkBlocks     LinkType = "blocks"
	LinkImplements LinkType = "implements"
)

// LinkTypes is the closed set of valid note link types
var LinkTypes = []LinkType{LinkDependsOn, LinkRelatedTo, LinkBlocks, LinkImplements}

// Valid reports whether t is a member of the allowed set
func (t LinkType) Valid() bool {
	for _, lt := range LinkTypes {
		if t == lt {
			return true
		}
	}
	return false
}
