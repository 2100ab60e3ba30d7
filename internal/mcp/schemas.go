package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// diagramTypeEnum lists the allowed diagram type values for tool schemas
var diagramTypeEnum = []string{"architecture", "component", "relationship", "sequence", "state", "memory_system"}

// getDiagramsTool returns the tool definition for get_diagrams
func getDiagramsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_diagrams",
		Description: "List all diagrams in summary form, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getDiagramTool returns the tool definition for get_diagram
func getDiagramTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_diagram",
		Description: "Get a single diagram including its content body",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Diagram id",
				},
			},
			Required: []string{"id"},
		},
	}
}

// createDiagramTool returns the tool definition for create_diagram
func createDiagramTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_diagram",
		Description: "Create a diagram with structured (JSON) or raw markup content",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Diagram name",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Short description",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"description": "Diagram classification",
					"enum":        diagramTypeEnum,
				},
				"content": map[string]interface{}{
					"description": "Content body: a JSON object for structured diagrams or a string of raw markup",
				},
			},
			Required: []string{"name", "type", "content"},
		},
	}
}

// updateDiagramTool returns the tool definition for update_diagram
func updateDiagramTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_diagram",
		Description: "Partially update a diagram; only supplied fields change. New content is re-classified and migrated between storage shapes when its kind changes",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Diagram id",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "New name",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "New description",
				},
				"content": map[string]interface{}{
					"description": "New content body (JSON object or raw markup string)",
				},
			},
			Required: []string{"id"},
		},
	}
}

// verifyDiagramTool returns the tool definition for verify_diagram
func verifyDiagramTool() mcp.Tool {
	return mcp.Tool{
		Name:        "verify_diagram",
		Description: "Record a verification pass for a diagram and advance its confidence level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Diagram id",
				},
				"verified_by": map[string]interface{}{
					"type":        "string",
					"description": "Who performed the verification",
				},
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Verification outcome",
					"enum":        []string{"approved", "rejected", "needs_revision"},
				},
				"notes": map[string]interface{}{
					"type":        "string",
					"description": "Optional reviewer notes",
				},
			},
			Required: []string{"id", "verified_by", "status"},
		},
	}
}

// searchDiagramsTool returns the tool definition for search_diagrams
func searchDiagramsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_diagrams",
		Description: "Search diagrams with a natural language query and an optional confidence threshold",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language or keyword query matched against name and description",
				},
				"min_confidence": map[string]interface{}{
					"type":        "string",
					"description": "Include only diagrams at or above this confidence level",
					"enum":        []string{"low", "medium", "high"},
				},
			},
			Required: []string{"query"},
		},
	}
}

// getDiagramsByTypeTool returns the tool definition for get_diagrams_by_type
func getDiagramsByTypeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_diagrams_by_type",
		Description: "List diagrams of one type in summary form, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"type": map[string]interface{}{
					"type":        "string",
					"description": "Diagram classification",
					"enum":        diagramTypeEnum,
				},
			},
			Required: []string{"type"},
		},
	}
}

// createNoteTool returns the tool definition for create_note
func createNoteTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_note",
		Description: "Create a development note in an existing category, with optional tags",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Note title",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Note body",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Category name; must already exist",
				},
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Lifecycle status",
					"enum":        []string{"active", "completed", "archived"},
					"default":     "active",
				},
				"priority": map[string]interface{}{
					"type":        "integer",
					"description": "0=low, 1=medium, 2=high",
					"default":     0,
					"minimum":     0,
					"maximum":     2,
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional session identifier",
				},
				"parent_note_id": map[string]interface{}{
					"type":        "integer",
					"description": "Optional parent note forming a tree",
				},
				"context": map[string]interface{}{
					"type":        "object",
					"description": "Optional structured context blob",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Tag names; created lazily",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"title", "content", "category"},
		},
	}
}

// getNoteTool returns the tool definition for get_note
func getNoteTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_note",
		Description: "Get a note with its category, tags and outgoing links",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Note id",
				},
			},
			Required: []string{"id"},
		},
	}
}

// updateNoteTool returns the tool definition for update_note
func updateNoteTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_note",
		Description: "Partially update a note; supplying tags replaces the full tag set",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Note id",
				},
				"title": map[string]interface{}{
					"type": "string",
				},
				"content": map[string]interface{}{
					"type": "string",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "New category name; must already exist",
				},
				"status": map[string]interface{}{
					"type": "string",
					"enum": []string{"active", "completed", "archived"},
				},
				"priority": map[string]interface{}{
					"type":    "integer",
					"minimum": 0,
					"maximum": 2,
				},
				"session_id": map[string]interface{}{
					"type": "string",
				},
				"context": map[string]interface{}{
					"type": "object",
				},
				"tags": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"id"},
		},
	}
}

// searchNotesTool returns the tool definition for search_notes
func searchNotesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_notes",
		Description: "Search notes with conjunctive filters; the tag filter matches notes carrying any of the given tags",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free text matched against title and content",
				},
				"category": map[string]interface{}{
					"type": "string",
				},
				"status": map[string]interface{}{
					"type": "string",
					"enum": []string{"active", "completed", "archived"},
				},
				"priority": map[string]interface{}{
					"type":    "integer",
					"minimum": 0,
					"maximum": 2,
				},
				"tags": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"session_id": map[string]interface{}{
					"type": "string",
				},
				"limit": map[string]interface{}{
					"type":    "integer",
					"default": 50,
					"minimum": 1,
				},
			},
		},
	}
}

// linkNotesTool returns the tool definition for link_notes
func linkNotesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "link_notes",
		Description: "Create a typed directed link between two notes; duplicate links are a no-op",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source_id": map[string]interface{}{
					"type":        "integer",
					"description": "Source note id",
				},
				"target_id": map[string]interface{}{
					"type":        "integer",
					"description": "Target note id",
				},
				"link_type": map[string]interface{}{
					"type": "string",
					"enum": []string{"depends_on", "related_to", "blocks", "implements"},
				},
			},
			Required: []string{"source_id", "target_id", "link_type"},
		},
	}
}

// createNoteCategoryTool returns the tool definition for create_note_category
func createNoteCategoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_note_category",
		Description: "Create a note category, or update its description when the name exists",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Category name (case-sensitive unique key)",
				},
				"description": map[string]interface{}{
					"type": "string",
				},
			},
			Required: []string{"name"},
		},
	}
}

// createTagTool returns the tool definition for create_tag
func createTagTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_tag",
		Description: "Create a tag, or update its description when the name exists",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Tag name (case-sensitive unique key)",
				},
				"description": map[string]interface{}{
					"type": "string",
				},
			},
			Required: []string{"name"},
		},
	}
}
