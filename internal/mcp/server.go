package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/pmorales/devbank-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "devbank-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	store  storage.Store
	logger *slog.Logger
}

// NewServer creates a new MCP server instance over an already-opened store
func NewServer(store storage.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:    mcpServer,
		store:  store,
		logger: logger,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// registerTools registers the fixed operation table
func (s *Server) registerTools() {
	s.mcp.AddTool(getDiagramsTool(), s.handleGetDiagrams)
	s.mcp.AddTool(getDiagramTool(), s.handleGetDiagram)
	s.mcp.AddTool(createDiagramTool(), s.handleCreateDiagram)
	s.mcp.AddTool(updateDiagramTool(), s.handleUpdateDiagram)
	s.mcp.AddTool(verifyDiagramTool(), s.handleVerifyDiagram)
	s.mcp.AddTool(searchDiagramsTool(), s.handleSearchDiagrams)
	s.mcp.AddTool(getDiagramsByTypeTool(), s.handleGetDiagramsByType)

	s.mcp.AddTool(createNoteTool(), s.handleCreateNote)
	s.mcp.AddTool(getNoteTool(), s.handleGetNote)
	s.mcp.AddTool(updateNoteTool(), s.handleUpdateNote)
	s.mcp.AddTool(searchNotesTool(), s.handleSearchNotes)
	s.mcp.AddTool(linkNotesTool(), s.handleLinkNotes)
	s.mcp.AddTool(createNoteCategoryTool(), s.handleCreateNoteCategory)
	s.mcp.AddTool(createTagTool(), s.handleCreateTag)
}
