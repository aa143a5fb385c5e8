// Package mcp exposes pmdoc's projects and generation pipeline as MCP tools
// so AI assistants can read and produce project documentation.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/karimzidan/pmdoc/internal/docstore"
	"github.com/karimzidan/pmdoc/internal/fallback"
	"github.com/karimzidan/pmdoc/internal/generator"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server over the document store and generator.
type Server struct {
	store *docstore.Store
	fm    *fallback.Manager
	gen   *generator.Generator
	mcp   *server.MCPServer
}

// NewServer creates an MCP server. gen may be nil when no provider is
// configured; the generate tool then reports that.
func NewServer(store *docstore.Store, fm *fallback.Manager, gen *generator.Generator) *Server {
	s := &Server{
		store: store,
		fm:    fm,
		gen:   gen,
	}

	s.mcp = server.NewMCPServer(
		"pmdoc",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers.
func (s *Server) registerTools() {
	s.mcp.AddTool(listProjectsTool, s.handleListProjects)
	s.mcp.AddTool(listDocumentsTool, s.handleListDocuments)
	s.mcp.AddTool(getDocumentTool, s.handleGetDocument)
	s.mcp.AddTool(generateDocumentTool, s.handleGenerateDocument)
	s.mcp.AddTool(providerStatusTool, s.handleProviderStatus)
}

// Serve starts the MCP server on stdio. Stdout carries MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
