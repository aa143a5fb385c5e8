package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/karimzidan/pmdoc/internal/artifact"
)

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing projects: %v", err)), nil
	}
	if len(projects) == 0 {
		return mcp.NewToolResultText("No projects found. Create one with `pmdoc init`."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d project(s):\n\n", len(projects)))
	for _, p := range projects {
		sb.WriteString(fmt.Sprintf("- %s: %s", p.ID, p.Name))
		if p.Description != "" {
			sb.WriteString(" — " + p.Description)
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project_id"), nil
	}

	docs, err := s.store.ListDocuments(ctx, projectID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing documents: %v", err)), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText("The project has no documents yet. Use generate_document to create one."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d document(s):\n\n", len(docs)))
	for _, d := range docs {
		sb.WriteString(fmt.Sprintf("- %s: %s [%s, %s, %s]\n", d.ID, d.Title, d.Type, d.Category, d.Source))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: document_id"), nil
	}

	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("document %q not found", documentID)), nil
	}
	return mcp.NewToolResultText(doc.Content), nil
}

func (s *Server) handleGenerateDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.gen == nil {
		return mcp.NewToolResultError("generation is not configured; set a provider API key first"), nil
	}

	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project_id"), nil
	}
	typeStr, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: type"), nil
	}

	docType := artifact.Type(typeStr)
	if !artifact.Known(docType) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown document type %q", typeStr)), nil
	}

	rec, err := s.gen.GenerateDocument(ctx, projectID, docType)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Generated %s (document id %s, provider %s).\n\n%s",
		rec.Title, rec.ID, rec.Provider, rec.Content,
	)), nil
}

func (s *Server) handleProviderStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statuses := s.fm.Status()
	if len(statuses) == 0 {
		return mcp.NewToolResultText("No providers configured."), nil
	}

	var sb strings.Builder
	sb.WriteString("Providers in fallback order:\n\n")
	for _, st := range statuses {
		marker := " "
		if st.Active {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %s: %s, configured=%t, failures=%d, avg=%dms\n",
			marker, st.Name, st.State, st.Configured, st.ConsecutiveFailures, st.AvgResponseMs))
	}
	return mcp.NewToolResultText(sb.String()), nil
}
