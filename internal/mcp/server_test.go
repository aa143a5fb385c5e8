package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/karimzidan/pmdoc/internal/artifact"
	"github.com/karimzidan/pmdoc/internal/db"
	"github.com/karimzidan/pmdoc/internal/docstore"
	"github.com/karimzidan/pmdoc/internal/fallback"
	"github.com/karimzidan/pmdoc/internal/llm"
)

type stubProvider struct{}

func (stubProvider) Complete(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: "ok"}, nil
}
func (stubProvider) Ping(context.Context) error { return nil }
func (stubProvider) Name() string               { return "anthropic" }
func (stubProvider) Configured() bool           { return true }

func newTestMCP(t *testing.T) (*Server, *docstore.Store, *docstore.Project) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := docstore.New(database)
	project, err := store.CreateProject(context.Background(), "ERP Rollout", "Migration")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	fm := fallback.NewManager([]llm.Provider{stubProvider{}}, fallback.Options{})
	return NewServer(store, fm, nil), store, project
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return tc.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{listProjectsTool, "list_projects"},
		{listDocumentsTool, "list_documents"},
		{getDocumentTool, "get_document"},
		{generateDocumentTool, "generate_document"},
		{providerStatusTool, "provider_status"},
	}
	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestHandleListProjects(t *testing.T) {
	srv, _, project := newTestMCP(t)

	result, err := srv.handleListProjects(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := textContent(t, result)
	if !strings.Contains(text, project.ID) || !strings.Contains(text, "ERP Rollout") {
		t.Errorf("expected project in output, got:\n%s", text)
	}
}

func TestHandleListAndGetDocuments(t *testing.T) {
	srv, store, project := newTestMCP(t)
	ctx := context.Background()

	rec, err := store.SaveDocument(ctx, docstore.Record{
		ProjectID: project.ID,
		Type:      artifact.ProjectCharter,
		Content:   "# Charter\n\nThe body.",
	})
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"project_id": project.ID}
	result, err := srv.handleListDocuments(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(textContent(t, result), rec.ID) {
		t.Error("expected document id in listing")
	}

	req = mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"document_id": rec.ID}
	result, err = srv.handleGetDocument(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if textContent(t, result) != "# Charter\n\nThe body." {
		t.Errorf("unexpected content: %q", textContent(t, result))
	}
}

func TestHandleGetDocumentMissingParam(t *testing.T) {
	srv, _, _ := newTestMCP(t)

	result, err := srv.handleGetDocument(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing document_id")
	}
}

func TestHandleGenerateWithoutGenerator(t *testing.T) {
	srv, _, project := newTestMCP(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"project_id": project.ID,
		"type":       "project-charter",
	}
	result, err := srv.handleGenerateDocument(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error when generator is nil")
	}
}

func TestHandleProviderStatus(t *testing.T) {
	srv, _, _ := newTestMCP(t)

	result, err := srv.handleProviderStatus(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(textContent(t, result), "anthropic") {
		t.Error("expected provider name in status output")
	}
}
