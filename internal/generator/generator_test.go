package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/karimzidan/pmdoc/internal/artifact"
	"github.com/karimzidan/pmdoc/internal/contextbudget"
	"github.com/karimzidan/pmdoc/internal/db"
	"github.com/karimzidan/pmdoc/internal/docstore"
	"github.com/karimzidan/pmdoc/internal/fallback"
	"github.com/karimzidan/pmdoc/internal/llm"
)

type fakeProvider struct {
	name    string
	content string
	err     error
	calls   int
	lastReq llm.CompletionRequest
}

func (f *fakeProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{
		Content:      f.content,
		InputTokens:  120,
		OutputTokens: 600,
		Model:        "claude-sonnet-4-5-20250929",
		FinishReason: "stop",
	}, nil
}

func (f *fakeProvider) Ping(context.Context) error { return f.err }
func (f *fakeProvider) Name() string               { return f.name }
func (f *fakeProvider) Configured() bool           { return true }

type testHarness struct {
	gen      *Generator
	store    *docstore.Store
	budgeter *contextbudget.Budgeter
	project  *docstore.Project
	provider *fakeProvider
}

func newHarness(t *testing.T, opts Options) *testHarness {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := docstore.New(database)
	project, err := store.CreateProject(context.Background(), "Warehouse Automation", "Automate picking in the main warehouse")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	provider := &fakeProvider{name: "anthropic", content: "# Project Charter\n\nA charter body."}
	fm := fallback.NewManager([]llm.Provider{provider}, fallback.Options{MaxRetries: 1})
	budgeter := contextbudget.New(contextbudget.Config{})

	return &testHarness{
		gen:      New(fm, budgeter, store, opts),
		store:    store,
		budgeter: budgeter,
		project:  project,
		provider: provider,
	}
}

func TestGenerateDocumentSavesAndTracks(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	rec, err := h.gen.GenerateDocument(ctx, h.project.ID, artifact.ProjectCharter)
	if err != nil {
		t.Fatalf("GenerateDocument: %v", err)
	}
	if rec.Content != "# Project Charter\n\nA charter body." {
		t.Errorf("unexpected content: %q", rec.Content)
	}
	if rec.Provider != "anthropic" {
		t.Errorf("expected provider anthropic, got %q", rec.Provider)
	}

	types := h.budgeter.GeneratedTypes(h.project.ID)
	if len(types) != 1 || types[0] != artifact.ProjectCharter {
		t.Errorf("expected charter tracked, got %v", types)
	}

	entries, err := h.store.ListGenerations(ctx, h.project.ID)
	if err != nil {
		t.Fatalf("ListGenerations: %v", err)
	}
	if len(entries) != 1 || !entries[0].Success {
		t.Fatalf("expected one successful log entry, got %+v", entries)
	}
	if entries[0].CostUSD <= 0 {
		t.Errorf("expected positive cost, got %f", entries[0].CostUSD)
	}
}

func TestGenerateDocumentFeedsLaterContext(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	h.provider.content = "# Project Charter\n\nDeliver the ACME picking robots by Q3."
	if _, err := h.gen.GenerateDocument(ctx, h.project.ID, artifact.ProjectCharter); err != nil {
		t.Fatalf("charter: %v", err)
	}

	h.provider.content = "# Work Breakdown Structure\n\n1. Robots"
	if _, err := h.gen.GenerateDocument(ctx, h.project.ID, artifact.WBS); err != nil {
		t.Fatalf("wbs: %v", err)
	}

	var userPrompt string
	for _, m := range h.provider.lastReq.Messages {
		if m.Role == llm.RoleUser {
			userPrompt = m.Content
		}
	}
	if !strings.Contains(userPrompt, "ACME picking robots") {
		t.Errorf("expected charter content in later prompt, got:\n%s", userPrompt)
	}
}

func TestGenerateDocumentCarriesProjectSummaryInContext(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	if _, err := h.gen.GenerateDocument(ctx, h.project.ID, artifact.ProjectCharter); err != nil {
		t.Fatalf("GenerateDocument: %v", err)
	}

	var userPrompt string
	for _, m := range h.provider.lastReq.Messages {
		if m.Role == llm.RoleUser {
			userPrompt = m.Content
		}
	}
	if !strings.Contains(userPrompt, "Automate picking in the main warehouse") {
		t.Errorf("project description missing from prompt context:\n%s", userPrompt)
	}
	if !strings.Contains(userPrompt, "# Project Summary") {
		t.Error("description should flow through the budgeted summary section")
	}
	if strings.Contains(userPrompt, "Project description:") {
		t.Error("uncapped description block should not appear alongside the budgeted summary")
	}
}

func TestGenerateDocumentContextSurvivesRestart(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	h.provider.content = "# Project Charter\n\nDeliver the ACME picking robots by Q3."
	if _, err := h.gen.GenerateDocument(ctx, h.project.ID, artifact.ProjectCharter); err != nil {
		t.Fatalf("charter: %v", err)
	}

	// A new process: fresh budgeter and generator over the same store.
	budgeter := contextbudget.New(contextbudget.Config{Source: h.store})
	fm := fallback.NewManager([]llm.Provider{h.provider}, fallback.Options{MaxRetries: 1})
	gen := New(fm, budgeter, h.store, Options{})

	h.provider.content = "# Work Breakdown Structure\n\n1. Robots"
	if _, err := gen.GenerateDocument(ctx, h.project.ID, artifact.WBS); err != nil {
		t.Fatalf("wbs: %v", err)
	}

	var userPrompt string
	for _, m := range h.provider.lastReq.Messages {
		if m.Role == llm.RoleUser {
			userPrompt = m.Content
		}
	}
	if !strings.Contains(userPrompt, "ACME picking robots") {
		t.Errorf("charter stored by the earlier run missing from the prompt:\n%s", userPrompt)
	}
}

func TestGenerateDocumentFailureIsLogged(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	h.provider.err = errors.New("rate limited")
	_, err := h.gen.GenerateDocument(ctx, h.project.ID, artifact.RiskPlan)
	if err == nil {
		t.Fatal("expected error when all providers fail")
	}

	entries, err := h.store.ListGenerations(ctx, h.project.ID)
	if err != nil {
		t.Fatalf("ListGenerations: %v", err)
	}
	if len(entries) != 1 || entries[0].Success {
		t.Fatalf("expected one failed log entry, got %+v", entries)
	}
	if !strings.Contains(entries[0].Error, "rate limited") {
		t.Errorf("expected cause in log entry, got %q", entries[0].Error)
	}
}

func TestGenerateDocumentUnknownType(t *testing.T) {
	h := newHarness(t, Options{})
	if _, err := h.gen.GenerateDocument(context.Background(), h.project.ID, artifact.Type("novel")); err == nil {
		t.Fatal("expected error for unknown type")
	}
	if h.provider.calls != 0 {
		t.Errorf("provider should not be called, got %d calls", h.provider.calls)
	}
}

func TestCostCeilingStopsGeneration(t *testing.T) {
	h := newHarness(t, Options{MaxCostUSD: 1.00})
	ctx := context.Background()

	err := h.store.LogGeneration(ctx, docstore.GenerationEntry{
		ProjectID:    h.project.ID,
		DocumentType: string(artifact.ProjectCharter),
		Provider:     "anthropic",
		CostUSD:      1.50,
		Success:      true,
	})
	if err != nil {
		t.Fatalf("LogGeneration: %v", err)
	}

	_, err = h.gen.GenerateDocument(ctx, h.project.ID, artifact.WBS)
	if err == nil || !strings.Contains(err.Error(), "cost ceiling") {
		t.Fatalf("expected cost ceiling error, got %v", err)
	}
	if h.provider.calls != 0 {
		t.Errorf("provider should not be called past the ceiling, got %d calls", h.provider.calls)
	}
}

func TestGenerateSetContinuesPastFailures(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	records, errs := h.gen.GenerateSet(ctx, h.project.ID, []artifact.Type{
		artifact.ProjectCharter,
		artifact.Type("novel"),
		artifact.WBS,
	})
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
	if len(errs) != 1 {
		t.Errorf("expected 1 error, got %v", errs)
	}
}
