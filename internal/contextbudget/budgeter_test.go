package contextbudget

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/karimzidan/pmdoc/internal/artifact"
	"github.com/karimzidan/pmdoc/internal/tokens"
)

func newTestBudgeter(maxTokens int) *Budgeter {
	return New(Config{MaxContextTokens: maxTokens})
}

func TestBuildContextNeverExceedsBudget(t *testing.T) {
	b := newTestBudgeter(500)
	b.SetProjectSummary("p1", strings.Repeat("project summary text. ", 500))
	b.TrackGeneratedDocument(Document{
		ProjectID: "p1",
		Type:      artifact.ProjectCharter,
		Content:   strings.Repeat("charter body. ", 1000),
	})
	b.TrackGeneratedDocument(Document{
		ProjectID: "p1",
		Type:      artifact.ScopeStatement,
		Content:   strings.Repeat("scope body. ", 1000),
	})

	out := b.BuildContextForDocument(context.Background(), "p1", artifact.RiskPlan)

	est := tokens.HeuristicEstimator{}
	if got := est.EstimateTokens(out); got > 500 {
		t.Errorf("assembled context is %d estimated tokens, budget is 500", got)
	}
}

func TestBuildContextCoreSummaryCappedAtThousandTokens(t *testing.T) {
	b := newTestBudgeter(8000)
	b.SetProjectSummary("p1", strings.Repeat("x", 10000))

	out := b.BuildContextForDocument(context.Background(), "p1", artifact.BusinessCase)

	if !strings.Contains(out, truncationMarker) {
		t.Error("oversized summary should carry a truncation marker")
	}
	est := tokens.HeuristicEstimator{}
	// Core section plus freshness metadata stays near the 1000-token cap.
	if got := est.EstimateTokens(out); got > 1100 {
		t.Errorf("core-only context is %d tokens, expected ~1000", got)
	}
}

func TestBuildContextNoRelatedTypesIsCorePlusFreshness(t *testing.T) {
	b := newTestBudgeter(8000)
	b.SetProjectSummary("p1", "A payroll migration project.")

	// BusinessCase has no mapped related types.
	out := b.BuildContextForDocument(context.Background(), "p1", artifact.BusinessCase)

	if !strings.Contains(out, "# Project Summary") {
		t.Error("missing core summary section")
	}
	if !strings.Contains(out, "## Context Freshness") {
		t.Error("missing freshness metadata")
	}
	if strings.Contains(out, "## Project Charter") || strings.Contains(out, "## Work Breakdown") {
		t.Error("unexpected related-document section")
	}
}

func TestTrackThenBuildRoundTrip(t *testing.T) {
	b := newTestBudgeter(8000)
	b.SetProjectSummary("p1", "An ERP rollout.")
	b.TrackGeneratedDocument(Document{
		ProjectID: "p1",
		Type:      artifact.ProjectCharter,
		Content:   "The charter authorizes the ERP rollout with a Q3 deadline.",
	})

	// RiskPlan lists ProjectCharter as related.
	out := b.BuildContextForDocument(context.Background(), "p1", artifact.RiskPlan)

	if !strings.Contains(out, "The charter authorizes the ERP rollout") {
		t.Error("tracked document content missing from assembled context")
	}
	if !strings.Contains(out, "Generated documents: project-charter") {
		t.Errorf("freshness metadata should list the generated key, got:\n%s", out)
	}
}

func TestTrackThenBuildIncludesTruncatedPrefixUnderTightBudget(t *testing.T) {
	b := newTestBudgeter(300)
	b.SetProjectSummary("p1", "Short summary.")
	content := "RISK-CONTENT-START " + strings.Repeat("risk detail. ", 500)
	b.TrackGeneratedDocument(Document{
		ProjectID: "p1",
		Type:      artifact.ProjectCharter,
		Content:   content,
	})

	out := b.BuildContextForDocument(context.Background(), "p1", artifact.RiskPlan)

	if !strings.Contains(out, "RISK-CONTENT-START") {
		t.Error("expected at least a truncated prefix of the related document")
	}
	if !strings.Contains(out, truncationMarker) {
		t.Error("expected truncation marker on partial fit")
	}
}

func TestBuildContextStopsAfterFirstTruncation(t *testing.T) {
	b := newTestBudgeter(400)
	b.SetProjectSummary("p1", "Summary.")
	big := strings.Repeat("body text. ", 500)
	b.TrackGeneratedDocument(Document{ProjectID: "p1", Type: artifact.ProjectCharter, Content: "FIRST " + big})
	b.TrackGeneratedDocument(Document{ProjectID: "p1", Type: artifact.ScopeStatement, Content: "SECOND " + big})
	b.TrackGeneratedDocument(Document{ProjectID: "p1", Type: artifact.WBS, Content: "THIRD " + big})

	// RiskPlan relates to charter, scope, then WBS in declared order.
	out := b.BuildContextForDocument(context.Background(), "p1", artifact.RiskPlan)

	if !strings.Contains(out, "FIRST") {
		t.Fatal("first related section missing entirely")
	}
	if strings.Contains(out, "SECOND") || strings.Contains(out, "THIRD") {
		t.Error("assembly must stop after the first truncated section")
	}
}

func TestBuildContextRelatedTypesInDeclaredOrder(t *testing.T) {
	b := newTestBudgeter(8000)
	b.SetProjectSummary("p1", "Summary.")
	b.TrackGeneratedDocument(Document{ProjectID: "p1", Type: artifact.WBS, Content: "wbs content"})
	b.TrackGeneratedDocument(Document{ProjectID: "p1", Type: artifact.ProjectCharter, Content: "charter content"})
	b.TrackGeneratedDocument(Document{ProjectID: "p1", Type: artifact.ScopeStatement, Content: "scope content"})

	out := b.BuildContextForDocument(context.Background(), "p1", artifact.RiskPlan)

	// Declared order for RiskPlan: charter, scope, WBS — not tracking order.
	iCharter := strings.Index(out, "charter content")
	iScope := strings.Index(out, "scope content")
	iWBS := strings.Index(out, "wbs content")
	if iCharter < 0 || iScope < 0 || iWBS < 0 {
		t.Fatalf("missing sections: charter=%d scope=%d wbs=%d", iCharter, iScope, iWBS)
	}
	if !(iCharter < iScope && iScope < iWBS) {
		t.Error("related sections not in the relationship table's declared order")
	}
}

func TestTrackReplacesEarlierVersionOfSameType(t *testing.T) {
	b := newTestBudgeter(8000)
	b.TrackGeneratedDocument(Document{ProjectID: "p1", Type: artifact.ProjectCharter, Content: "old charter"})
	b.TrackGeneratedDocument(Document{ProjectID: "p1", Type: artifact.ProjectCharter, Content: "new charter"})

	out := b.BuildContextForDocument(context.Background(), "p1", artifact.RiskPlan)
	if strings.Contains(out, "old charter") {
		t.Error("superseded document version still present")
	}
	if !strings.Contains(out, "new charter") {
		t.Error("latest document version missing")
	}
}

func TestGeneratedTypesCatalogOrder(t *testing.T) {
	b := newTestBudgeter(8000)
	b.TrackGeneratedDocument(Document{ProjectID: "p1", Type: artifact.WBS, Content: "w"})
	b.TrackGeneratedDocument(Document{ProjectID: "p1", Type: artifact.ProjectCharter, Content: "c"})

	got := b.GeneratedTypes("p1")
	if len(got) != 2 || got[0] != artifact.ProjectCharter || got[1] != artifact.WBS {
		t.Errorf("expected catalog order [project-charter wbs], got %v", got)
	}
}

func TestRelevanceScoreBonuses(t *testing.T) {
	now := time.Now()
	related := Document{
		Type:        artifact.ProjectCharter,
		Category:    artifact.CategoryInitiation,
		Priority:    artifact.PriorityCritical,
		Quality:     9,
		GeneratedAt: now,
	}
	unrelated := Document{
		Type:        artifact.ProcurementPlan,
		Category:    artifact.CategoryPlanning,
		Priority:    artifact.PriorityLow,
		Quality:     0,
		GeneratedAt: now.Add(-400 * 24 * time.Hour),
	}

	// RiskPlan relates to the charter; the stale procurement plan gets none
	// of the bonuses.
	if scoreRelevance(related, artifact.RiskPlan) <= scoreRelevance(unrelated, artifact.RiskPlan) {
		t.Error("related critical recent document must outscore stale unrelated one")
	}
}

func TestRelevanceQualityDoesNotDominate(t *testing.T) {
	now := time.Now()
	// A perfect-quality document with nothing else going for it must not
	// outscore a related, recent, critical one of middling quality.
	perfectButUnrelated := Document{
		Type:        artifact.ProcurementPlan,
		Category:    artifact.CategoryPlanning,
		Priority:    artifact.PriorityLow,
		Quality:     10,
		GeneratedAt: now.Add(-400 * 24 * time.Hour),
	}
	relatedMiddling := Document{
		Type:        artifact.ProjectCharter,
		Category:    artifact.CategoryInitiation,
		Priority:    artifact.PriorityCritical,
		Quality:     5,
		GeneratedAt: now,
	}

	if scoreRelevance(perfectButUnrelated, artifact.RiskPlan) >= scoreRelevance(relatedMiddling, artifact.RiskPlan) {
		t.Error("quality alone must not outweigh relationship, priority, and recency combined")
	}
}

func TestBuildContextTinyBudgetStaysWithinLimit(t *testing.T) {
	// Small enough that the summary header, freshness block, and generated
	// key list exceed the budget on their own.
	b := newTestBudgeter(40)
	b.SetProjectSummary("p1", strings.Repeat("summary text. ", 100))
	for _, typ := range []artifact.Type{
		artifact.ProjectCharter, artifact.ScopeStatement, artifact.WBS,
		artifact.StakeholderRegister, artifact.QualityPlan, artifact.CommunicationsPlan,
	} {
		b.TrackGeneratedDocument(Document{
			ProjectID: "p1",
			Type:      typ,
			Content:   strings.Repeat("body. ", 200),
		})
	}

	out := b.BuildContextForDocument(context.Background(), "p1", artifact.RiskPlan)

	est := tokens.HeuristicEstimator{}
	if got := est.EstimateTokens(out); got > 40 {
		t.Errorf("assembled context is %d estimated tokens, budget is 40", got)
	}
	if out == "" {
		t.Error("tiny budget should still yield a trimmed core, not an empty string")
	}
}

func TestBuildContextHydratesFromSource(t *testing.T) {
	// A fresh budgeter (new process) must see documents persisted by
	// earlier runs through its Source.
	src := &fakeSource{docs: []Document{{
		ID:        "stored",
		ProjectID: "p1",
		Type:      artifact.ProjectCharter,
		Content:   "The charter from a previous run.",
	}}}
	b := New(Config{Source: src})

	out := b.BuildContextForDocument(context.Background(), "p1", artifact.RiskPlan)

	if !strings.Contains(out, "The charter from a previous run.") {
		t.Error("persisted related document missing from assembled context")
	}
	if !strings.Contains(out, "Generated documents: project-charter") {
		t.Errorf("freshness metadata should list the hydrated key, got:\n%s", out)
	}
}

func TestBuildContextTrackedDocumentWinsOverStored(t *testing.T) {
	src := &fakeSource{docs: []Document{{
		ProjectID: "p1",
		Type:      artifact.ProjectCharter,
		Content:   "stale stored charter",
	}}}
	b := New(Config{Source: src})
	b.TrackGeneratedDocument(Document{
		ProjectID: "p1",
		Type:      artifact.ProjectCharter,
		Content:   "fresh in-memory charter",
	})

	out := b.BuildContextForDocument(context.Background(), "p1", artifact.RiskPlan)

	if strings.Contains(out, "stale stored charter") {
		t.Error("stored copy must not replace a document tracked this run")
	}
	if !strings.Contains(out, "fresh in-memory charter") {
		t.Error("tracked document missing from assembled context")
	}
}
