package contextbudget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/karimzidan/pmdoc/internal/artifact"
)

// fakeSource is a scriptable document source.
type fakeSource struct {
	docs []Document
	err  error
}

func (f *fakeSource) Documents(ctx context.Context, projectID string) ([]Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func makeDocs(n int) []Document {
	docs := make([]Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, Document{
			ID:            fmt.Sprintf("doc-%d", i),
			ProjectID:     "p1",
			Type:          artifact.Type(fmt.Sprintf("imported-%d", i)),
			Category:      artifact.CategoryImported,
			Content:       strings.Repeat("content ", 50),
			TokenEstimate: 100,
			Priority:      artifact.PriorityLow,
			Quality:       4,
			GeneratedAt:   time.Now(),
		})
	}
	return docs
}

func TestLoadLargeScaleZeroDocuments(t *testing.T) {
	b := New(Config{Source: &fakeSource{}})

	res := b.LoadLargeScaleContext(context.Background(), "p1", artifact.RiskPlan, LoadOptions{})

	if !res.Success {
		t.Error("zero documents must still be a success")
	}
	if res.DocumentsLoaded != 0 {
		t.Errorf("expected 0 documents loaded, got %d", res.DocumentsLoaded)
	}
	if len(res.Clusters) != 0 {
		t.Errorf("expected empty clusters, got %d", len(res.Clusters))
	}
}

func TestLoadLargeScaleStoreFailureIsSwallowed(t *testing.T) {
	b := New(Config{Source: &fakeSource{err: errors.New("disk on fire")}})

	res := b.LoadLargeScaleContext(context.Background(), "p1", artifact.RiskPlan, LoadOptions{})

	if res.Success {
		t.Error("store failure must yield Success=false")
	}
	if !strings.Contains(res.Error, "disk on fire") {
		t.Errorf("error string should carry the cause, got %q", res.Error)
	}
	if res.DocumentsLoaded != 0 || len(res.Clusters) != 0 {
		t.Error("failed load must return an empty result set")
	}
}

func TestLoadLargeScaleRespectsTokenBudget(t *testing.T) {
	b := New(Config{Source: &fakeSource{docs: makeDocs(40)}})

	res := b.LoadLargeScaleContext(context.Background(), "p1", artifact.RiskPlan, LoadOptions{
		MaxTokens: 1000,
	})

	if !res.Success {
		t.Fatalf("unexpected failure: %s", res.Error)
	}
	if res.TokensUsed > 1000 {
		t.Errorf("token cap violated: used %d of 1000", res.TokensUsed)
	}
	if res.DocumentsLoaded >= 40 {
		t.Error("expected budget to drop some documents")
	}
	if res.Utilization <= 0 || res.Utilization > 100 {
		t.Errorf("utilization out of range: %f", res.Utilization)
	}
}

func TestLoadLargeScaleRespectsDocumentCap(t *testing.T) {
	b := New(Config{Source: &fakeSource{docs: makeDocs(30)}})

	res := b.LoadLargeScaleContext(context.Background(), "p1", artifact.RiskPlan, LoadOptions{
		MaxTokens:    1_000_000,
		MaxDocuments: 7,
	})

	if res.DocumentsLoaded != 7 {
		t.Errorf("expected exactly 7 documents, got %d", res.DocumentsLoaded)
	}
	if res.DocumentsTotal != 30 {
		t.Errorf("expected total of 30, got %d", res.DocumentsTotal)
	}
}

func TestLoadLargeScaleMinRelevanceFilters(t *testing.T) {
	docs := makeDocs(5)
	// One document is strongly related to the target.
	docs[0].Type = artifact.ProjectCharter
	docs[0].Category = artifact.CategoryInitiation
	docs[0].Priority = artifact.PriorityCritical
	docs[0].Quality = 8

	b := New(Config{Source: &fakeSource{docs: docs}})

	res := b.LoadLargeScaleContext(context.Background(), "p1", artifact.RiskPlan, LoadOptions{
		MinRelevance: 6,
	})

	if res.DocumentsLoaded != 1 {
		t.Fatalf("expected only the related document to pass the filter, got %d", res.DocumentsLoaded)
	}
	if res.Clusters[0].Documents[0].Type != artifact.ProjectCharter {
		t.Errorf("wrong document survived: %+v", res.Clusters[0].Documents[0])
	}
}

func TestLoadLargeScaleKeepsCriticalUnderPressure(t *testing.T) {
	big := strings.Repeat("critical charter content. ", 400)
	docs := []Document{
		{
			ID: "critical", ProjectID: "p1", Type: artifact.ProjectCharter,
			Category: artifact.CategoryInitiation, Priority: artifact.PriorityCritical,
			Content: big, Quality: 8, GeneratedAt: time.Now(),
		},
	}
	b := New(Config{Source: &fakeSource{docs: docs}})

	res := b.LoadLargeScaleContext(context.Background(), "p1", artifact.RiskPlan, LoadOptions{
		MaxTokens: 200,
	})

	if res.DocumentsLoaded != 1 {
		t.Fatal("critical document must be kept, truncated to fit")
	}
	if res.TokensUsed > 200 {
		t.Errorf("token cap violated: %d", res.TokensUsed)
	}
	if !strings.Contains(res.Context, truncationMarker) {
		t.Error("oversized critical document should be truncated with a marker")
	}
}

func TestClusterStrategies(t *testing.T) {
	now := time.Now()
	docs := []Document{
		{ID: "a", Type: artifact.ProjectCharter, Category: artifact.CategoryInitiation,
			Priority: artifact.PriorityCritical, Relevance: 9, GeneratedAt: now, TokenEstimate: 10},
		{ID: "b", Type: artifact.WBS, Category: artifact.CategoryPlanning,
			Priority: artifact.PriorityHigh, Relevance: 5, GeneratedAt: now.Add(-60 * 24 * time.Hour), TokenEstimate: 10},
		{ID: "c", Type: artifact.QualityPlan, Category: artifact.CategoryPlanning,
			Priority: artifact.PriorityMedium, Relevance: 1, GeneratedAt: now.Add(-400 * 24 * time.Hour), TokenEstimate: 10},
	}

	if got := clusterByCategory(docs); len(got) != 2 {
		t.Errorf("category clustering: expected 2 clusters, got %d", len(got))
	}
	if got := clusterByPriority(docs); len(got) != 3 {
		t.Errorf("priority clustering: expected 3 tiers, got %d", len(got))
	}

	rec := clusterByRecency(docs)
	if len(rec) != 3 {
		t.Fatalf("recency clustering: expected 3 windows, got %d", len(rec))
	}
	names := []string{rec[0].Name, rec[1].Name, rec[2].Name}
	want := []string{"last-30-days", "last-90-days", "older"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("recency window %d: got %q, want %q", i, names[i], want[i])
		}
	}

	// Relevance buckets of 10.
	many := makeDocs(25)
	buckets := clusterByRelevance(many)
	if len(buckets) != 3 {
		t.Errorf("relevance clustering: expected 3 buckets for 25 docs, got %d", len(buckets))
	}
	if len(buckets[0].Documents) != 10 || len(buckets[2].Documents) != 5 {
		t.Errorf("bucket sizes wrong: %d, %d, %d",
			len(buckets[0].Documents), len(buckets[1].Documents), len(buckets[2].Documents))
	}
}

func TestClusterCacheReusedWithinTTL(t *testing.T) {
	src := &fakeSource{docs: makeDocs(20)}
	b := New(Config{Source: src, CacheTTL: time.Hour})

	first := b.LoadLargeScaleContext(context.Background(), "p1", artifact.RiskPlan, LoadOptions{})
	if !first.Success {
		t.Fatalf("unexpected failure: %s", first.Error)
	}

	// Shrink the source; the cached clusters should still drive the result.
	src.docs = makeDocs(1)
	second := b.LoadLargeScaleContext(context.Background(), "p1", artifact.RiskPlan, LoadOptions{})
	if second.DocumentsLoaded != first.DocumentsLoaded {
		t.Errorf("expected cached clusters within TTL: first loaded %d, second loaded %d",
			first.DocumentsLoaded, second.DocumentsLoaded)
	}
}

func TestClusterCacheRespectsRelevanceFloor(t *testing.T) {
	docs := makeDocs(5)
	// Only this document scores above the floor used below.
	docs[0].Type = artifact.ProjectCharter
	docs[0].Category = artifact.CategoryInitiation
	docs[0].Priority = artifact.PriorityCritical
	docs[0].Quality = 8

	src := &fakeSource{docs: docs}
	b := New(Config{Source: src, CacheTTL: time.Hour})

	first := b.LoadLargeScaleContext(context.Background(), "p1", artifact.RiskPlan, LoadOptions{})
	if first.DocumentsLoaded != 5 {
		t.Fatalf("unfiltered load should include all 5 documents, got %d", first.DocumentsLoaded)
	}

	// Same project within the TTL but a stricter floor: the cached cluster
	// set from the unfiltered call must not be reused.
	second := b.LoadLargeScaleContext(context.Background(), "p1", artifact.RiskPlan, LoadOptions{
		MinRelevance: 6,
	})
	if second.DocumentsLoaded != 1 {
		t.Errorf("relevance floor ignored: expected 1 document, got %d", second.DocumentsLoaded)
	}
}

func TestTrackInvalidatesClusterCache(t *testing.T) {
	b := New(Config{CacheTTL: time.Hour})
	for _, d := range makeDocs(5) {
		b.TrackGeneratedDocument(d)
	}

	first := b.LoadLargeScaleContext(context.Background(), "p1", artifact.RiskPlan, LoadOptions{Strategy: ClusterByPriority})

	b.TrackGeneratedDocument(Document{
		ProjectID: "p1", Type: artifact.ProjectCharter, Content: "charter",
	})
	second := b.LoadLargeScaleContext(context.Background(), "p1", artifact.RiskPlan, LoadOptions{Strategy: ClusterByPriority})

	if second.DocumentsTotal != first.DocumentsTotal+1 {
		t.Errorf("new registration should invalidate the cache: first=%d second=%d",
			first.DocumentsTotal, second.DocumentsTotal)
	}
}

func TestDetermineOptimalStrategyBoundaries(t *testing.T) {
	cases := []struct {
		count int
		want  LoadStrategy
	}{
		{5, StrategyFullLoad},
		{10, StrategyFullLoad},
		{11, StrategyClusteredLoad},
		{30, StrategyClusteredLoad},
		{50, StrategyClusteredLoad},
		{51, StrategyHierarchicalLoad},
		{75, StrategyHierarchicalLoad},
		{100, StrategyHierarchicalLoad},
		{101, StrategyIntelligentLoad},
		{150, StrategyIntelligentLoad},
	}

	for _, tc := range cases {
		plan := DetermineOptimalStrategy(tc.count)
		if plan.Strategy != tc.want {
			t.Errorf("count %d: got %q, want %q", tc.count, plan.Strategy, tc.want)
		}
	}

	if DetermineOptimalStrategy(30).PerClusterCap != 30 {
		t.Error("clustered load should cap clusters at 30 documents")
	}
	if !DetermineOptimalStrategy(75).Summarize {
		t.Error("hierarchical load should set the summarization flag")
	}
	if DetermineOptimalStrategy(5).Cluster {
		t.Error("full load should not cluster")
	}
}
