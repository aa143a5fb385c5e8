package contextbudget

import (
	"time"

	"github.com/karimzidan/pmdoc/internal/artifact"
)

// Document is one previously generated artifact registered with the context
// store. Read-only after registration; only the relevance score is
// recomputed, per query.
type Document struct {
	ID            string            `json:"id"`
	ProjectID     string            `json:"project_id"`
	Type          artifact.Type     `json:"type"`
	Category      artifact.Category `json:"category"`
	Content       string            `json:"content"`
	TokenEstimate int               `json:"token_estimate"`
	Priority      artifact.Priority `json:"priority"`
	// Quality is a 0..10 assessment carried from generation (finish
	// reason, length sanity). Imported documents default to 4.
	Quality     float64   `json:"quality"`
	Relevance   float64   `json:"relevance"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ClusterStrategy selects how documents are grouped in the large-scale path.
type ClusterStrategy string

const (
	ClusterByCategory  ClusterStrategy = "category"
	ClusterByRelevance ClusterStrategy = "relevance"
	ClusterByRecency   ClusterStrategy = "recency"
	ClusterByPriority  ClusterStrategy = "priority"
)

// Cluster is a named bundle of documents grouped by one strategy, with
// aggregate token count and average relevance. Recomputed per call except
// for a short-lived per-project cache.
type Cluster struct {
	Name         string          `json:"name"`
	Strategy     ClusterStrategy `json:"strategy"`
	Documents    []Document      `json:"documents"`
	TotalTokens  int             `json:"total_tokens"`
	AvgRelevance float64         `json:"avg_relevance"`
}

// LoadOptions tune LoadLargeScaleContext.
type LoadOptions struct {
	Strategy      ClusterStrategy
	MinRelevance  float64
	MaxDocuments  int
	MaxTokens     int
	PerClusterCap int
	Summarize     bool
}

// LoadResult reports what the large-scale loader selected. Errors from the
// underlying store are folded into Success/Error rather than returned: a
// missing context snippet must not crash the generation caller.
type LoadResult struct {
	Success          bool      `json:"success"`
	Error            string    `json:"error,omitempty"`
	Context          string    `json:"context"`
	Clusters         []Cluster `json:"clusters"`
	ClustersIncluded int       `json:"clusters_included"`
	ClustersTotal    int       `json:"clusters_total"`
	DocumentsLoaded  int       `json:"documents_loaded"`
	DocumentsTotal   int       `json:"documents_total"`
	TokensUsed       int       `json:"tokens_used"`
	TokenBudget      int       `json:"token_budget"`
	Utilization      float64   `json:"utilization"`
}

// LoadStrategy names the document-count-driven loading plan.
type LoadStrategy string

const (
	StrategyFullLoad         LoadStrategy = "full-load"
	StrategyClusteredLoad    LoadStrategy = "clustered-load"
	StrategyHierarchicalLoad LoadStrategy = "hierarchical-load"
	StrategyIntelligentLoad  LoadStrategy = "intelligent-load"
)

// StrategyPlan is the resolved plan for a given document count.
type StrategyPlan struct {
	Strategy      LoadStrategy `json:"strategy"`
	Cluster       bool         `json:"cluster"`
	PerClusterCap int          `json:"per_cluster_cap"`
	Summarize     bool         `json:"summarize"`
}
