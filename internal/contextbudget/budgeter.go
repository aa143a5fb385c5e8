package contextbudget

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/karimzidan/pmdoc/internal/artifact"
	"github.com/karimzidan/pmdoc/internal/tokens"
)

const (
	// coreSummaryTokens caps the project summary section of every context.
	coreSummaryTokens = 1000
	// safetyBufferChars is held back when truncating a section to fit, so
	// the estimate error of the heuristic cannot push past the budget.
	safetyBufferChars = 64

	defaultMaxContextTokens = 8000
	defaultCacheTTL         = 30 * time.Second
)

// Source supplies all stored documents for a project. The large-scale path
// reads through it; errors are folded into LoadResult, never propagated.
type Source interface {
	Documents(ctx context.Context, projectID string) ([]Document, error)
}

// Budgeter assembles bounded prompt context from previously generated
// documents. The registry of generated documents and the cluster cache are
// memory-resident and rebuilt on restart.
type Budgeter struct {
	mu               sync.Mutex
	source           Source
	est              tokens.Estimator
	summarizer       Summarizer
	maxContextTokens int
	cacheTTL         time.Duration
	projects         map[string]*projectContext
	clusterCache     map[string]*cachedClusters
	logger           *log.Logger
}

type projectContext struct {
	summary   string
	updatedAt time.Time
	hydrated  bool
	docs      map[artifact.Type]Document
}

type cachedClusters struct {
	strategy     ClusterStrategy
	target       artifact.Type
	minRelevance float64
	clusters     []Cluster
	expires      time.Time
}

// Config holds budgeter construction options. Source may be nil, in which
// case the large-scale path reads the in-memory registry.
type Config struct {
	Source           Source
	Estimator        tokens.Estimator
	MaxContextTokens int
	CacheTTL         time.Duration
	Logger           *log.Logger
}

// New creates a Budgeter.
func New(cfg Config) *Budgeter {
	if cfg.Estimator == nil {
		cfg.Estimator = tokens.Default
	}
	if cfg.MaxContextTokens <= 0 {
		cfg.MaxContextTokens = defaultMaxContextTokens
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Budgeter{
		source:           cfg.Source,
		est:              cfg.Estimator,
		summarizer:       TruncatingSummarizer{Estimator: cfg.Estimator},
		maxContextTokens: cfg.MaxContextTokens,
		cacheTTL:         cfg.CacheTTL,
		projects:         make(map[string]*projectContext),
		clusterCache:     make(map[string]*cachedClusters),
		logger:           cfg.Logger,
	}
}

// MaxContextTokens returns the configured context budget.
func (b *Budgeter) MaxContextTokens() int { return b.maxContextTokens }

// SetProjectSummary registers the core project description used as the
// opening section of every assembled context.
func (b *Budgeter) SetProjectSummary(projectID, summary string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pc := b.project(projectID)
	pc.summary = summary
	pc.updatedAt = time.Now()
}

func (b *Budgeter) project(projectID string) *projectContext {
	pc, ok := b.projects[projectID]
	if !ok {
		pc = &projectContext{docs: make(map[artifact.Type]Document)}
		b.projects[projectID] = pc
	}
	return pc
}

// ensureHydrated fills the in-memory registry from the backing Source the
// first time a project is touched. Documents tracked in this process win
// over the stored copy of the same type. Errors leave the registry empty
// and are retried on the next call.
func (b *Budgeter) ensureHydrated(ctx context.Context, projectID string) {
	b.mu.Lock()
	pc := b.project(projectID)
	if pc.hydrated || b.source == nil {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	docs, err := b.source.Documents(ctx, projectID)
	if err != nil {
		b.logger.Warn("hydrating context registry", "project", projectID, "error", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	pc.hydrated = true
	for _, d := range docs {
		if _, exists := pc.docs[d.Type]; exists {
			continue
		}
		if d.TokenEstimate == 0 {
			d.TokenEstimate = b.est.EstimateTokens(d.Content)
		}
		if d.Category == "" {
			d.Category = artifact.CategoryOf(d.Type)
		}
		d.Priority = artifact.PriorityOf(d.Type)
		pc.docs[d.Type] = d
		if d.GeneratedAt.After(pc.updatedAt) {
			pc.updatedAt = d.GeneratedAt
		}
	}
}

// TrackGeneratedDocument registers a finished document with the context
// store. Later registrations of the same type replace earlier ones; nothing
// is ever deleted explicitly.
func (b *Budgeter) TrackGeneratedDocument(doc Document) Document {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.TokenEstimate == 0 {
		doc.TokenEstimate = b.est.EstimateTokens(doc.Content)
	}
	if doc.Category == "" {
		doc.Category = artifact.CategoryOf(doc.Type)
	}
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}
	doc.Priority = artifact.PriorityOf(doc.Type)

	b.mu.Lock()
	defer b.mu.Unlock()
	pc := b.project(doc.ProjectID)
	pc.docs[doc.Type] = doc
	pc.updatedAt = doc.GeneratedAt
	delete(b.clusterCache, doc.ProjectID)
	return doc
}

// GeneratedTypes returns the document types registered for the project, in
// catalog order.
func (b *Budgeter) GeneratedTypes(projectID string) []artifact.Type {
	b.mu.Lock()
	defer b.mu.Unlock()
	pc, ok := b.projects[projectID]
	if !ok {
		return nil
	}
	var out []artifact.Type
	for _, t := range artifact.All() {
		if _, exists := pc.docs[t]; exists {
			out = append(out, t)
		}
	}
	// Imported or otherwise uncataloged types go last, sorted for stability.
	var extra []string
	for t := range pc.docs {
		if !artifact.Known(t) {
			extra = append(extra, string(t))
		}
	}
	sort.Strings(extra)
	for _, t := range extra {
		out = append(out, artifact.Type(t))
	}
	return out
}

// BuildContextForDocument assembles the bounded prompt context for
// generating docType: the capped core summary, freshness metadata, then the
// content of related document types in the relationship table's declared
// order. When a section does not fully fit the remaining allowance it is
// truncated with a marker and assembly stops. The estimated token count of
// the result never exceeds the configured budget.
//
// On the first call for a project the registry is hydrated from the backing
// Source, so documents generated by earlier process runs still feed the
// relationship table.
func (b *Budgeter) BuildContextForDocument(ctx context.Context, projectID string, docType artifact.Type, related ...artifact.Type) string {
	b.ensureHydrated(ctx, projectID)

	b.mu.Lock()
	defer b.mu.Unlock()

	pc := b.project(projectID)
	if len(related) == 0 {
		related = artifact.RelatedTypes(docType)
	}

	// The core summary is capped at ~1000 token-equivalents, and never more
	// than half the total budget so related content always has room.
	coreCap := coreSummaryTokens
	if half := b.maxContextTokens / 2; coreCap > half {
		coreCap = half
	}

	var sb strings.Builder
	sb.WriteString("# Project Summary\n\n")
	if pc.summary != "" {
		sb.WriteString(b.summarizer.Summarize(pc.summary, coreCap))
	} else {
		sb.WriteString("(no project summary provided)")
	}
	sb.WriteString("\n")

	sb.WriteString("\n## Context Freshness\n")
	if !pc.updatedAt.IsZero() {
		fmt.Fprintf(&sb, "Last updated: %s\n", pc.updatedAt.UTC().Format(time.RFC3339))
	}
	keys := b.generatedKeysLocked(pc)
	if len(keys) > 0 {
		fmt.Fprintf(&sb, "Generated documents: %s\n", strings.Join(keys, ", "))
	} else {
		sb.WriteString("Generated documents: none\n")
	}

	// The headers, marker, and freshness list count against the budget too.
	// Under a very small budget they can exceed it on their own; trim the
	// fixed sections and return without related content in that case.
	fixedTokens := b.est.EstimateTokens(sb.String())
	if fixedTokens >= b.maxContextTokens {
		return b.summarizer.Summarize(sb.String(), b.maxContextTokens)
	}
	remaining := b.maxContextTokens - fixedTokens

	for _, rel := range related {
		doc, ok := pc.docs[rel]
		if !ok {
			continue
		}

		header := fmt.Sprintf("\n## %s\n\n", artifact.Title(rel))
		section := header + doc.Content
		sectionTokens := b.est.EstimateTokens(section)

		if sectionTokens <= remaining {
			sb.WriteString(section)
			remaining -= sectionTokens
			continue
		}

		// Partial fit: truncate to the remaining character budget minus a
		// safety buffer, mark it, and stop adding further context.
		budgetChars := remaining*4 - len(header) - len(truncationMarker) - safetyBufferChars
		if budgetChars > 0 {
			sb.WriteString(header)
			sb.WriteString(doc.Content[:min(budgetChars, len(doc.Content))])
			sb.WriteString(truncationMarker)
		}
		break
	}

	return sb.String()
}

func (b *Budgeter) generatedKeysLocked(pc *projectContext) []string {
	var keys []string
	for _, t := range artifact.All() {
		if _, ok := pc.docs[t]; ok {
			keys = append(keys, string(t))
		}
	}
	var extra []string
	for t := range pc.docs {
		if !artifact.Known(t) {
			extra = append(extra, string(t))
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)
	return keys
}

// scoreRelevance recomputes a document's relevance for a target type:
// bonuses for same category, declared relationship, priority tier, quality,
// and recency.
func scoreRelevance(doc Document, target artifact.Type) float64 {
	score := 0.0
	if doc.Category == artifact.CategoryOf(target) {
		score += 2
	}
	for _, rel := range artifact.RelatedTypes(target) {
		if doc.Type == rel {
			score += 3
			break
		}
	}
	switch doc.Priority {
	case artifact.PriorityCritical:
		score += 2.5
	case artifact.PriorityHigh:
		score += 1
	}
	// Quality runs 0..10; scaled so a perfect document adds at most 3 and
	// cannot outweigh the relationship and priority bonuses combined.
	score += doc.Quality * 0.3

	age := time.Since(doc.GeneratedAt)
	switch {
	case age < 30*24*time.Hour:
		score += 2
	case age < 90*24*time.Hour:
		score += 1
	}
	return score
}

// registryDocuments snapshots the in-memory registry for a project. Used
// when no backing Source is configured.
func (b *Budgeter) registryDocuments(projectID string) []Document {
	b.mu.Lock()
	defer b.mu.Unlock()
	pc, ok := b.projects[projectID]
	if !ok {
		return nil
	}
	out := make([]Document, 0, len(pc.docs))
	for _, d := range pc.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
