package contextbudget

import (
	"context"
	"fmt"
	"strings"

	"github.com/karimzidan/pmdoc/internal/artifact"
)

const defaultMaxDocuments = 50

// LoadLargeScaleContext loads every stored document for the project,
// filters by recomputed relevance, clusters by the chosen strategy, and
// greedily fills clusters into the token budget in descending relevance
// order until the document cap or token cap is hit. Store failures yield
// Success=false with an error string instead of an error return: context
// enrichment is auxiliary and must never crash the generation caller.
func (b *Budgeter) LoadLargeScaleContext(ctx context.Context, projectID string, target artifact.Type, opts LoadOptions) LoadResult {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = b.maxContextTokens
	}
	if opts.MaxDocuments <= 0 {
		opts.MaxDocuments = defaultMaxDocuments
	}
	if opts.PerClusterCap <= 0 {
		opts.PerClusterCap = defaultPerClusterCap
	}
	if opts.Strategy == "" {
		opts.Strategy = ClusterByCategory
	}

	result := LoadResult{
		Success:     true,
		Clusters:    []Cluster{},
		TokenBudget: opts.MaxTokens,
	}

	var docs []Document
	if b.source != nil {
		var err error
		docs, err = b.source.Documents(ctx, projectID)
		if err != nil {
			b.logger.Warn("context store unavailable, continuing without large-scale context",
				"project", projectID, "error", err)
			result.Success = false
			result.Error = fmt.Sprintf("loading documents: %v", err)
			return result
		}
	} else {
		docs = b.registryDocuments(projectID)
	}

	result.DocumentsTotal = len(docs)
	if len(docs) == 0 {
		return result
	}

	// Relevance is a per-query derivation, never stored back.
	scored := make([]Document, 0, len(docs))
	for _, d := range docs {
		d.Relevance = scoreRelevance(d, target)
		if d.Relevance < opts.MinRelevance {
			continue
		}
		if d.TokenEstimate == 0 {
			d.TokenEstimate = b.est.EstimateTokens(d.Content)
		}
		scored = append(scored, d)
	}

	clusters := b.clusterDocuments(projectID, target, scored, opts.Strategy, opts.MinRelevance)
	result.ClustersTotal = len(clusters)

	var sb strings.Builder
	used := 0
	loaded := 0

	for _, cluster := range clusters {
		included := Cluster{Name: cluster.Name, Strategy: cluster.Strategy}

		capN := opts.PerClusterCap
		if capN > len(cluster.Documents) {
			capN = len(cluster.Documents)
		}

		for _, doc := range cluster.Documents[:capN] {
			if loaded >= opts.MaxDocuments {
				break
			}

			content := doc.Content
			if opts.Summarize {
				content = b.summarizer.Summarize(content, opts.MaxTokens/4)
			}

			section := fmt.Sprintf("\n## [%s] %s\n\n%s\n", cluster.Name, artifact.Title(doc.Type), content)
			secTokens := b.est.EstimateTokens(section)

			switch {
			case used+secTokens <= opts.MaxTokens:
				sb.WriteString(section)
				used += secTokens

			case doc.Priority == artifact.PriorityCritical && used < opts.MaxTokens:
				// Critical documents are kept even when lower tiers would be
				// dropped, truncated to whatever budget remains.
				trimmed := b.summarizer.Summarize(section, opts.MaxTokens-used)
				if trimmed == "" {
					continue
				}
				sb.WriteString(trimmed)
				used += b.est.EstimateTokens(trimmed)

			default:
				continue
			}

			doc.Content = content
			included.Documents = append(included.Documents, doc)
			included.TotalTokens += doc.TokenEstimate
			loaded++
		}

		if len(included.Documents) > 0 {
			rel := 0.0
			for _, d := range included.Documents {
				rel += d.Relevance
			}
			included.AvgRelevance = rel / float64(len(included.Documents))
			result.Clusters = append(result.Clusters, included)
			result.ClustersIncluded++
		}

		if loaded >= opts.MaxDocuments || used >= opts.MaxTokens {
			break
		}
	}

	result.Context = sb.String()
	result.DocumentsLoaded = loaded
	result.TokensUsed = used
	if opts.MaxTokens > 0 {
		result.Utilization = float64(used) / float64(opts.MaxTokens) * 100
	}
	return result
}
