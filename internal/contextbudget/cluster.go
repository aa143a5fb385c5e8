package contextbudget

import (
	"fmt"
	"sort"
	"time"

	"github.com/karimzidan/pmdoc/internal/artifact"
)

// relevanceBucketSize groups relevance-ranked documents ten at a time.
const relevanceBucketSize = 10

// recencyWindows are the day boundaries of the recency strategy; documents
// older than the last boundary land in the final open-ended window.
var recencyWindows = []int{30, 90, 365}

// clusterDocuments groups docs by the given strategy. Results are cached
// per project for a short TTL; a new registration invalidates the cache.
// The docs slice is pre-filtered by minRelevance, so a cached entry is only
// reused when the floor matches too.
func (b *Budgeter) clusterDocuments(projectID string, target artifact.Type, docs []Document, strategy ClusterStrategy, minRelevance float64) []Cluster {
	b.mu.Lock()
	if c, ok := b.clusterCache[projectID]; ok && c.strategy == strategy && c.target == target &&
		c.minRelevance == minRelevance && time.Now().Before(c.expires) {
		clusters := c.clusters
		b.mu.Unlock()
		return clusters
	}
	b.mu.Unlock()

	var clusters []Cluster
	switch strategy {
	case ClusterByRelevance:
		clusters = clusterByRelevance(docs)
	case ClusterByRecency:
		clusters = clusterByRecency(docs)
	case ClusterByPriority:
		clusters = clusterByPriority(docs)
	default:
		clusters = clusterByCategory(docs)
	}

	for i := range clusters {
		finishCluster(&clusters[i], strategy)
	}

	// Highest average relevance first; the greedy fill consumes in order.
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].AvgRelevance > clusters[j].AvgRelevance
	})

	b.mu.Lock()
	b.clusterCache[projectID] = &cachedClusters{
		strategy:     strategy,
		target:       target,
		minRelevance: minRelevance,
		clusters:     clusters,
		expires:      time.Now().Add(b.cacheTTL),
	}
	b.mu.Unlock()

	return clusters
}

func finishCluster(c *Cluster, strategy ClusterStrategy) {
	c.Strategy = strategy
	total := 0
	rel := 0.0
	for _, d := range c.Documents {
		total += d.TokenEstimate
		rel += d.Relevance
	}
	c.TotalTokens = total
	if len(c.Documents) > 0 {
		c.AvgRelevance = rel / float64(len(c.Documents))
	}
	// Most relevant documents first within the cluster.
	sort.SliceStable(c.Documents, func(i, j int) bool {
		return c.Documents[i].Relevance > c.Documents[j].Relevance
	})
}

func clusterByCategory(docs []Document) []Cluster {
	byCat := make(map[artifact.Category][]Document)
	var order []artifact.Category
	for _, d := range docs {
		if _, ok := byCat[d.Category]; !ok {
			order = append(order, d.Category)
		}
		byCat[d.Category] = append(byCat[d.Category], d)
	}

	clusters := make([]Cluster, 0, len(order))
	for _, cat := range order {
		clusters = append(clusters, Cluster{
			Name:      string(cat),
			Documents: byCat[cat],
		})
	}
	return clusters
}

func clusterByRelevance(docs []Document) []Cluster {
	sorted := make([]Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Relevance > sorted[j].Relevance
	})

	var clusters []Cluster
	for start := 0; start < len(sorted); start += relevanceBucketSize {
		end := start + relevanceBucketSize
		if end > len(sorted) {
			end = len(sorted)
		}
		clusters = append(clusters, Cluster{
			Name:      fmt.Sprintf("relevance-rank-%d", start/relevanceBucketSize+1),
			Documents: sorted[start:end],
		})
	}
	return clusters
}

func clusterByRecency(docs []Document) []Cluster {
	now := time.Now()
	buckets := make([][]Document, len(recencyWindows)+1)

	for _, d := range docs {
		ageDays := int(now.Sub(d.GeneratedAt).Hours() / 24)
		idx := len(recencyWindows)
		for i, w := range recencyWindows {
			if ageDays <= w {
				idx = i
				break
			}
		}
		buckets[idx] = append(buckets[idx], d)
	}

	var clusters []Cluster
	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		name := "older"
		if i < len(recencyWindows) {
			name = fmt.Sprintf("last-%d-days", recencyWindows[i])
		}
		clusters = append(clusters, Cluster{Name: name, Documents: bucket})
	}
	return clusters
}

func clusterByPriority(docs []Document) []Cluster {
	byTier := make(map[artifact.Priority][]Document)
	for _, d := range docs {
		byTier[d.Priority] = append(byTier[d.Priority], d)
	}

	var clusters []Cluster
	for _, tier := range []artifact.Priority{
		artifact.PriorityCritical, artifact.PriorityHigh,
		artifact.PriorityMedium, artifact.PriorityLow,
	} {
		if len(byTier[tier]) == 0 {
			continue
		}
		clusters = append(clusters, Cluster{
			Name:      tier.String(),
			Documents: byTier[tier],
		})
	}
	return clusters
}
