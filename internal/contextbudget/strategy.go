package contextbudget

// defaultPerClusterCap bounds documents taken from a single cluster.
const defaultPerClusterCap = 30

// DetermineOptimalStrategy picks a loading plan from the document count
// alone. A heuristic threshold table, not an adaptive algorithm.
func DetermineOptimalStrategy(docCount int) StrategyPlan {
	switch {
	case docCount <= 10:
		return StrategyPlan{
			Strategy: StrategyFullLoad,
		}
	case docCount <= 50:
		return StrategyPlan{
			Strategy:      StrategyClusteredLoad,
			Cluster:       true,
			PerClusterCap: defaultPerClusterCap,
		}
	case docCount <= 100:
		return StrategyPlan{
			Strategy:      StrategyHierarchicalLoad,
			Cluster:       true,
			PerClusterCap: defaultPerClusterCap,
			Summarize:     true,
		}
	default:
		return StrategyPlan{
			Strategy:      StrategyIntelligentLoad,
			Cluster:       true,
			PerClusterCap: defaultPerClusterCap,
			Summarize:     true,
		}
	}
}
