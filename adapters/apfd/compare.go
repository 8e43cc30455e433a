package apfd

import (
	"fmt"
	"sort"

	"tseval/domain/eval"
)

// CompareStrategies scores the primary ordering against every labeled
// baseline ordering by raw APFD. Baselines are visited in sorted label
// order so the summary and best-method selection are deterministic.
func (e *Engine) CompareStrategies(primary []eval.TestExecutionRecord, baselines map[string][]eval.TestExecutionRecord) eval.StrategyComparison {
	primaryResult := e.Compute(primary)

	comparison := eval.StrategyComparison{
		PrimaryAPFD:  primaryResult.APFD,
		BaselineAPFD: make(map[string]float64, len(baselines)),
		Deltas:       make(map[string]float64, len(baselines)),
		BestMethod:   "primary",
	}

	labels := make([]string, 0, len(baselines))
	for label := range baselines {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	bestAPFD := primaryResult.APFD
	for _, label := range labels {
		baselineAPFD := e.Compute(baselines[label]).APFD

		comparison.BaselineAPFD[label] = baselineAPFD
		comparison.Deltas[label] = primaryResult.APFD - baselineAPFD

		if baselineAPFD > bestAPFD {
			bestAPFD = baselineAPFD
			comparison.BestMethod = label
		}
	}

	comparison.Recommendation = recommendStrategy(comparison, len(primary))
	comparison.Summary = summarizeStrategy(comparison, labels)
	return comparison
}

// recommendStrategy is a pure function from comparison metrics to an
// enumerated recommendation tag.
func recommendStrategy(c eval.StrategyComparison, primaryLen int) eval.RecommendationTag {
	if primaryLen < 10 || len(c.Deltas) == 0 {
		return eval.RecommendCollectMoreData
	}
	if c.BestMethod == "primary" {
		return eval.RecommendKeepPrimary
	}
	// Treat sub-percent APFD gaps as noise
	if c.BaselineAPFD[c.BestMethod]-c.PrimaryAPFD < 0.01 {
		return eval.RecommendInconclusive
	}
	return eval.RecommendAdoptBaseline
}

// summarizeStrategy renders the deterministic rule-based text summary
func summarizeStrategy(c eval.StrategyComparison, labels []string) string {
	if len(labels) == 0 {
		return fmt.Sprintf("primary APFD %.4f with no baselines to compare", c.PrimaryAPFD)
	}

	summary := fmt.Sprintf("primary APFD %.4f; best method: %s.", c.PrimaryAPFD, c.BestMethod)
	for _, label := range labels {
		delta := c.Deltas[label]
		if delta >= 0 {
			summary += fmt.Sprintf(" %.1f%% better than baseline %s.", delta*100, label)
		} else {
			summary += fmt.Sprintf(" %.1f%% worse than baseline %s.", -delta*100, label)
		}
	}
	return summary
}
