package compare

import (
	"fmt"
	"sort"

	"tseval/domain/core"
	"tseval/domain/eval"
)

// CorrectionMethod names a multiple-comparison correction
type CorrectionMethod string

const (
	// CorrectionBonferroni divides alpha by the number of comparisons
	CorrectionBonferroni CorrectionMethod = "bonferroni"
)

// MultipleComparisonReport is the outcome of all pairwise comparisons
// among a set of techniques under one correction method.
type MultipleComparisonReport struct {
	Metric           eval.MetricKind         `json:"metric"`
	Method           CorrectionMethod        `json:"method"`
	Alpha            float64                 `json:"alpha"`
	CorrectedAlpha   float64                 `json:"corrected_alpha"`
	Comparisons      []eval.ComparisonResult `json:"comparisons"`
	SignificantCount int                     `json:"significant_count"`
	Conclusion       string                  `json:"conclusion"`
}

// MultipleComparisons runs every pairwise test over the labeled sample
// sets and applies the correction to the significance threshold. Pairs are
// visited in sorted label order for deterministic output.
func (c *Comparator) MultipleComparisons(samplesByLabel map[core.TechniqueKey][]float64, metric eval.MetricKind, method CorrectionMethod) MultipleComparisonReport {
	labels := make([]core.TechniqueKey, 0, len(samplesByLabel))
	for label := range samplesByLabel {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	numComparisons := len(labels) * (len(labels) - 1) / 2
	report := MultipleComparisonReport{
		Metric:         metric,
		Method:         method,
		Alpha:          c.alpha,
		CorrectedAlpha: c.alpha,
	}
	if numComparisons == 0 {
		report.Conclusion = "fewer than two techniques; nothing to compare"
		return report
	}

	// Bonferroni is the only supported method; unknown methods fall back
	// to it rather than skipping correction.
	report.Method = CorrectionBonferroni
	report.CorrectedAlpha = c.alpha / float64(numComparisons)

	for i := 0; i < len(labels); i++ {
		for j := i + 1; j < len(labels); j++ {
			result := c.CompareSamples(labels[i], labels[j], metric, samplesByLabel[labels[i]], samplesByLabel[labels[j]])
			// Re-grade significance against the corrected threshold
			result.Test.IsSignificant = result.Test.PValue < report.CorrectedAlpha
			if result.Test.IsSignificant {
				report.SignificantCount++
			}
			report.Comparisons = append(report.Comparisons, result)
		}
	}

	report.Conclusion = concludeMultiple(report, numComparisons)
	return report
}

func concludeMultiple(report MultipleComparisonReport, numComparisons int) string {
	if report.SignificantCount == 0 {
		return fmt.Sprintf("no technique pair differs significantly on %s after %s correction (%d comparisons, corrected alpha %.4f)",
			report.Metric, report.Method, numComparisons, report.CorrectedAlpha)
	}
	return fmt.Sprintf("%d of %d technique pairs differ significantly on %s after %s correction (corrected alpha %.4f)",
		report.SignificantCount, numComparisons, report.Metric, report.Method, report.CorrectedAlpha)
}
