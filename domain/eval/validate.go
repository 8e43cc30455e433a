package eval

import (
	"fmt"
	"math"
)

// Issue is one named logical inconsistency surfaced by validation.
// Inconsistencies are never errors: the engines degrade gracefully and
// leave the accept/reject decision to the caller.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	IssueCountMismatch        = "CONFUSION_COUNTS_MISMATCH"
	IssueNegativeCount        = "NEGATIVE_COUNT"
	IssueSelectedOverTotal    = "SELECTED_OVER_TOTAL"
	IssueExecutedUnselected   = "EXECUTED_UNSELECTED"
	IssueDetectedOverInjected = "DETECTED_OVER_INJECTED"
	IssueAPFDOutOfRange       = "APFD_OUT_OF_RANGE"
	IssuePositionOutOfRange   = "FAULT_POSITION_OUT_OF_RANGE"
	IssueEstimateOverflow     = "ESTIMATE_OVER_SELECTED"
	IssueNegativeTime         = "NEGATIVE_EXECUTION_TIME"
	IssueImpactOutOfRange     = "PREDICTED_IMPACT_OUT_OF_RANGE"
)

// ValidateExecutions checks an ordered run for record-level inconsistencies.
func ValidateExecutions(executions []TestExecutionRecord) []Issue {
	var issues []Issue
	for i, rec := range executions {
		if rec.Executed && !rec.Selected {
			issues = append(issues, Issue{
				Code:    IssueExecutedUnselected,
				Message: fmt.Sprintf("record %d (%s): executed but not selected", i+1, rec.TestID),
			})
		}
		if rec.ExecutionTimeMs < 0 {
			issues = append(issues, Issue{
				Code:    IssueNegativeTime,
				Message: fmt.Sprintf("record %d (%s): execution time %.3fms is negative", i+1, rec.TestID, rec.ExecutionTimeMs),
			})
		}
		if rec.PredictedImpact != nil && (*rec.PredictedImpact < 0 || *rec.PredictedImpact > 1) {
			issues = append(issues, Issue{
				Code:    IssueImpactOutOfRange,
				Message: fmt.Sprintf("record %d (%s): predicted impact %.3f outside [0,1]", i+1, rec.TestID, *rec.PredictedImpact),
			})
		}
	}
	return issues
}

// ValidateAPFD checks an APFD result against its own invariants.
func ValidateAPFD(result APFDResult) []Issue {
	var issues []Issue
	if result.APFD < 0 || result.APFD > 1 || math.IsNaN(result.APFD) {
		issues = append(issues, Issue{
			Code:    IssueAPFDOutOfRange,
			Message: fmt.Sprintf("apfd %.6f outside [0,1]", result.APFD),
		})
	}
	for _, pos := range result.FaultPositions {
		if pos < 1 || pos > result.TotalTests {
			issues = append(issues, Issue{
				Code:    IssuePositionOutOfRange,
				Message: fmt.Sprintf("fault position %d outside [1,%d]", pos, result.TotalTests),
			})
		}
	}
	return issues
}

// ValidateConfusion checks the four counts against the total and each other.
func ValidateConfusion(m ConfusionMetrics) []Issue {
	var issues []Issue
	for _, c := range []struct {
		name  string
		count int
	}{
		{"TP", m.TruePositives},
		{"FP", m.FalsePositives},
		{"TN", m.TrueNegatives},
		{"FN", m.FalseNegatives},
	} {
		if c.count < 0 {
			issues = append(issues, Issue{
				Code:    IssueNegativeCount,
				Message: fmt.Sprintf("%s count %d is negative", c.name, c.count),
			})
		}
	}
	sum := m.TruePositives + m.FalsePositives + m.TrueNegatives + m.FalseNegatives
	if sum != m.TotalTests {
		issues = append(issues, Issue{
			Code:    IssueCountMismatch,
			Message: fmt.Sprintf("counts sum to %d, expected total %d", sum, m.TotalTests),
		})
	}
	return issues
}

// ValidateAggregates checks heuristic-mode input counts for consistency.
func ValidateAggregates(c AggregateCounts) []Issue {
	var issues []Issue
	if c.SelectedTests > c.TotalTests {
		issues = append(issues, Issue{
			Code:    IssueSelectedOverTotal,
			Message: fmt.Sprintf("selected %d exceeds total %d", c.SelectedTests, c.TotalTests),
		})
	}
	if c.FaultsDetected > c.FaultsInjected {
		issues = append(issues, Issue{
			Code:    IssueDetectedOverInjected,
			Message: fmt.Sprintf("detected %d exceeds injected %d", c.FaultsDetected, c.FaultsInjected),
		})
	}
	return issues
}
