package confusion

import (
	"math"

	"tseval/domain/core"
	"tseval/domain/eval"
)

// DefaultFNLeakage is the assumed fraction of unselected tests that could
// have detected a missed fault. It is an explicit, tunable assumption of
// the heuristic mode, not a measured quantity.
const DefaultFNLeakage = 0.1

// Source yields the four confusion counts. The two implementations form a
// tagged variant selected by data availability: ground truth when fault
// records exist, aggregate counts otherwise. Downstream metric formulas
// stay mode-agnostic.
type Source interface {
	Counts() (tp, fp, tn, fn, total int)
	Exact() bool
}

// ExactSource derives counts from per-fault ground truth
type ExactSource struct {
	executions []eval.TestExecutionRecord
	faults     []eval.FaultRecord
}

// NewExactSource creates a ground-truth-backed source
func NewExactSource(executions []eval.TestExecutionRecord, faults []eval.FaultRecord) *ExactSource {
	return &ExactSource{executions: executions, faults: faults}
}

// Exact reports ground-truth mode
func (s *ExactSource) Exact() bool { return true }

// Counts classifies every test:
// TP = selected tests inside some fault's detecting set,
// FP = selected tests detecting no fault,
// FN = faults none of whose detecting tests were selected (capped at the
// unselected test count so the four counts sum exactly to the total),
// TN = the remaining unselected tests.
func (s *ExactSource) Counts() (tp, fp, tn, fn, total int) {
	total = len(s.executions)

	detecting := make(map[core.TestID]bool)
	for _, fault := range s.faults {
		for _, id := range fault.DetectingTests {
			detecting[id] = true
		}
	}

	selected := make(map[core.TestID]bool)
	for _, rec := range s.executions {
		if rec.Selected {
			selected[rec.TestID] = true
			if detecting[rec.TestID] {
				tp++
			} else {
				fp++
			}
		}
	}

	for _, fault := range s.faults {
		covered := false
		for _, id := range fault.DetectingTests {
			if selected[id] {
				covered = true
				break
			}
		}
		if !covered {
			fn++
		}
	}

	unselected := total - tp - fp
	if fn > unselected {
		fn = unselected
	}
	tn = unselected - fn
	return tp, fp, tn, fn, total
}

// HeuristicSource estimates counts from four aggregate scalars
type HeuristicSource struct {
	aggregates eval.AggregateCounts
	fnLeakage  float64
}

// NewHeuristicSource creates an aggregate-count source. Leakage outside
// [0,1] falls back to the default assumption.
func NewHeuristicSource(aggregates eval.AggregateCounts, fnLeakage float64) *HeuristicSource {
	if fnLeakage < 0 || fnLeakage > 1 {
		fnLeakage = DefaultFNLeakage
	}
	return &HeuristicSource{aggregates: aggregates, fnLeakage: fnLeakage}
}

// Exact reports estimate mode
func (s *HeuristicSource) Exact() bool { return false }

// Counts estimates the four counts from the aggregates. The estimates sum
// to the total by construction, but individual counts are not ground truth.
func (s *HeuristicSource) Counts() (tp, fp, tn, fn, total int) {
	a := s.aggregates
	total = a.TotalTests

	detectionRate := float64(a.FaultsDetected) / math.Max(1, float64(a.FaultsInjected))

	tp = int(math.Round(float64(a.SelectedTests) * detectionRate))
	if tp > a.SelectedTests {
		tp = a.SelectedTests
	}
	fp = a.SelectedTests - tp

	unselected := a.TotalTests - a.SelectedTests
	missedFaults := a.FaultsInjected - a.FaultsDetected
	fn = int(math.Round(float64(unselected) * s.fnLeakage))
	if missedFaults < fn {
		fn = missedFaults
	}
	if fn < 0 {
		fn = 0
	}
	tn = unselected - fn
	return tp, fp, tn, fn, total
}
