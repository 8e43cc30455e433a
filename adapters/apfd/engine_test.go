package apfd

import (
	"fmt"
	"testing"

	"tseval/domain/core"
	"tseval/domain/eval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(statuses ...bool) []eval.TestExecutionRecord {
	records := make([]eval.TestExecutionRecord, len(statuses))
	for i, detected := range statuses {
		status := eval.StatusPassed
		if detected {
			status = eval.StatusFailed
		}
		records[i] = eval.TestExecutionRecord{
			TestID:        core.TestID(fmt.Sprintf("t%d", i+1)),
			Selected:      true,
			Executed:      true,
			Status:        status,
			FaultDetected: detected,
		}
	}
	return records
}

func TestEngine_Compute_KnownScenario(t *testing.T) {
	// 5 tests, faults at positions 1 and 4:
	// APFD = 1 - 5/(5*2) + 1/10 = 0.6
	engine := NewEngine()
	result := engine.Compute(run(true, false, false, true, false))

	assert.InDelta(t, 0.6, result.APFD, 1e-9)
	assert.Equal(t, 5, result.TotalTests)
	assert.Equal(t, 2, result.TotalFaults)
	assert.Equal(t, []int{1, 4}, result.FaultPositions)
	assert.InDelta(t, 2.5, result.AverageFaultPosition, 1e-9)
	assert.InDelta(t, 0.4, result.FaultDetectionRate, 1e-9)
	// Position 1 <= 2.5, position 4 > 2.5
	assert.InDelta(t, 0.5, result.EarlyDetectionRate, 1e-9)
}

func TestEngine_Compute_NoFaults(t *testing.T) {
	engine := NewEngine()
	result := engine.Compute(run(make([]bool, 10)...))

	assert.InDelta(t, 1.0, result.APFD, 1e-12)
	assert.Equal(t, 10, result.TotalTests)
	assert.Equal(t, 0, result.TotalFaults)
	assert.Zero(t, result.FaultDetectionRate)
}

func TestEngine_Compute_Empty(t *testing.T) {
	engine := NewEngine()
	result := engine.Compute(nil)

	assert.Zero(t, result.APFD)
	assert.Zero(t, result.TotalTests)
	assert.Empty(t, result.FaultPositions)
}

func TestEngine_Compute_BoundsProperty(t *testing.T) {
	engine := NewEngine()

	cases := [][]bool{
		{true},
		{false, true},
		{true, true, true},
		{false, false, false, true},
		{true, false, true, false, true, false, true},
	}
	for _, c := range cases {
		result := engine.Compute(run(c...))
		assert.GreaterOrEqual(t, result.APFD, 0.0)
		assert.LessOrEqual(t, result.APFD, 1.0)
		assert.Empty(t, eval.ValidateAPFD(result))
	}
}

func TestEngine_ConfidenceInterval_SkipsSmallRuns(t *testing.T) {
	engine := NewEngine()
	result := engine.ComputeWithConfidenceInterval(run(true, false, false, true, false))

	assert.Nil(t, result.Confidence)
	assert.InDelta(t, 0.6, result.APFD, 1e-9)
}

func TestEngine_ConfidenceInterval_BracketsEstimate(t *testing.T) {
	engine := NewEngine(WithBootstrapSamples(500), WithSeed(42))

	statuses := make([]bool, 40)
	for i := 0; i < 8; i++ {
		statuses[i*5] = true
	}
	result := engine.ComputeWithConfidenceInterval(run(statuses...))

	require.NotNil(t, result.Confidence)
	assert.InDelta(t, 0.95, result.Confidence.Level, 1e-12)
	assert.LessOrEqual(t, result.Confidence.Lower, result.Confidence.Upper)
	assert.GreaterOrEqual(t, result.Confidence.Lower, 0.0)
	assert.LessOrEqual(t, result.Confidence.Upper, 1.0)
	// The point estimate sits inside (or at the edge of) the interval
	assert.GreaterOrEqual(t, result.APFD, result.Confidence.Lower-1e-9)
	assert.LessOrEqual(t, result.APFD, result.Confidence.Upper+1e-9)
}

func TestEngine_ComputeCurve(t *testing.T) {
	engine := NewEngine()
	curve := engine.ComputeCurve(run(true, false, false, true, false))

	require.Len(t, curve.Points, 5)
	first := curve.Points[0]
	assert.Equal(t, 1, first.TestPosition)
	assert.InDelta(t, 20.0, first.PercentExecuted, 1e-9)
	assert.InDelta(t, 50.0, first.PercentDetected, 1e-9)

	last := curve.Points[4]
	assert.InDelta(t, 100.0, last.PercentExecuted, 1e-9)
	assert.InDelta(t, 100.0, last.PercentDetected, 1e-9)

	assert.Greater(t, curve.AUC, 0.0)
	assert.LessOrEqual(t, curve.AUC, 1.0)
}

func TestEngine_ComputeCurve_Empty(t *testing.T) {
	engine := NewEngine()
	curve := engine.ComputeCurve(nil)

	assert.Empty(t, curve.Points)
	assert.Zero(t, curve.AUC)
}

func TestEngine_CompareStrategies(t *testing.T) {
	engine := NewEngine()

	// Primary detects both faults immediately; random finds them late.
	primary := run(true, true, false, false, false, false, false, false, false, false)
	random := run(false, false, false, false, false, false, false, false, true, true)

	comparison := engine.CompareStrategies(primary, map[string][]eval.TestExecutionRecord{
		"random": random,
	})

	assert.Equal(t, "primary", comparison.BestMethod)
	assert.Greater(t, comparison.Deltas["random"], 0.0)
	assert.Equal(t, eval.RecommendKeepPrimary, comparison.Recommendation)
	assert.Contains(t, comparison.Summary, "better than baseline random")
}

func TestEngine_CompareStrategies_BaselineWins(t *testing.T) {
	engine := NewEngine()

	primary := run(false, false, false, false, false, false, false, false, true, true)
	greedy := run(true, true, false, false, false, false, false, false, false, false)

	comparison := engine.CompareStrategies(primary, map[string][]eval.TestExecutionRecord{
		"greedy": greedy,
	})

	assert.Equal(t, "greedy", comparison.BestMethod)
	assert.Less(t, comparison.Deltas["greedy"], 0.0)
	assert.Equal(t, eval.RecommendAdoptBaseline, comparison.Recommendation)
}

func TestEngine_CompareStrategies_NoBaselines(t *testing.T) {
	engine := NewEngine()
	comparison := engine.CompareStrategies(run(true, false, false), nil)

	assert.Equal(t, "primary", comparison.BestMethod)
	assert.Equal(t, eval.RecommendCollectMoreData, comparison.Recommendation)
}
