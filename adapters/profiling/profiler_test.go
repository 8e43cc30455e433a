package profiling

import (
	"fmt"
	"sync"
	"testing"

	"tseval/domain/eval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfiler() (*Profiler, *InMemoryProfileStore) {
	store := NewInMemoryProfileStore(DefaultStoreRetention)
	return NewProfiler(store), store
}

func TestComputeEfficiency_KnownRun(t *testing.T) {
	p, _ := newProfiler()

	timing := eval.TimingBreakdown{
		TotalTimeMs:      5000,
		AnalysisTimeMs:   3000,
		SelectionTimeMs:  2000,
		ExecutionSavedMs: 20000,
	}
	resources := eval.ResourceUsage{PeakMemoryMB: 120, CPUPercent: 40}

	m := p.ComputeEfficiency(timing, resources, 1000)

	assert.InDelta(t, 200.0, m.ThroughputTestsPerSec, 1e-9)
	assert.InDelta(t, 0.25, m.AnalysisOverhead, 1e-9)
	assert.InDelta(t, 4.0, m.CostBenefitRatio, 1e-9)
	// 5ms per test, 120MB peak
	assert.Equal(t, eval.ComplexityLinear, m.TimeComplexity)
	assert.Equal(t, eval.ComplexityLinear, m.MemoryComplexity)
	assert.Equal(t, 1000, m.TestsAnalyzed)
}

func TestComputeEfficiency_ZeroTimeNeverPanics(t *testing.T) {
	p, _ := newProfiler()

	m := p.ComputeEfficiency(eval.TimingBreakdown{}, eval.ResourceUsage{}, 0)

	assert.Zero(t, m.ThroughputTestsPerSec)
	assert.Zero(t, m.AnalysisOverhead)
	assert.Zero(t, m.CostBenefitRatio)
	assert.Equal(t, eval.ComplexityConstant, m.TimeComplexity)
	assert.Equal(t, eval.ComplexityConstant, m.MemoryComplexity)
}

func TestComplexityBuckets(t *testing.T) {
	assert.Equal(t, eval.ComplexityConstant, classifyTimePerUnit(0.5))
	assert.Equal(t, eval.ComplexityLinear, classifyTimePerUnit(5))
	assert.Equal(t, eval.ComplexityQuadratic, classifyTimePerUnit(50))
	assert.Equal(t, eval.ComplexityExponential, classifyTimePerUnit(500))

	assert.Equal(t, eval.ComplexityConstant, classifyMemoryMagnitude(20))
	assert.Equal(t, eval.ComplexityLinear, classifyMemoryMagnitude(100))
	assert.Equal(t, eval.ComplexityQuadratic, classifyMemoryMagnitude(500))
	assert.Equal(t, eval.ComplexityExponential, classifyMemoryMagnitude(2000))
}

func TestStore_RetentionAndCopy(t *testing.T) {
	store := NewInMemoryProfileStore(3)
	for i := 0; i < 5; i++ {
		store.Append(eval.EfficiencyProfile{
			Approach: "adaptive",
			Metrics:  eval.EfficiencyMetrics{TotalTimeMs: float64(i)},
		})
	}

	profiles := store.Profiles("adaptive")
	require.Len(t, profiles, 3)
	assert.InDelta(t, 2.0, profiles[0].Metrics.TotalTimeMs, 1e-12) // oldest evicted

	profiles[0].Metrics.TotalTimeMs = 99
	again := store.Profiles("adaptive")
	assert.InDelta(t, 2.0, again[0].Metrics.TotalTimeMs, 1e-12)
}

func TestStore_ApproachesSorted(t *testing.T) {
	store := NewInMemoryProfileStore(0)
	store.Append(eval.EfficiencyProfile{Approach: "random"})
	store.Append(eval.EfficiencyProfile{Approach: "adaptive"})

	assert.Equal(t, []string{"adaptive", "random"}, store.Approaches())
}

func TestStore_ConcurrentAppends(t *testing.T) {
	store := NewInMemoryProfileStore(1000)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				store.Append(eval.EfficiencyProfile{Approach: fmt.Sprintf("approach-%d", g%2)})
			}
		}(g)
	}
	wg.Wait()

	total := len(store.Profiles("approach-0")) + len(store.Profiles("approach-1"))
	assert.Equal(t, 200, total)
}

func TestAnalyzeScalability_ConstantTime(t *testing.T) {
	p, _ := newProfiler()
	p.RecordProfile("adaptive", 50000, 10000, eval.EfficiencyMetrics{TotalTimeMs: 1000, PeakMemoryMB: 100})
	p.RecordProfile("adaptive", 50000, 20000, eval.EfficiencyMetrics{TotalTimeMs: 1050, PeakMemoryMB: 104})

	report := p.AnalyzeScalability("adaptive")

	assert.Equal(t, 2, report.ProfileCount)
	assert.Equal(t, eval.ComplexityConstant, report.TimeTrend)
	assert.Equal(t, eval.ComplexityConstant, report.MemoryTrend)
	assert.InDelta(t, 1.05, report.TimeGrowthFactor, 1e-9)
}

func TestAnalyzeScalability_QuadraticGrowth(t *testing.T) {
	p, _ := newProfiler()
	// Doubling the suite doubles the time: 2.0x per 10K units
	p.RecordProfile("bruteforce", 50000, 10000, eval.EfficiencyMetrics{TotalTimeMs: 1000, PeakMemoryMB: 100})
	p.RecordProfile("bruteforce", 50000, 20000, eval.EfficiencyMetrics{TotalTimeMs: 2000, PeakMemoryMB: 300})

	report := p.AnalyzeScalability("bruteforce")

	assert.Equal(t, eval.ComplexityQuadratic, report.TimeTrend)
	assert.Equal(t, eval.ComplexityExponential, report.MemoryTrend)
}

func TestAnalyzeScalability_UnorderedAndDegenerate(t *testing.T) {
	p, _ := newProfiler()
	// Recorded out of size order; sorting happens inside
	p.RecordProfile("adaptive", 0, 30000, eval.EfficiencyMetrics{TotalTimeMs: 1100, PeakMemoryMB: 100})
	p.RecordProfile("adaptive", 0, 10000, eval.EfficiencyMetrics{TotalTimeMs: 1000, PeakMemoryMB: 100})
	// Zero time cannot produce a ratio and is skipped
	p.RecordProfile("adaptive", 0, 40000, eval.EfficiencyMetrics{TotalTimeMs: 0, PeakMemoryMB: 100})

	report := p.AnalyzeScalability("adaptive")
	assert.Equal(t, 3, report.ProfileCount)
	assert.Equal(t, eval.ComplexityConstant, report.TimeTrend)

	empty := p.AnalyzeScalability("unknown")
	assert.Zero(t, empty.ProfileCount)
	assert.Equal(t, eval.ComplexityConstant, empty.TimeTrend)
}

func TestCompareEfficiency_SignificanceBuckets(t *testing.T) {
	p, _ := newProfiler()
	p.RecordProfile("baseline", 0, 1000, eval.EfficiencyMetrics{
		TotalTimeMs:           2000,
		PeakMemoryMB:          200,
		ThroughputTestsPerSec: 100,
	})

	high := p.CompareEfficiency(eval.EfficiencyMetrics{
		TotalTimeMs:           1000,
		PeakMemoryMB:          100,
		ThroughputTestsPerSec: 150,
	}, "baseline")
	assert.Equal(t, eval.SignificanceHigh, high.Significance)
	assert.InDelta(t, 50.0, high.TimeImprovementPct, 1e-9)
	assert.InDelta(t, 50.0, high.MemImprovementPct, 1e-9)
	assert.InDelta(t, 50.0, high.ThroughputGainPct, 1e-9)

	medium := p.CompareEfficiency(eval.EfficiencyMetrics{
		TotalTimeMs:           1000,
		PeakMemoryMB:          190,
		ThroughputTestsPerSec: 150,
	}, "baseline")
	assert.Equal(t, eval.SignificanceMedium, medium.Significance)

	none := p.CompareEfficiency(eval.EfficiencyMetrics{
		TotalTimeMs:           1950,
		PeakMemoryMB:          195,
		ThroughputTestsPerSec: 102,
	}, "baseline")
	assert.Equal(t, eval.SignificanceNone, none.Significance)
}

func TestCompareEfficiency_NoBaselineProfiles(t *testing.T) {
	p, _ := newProfiler()
	comparison := p.CompareEfficiency(eval.EfficiencyMetrics{TotalTimeMs: 1000}, "missing")

	assert.Equal(t, eval.SignificanceNone, comparison.Significance)
	assert.Zero(t, comparison.TimeImprovementPct)
}
