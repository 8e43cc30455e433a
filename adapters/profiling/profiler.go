package profiling

import (
	"math"
	"sort"

	"tseval/domain/core"
	"tseval/domain/eval"
	"tseval/ports"
)

// Growth-factor boundaries per 10K size-units for scalability bucketing
const (
	growthConstantBound  = 1.1
	growthLinearBound    = 1.5
	growthQuadraticBound = 2.5
	sizeUnit             = 10000.0
)

// Profiler derives throughput, cost-benefit and scalability figures from
// timing and resource observations. The approach-keyed registry is an
// explicit store owned by the caller, never package state.
type Profiler struct {
	store ports.ProfileStore
}

// NewProfiler creates a profiler over the given registry
func NewProfiler(store ports.ProfileStore) *Profiler {
	return &Profiler{store: store}
}

// ComputeEfficiency derives the efficiency profile of one analysis run.
// Complexity classes are coarse observed buckets from fixed boundaries,
// not asymptotic analysis.
func (p *Profiler) ComputeEfficiency(timing eval.TimingBreakdown, resources eval.ResourceUsage, testsAnalyzed int) eval.EfficiencyMetrics {
	metrics := eval.EfficiencyMetrics{
		TotalTimeMs:   timing.TotalTimeMs,
		PeakMemoryMB:  resources.PeakMemoryMB,
		TestsAnalyzed: testsAnalyzed,
	}

	seconds := timing.TotalTimeMs / 1000
	if seconds > 0 {
		metrics.ThroughputTestsPerSec = float64(testsAnalyzed) / seconds
	}
	metrics.AnalysisOverhead = timing.TotalTimeMs / math.Max(1, timing.ExecutionSavedMs)
	metrics.CostBenefitRatio = timing.ExecutionSavedMs / math.Max(1, timing.TotalTimeMs)

	metrics.TimeComplexity = classifyTimePerUnit(timing.TotalTimeMs / math.Max(1, float64(testsAnalyzed)))
	metrics.MemoryComplexity = classifyMemoryMagnitude(resources.PeakMemoryMB)

	return metrics
}

// classifyTimePerUnit buckets milliseconds-per-test
func classifyTimePerUnit(msPerTest float64) eval.ComplexityClass {
	switch {
	case msPerTest < 1:
		return eval.ComplexityConstant
	case msPerTest < 10:
		return eval.ComplexityLinear
	case msPerTest < 100:
		return eval.ComplexityQuadratic
	default:
		return eval.ComplexityExponential
	}
}

// classifyMemoryMagnitude buckets peak memory in MB
func classifyMemoryMagnitude(peakMB float64) eval.ComplexityClass {
	switch {
	case peakMB < 50:
		return eval.ComplexityConstant
	case peakMB < 200:
		return eval.ComplexityLinear
	case peakMB < 1000:
		return eval.ComplexityQuadratic
	default:
		return eval.ComplexityExponential
	}
}

// RecordProfile appends one observation to the approach registry
func (p *Profiler) RecordProfile(approach string, projectSize, testSuiteSize int, metrics eval.EfficiencyMetrics) {
	p.store.Append(eval.EfficiencyProfile{
		Approach:      approach,
		ProjectSize:   projectSize,
		TestSuiteSize: testSuiteSize,
		Metrics:       metrics,
		RecordedAt:    core.Now(),
	})
}

// AnalyzeScalability computes time and memory growth factors per 10K
// suite-size units across the approach's size-ordered profiles and buckets
// the trend. Fewer than two usable profiles classify as constant.
func (p *Profiler) AnalyzeScalability(approach string) eval.ScalabilityReport {
	profiles := p.store.Profiles(approach)
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].TestSuiteSize < profiles[j].TestSuiteSize
	})

	report := eval.ScalabilityReport{
		Approach:     approach,
		ProfileCount: len(profiles),
		TimeTrend:    eval.ComplexityConstant,
		MemoryTrend:  eval.ComplexityConstant,
	}

	var timeFactors, memFactors []float64
	for i := 1; i < len(profiles); i++ {
		prev, curr := profiles[i-1], profiles[i]
		sizeDelta := float64(curr.TestSuiteSize - prev.TestSuiteSize)
		if sizeDelta <= 0 {
			continue
		}

		if f, ok := growthPerUnit(prev.Metrics.TotalTimeMs, curr.Metrics.TotalTimeMs, sizeDelta); ok {
			timeFactors = append(timeFactors, f)
		}
		if f, ok := growthPerUnit(prev.Metrics.PeakMemoryMB, curr.Metrics.PeakMemoryMB, sizeDelta); ok {
			memFactors = append(memFactors, f)
		}
	}

	if len(timeFactors) > 0 {
		report.TimeGrowthFactor = mean(timeFactors)
		report.TimeTrend = classifyGrowth(report.TimeGrowthFactor)
	}
	if len(memFactors) > 0 {
		report.MemGrowthFactor = mean(memFactors)
		report.MemoryTrend = classifyGrowth(report.MemGrowthFactor)
	}
	return report
}

// growthPerUnit normalizes the ratio between two observations to a growth
// multiplier per 10K size-units.
func growthPerUnit(prev, curr, sizeDelta float64) (float64, bool) {
	if prev <= 0 || curr <= 0 {
		return 0, false
	}
	return math.Pow(curr/prev, sizeUnit/sizeDelta), true
}

func classifyGrowth(factor float64) eval.ComplexityClass {
	switch {
	case factor < growthConstantBound:
		return eval.ComplexityConstant
	case factor < growthLinearBound:
		return eval.ComplexityLinear
	case factor < growthQuadraticBound:
		return eval.ComplexityQuadratic
	default:
		return eval.ComplexityExponential
	}
}

// CompareEfficiency measures the candidate against the mean of the
// baseline approach's recorded profiles. The significance bucket counts
// how many of the three deltas exceed 10%.
func (p *Profiler) CompareEfficiency(candidate eval.EfficiencyMetrics, baselineApproach string) eval.EfficiencyComparison {
	comparison := eval.EfficiencyComparison{
		BaselineApproach: baselineApproach,
		Significance:     eval.SignificanceNone,
	}

	baselines := p.store.Profiles(baselineApproach)
	if len(baselines) == 0 {
		return comparison
	}

	var baseTime, baseMem, baseThroughput float64
	for _, b := range baselines {
		baseTime += b.Metrics.TotalTimeMs
		baseMem += b.Metrics.PeakMemoryMB
		baseThroughput += b.Metrics.ThroughputTestsPerSec
	}
	n := float64(len(baselines))
	baseTime /= n
	baseMem /= n
	baseThroughput /= n

	comparison.TimeImprovementPct = percentDrop(baseTime, candidate.TotalTimeMs)
	comparison.MemImprovementPct = percentDrop(baseMem, candidate.PeakMemoryMB)
	comparison.ThroughputGainPct = percentGain(baseThroughput, candidate.ThroughputTestsPerSec)

	exceeding := 0
	for _, delta := range []float64{comparison.TimeImprovementPct, comparison.MemImprovementPct, comparison.ThroughputGainPct} {
		if math.Abs(delta) > 10 {
			exceeding++
		}
	}
	switch exceeding {
	case 3:
		comparison.Significance = eval.SignificanceHigh
	case 2:
		comparison.Significance = eval.SignificanceMedium
	case 1:
		comparison.Significance = eval.SignificanceLow
	}
	return comparison
}

func percentDrop(baseline, candidate float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (baseline - candidate) / baseline * 100
}

func percentGain(baseline, candidate float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (candidate - baseline) / baseline * 100
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
