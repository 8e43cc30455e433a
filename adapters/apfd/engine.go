package apfd

import (
	"math"
	"math/rand"
	"sort"

	"tseval/domain/eval"
)

// Engine computes APFD scores, fault-detection curves and bootstrap
// confidence intervals from one ordered run of test executions.
type Engine struct {
	bootstrapSamples int
	confidence       float64
	rng              *rand.Rand
}

// Option configures an Engine
type Option func(*Engine)

// WithBootstrapSamples overrides the bootstrap resample count
func WithBootstrapSamples(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.bootstrapSamples = n
		}
	}
}

// WithConfidence overrides the confidence level for intervals
func WithConfidence(level float64) Option {
	return func(e *Engine) {
		if level > 0 && level < 1 {
			e.confidence = level
		}
	}
}

// WithSeed fixes the bootstrap RNG seed for reproducible intervals
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// NewEngine creates an APFD engine with default bootstrap settings
// (1000 resamples at 95% confidence).
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		bootstrapSamples: 1000,
		confidence:       0.95,
		rng:              rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute scores one ordered run. An empty run yields the documented zero
// result; a run with no detected faults scores 1.0 by convention (there
// were no faults to miss).
func (e *Engine) Compute(executions []eval.TestExecutionRecord) eval.APFDResult {
	if len(executions) == 0 {
		return eval.ZeroAPFDResult()
	}

	n := len(executions)
	positions := faultPositions(executions)
	m := len(positions)

	result := eval.APFDResult{
		TotalTests:     n,
		TotalFaults:    m,
		FaultPositions: positions,
	}

	if m == 0 {
		// No faults to find: perfect score, zero detection rate.
		result.APFD = 1.0
		return result
	}

	sumPositions := 0
	early := 0
	half := float64(n) / 2
	for _, pos := range positions {
		sumPositions += pos
		if float64(pos) <= half {
			early++
		}
	}

	apfd := 1 - float64(sumPositions)/(float64(n)*float64(m)) + 1/(2*float64(n))
	result.APFD = clamp01(apfd)
	result.AverageFaultPosition = float64(sumPositions) / float64(m)
	result.FaultDetectionRate = float64(m) / float64(n)
	result.EarlyDetectionRate = float64(early) / float64(m)

	return result
}

// ComputeWithConfidenceInterval attaches a percentile-bootstrap interval
// to the base result. Runs shorter than 10 tests skip the bootstrap: the
// resample distribution is too coarse to bound anything.
func (e *Engine) ComputeWithConfidenceInterval(executions []eval.TestExecutionRecord) eval.APFDResult {
	result := e.Compute(executions)

	n := len(executions)
	if n < 10 {
		return result
	}

	scores := make([]float64, e.bootstrapSamples)
	resample := make([]eval.TestExecutionRecord, n)
	for i := 0; i < e.bootstrapSamples; i++ {
		for j := 0; j < n; j++ {
			resample[j] = executions[e.rng.Intn(n)]
		}
		scores[i] = e.Compute(resample).APFD
	}
	sort.Float64s(scores)

	alpha := 1 - e.confidence
	lower := percentileIndex(len(scores), alpha/2)
	upper := percentileIndex(len(scores), 1-alpha/2)

	result.Confidence = &eval.ConfidenceInterval{
		Lower: scores[lower],
		Upper: scores[upper],
		Level: e.confidence,
	}
	return result
}

// ComputeCurve builds the cumulative fault-detection curve with one point
// per test position, plus the trapezoidal area under the curve normalized
// to [0,1]. The returned points are a finite, restartable sequence.
func (e *Engine) ComputeCurve(executions []eval.TestExecutionRecord) eval.FaultDetectionCurve {
	n := len(executions)
	if n == 0 {
		return eval.FaultDetectionCurve{Points: []eval.CurvePoint{}}
	}

	totalFaults := 0
	for _, rec := range executions {
		if rec.FaultDetected {
			totalFaults++
		}
	}

	points := make([]eval.CurvePoint, 0, n)
	detected := 0
	for i, rec := range executions {
		if rec.FaultDetected {
			detected++
		}
		points = append(points, eval.CurvePoint{
			TestPosition:    i + 1,
			PercentExecuted: float64(i+1) / float64(n) * 100,
			PercentDetected: float64(detected) / float64(max(1, totalFaults)) * 100,
		})
	}

	return eval.FaultDetectionCurve{
		Points: points,
		AUC:    curveAUC(points),
	}
}

// curveAUC integrates the curve trapezoidally from the origin through
// every consecutive point pair, on [0,1] axes.
func curveAUC(points []eval.CurvePoint) float64 {
	if len(points) == 0 {
		return 0
	}

	auc := 0.0
	prevX, prevY := 0.0, 0.0
	for _, p := range points {
		x := p.PercentExecuted / 100
		y := p.PercentDetected / 100
		auc += (x - prevX) * (y + prevY) / 2
		prevX, prevY = x, y
	}
	return clamp01(auc)
}

// faultPositions extracts the 1-indexed positions of fault-detecting tests
func faultPositions(executions []eval.TestExecutionRecord) []int {
	positions := []int{}
	for i, rec := range executions {
		if rec.FaultDetected {
			positions = append(positions, i+1)
		}
	}
	return positions
}

// percentileIndex maps a percentile to a valid sorted-slice index
func percentileIndex(n int, p float64) int {
	idx := int(p * float64(n))
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
