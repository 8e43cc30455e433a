package trend

import (
	"math"

	"tseval/adapters/apfd"
	"tseval/domain/eval"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Dead-bands below which movement counts as noise, not a trend.
const (
	slopeDeadBand     = 0.001
	apfdMeanDeadBand  = 0.05
	plateauThreshold  = 0.01
	DefaultWindowSize = 10
)

// Analyzer detects trends, plateaus and learning curves over
// iteration-ordered metric sequences. APFD per iteration comes from the
// embedded engine; everything else is closed-form over the sequence.
type Analyzer struct {
	windowSize int
	engine     *apfd.Engine
}

// AnalyzerOption configures an Analyzer
type AnalyzerOption func(*Analyzer)

// WithWindowSize overrides the sliding trend window
func WithWindowSize(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n >= 2 {
			a.windowSize = n
		}
	}
}

// NewAnalyzer creates a trend analyzer with a window of 10 iterations
func NewAnalyzer(engine *apfd.Engine, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		windowSize: DefaultWindowSize,
		engine:     engine,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LinearRegression fits closed-form OLS and approximates the slope
// p-value from its standard error via the normal distribution.
func (a *Analyzer) LinearRegression(x, y []float64) eval.RegressionResult {
	n := len(x)
	if n < 2 || n != len(y) {
		return eval.RegressionResult{PValue: 1.0}
	}

	meanX, _ := stats.Mean(x)
	meanY, _ := stats.Mean(y)

	ssXY, ssXX, ssYY := 0.0, 0.0, 0.0
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		ssXY += dx * dy
		ssXX += dx * dx
		ssYY += dy * dy
	}
	if ssXX == 0 {
		return eval.RegressionResult{Intercept: meanY, PValue: 1.0}
	}

	slope := ssXY / ssXX
	intercept := meanY - slope*meanX

	// Residual sum of squares for R^2 and the slope standard error
	ssRes := 0.0
	for i := 0; i < n; i++ {
		fit := intercept + slope*x[i]
		ssRes += (y[i] - fit) * (y[i] - fit)
	}

	rSquared := 0.0
	if ssYY > 0 {
		rSquared = 1 - ssRes/ssYY
	}

	pValue := 1.0
	if n > 2 && ssRes > 0 {
		seSlope := math.Sqrt(ssRes / float64(n-2) / ssXX)
		t := slope / seSlope
		// Normal approximation to the t distribution of the slope
		pValue = 2 * stdNormal.CDF(-math.Abs(t))
	} else if ssRes == 0 && slope != 0 {
		pValue = 0
	}

	return eval.RegressionResult{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  clamp01(rSquared),
		PValue:    pValue,
	}
}

// DetectPlateau slides two adjacent windows over the sequence and reports
// the first index where the relative change between window means drops
// below 1%. Sequences shorter than two windows report (false, -1).
func (a *Analyzer) DetectPlateau(values []float64) (bool, int) {
	w := a.windowSize
	if len(values) < 2*w {
		return false, -1
	}

	for i := w; i+w <= len(values); i++ {
		prev := mean(values[i-w : i])
		next := mean(values[i : i+w])

		relChange := math.Abs(next-prev) / math.Max(math.Abs(prev), 1e-9)
		if relChange < plateauThreshold {
			return true, i
		}
	}
	return false, -1
}

// GenerateLearningCurve scores each iteration's ordered executions and
// emits one point per iteration. adaptationCounts may be nil or shorter
// than the iteration list; missing entries default to zero.
func (a *Analyzer) GenerateLearningCurve(iterations [][]eval.TestExecutionRecord, adaptationCounts []int) []eval.LearningCurvePoint {
	points := make([]eval.LearningCurvePoint, 0, len(iterations))

	for i, executions := range iterations {
		point := eval.LearningCurvePoint{
			Iteration: i + 1,
			APFD:      a.engine.Compute(executions).APFD,
			Accuracy:  predictionAccuracy(executions),
		}

		selected := 0
		for _, rec := range executions {
			if rec.Selected {
				selected++
			}
			if rec.Executed {
				point.ExecutionTimeMs += rec.ExecutionTimeMs
			}
		}
		if len(executions) > 0 {
			point.ReductionRatio = 1 - float64(selected)/float64(len(executions))
		}
		if i < len(adaptationCounts) {
			point.AdaptationCount = adaptationCounts[i]
		}

		points = append(points, point)
	}
	return points
}

// predictionAccuracy is the match rate of the technique's own impact
// predictions (impact > 0.5 means "will detect") against what happened.
// Records without a prediction count as predicting no detection.
func predictionAccuracy(executions []eval.TestExecutionRecord) float64 {
	if len(executions) == 0 {
		return 0
	}

	matches := 0
	for _, rec := range executions {
		predicted := rec.PredictedImpact != nil && *rec.PredictedImpact > 0.5
		if predicted == rec.FaultDetected {
			matches++
		}
	}
	return float64(matches) / float64(len(executions))
}

// AnalyzeTrends classifies direction, plateau and consistency over one
// metric history. APFD uses a mean-delta dead-band between the early and
// recent windows; every other metric uses the regression slope dead-band.
func (a *Analyzer) AnalyzeTrends(metric eval.MetricKind, history []float64) eval.TrendReport {
	report := eval.TrendReport{
		Metric:       metric,
		Direction:    eval.TrendStable,
		PlateauIndex: -1,
	}
	if len(history) < 2 {
		report.Regression = eval.RegressionResult{PValue: 1.0}
		return report
	}

	x := make([]float64, len(history))
	for i := range x {
		x[i] = float64(i)
	}
	report.Regression = a.LinearRegression(x, history)
	report.HasPlateaued, report.PlateauIndex = a.DetectPlateau(history)
	report.Direction = a.classifyDirection(metric, history, report.Regression.Slope)
	report.Consistency = consistency(history)

	return report
}

func (a *Analyzer) classifyDirection(metric eval.MetricKind, history []float64, slope float64) eval.TrendDirection {
	if metric == eval.MetricAPFD {
		w := a.windowSize
		if w > len(history)/2 {
			w = len(history) / 2
		}
		if w < 1 {
			return eval.TrendStable
		}
		delta := mean(history[len(history)-w:]) - mean(history[:w])
		switch {
		case delta > apfdMeanDeadBand:
			return eval.TrendImproving
		case delta < -apfdMeanDeadBand:
			return eval.TrendDeclining
		default:
			return eval.TrendStable
		}
	}

	switch {
	case slope > slopeDeadBand:
		return eval.TrendImproving
	case slope < -slopeDeadBand:
		return eval.TrendDeclining
	default:
		return eval.TrendStable
	}
}

// consistency scores 1 - coefficient of variation, clamped to [0,1]
func consistency(history []float64) float64 {
	m := mean(history)
	if m == 0 {
		return 0
	}
	sd, _ := stats.StandardDeviationSample(history)
	return clamp01(1 - sd/math.Abs(m))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
