package eval

import (
	"fmt"

	"tseval/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// ExecutionStatus is the terminal status of one test execution
type ExecutionStatus string

const (
	StatusPassed  ExecutionStatus = "passed"
	StatusFailed  ExecutionStatus = "failed"
	StatusSkipped ExecutionStatus = "skipped"
)

// TestExecutionRecord is one executed (or skipped) test in an ordered run.
// The record is immutable once produced by the test-runner collaborator;
// its position in the enclosing slice is its 1-indexed sequence position.
type TestExecutionRecord struct {
	TestID          core.TestID     `json:"test_id"`
	Selected        bool            `json:"selected"`
	Executed        bool            `json:"executed"`
	Status          ExecutionStatus `json:"status"`
	ExecutionTimeMs float64         `json:"execution_time_ms"`
	FaultDetected   bool            `json:"fault_detected"`
	// PredictedImpact is the technique's own [0,1] impact prediction, when available.
	PredictedImpact *float64 `json:"predicted_impact,omitempty"`
}

// FaultRecord is the ground truth for one injected or historical fault:
// the set of tests able to detect it. Severity/type metadata is carried
// for collaborators but unused by the core formulas.
type FaultRecord struct {
	FaultID        core.FaultID  `json:"fault_id"`
	DetectingTests []core.TestID `json:"detecting_tests"`
	Severity       string        `json:"severity,omitempty"`
	FaultType      string        `json:"fault_type,omitempty"`
}

// DetectedBy reports whether the given test can detect this fault.
func (f FaultRecord) DetectedBy(id core.TestID) bool {
	for _, t := range f.DetectingTests {
		if t == id {
			return true
		}
	}
	return false
}

// ============================================================================
// APFD
// ============================================================================

// ConfidenceInterval is a two-sided interval at a given confidence level
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// APFDResult is the outcome of scoring one ordered run.
// INVARIANTS:
// - APFD always in [0,1]
// - FaultPositions is 1-indexed and ascending
// - TotalFaults == len(FaultPositions)
type APFDResult struct {
	APFD                 float64             `json:"apfd"`
	TotalTests           int                 `json:"total_tests"`
	TotalFaults          int                 `json:"total_faults"`
	FaultPositions       []int               `json:"fault_positions"`
	AverageFaultPosition float64             `json:"average_fault_position"`
	FaultDetectionRate   float64             `json:"fault_detection_rate"`
	EarlyDetectionRate   float64             `json:"early_detection_rate"`
	Confidence           *ConfidenceInterval `json:"confidence,omitempty"`
}

// CurvePoint is one point of the cumulative fault-detection curve
type CurvePoint struct {
	TestPosition    int     `json:"test_position"`
	PercentExecuted float64 `json:"percent_executed"`
	PercentDetected float64 `json:"percent_detected"`
}

// FaultDetectionCurve is a finite, restartable point sequence plus its
// normalized area under the curve (trapezoidal).
type FaultDetectionCurve struct {
	Points []CurvePoint `json:"points"`
	AUC    float64      `json:"auc"`
}

// ============================================================================
// CONFUSION MATRIX
// ============================================================================

// ConfusionMetrics carries the four counts and every metric derived from them.
// INVARIANT: in exact mode TP+FP+TN+FN == TotalTests exactly; in heuristic
// mode the sum is guaranteed by construction but individual counts are
// estimates, not ground truth.
type ConfusionMetrics struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalseNegatives int `json:"false_negatives"`
	TotalTests     int `json:"total_tests"`

	Precision        float64 `json:"precision"`
	Recall           float64 `json:"recall"`
	F1Score          float64 `json:"f1_score"`
	Accuracy         float64 `json:"accuracy"`
	Specificity      float64 `json:"specificity"`
	MCC              float64 `json:"mcc"`
	BalancedAccuracy float64 `json:"balanced_accuracy"`
	Informedness     float64 `json:"informedness"`
	NPV              float64 `json:"npv"`
	Markedness       float64 `json:"markedness"`

	// Exact is true when the counts came from fault ground truth rather
	// than the aggregate-count heuristic.
	Exact bool `json:"exact"`
}

// AggregateCounts are the four scalars available when no per-fault ground
// truth exists (heuristic confusion-matrix mode).
type AggregateCounts struct {
	SelectedTests  int `json:"selected_tests"`
	TotalTests     int `json:"total_tests"`
	FaultsDetected int `json:"faults_detected"`
	FaultsInjected int `json:"faults_injected"`
}

// ============================================================================
// METRIC SAMPLES & COMPARISON
// ============================================================================

// MetricSample is the atomic unit of per-iteration history: one value of
// one metric for one technique at one iteration.
type MetricSample struct {
	Technique core.TechniqueKey `json:"technique"`
	Metric    MetricKind        `json:"metric"`
	Iteration int               `json:"iteration"`
	Value     float64           `json:"value"`
}

// DescriptiveStats summarizes one sample set
type DescriptiveStats struct {
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Mode     float64 `json:"mode"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Q1       float64 `json:"q1"`
	Q3       float64 `json:"q3"`
	IQR      float64 `json:"iqr"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
}

// StatisticalTest is the uniform outcome of whichever hypothesis test the
// decision procedure selected.
type StatisticalTest struct {
	Name           string  `json:"name"`
	Statistic      float64 `json:"statistic"`
	PValue         float64 `json:"p_value"`
	IsSignificant  bool    `json:"is_significant"`
	Interpretation string  `json:"interpretation"`
}

// EffectMagnitude buckets an absolute Cohen's d
type EffectMagnitude string

const (
	EffectNegligible EffectMagnitude = "negligible"
	EffectSmall      EffectMagnitude = "small"
	EffectMedium     EffectMagnitude = "medium"
	EffectLarge      EffectMagnitude = "large"
	EffectVeryLarge  EffectMagnitude = "very_large"
)

// EffectSize is Cohen's d with its magnitude bucket
type EffectSize struct {
	CohensD   float64         `json:"cohens_d"`
	Magnitude EffectMagnitude `json:"magnitude"`
}

// ComparisonResult is the full outcome of comparing two techniques on one metric
type ComparisonResult struct {
	TechniqueA core.TechniqueKey  `json:"technique_a"`
	TechniqueB core.TechniqueKey  `json:"technique_b"`
	Metric     MetricKind         `json:"metric"`
	StatsA     DescriptiveStats   `json:"stats_a"`
	StatsB     DescriptiveStats   `json:"stats_b"`
	Test       StatisticalTest    `json:"test"`
	Effect     EffectSize         `json:"effect"`
	Confidence ConfidenceInterval `json:"confidence"`
	Verdict    string             `json:"verdict"`
}

// PowerAnalysis is the outcome of a statistical power computation
type PowerAnalysis struct {
	Power          float64 `json:"power"`
	EffectSize     float64 `json:"effect_size"`
	SampleSize     int     `json:"sample_size"`
	Alpha          float64 `json:"alpha"`
	RequiredSample int     `json:"required_sample,omitempty"`
}

// ============================================================================
// TREND & LEARNING
// ============================================================================

// TrendDirection classifies how a metric moves across iterations
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// RegressionResult is the closed-form OLS fit over an iteration sequence
type RegressionResult struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	PValue    float64 `json:"p_value"`
}

// TrendReport combines regression, plateau and consistency over a history
type TrendReport struct {
	Metric       MetricKind       `json:"metric"`
	Direction    TrendDirection   `json:"direction"`
	Regression   RegressionResult `json:"regression"`
	HasPlateaued bool             `json:"has_plateaued"`
	PlateauIndex int              `json:"plateau_index"`
	Consistency  float64          `json:"consistency"`
}

// LearningCurvePoint is one iteration of an adaptation run. Restartable:
// the full curve can be regenerated from stored iteration history.
type LearningCurvePoint struct {
	Iteration       int     `json:"iteration"`
	APFD            float64 `json:"apfd"`
	Accuracy        float64 `json:"accuracy"`
	ReductionRatio  float64 `json:"reduction_ratio"`
	ExecutionTimeMs float64 `json:"execution_time_ms"`
	AdaptationCount int     `json:"adaptation_count"`
}

// RecommendationTag is an enumerated, presentation-free recommendation.
// Natural-language rendering belongs to an external presentation layer.
type RecommendationTag string

const (
	RecommendKeepPrimary     RecommendationTag = "keep_primary"
	RecommendAdoptBaseline   RecommendationTag = "adopt_baseline"
	RecommendInconclusive    RecommendationTag = "inconclusive"
	RecommendCollectMoreData RecommendationTag = "collect_more_data"
)

// StrategyComparison is the outcome of comparing one primary ordering
// against labeled baseline orderings by raw APFD.
type StrategyComparison struct {
	PrimaryAPFD    float64            `json:"primary_apfd"`
	BaselineAPFD   map[string]float64 `json:"baseline_apfd"`
	Deltas         map[string]float64 `json:"deltas"`
	BestMethod     string             `json:"best_method"`
	Recommendation RecommendationTag  `json:"recommendation"`
	Summary        string             `json:"summary"`
}

// ============================================================================
// EFFICIENCY
// ============================================================================

// TimingBreakdown carries the wall-clock components of one analysis run
type TimingBreakdown struct {
	TotalTimeMs      float64 `json:"total_time_ms"`
	AnalysisTimeMs   float64 `json:"analysis_time_ms"`
	SelectionTimeMs  float64 `json:"selection_time_ms"`
	ExecutionSavedMs float64 `json:"execution_saved_ms"`
}

// ResourceUsage carries observed resource consumption
type ResourceUsage struct {
	PeakMemoryMB float64 `json:"peak_memory_mb"`
	CPUPercent   float64 `json:"cpu_percent"`
}

// ComplexityClass is a coarse observed-complexity bucket, not a proof
type ComplexityClass string

const (
	ComplexityConstant    ComplexityClass = "constant"
	ComplexityLinear      ComplexityClass = "linear"
	ComplexityQuadratic   ComplexityClass = "quadratic"
	ComplexityExponential ComplexityClass = "exponential"
)

// EfficiencyMetrics is the profile of one analysis run
type EfficiencyMetrics struct {
	ThroughputTestsPerSec float64         `json:"throughput_tests_per_sec"`
	AnalysisOverhead      float64         `json:"analysis_overhead"`
	CostBenefitRatio      float64         `json:"cost_benefit_ratio"`
	TimeComplexity        ComplexityClass `json:"time_complexity"`
	MemoryComplexity      ComplexityClass `json:"memory_complexity"`
	TotalTimeMs           float64         `json:"total_time_ms"`
	PeakMemoryMB          float64         `json:"peak_memory_mb"`
	TestsAnalyzed         int             `json:"tests_analyzed"`
}

// EfficiencyProfile is one recorded observation in the approach registry
type EfficiencyProfile struct {
	Approach      string            `json:"approach"`
	ProjectSize   int               `json:"project_size"`
	TestSuiteSize int               `json:"test_suite_size"`
	Metrics       EfficiencyMetrics `json:"metrics"`
	RecordedAt    core.Timestamp    `json:"recorded_at"`
}

// ScalabilityReport classifies observed growth across size-ordered profiles
type ScalabilityReport struct {
	Approach         string          `json:"approach"`
	ProfileCount     int             `json:"profile_count"`
	TimeGrowthFactor float64         `json:"time_growth_factor"`
	MemGrowthFactor  float64         `json:"mem_growth_factor"`
	TimeTrend        ComplexityClass `json:"time_trend"`
	MemoryTrend      ComplexityClass `json:"memory_trend"`
}

// SignificanceBucket grades how much an efficiency delta matters
type SignificanceBucket string

const (
	SignificanceHigh   SignificanceBucket = "high"
	SignificanceMedium SignificanceBucket = "medium"
	SignificanceLow    SignificanceBucket = "low"
	SignificanceNone   SignificanceBucket = "none"
)

// EfficiencyComparison is candidate-vs-baseline efficiency deltas
type EfficiencyComparison struct {
	BaselineApproach   string             `json:"baseline_approach"`
	TimeImprovementPct float64            `json:"time_improvement_pct"`
	MemImprovementPct  float64            `json:"mem_improvement_pct"`
	ThroughputGainPct  float64            `json:"throughput_gain_pct"`
	Significance       SignificanceBucket `json:"significance"`
}

// ============================================================================
// CONSTRUCTORS
// ============================================================================

// ZeroAPFDResult is the documented neutral result for an empty run
func ZeroAPFDResult() APFDResult {
	return APFDResult{FaultPositions: []int{}}
}

// SamplesFor expands one iteration's metrics into one sample per kind
func SamplesFor(technique core.TechniqueKey, iteration int, m IterationMetrics) []MetricSample {
	kinds := AllMetricKinds()
	out := make([]MetricSample, 0, len(kinds))
	for _, k := range kinds {
		v, _ := m.Value(k)
		out = append(out, MetricSample{Technique: technique, Metric: k, Iteration: iteration, Value: v})
	}
	return out
}

// NewMetricSample creates a metric sample with validation
func NewMetricSample(technique core.TechniqueKey, metric MetricKind, iteration int, value float64) (MetricSample, error) {
	if technique == "" {
		return MetricSample{}, fmt.Errorf("technique must be set")
	}
	if iteration < 0 {
		return MetricSample{}, fmt.Errorf("iteration must be >= 0, got %d", iteration)
	}
	if !metric.Valid() {
		return MetricSample{}, fmt.Errorf("unknown metric kind %q", metric)
	}
	return MetricSample{Technique: technique, Metric: metric, Iteration: iteration, Value: value}, nil
}
