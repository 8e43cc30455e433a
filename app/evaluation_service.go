package app

import (
	"context"
	"log"
	"time"

	"tseval/adapters/apfd"
	"tseval/adapters/compare"
	"tseval/adapters/confusion"
	"tseval/adapters/profiling"
	"tseval/adapters/trend"
	"tseval/domain/core"
	"tseval/domain/eval"
	"tseval/internal/errors"
	"tseval/ports"

	"golang.org/x/sync/errgroup"
)

// EvaluationService orchestrates one experiment session: it scores each
// technique iteration, accumulates metric history for comparison, and
// exposes trend and efficiency views over that history. Persistence is
// optional; with a nil repository everything stays in process.
type EvaluationService struct {
	engine     *apfd.Engine
	estimator  *confusion.Estimator
	comparator *compare.Comparator
	analyzer   *trend.Analyzer
	profiler   *profiling.Profiler
	history    ports.MetricHistoryRepository
	fnLeakage  float64
}

// ServiceDeps carries the engine set the service drives
type ServiceDeps struct {
	Engine     *apfd.Engine
	Estimator  *confusion.Estimator
	Comparator *compare.Comparator
	Analyzer   *trend.Analyzer
	Profiler   *profiling.Profiler
	History    ports.MetricHistoryRepository // optional
	FNLeakage  float64
}

// NewEvaluationService creates the orchestrating service
func NewEvaluationService(deps ServiceDeps) *EvaluationService {
	leakage := deps.FNLeakage
	if leakage < 0 || leakage > 1 {
		leakage = confusion.DefaultFNLeakage
	}
	return &EvaluationService{
		engine:     deps.Engine,
		estimator:  deps.Estimator,
		comparator: deps.Comparator,
		analyzer:   deps.Analyzer,
		profiler:   deps.Profiler,
		history:    deps.History,
		fnLeakage:  leakage,
	}
}

// IterationRequest is one technique's ordered execution results for one
// experiment iteration. Faults are optional ground truth; without them
// the confusion matrix falls back to heuristic estimation. Timing and
// resource observations are optional profiling input.
type IterationRequest struct {
	SessionID  core.SessionID
	Technique  core.TechniqueKey
	Iteration  int
	Executions []eval.TestExecutionRecord
	Faults     []eval.FaultRecord
	Timing     *eval.TimingBreakdown
	Resources  *eval.ResourceUsage
}

// IterationResult is the complete evaluation of one iteration
type IterationResult struct {
	Technique  core.TechniqueKey        `json:"technique"`
	Iteration  int                      `json:"iteration"`
	APFD       eval.APFDResult          `json:"apfd"`
	Curve      eval.FaultDetectionCurve `json:"curve"`
	Confusion  eval.ConfusionMetrics    `json:"confusion"`
	Metrics    eval.IterationMetrics    `json:"metrics"`
	Efficiency *eval.EfficiencyMetrics  `json:"efficiency,omitempty"`
	Issues     []eval.Issue             `json:"issues,omitempty"`
	RuntimeMs  int64                    `json:"runtime_ms"`
}

// EvaluateIteration scores one iteration and appends its samples to the
// comparison history. Degenerate data yields neutral results plus Issues;
// only persistence can fail.
func (s *EvaluationService) EvaluateIteration(ctx context.Context, req IterationRequest) (*IterationResult, error) {
	startTime := time.Now()

	result := &IterationResult{
		Technique: req.Technique,
		Iteration: req.Iteration,
		Issues:    eval.ValidateExecutions(req.Executions),
	}

	result.APFD = s.engine.ComputeWithConfidenceInterval(req.Executions)
	result.Curve = s.engine.ComputeCurve(req.Executions)
	result.Confusion = s.estimator.Estimate(s.confusionSource(req))
	result.Metrics = buildIterationMetrics(req.Executions, result.APFD, result.Confusion)

	if req.Timing != nil {
		resources := eval.ResourceUsage{}
		if req.Resources != nil {
			resources = *req.Resources
		}
		metrics := s.profiler.ComputeEfficiency(*req.Timing, resources, len(req.Executions))
		s.profiler.RecordProfile(string(req.Technique), 0, len(req.Executions), metrics)
		result.Efficiency = &metrics
	}

	samples := eval.SamplesFor(req.Technique, req.Iteration, result.Metrics)
	for _, sample := range samples {
		s.comparator.AddSample(sample)
	}
	if s.history != nil {
		if err := s.history.SaveSamples(ctx, req.SessionID, samples); err != nil {
			return nil, errors.Wrap(err, "failed to persist iteration samples")
		}
	}

	result.RuntimeMs = time.Since(startTime).Milliseconds()
	log.Printf("[EvaluationService] Evaluated %s iteration %d: apfd=%.4f mcc=%.4f (%d issues)",
		req.Technique, req.Iteration, result.APFD.APFD, result.Confusion.MCC, len(result.Issues))
	return result, nil
}

// EvaluateBatch evaluates several techniques' iterations concurrently.
// Results keep request order; the first persistence failure cancels the
// rest of the batch.
func (s *EvaluationService) EvaluateBatch(ctx context.Context, reqs []IterationRequest) ([]*IterationResult, error) {
	results := make([]*IterationResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			r, err := s.EvaluateIteration(gctx, req)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// confusionSource prefers exact fault ground truth and degrades to
// heuristic aggregate estimation when none was supplied.
func (s *EvaluationService) confusionSource(req IterationRequest) confusion.Source {
	if len(req.Faults) > 0 {
		return confusion.NewExactSource(req.Executions, req.Faults)
	}

	counts := eval.AggregateCounts{TotalTests: len(req.Executions)}
	for _, rec := range req.Executions {
		if rec.Selected {
			counts.SelectedTests++
		}
		if rec.FaultDetected {
			counts.FaultsDetected++
		}
	}
	// Without ground truth the detected count is the only injection floor
	counts.FaultsInjected = counts.FaultsDetected
	return confusion.NewHeuristicSource(counts, s.fnLeakage)
}

func buildIterationMetrics(executions []eval.TestExecutionRecord, apfdResult eval.APFDResult, conf eval.ConfusionMetrics) eval.IterationMetrics {
	metrics := eval.IterationMetrics{
		APFD:      apfdResult.APFD,
		Accuracy:  conf.Accuracy,
		Precision: conf.Precision,
		Recall:    conf.Recall,
		F1Score:   conf.F1Score,
		MCC:       conf.MCC,
	}

	selected := 0
	for _, rec := range executions {
		if rec.Selected {
			selected++
		}
		if rec.Executed {
			metrics.ExecutionTimeMs += rec.ExecutionTimeMs
		}
	}
	if len(executions) > 0 {
		metrics.ReductionRatio = 1 - float64(selected)/float64(len(executions))
	}
	return metrics
}

// CompareTechniques runs the full statistical comparison of two
// techniques over their accumulated history for one metric.
func (s *EvaluationService) CompareTechniques(a, b core.TechniqueKey, metric eval.MetricKind) (eval.ComparisonResult, error) {
	if !metric.Valid() {
		return eval.ComparisonResult{}, errors.InvalidInput("unknown metric kind: " + string(metric))
	}
	return s.comparator.Compare(a, b, metric), nil
}

// CompareAllTechniques runs every pairwise comparison over the
// accumulated history with multiple-comparison correction.
func (s *EvaluationService) CompareAllTechniques(metric eval.MetricKind, method compare.CorrectionMethod) (compare.MultipleComparisonReport, error) {
	if !metric.Valid() {
		return compare.MultipleComparisonReport{}, errors.InvalidInput("unknown metric kind: " + string(metric))
	}

	samplesByLabel := make(map[core.TechniqueKey][]float64)
	for _, technique := range s.comparator.Techniques(metric) {
		samplesByLabel[technique] = s.comparator.Samples(technique, metric)
	}
	return s.comparator.MultipleComparisons(samplesByLabel, metric, method), nil
}

// GenerateLearningCurve scores an iteration sequence and persists the
// curve when a repository is configured.
func (s *EvaluationService) GenerateLearningCurve(ctx context.Context, sessionID core.SessionID, technique core.TechniqueKey, iterations [][]eval.TestExecutionRecord, adaptationCounts []int) ([]eval.LearningCurvePoint, error) {
	points := s.analyzer.GenerateLearningCurve(iterations, adaptationCounts)

	if s.history != nil {
		if err := s.history.SaveLearningCurve(ctx, sessionID, technique, points); err != nil {
			return nil, errors.Wrap(err, "failed to persist learning curve")
		}
	}
	return points, nil
}

// LearningCurve loads the persisted curve of one technique in a session
func (s *EvaluationService) LearningCurve(ctx context.Context, sessionID core.SessionID, technique core.TechniqueKey) ([]eval.LearningCurvePoint, error) {
	if s.history == nil {
		return nil, errors.NotFound("learning curve history (no repository configured)")
	}

	points, err := s.history.LoadLearningCurve(ctx, sessionID, technique)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load learning curve for %s", technique)
	}
	return points, nil
}

// TrendFor analyzes the accumulated history of one technique and metric
func (s *EvaluationService) TrendFor(technique core.TechniqueKey, metric eval.MetricKind) (eval.TrendReport, error) {
	if !metric.Valid() {
		return eval.TrendReport{}, errors.InvalidInput("unknown metric kind: " + string(metric))
	}
	return s.analyzer.AnalyzeTrends(metric, s.comparator.Samples(technique, metric)), nil
}

// RestoreHistory reloads persisted samples into the in-memory comparison
// window, most recent first up to the comparator's retention.
func (s *EvaluationService) RestoreHistory(ctx context.Context, sessionID core.SessionID, techniques []core.TechniqueKey) error {
	if s.history == nil {
		return nil
	}

	for _, technique := range techniques {
		for _, metric := range eval.AllMetricKinds() {
			samples, err := s.history.LoadSamples(ctx, sessionID, technique, metric, 0)
			if err != nil {
				return errors.Wrapf(err, "failed to restore history for %s/%s", technique, metric)
			}
			for _, sample := range samples {
				s.comparator.AddSample(sample)
			}
		}
	}

	log.Printf("[EvaluationService] Restored history for %d techniques in session %s", len(techniques), sessionID)
	return nil
}
