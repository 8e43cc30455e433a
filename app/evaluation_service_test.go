package app

import (
	"context"
	"sync"
	"testing"

	"tseval/adapters/apfd"
	"tseval/adapters/compare"
	"tseval/adapters/confusion"
	"tseval/adapters/profiling"
	"tseval/adapters/trend"
	"tseval/domain/core"
	"tseval/domain/eval"
	"tseval/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHistoryRepository keeps persisted samples in memory for assertions
type fakeHistoryRepository struct {
	mu      sync.Mutex
	samples map[core.SessionID][]eval.MetricSample
	curves  map[core.TechniqueKey][]eval.LearningCurvePoint
	saveErr error
}

func newFakeHistory() *fakeHistoryRepository {
	return &fakeHistoryRepository{
		samples: make(map[core.SessionID][]eval.MetricSample),
		curves:  make(map[core.TechniqueKey][]eval.LearningCurvePoint),
	}
}

func (f *fakeHistoryRepository) SaveSamples(_ context.Context, sessionID core.SessionID, samples []eval.MetricSample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.samples[sessionID] = append(f.samples[sessionID], samples...)
	return nil
}

func (f *fakeHistoryRepository) LoadSamples(_ context.Context, sessionID core.SessionID, technique core.TechniqueKey, metric eval.MetricKind, _ int) ([]eval.MetricSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []eval.MetricSample
	for _, s := range f.samples[sessionID] {
		if s.Technique == technique && s.Metric == metric {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeHistoryRepository) SaveLearningCurve(_ context.Context, _ core.SessionID, technique core.TechniqueKey, points []eval.LearningCurvePoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.curves[technique] = points
	return nil
}

func (f *fakeHistoryRepository) LoadLearningCurve(_ context.Context, _ core.SessionID, technique core.TechniqueKey) ([]eval.LearningCurvePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.curves[technique], nil
}

func newService(history *fakeHistoryRepository) *EvaluationService {
	engine := apfd.NewEngine(apfd.WithSeed(42))
	deps := ServiceDeps{
		Engine:     engine,
		Estimator:  confusion.NewEstimator(),
		Comparator: compare.NewComparator(),
		Analyzer:   trend.NewAnalyzer(engine),
		Profiler:   profiling.NewProfiler(profiling.NewInMemoryProfileStore(0)),
		FNLeakage:  0.1,
	}
	if history != nil {
		deps.History = history
	}
	return NewEvaluationService(deps)
}

func iterationRequest(technique core.TechniqueKey, iteration int, seed int64) IterationRequest {
	config := testkit.DefaultSuiteConfig()
	config.Seed = seed
	g := testkit.NewSuiteGenerator(config)
	executions := g.GenerateExecutions()
	return IterationRequest{
		SessionID:  "session-1",
		Technique:  technique,
		Iteration:  iteration,
		Executions: executions,
		Faults:     g.GenerateFaults(executions),
	}
}

func TestEvaluateIteration_ExactGroundTruth(t *testing.T) {
	history := newFakeHistory()
	s := newService(history)

	result, err := s.EvaluateIteration(context.Background(), iterationRequest("adaptive", 1, 42))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.APFD.APFD, 0.0)
	assert.LessOrEqual(t, result.APFD.APFD, 1.0)
	assert.True(t, result.Confusion.Exact)
	assert.NotEmpty(t, result.Curve.Points)
	assert.InDelta(t, 0.6, result.Metrics.ReductionRatio, 1e-9)

	persisted := history.samples["session-1"]
	assert.Len(t, persisted, len(eval.AllMetricKinds()))
}

func TestEvaluateIteration_HeuristicWithoutFaults(t *testing.T) {
	s := newService(nil)

	req := iterationRequest("adaptive", 1, 42)
	req.Faults = nil

	result, err := s.EvaluateIteration(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Confusion.Exact)
}

func TestEvaluateIteration_EmptyRunDegradesGracefully(t *testing.T) {
	s := newService(nil)

	result, err := s.EvaluateIteration(context.Background(), IterationRequest{
		SessionID: "session-1",
		Technique: "adaptive",
		Iteration: 1,
	})
	require.NoError(t, err)
	assert.Zero(t, result.APFD.APFD)
	assert.Zero(t, result.Metrics.ReductionRatio)
}

func TestEvaluateIteration_PersistenceFailureSurfaces(t *testing.T) {
	history := newFakeHistory()
	history.saveErr = assert.AnError
	s := newService(history)

	_, err := s.EvaluateIteration(context.Background(), iterationRequest("adaptive", 1, 42))
	require.Error(t, err)
}

func TestEvaluateIteration_ProfilesTiming(t *testing.T) {
	s := newService(nil)

	req := iterationRequest("adaptive", 1, 42)
	req.Timing = &eval.TimingBreakdown{TotalTimeMs: 500, ExecutionSavedMs: 5000}
	req.Resources = &eval.ResourceUsage{PeakMemoryMB: 80}

	result, err := s.EvaluateIteration(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result.Efficiency)
	assert.InDelta(t, 200.0, result.Efficiency.ThroughputTestsPerSec, 1e-9)
	assert.InDelta(t, 10.0, result.Efficiency.CostBenefitRatio, 1e-9)
}

func TestEvaluateBatch_KeepsRequestOrder(t *testing.T) {
	s := newService(nil)

	reqs := []IterationRequest{
		iterationRequest("adaptive", 1, 42),
		iterationRequest("random", 1, 7),
		iterationRequest("adaptive", 2, 43),
	}

	results, err := s.EvaluateBatch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, core.TechniqueKey("adaptive"), results[0].Technique)
	assert.Equal(t, core.TechniqueKey("random"), results[1].Technique)
	assert.Equal(t, 2, results[2].Iteration)
}

func TestCompareTechniques_AfterIterations(t *testing.T) {
	s := newService(nil)

	for i := 1; i <= 10; i++ {
		sharp := iterationRequest("adaptive", i, int64(100+i))
		blunt := iterationRequest("random", i, int64(200+i))
		_, err := s.EvaluateIteration(context.Background(), sharp)
		require.NoError(t, err)
		_, err = s.EvaluateIteration(context.Background(), blunt)
		require.NoError(t, err)
	}

	result, err := s.CompareTechniques("adaptive", "random", eval.MetricAPFD)
	require.NoError(t, err)
	assert.Equal(t, 10, result.StatsA.N)
	assert.NotEmpty(t, result.Verdict)

	_, err = s.CompareTechniques("adaptive", "random", eval.MetricKind("bogus"))
	require.Error(t, err)
}

func TestCompareAllTechniques(t *testing.T) {
	s := newService(nil)
	for i := 1; i <= 6; i++ {
		for _, technique := range []core.TechniqueKey{"a", "b", "c"} {
			_, err := s.EvaluateIteration(context.Background(), iterationRequest(technique, i, int64(i)*10+int64(len(technique))))
			require.NoError(t, err)
		}
	}

	report, err := s.CompareAllTechniques(eval.MetricAPFD, compare.CorrectionBonferroni)
	require.NoError(t, err)
	assert.Len(t, report.Comparisons, 3)
}

func TestGenerateLearningCurve_Persists(t *testing.T) {
	history := newFakeHistory()
	s := newService(history)

	g := testkit.NewSuiteGenerator(testkit.DefaultSuiteConfig())
	iterations := [][]eval.TestExecutionRecord{g.GenerateExecutions(), g.GenerateExecutions()}

	points, err := s.GenerateLearningCurve(context.Background(), "session-1", "adaptive", iterations, nil)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Len(t, history.curves["adaptive"], 2)
}

func TestLearningCurve_LoadsPersistedPoints(t *testing.T) {
	history := newFakeHistory()
	s := newService(history)

	g := testkit.NewSuiteGenerator(testkit.DefaultSuiteConfig())
	iterations := [][]eval.TestExecutionRecord{g.GenerateExecutions(), g.GenerateExecutions()}
	_, err := s.GenerateLearningCurve(context.Background(), "session-1", "adaptive", iterations, nil)
	require.NoError(t, err)

	points, err := s.LearningCurve(context.Background(), "session-1", "adaptive")
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestLearningCurve_WithoutRepository(t *testing.T) {
	s := newService(nil)

	_, err := s.LearningCurve(context.Background(), "session-1", "adaptive")
	require.Error(t, err)
}

func TestRestoreHistory_RefillsComparator(t *testing.T) {
	history := newFakeHistory()
	s := newService(history)

	for i := 1; i <= 3; i++ {
		_, err := s.EvaluateIteration(context.Background(), iterationRequest("adaptive", i, int64(i)))
		require.NoError(t, err)
	}

	fresh := newService(history)
	require.NoError(t, fresh.RestoreHistory(context.Background(), "session-1", []core.TechniqueKey{"adaptive"}))

	trendReport, err := fresh.TrendFor("adaptive", eval.MetricAPFD)
	require.NoError(t, err)
	assert.Equal(t, eval.MetricAPFD, trendReport.Metric)
}
