package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tseval/adapters/apfd"
	"tseval/adapters/compare"
	"tseval/adapters/confusion"
	"tseval/adapters/profiling"
	"tseval/adapters/trend"
	"tseval/app"
	"tseval/domain/core"
	"tseval/domain/eval"
	"tseval/internal/testkit"
	"tseval/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// curveOnlyHistory persists learning curves in memory; samples are dropped
type curveOnlyHistory struct {
	curves map[core.TechniqueKey][]eval.LearningCurvePoint
}

func (h *curveOnlyHistory) SaveSamples(_ context.Context, _ core.SessionID, _ []eval.MetricSample) error {
	return nil
}

func (h *curveOnlyHistory) LoadSamples(_ context.Context, _ core.SessionID, _ core.TechniqueKey, _ eval.MetricKind, _ int) ([]eval.MetricSample, error) {
	return nil, nil
}

func (h *curveOnlyHistory) SaveLearningCurve(_ context.Context, _ core.SessionID, technique core.TechniqueKey, points []eval.LearningCurvePoint) error {
	h.curves[technique] = points
	return nil
}

func (h *curveOnlyHistory) LoadLearningCurve(_ context.Context, _ core.SessionID, technique core.TechniqueKey) ([]eval.LearningCurvePoint, error) {
	return h.curves[technique], nil
}

func newTestApp() *App {
	return newTestAppWithHistory(nil)
}

func newTestAppWithHistory(history ports.MetricHistoryRepository) *App {
	engine := apfd.NewEngine(apfd.WithSeed(42))
	service := app.NewEvaluationService(app.ServiceDeps{
		Engine:     engine,
		Estimator:  confusion.NewEstimator(),
		Comparator: compare.NewComparator(),
		Analyzer:   trend.NewAnalyzer(engine),
		Profiler:   profiling.NewProfiler(profiling.NewInMemoryProfileStore(0)),
		History:    history,
		FNLeakage:  0.1,
	})
	return NewApp(service)
}

func postJSON(t *testing.T, a *App, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	return rec
}

func get(a *App, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	return rec
}

func suiteRequest(technique string, iteration int, seed int64) evaluateRequest {
	config := testkit.DefaultSuiteConfig()
	config.Seed = seed
	g := testkit.NewSuiteGenerator(config)
	executions := g.GenerateExecutions()
	return evaluateRequest{
		SessionID:  "session-1",
		Technique:  technique,
		Iteration:  iteration,
		Executions: executions,
		Faults:     g.GenerateFaults(executions),
	}
}

func TestHandleHealth(t *testing.T) {
	rec := get(newTestApp(), "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestHandleEvaluate(t *testing.T) {
	a := newTestApp()
	rec := postJSON(t, a, "/api/evaluate", suiteRequest("adaptive", 1, 42))

	require.Equal(t, http.StatusOK, rec.Code)

	var result app.IterationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.GreaterOrEqual(t, result.APFD.APFD, 0.0)
	assert.True(t, result.Confusion.Exact)
}

func TestHandleEvaluate_BadRequests(t *testing.T) {
	a := newTestApp()

	rec := postJSON(t, a, "/api/evaluate", evaluateRequest{Technique: "adaptive"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", bytes.NewReader([]byte("{broken")))
	raw := httptest.NewRecorder()
	a.Router().ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestHandleEvaluateBatch(t *testing.T) {
	a := newTestApp()
	rec := postJSON(t, a, "/api/evaluate/batch", batchRequest{
		Requests: []evaluateRequest{
			suiteRequest("adaptive", 1, 42),
			suiteRequest("random", 1, 7),
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var results []app.IterationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 2)
}

func TestHandleCompare(t *testing.T) {
	a := newTestApp()
	for i := 1; i <= 5; i++ {
		require.Equal(t, http.StatusOK, postJSON(t, a, "/api/evaluate", suiteRequest("adaptive", i, int64(i))).Code)
		require.Equal(t, http.StatusOK, postJSON(t, a, "/api/evaluate", suiteRequest("random", i, int64(i+100))).Code)
	}

	rec := postJSON(t, a, "/api/compare", compareRequest{
		TechniqueA: "adaptive",
		TechniqueB: "random",
		Metric:     "apfd",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result eval.ComparisonResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 5, result.StatsA.N)

	bad := postJSON(t, a, "/api/compare", compareRequest{TechniqueA: "a", TechniqueB: "b", Metric: "bogus"})
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestHandleCompareAll_DefaultsToAPFD(t *testing.T) {
	a := newTestApp()
	for i := 1; i <= 3; i++ {
		postJSON(t, a, "/api/evaluate", suiteRequest("adaptive", i, int64(i)))
		postJSON(t, a, "/api/evaluate", suiteRequest("random", i, int64(i+50)))
	}

	rec := get(a, "/api/compare/all")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "corrected_alpha")
}

func TestHandleTrend(t *testing.T) {
	a := newTestApp()
	for i := 1; i <= 4; i++ {
		postJSON(t, a, "/api/evaluate", suiteRequest("adaptive", i, int64(i)))
	}

	rec := get(a, "/api/trend/adaptive?metric=apfd")
	require.Equal(t, http.StatusOK, rec.Code)

	var report eval.TrendReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, eval.MetricAPFD, report.Metric)
}

func TestHandleLearningCurve(t *testing.T) {
	a := newTestApp()
	g := testkit.NewSuiteGenerator(testkit.DefaultSuiteConfig())

	rec := postJSON(t, a, "/api/learning-curve", learningCurveRequest{
		SessionID:  "session-1",
		Technique:  "adaptive",
		Iterations: [][]eval.TestExecutionRecord{g.GenerateExecutions(), g.GenerateExecutions()},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var points []eval.LearningCurvePoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 2)
	assert.Equal(t, 1, points[0].Iteration)
}

func TestHandleLearningCurveLoad(t *testing.T) {
	history := &curveOnlyHistory{curves: make(map[core.TechniqueKey][]eval.LearningCurvePoint)}
	a := newTestAppWithHistory(history)
	g := testkit.NewSuiteGenerator(testkit.DefaultSuiteConfig())

	rec := postJSON(t, a, "/api/learning-curve", learningCurveRequest{
		SessionID:  "session-1",
		Technique:  "adaptive",
		Iterations: [][]eval.TestExecutionRecord{g.GenerateExecutions(), g.GenerateExecutions()},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	loaded := get(a, "/api/learning-curve/adaptive?session_id=session-1")
	require.Equal(t, http.StatusOK, loaded.Code)

	var points []eval.LearningCurvePoint
	require.NoError(t, json.Unmarshal(loaded.Body.Bytes(), &points))
	assert.Len(t, points, 2)

	missing := get(a, "/api/learning-curve/adaptive")
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestHandleLearningCurveLoad_NoRepository(t *testing.T) {
	rec := get(newTestApp(), "/api/learning-curve/adaptive?session_id=session-1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
