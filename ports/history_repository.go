package ports

import (
	"context"

	"tseval/domain/core"
	"tseval/domain/eval"
)

// MetricHistoryRepository persists per-technique metric sample history and
// learning curves across process restarts. The core engines never call it;
// the orchestrating service loads history at startup and saves after each
// iteration, keeping persistence outside the pure computation path.
type MetricHistoryRepository interface {
	SaveSamples(ctx context.Context, sessionID core.SessionID, samples []eval.MetricSample) error
	LoadSamples(ctx context.Context, sessionID core.SessionID, technique core.TechniqueKey, metric eval.MetricKind, limit int) ([]eval.MetricSample, error)
	SaveLearningCurve(ctx context.Context, sessionID core.SessionID, technique core.TechniqueKey, points []eval.LearningCurvePoint) error
	LoadLearningCurve(ctx context.Context, sessionID core.SessionID, technique core.TechniqueKey) ([]eval.LearningCurvePoint, error)
}
