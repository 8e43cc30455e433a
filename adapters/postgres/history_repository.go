package postgres

import (
	"context"

	"tseval/domain/core"
	"tseval/domain/eval"
	"tseval/internal/errors"
	"tseval/ports"

	"github.com/jmoiron/sqlx"
)

// HistoryRepositoryImpl implements MetricHistoryRepository for PostgreSQL
type HistoryRepositoryImpl struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new PostgreSQL metric history repository
func NewHistoryRepository(db *sqlx.DB) ports.MetricHistoryRepository {
	return &HistoryRepositoryImpl{db: db}
}

// SaveSamples appends one batch of metric samples for a session
func (r *HistoryRepositoryImpl) SaveSamples(ctx context.Context, sessionID core.SessionID, samples []eval.MetricSample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin metric sample transaction")
	}
	defer tx.Rollback()

	for _, s := range samples {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO metric_samples (session_id, technique, metric, iteration, value, recorded_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, string(sessionID), string(s.Technique), string(s.Metric), s.Iteration, s.Value)
		if err != nil {
			return errors.Wrap(err, "failed to insert metric sample")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit metric samples")
	}
	return nil
}

// LoadSamples returns the most recent samples for one technique and metric
// in iteration order. A limit of zero loads everything.
func (r *HistoryRepositoryImpl) LoadSamples(ctx context.Context, sessionID core.SessionID, technique core.TechniqueKey, metric eval.MetricKind, limit int) ([]eval.MetricSample, error) {
	query := `
		SELECT technique, metric, iteration, value
		FROM metric_samples
		WHERE session_id = $1 AND technique = $2 AND metric = $3
		ORDER BY iteration DESC
	`
	args := []interface{}{string(sessionID), string(technique), string(metric)}
	if limit > 0 {
		query += " LIMIT $4"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load metric samples")
	}
	defer rows.Close()

	var samples []eval.MetricSample
	for rows.Next() {
		var s eval.MetricSample
		if err := rows.Scan(&s.Technique, &s.Metric, &s.Iteration, &s.Value); err != nil {
			return nil, errors.Wrap(err, "failed to scan metric sample")
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read metric samples")
	}

	// Restore ascending iteration order after the DESC window
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, nil
}

// SaveLearningCurve replaces the stored curve for one technique
func (r *HistoryRepositoryImpl) SaveLearningCurve(ctx context.Context, sessionID core.SessionID, technique core.TechniqueKey, points []eval.LearningCurvePoint) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin learning curve transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM learning_curve_points
		WHERE session_id = $1 AND technique = $2
	`, string(sessionID), string(technique))
	if err != nil {
		return errors.Wrap(err, "failed to clear learning curve")
	}

	for _, p := range points {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO learning_curve_points (session_id, technique, iteration, apfd, accuracy, reduction_ratio, execution_time_ms, adaptation_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, string(sessionID), string(technique), p.Iteration, p.APFD, p.Accuracy, p.ReductionRatio, p.ExecutionTimeMs, p.AdaptationCount)
		if err != nil {
			return errors.Wrap(err, "failed to insert learning curve point")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit learning curve")
	}
	return nil
}

// LoadLearningCurve returns the stored curve in iteration order
func (r *HistoryRepositoryImpl) LoadLearningCurve(ctx context.Context, sessionID core.SessionID, technique core.TechniqueKey) ([]eval.LearningCurvePoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT iteration, apfd, accuracy, reduction_ratio, execution_time_ms, adaptation_count
		FROM learning_curve_points
		WHERE session_id = $1 AND technique = $2
		ORDER BY iteration ASC
	`, string(sessionID), string(technique))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load learning curve")
	}
	defer rows.Close()

	var points []eval.LearningCurvePoint
	for rows.Next() {
		var p eval.LearningCurvePoint
		if err := rows.Scan(&p.Iteration, &p.APFD, &p.Accuracy, &p.ReductionRatio, &p.ExecutionTimeMs, &p.AdaptationCount); err != nil {
			return nil, errors.Wrap(err, "failed to scan learning curve point")
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
