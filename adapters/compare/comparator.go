package compare

import (
	"fmt"
	"sync"

	"tseval/domain/core"
	"tseval/domain/eval"
)

// DefaultRetention caps per-(technique,metric) history length
const DefaultRetention = 50

// Comparator accumulates per-iteration metric samples per technique and
// compares techniques statistically. The bounded history buffer is the
// only mutable state; appends are serialized by a mutex and reads hand
// out copies so concurrent computation never aliases the buffer.
type Comparator struct {
	alpha      float64
	confidence float64
	retention  int

	mu      sync.RWMutex
	history map[historyKey][]float64
}

type historyKey struct {
	technique core.TechniqueKey
	metric    eval.MetricKind
}

// ComparatorOption configures a Comparator
type ComparatorOption func(*Comparator)

// WithAlpha overrides the significance level
func WithAlpha(alpha float64) ComparatorOption {
	return func(c *Comparator) {
		if alpha > 0 && alpha < 1 {
			c.alpha = alpha
		}
	}
}

// WithConfidenceLevel overrides the interval confidence level
func WithConfidenceLevel(level float64) ComparatorOption {
	return func(c *Comparator) {
		if level > 0 && level < 1 {
			c.confidence = level
		}
	}
}

// WithRetention overrides the history retention window
func WithRetention(n int) ComparatorOption {
	return func(c *Comparator) {
		if n > 0 {
			c.retention = n
		}
	}
}

// NewComparator creates a comparator with alpha 0.05, 95% intervals and a
// 50-sample retention window.
func NewComparator(opts ...ComparatorOption) *Comparator {
	c := &Comparator{
		alpha:      0.05,
		confidence: 0.95,
		retention:  DefaultRetention,
		history:    make(map[historyKey][]float64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddSample appends one sample to its technique/metric history, evicting
// the oldest value once the retention window is full.
func (c *Comparator) AddSample(sample eval.MetricSample) {
	key := historyKey{sample.Technique, sample.Metric}

	c.mu.Lock()
	defer c.mu.Unlock()

	buf := append(c.history[key], sample.Value)
	if len(buf) > c.retention {
		buf = buf[len(buf)-c.retention:]
	}
	c.history[key] = buf
}

// Samples returns a copy of the stored history for one technique/metric
func (c *Comparator) Samples(technique core.TechniqueKey, metric eval.MetricKind) []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	buf := c.history[historyKey{technique, metric}]
	out := make([]float64, len(buf))
	copy(out, buf)
	return out
}

// Techniques lists every technique with stored history for the metric
func (c *Comparator) Techniques(metric eval.MetricKind) []core.TechniqueKey {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var keys []core.TechniqueKey
	for key := range c.history {
		if key.metric == metric {
			keys = append(keys, key.technique)
		}
	}
	return keys
}

// Compare runs the full comparison of two techniques on one metric from
// their accumulated histories.
func (c *Comparator) Compare(a, b core.TechniqueKey, metric eval.MetricKind) eval.ComparisonResult {
	return c.CompareSamples(a, b, metric, c.Samples(a, metric), c.Samples(b, metric))
}

// CompareSamples compares two explicit sample sets under the given labels
func (c *Comparator) CompareSamples(a, b core.TechniqueKey, metric eval.MetricKind, samplesA, samplesB []float64) eval.ComparisonResult {
	result := eval.ComparisonResult{
		TechniqueA: a,
		TechniqueB: b,
		Metric:     metric,
		StatsA:     Describe(samplesA),
		StatsB:     Describe(samplesB),
		Test:       SelectAndRunTest(samplesA, samplesB, c.alpha),
		Effect:     CohensD(samplesA, samplesB),
		Confidence: ConfidenceIntervalForDifference(samplesA, samplesB, c.confidence),
	}
	result.Verdict = verdict(result)
	return result
}

// verdict renders the deterministic textual conclusion of one comparison
func verdict(r eval.ComparisonResult) string {
	winner := r.TechniqueA
	loser := r.TechniqueB
	if r.StatsB.Mean > r.StatsA.Mean {
		winner, loser = loser, winner
	}

	if !r.Test.IsSignificant {
		return fmt.Sprintf("no significant difference between %s and %s on %s (p=%.4f)",
			r.TechniqueA, r.TechniqueB, r.Metric, r.Test.PValue)
	}
	return fmt.Sprintf("%s outperforms %s on %s (%s effect, d=%.3f, p=%.4f)",
		winner, loser, r.Metric, r.Effect.Magnitude, r.Effect.CohensD, r.Test.PValue)
}

// Alpha exposes the configured significance level
func (c *Comparator) Alpha() float64 { return c.alpha }
