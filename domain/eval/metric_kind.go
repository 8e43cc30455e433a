package eval

// MetricKind is the exhaustive enumeration of metrics the engines produce.
// Downstream code switches on the kind instead of looking fields up by
// string name, so adding a kind without an accessor fails to compile the
// exhaustiveness test rather than failing at runtime.
type MetricKind string

const (
	MetricAPFD           MetricKind = "apfd"
	MetricAccuracy       MetricKind = "accuracy"
	MetricPrecision      MetricKind = "precision"
	MetricRecall         MetricKind = "recall"
	MetricF1             MetricKind = "f1"
	MetricMCC            MetricKind = "mcc"
	MetricReductionRatio MetricKind = "reduction_ratio"
	MetricExecutionTime  MetricKind = "execution_time_ms"
)

// AllMetricKinds lists every kind in stable order
func AllMetricKinds() []MetricKind {
	return []MetricKind{
		MetricAPFD,
		MetricAccuracy,
		MetricPrecision,
		MetricRecall,
		MetricF1,
		MetricMCC,
		MetricReductionRatio,
		MetricExecutionTime,
	}
}

// Valid reports whether k is a known metric kind
func (k MetricKind) Valid() bool {
	switch k {
	case MetricAPFD, MetricAccuracy, MetricPrecision, MetricRecall,
		MetricF1, MetricMCC, MetricReductionRatio, MetricExecutionTime:
		return true
	}
	return false
}

// String returns the wire name of the kind
func (k MetricKind) String() string { return string(k) }

// IterationMetrics is the flat per-iteration metric record the accessors
// read from. One accessor per kind keeps extraction compile-time exhaustive.
type IterationMetrics struct {
	APFD            float64 `json:"apfd"`
	Accuracy        float64 `json:"accuracy"`
	Precision       float64 `json:"precision"`
	Recall          float64 `json:"recall"`
	F1Score         float64 `json:"f1_score"`
	MCC             float64 `json:"mcc"`
	ReductionRatio  float64 `json:"reduction_ratio"`
	ExecutionTimeMs float64 `json:"execution_time_ms"`
}

// Value extracts the metric of the given kind. Unknown kinds yield 0 and
// false; callers that validated the kind can ignore the flag.
func (m IterationMetrics) Value(k MetricKind) (float64, bool) {
	switch k {
	case MetricAPFD:
		return m.APFD, true
	case MetricAccuracy:
		return m.Accuracy, true
	case MetricPrecision:
		return m.Precision, true
	case MetricRecall:
		return m.Recall, true
	case MetricF1:
		return m.F1Score, true
	case MetricMCC:
		return m.MCC, true
	case MetricReductionRatio:
		return m.ReductionRatio, true
	case MetricExecutionTime:
		return m.ExecutionTimeMs, true
	}
	return 0, false
}
