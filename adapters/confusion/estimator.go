package confusion

import (
	"math"

	"tseval/domain/eval"
)

// Estimator turns a confusion Source into the full derived metric set.
// Every denominator is guarded: degenerate matrices yield zero-valued
// metrics, never an error.
type Estimator struct{}

// NewEstimator creates a confusion matrix estimator
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate computes all derived classification metrics from the source counts
func (e *Estimator) Estimate(src Source) eval.ConfusionMetrics {
	tp, fp, tn, fn, total := src.Counts()

	m := eval.ConfusionMetrics{
		TruePositives:  tp,
		FalsePositives: fp,
		TrueNegatives:  tn,
		FalseNegatives: fn,
		TotalTests:     total,
		Exact:          src.Exact(),
	}

	m.Precision = safeRatio(float64(tp), float64(tp+fp))
	m.Recall = safeRatio(float64(tp), float64(tp+fn))
	m.F1Score = harmonicMean(m.Precision, m.Recall)
	m.Accuracy = safeRatio(float64(tp+tn), float64(total))
	m.Specificity = safeRatio(float64(tn), float64(tn+fp))
	m.NPV = safeRatio(float64(tn), float64(tn+fn))
	m.MCC = matthews(tp, fp, tn, fn)
	m.BalancedAccuracy = (m.Recall + m.Specificity) / 2
	m.Informedness = m.Recall + m.Specificity - 1
	m.Markedness = m.Precision + m.NPV - 1

	return m
}

// matthews computes the Matthews Correlation Coefficient, zero when any
// marginal is empty.
func matthews(tp, fp, tn, fn int) float64 {
	num := float64(tp)*float64(tn) - float64(fp)*float64(fn)
	den := math.Sqrt(float64(tp+fp) * float64(tp+fn) * float64(tn+fp) * float64(tn+fn))
	if den == 0 {
		return 0
	}
	return num / den
}

// harmonicMean is the F1 combination of precision and recall
func harmonicMean(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
