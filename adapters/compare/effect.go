package compare

import (
	"math"

	"tseval/domain/eval"
)

// CohensD computes the pooled-standard-deviation effect size of A over B.
// Antisymmetric by construction: CohensD(a,b) == -CohensD(b,a).
func CohensD(a, b []float64) eval.EffectSize {
	da, db := Describe(a), Describe(b)
	n1, n2 := float64(da.N), float64(db.N)

	if n1+n2 < 3 {
		return eval.EffectSize{Magnitude: eval.EffectNegligible}
	}

	pooledSD := math.Sqrt(((n1-1)*da.Variance + (n2-1)*db.Variance) / (n1 + n2 - 2))
	if pooledSD == 0 {
		return eval.EffectSize{Magnitude: eval.EffectNegligible}
	}

	d := (da.Mean - db.Mean) / pooledSD
	return eval.EffectSize{CohensD: d, Magnitude: magnitudeOf(d)}
}

// magnitudeOf buckets |d| using the conventional Cohen thresholds plus a
// very-large tier at 1.3.
func magnitudeOf(d float64) eval.EffectMagnitude {
	abs := math.Abs(d)
	switch {
	case abs < 0.2:
		return eval.EffectNegligible
	case abs < 0.5:
		return eval.EffectSmall
	case abs < 0.8:
		return eval.EffectMedium
	case abs < 1.3:
		return eval.EffectLarge
	default:
		return eval.EffectVeryLarge
	}
}

// ConfidenceIntervalForDifference brackets mean(A)-mean(B) using the pooled
// standard error and a coarse t-critical lookup. Only 90/95/99% levels are
// tabulated; other levels resolve to 95%.
func ConfidenceIntervalForDifference(a, b []float64, level float64) eval.ConfidenceInterval {
	da, db := Describe(a), Describe(b)
	n1, n2 := float64(da.N), float64(db.N)

	if n1 == 0 || n2 == 0 {
		return eval.ConfidenceInterval{Level: level}
	}

	diff := da.Mean - db.Mean
	se := math.Sqrt(da.Variance/math.Max(1, n1) + db.Variance/math.Max(1, n2))
	df := int(n1 + n2 - 2)
	margin := tCritical(level, df) * se

	return eval.ConfidenceInterval{
		Lower: diff - margin,
		Upper: diff + margin,
		Level: level,
	}
}

// tCritical is the coarse two-sided critical-value table. Rows bucket the
// degrees of freedom; columns are the three supported levels.
func tCritical(level float64, df int) float64 {
	type row struct {
		maxDF         int
		c90, c95, c99 float64
	}
	table := []row{
		{5, 2.015, 2.571, 4.032},
		{10, 1.812, 2.228, 3.169},
		{20, 1.725, 2.086, 2.845},
		{30, 1.697, 2.042, 2.750},
		{math.MaxInt32, 1.645, 1.960, 2.576},
	}

	for _, r := range table {
		if df <= r.maxDF {
			switch {
			case level <= 0.90:
				return r.c90
			case level >= 0.99:
				return r.c99
			default:
				return r.c95
			}
		}
	}
	return 1.960
}
