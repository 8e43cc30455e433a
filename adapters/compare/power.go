package compare

import (
	"math"

	"tseval/domain/eval"
)

// targetPower is the conventional adequacy threshold; below it the
// analysis also reports the sample size needed to reach it.
const targetPower = 0.8

// PowerAnalysis estimates the power of a two-sample comparison at the
// given per-group size via the normal approximation. When power falls
// short of 0.8, RequiredSample carries the per-group n that would reach it
// for the same effect size and alpha.
func PowerAnalysis(effectSize float64, n int, alpha float64) eval.PowerAnalysis {
	result := eval.PowerAnalysis{
		EffectSize: effectSize,
		SampleSize: n,
		Alpha:      alpha,
	}
	if n < 2 || effectSize == 0 {
		return result
	}

	zAlpha := stdNormal.Quantile(1 - alpha/2)
	ncp := math.Abs(effectSize) * math.Sqrt(float64(n)/2)
	result.Power = stdNormal.CDF(ncp - zAlpha)

	if result.Power < targetPower {
		zBeta := stdNormal.Quantile(targetPower)
		required := 2 * math.Pow((zAlpha+zBeta)/math.Abs(effectSize), 2)
		result.RequiredSample = int(math.Ceil(required))
	}
	return result
}
