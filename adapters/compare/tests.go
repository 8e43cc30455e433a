package compare

import (
	"fmt"
	"math"
	"sort"

	"tseval/domain/eval"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// SelectAndRunTest picks the appropriate two-sample test and runs it.
// Decision procedure: Welch's t-test when both samples look normal and
// variances are comparable (ratio < 2), Mann-Whitney U otherwise.
func SelectAndRunTest(a, b []float64, alpha float64) eval.StatisticalTest {
	if len(a) < 2 || len(b) < 2 {
		return eval.StatisticalTest{
			Name:           "insufficient_data",
			PValue:         1.0,
			Interpretation: "samples too small for any two-sample test",
		}
	}

	if looksNormal(a) && looksNormal(b) && equalVariances(a, b) {
		return welchTTest(a, b, alpha)
	}
	return mannWhitneyU(a, b, alpha)
}

// looksNormal applies the skewness/kurtosis screen and, for sample sizes
// where it is defined (3..50), falls back to a simplified Shapiro-Wilk-like
// statistic: the squared correlation between the order statistics and
// standard normal quantiles. This is a deliberate approximation, kept in
// place of an exact test.
func looksNormal(sample []float64) bool {
	n := len(sample)
	if n < 3 {
		return false
	}

	d := Describe(sample)
	if d.StdDev == 0 {
		return false
	}
	if math.Abs(d.Skewness) < 2 && math.Abs(d.Kurtosis-3) < 2 {
		return true
	}

	if n >= 3 && n <= 50 {
		return shapiroWilkLike(sample) > 0.9
	}
	return false
}

// shapiroWilkLike computes the squared normal-quantile correlation of the
// ordered sample, a crude stand-in for the real Shapiro-Wilk W.
func shapiroWilkLike(sample []float64) float64 {
	n := len(sample)
	sorted := make([]float64, n)
	copy(sorted, sample)
	sort.Float64s(sorted)

	quantiles := make([]float64, n)
	for i := 0; i < n; i++ {
		// Blom plotting position
		p := (float64(i+1) - 0.375) / (float64(n) + 0.25)
		quantiles[i] = stdNormal.Quantile(p)
	}

	r := correlation(sorted, quantiles)
	return r * r
}

// equalVariances applies the coarse variance-ratio rule (< 2)
func equalVariances(a, b []float64) bool {
	varA := Describe(a).Variance
	varB := Describe(b).Variance

	if varA == 0 || varB == 0 {
		return varA == varB
	}
	ratio := varA / varB
	if ratio < 1 {
		ratio = 1 / ratio
	}
	return ratio < 2
}

// welchTTest runs Welch's unequal-variance t-test with Welch-Satterthwaite
// degrees of freedom. The p-value uses the documented coarse t CDF
// approximation, not an exact distribution.
func welchTTest(a, b []float64, alpha float64) eval.StatisticalTest {
	da, db := Describe(a), Describe(b)
	n1, n2 := float64(da.N), float64(db.N)

	seSq := da.Variance/n1 + db.Variance/n2
	if seSq == 0 {
		return eval.StatisticalTest{
			Name:           "welch_t",
			PValue:         1.0,
			Interpretation: "zero variance in both samples; no detectable difference",
		}
	}

	t := (da.Mean - db.Mean) / math.Sqrt(seSq)
	df := seSq * seSq / (math.Pow(da.Variance/n1, 2)/(n1-1) + math.Pow(db.Variance/n2, 2)/(n2-1))
	p := 2 * (1 - tCDFApproximation(math.Abs(t), df))
	p = clampP(p)

	test := eval.StatisticalTest{
		Name:          "welch_t",
		Statistic:     t,
		PValue:        p,
		IsSignificant: p < alpha,
	}
	test.Interpretation = interpret(test, alpha, "mean difference")
	return test
}

// mannWhitneyU runs the rank-sum test with the normal approximation for
// the U statistic, including the average-rank treatment of ties.
func mannWhitneyU(a, b []float64, alpha float64) eval.StatisticalTest {
	n1, n2 := float64(len(a)), float64(len(b))
	ranks := rankAll(a, b)

	r1 := 0.0
	for i := range a {
		r1 += ranks[i]
	}

	u1 := r1 - n1*(n1+1)/2
	u2 := n1*n2 - u1
	u := math.Min(u1, u2)

	mu := n1 * n2 / 2
	sigma := math.Sqrt(n1 * n2 * (n1 + n2 + 1) / 12)
	if sigma == 0 {
		return eval.StatisticalTest{
			Name:           "mann_whitney_u",
			Statistic:      u,
			PValue:         1.0,
			Interpretation: "degenerate samples; rank test not informative",
		}
	}

	z := (u - mu) / sigma
	p := 2 * stdNormal.CDF(-math.Abs(z))
	p = clampP(p)

	test := eval.StatisticalTest{
		Name:          "mann_whitney_u",
		Statistic:     u,
		PValue:        p,
		IsSignificant: p < alpha,
	}
	test.Interpretation = interpret(test, alpha, "distribution shift")
	return test
}

// tCDFApproximation is the documented coarse t CDF: normal beyond 30 df,
// a linear small-t approximation and a tail heuristic below.
func tCDFApproximation(t, df float64) float64 {
	if df > 30 {
		return stdNormal.CDF(t)
	}
	if math.Abs(t) < 1.0 {
		return 0.5 + t/(2*math.Sqrt(df))
	}
	if t > 0 {
		return 1.0 - 0.5/(1.0+t*t/df)
	}
	return 0.5 / (1.0 + t*t/df)
}

// rankAll assigns average ranks across the pooled samples; index i < len(a)
// refers to a[i], the rest to b.
func rankAll(a, b []float64) []float64 {
	type indexed struct {
		value float64
		pos   int
	}

	pooled := make([]indexed, 0, len(a)+len(b))
	for i, v := range a {
		pooled = append(pooled, indexed{v, i})
	}
	for i, v := range b {
		pooled = append(pooled, indexed{v, len(a) + i})
	}
	sort.Slice(pooled, func(i, j int) bool { return pooled[i].value < pooled[j].value })

	ranks := make([]float64, len(pooled))
	i := 0
	for i < len(pooled) {
		j := i
		for j+1 < len(pooled) && pooled[j+1].value == pooled[i].value {
			j++
		}
		// Ties share the average of their rank span
		avg := (float64(i+1) + float64(j+1)) / 2
		for k := i; k <= j; k++ {
			ranks[pooled[k].pos] = avg
		}
		i = j + 1
	}
	return ranks
}

func correlation(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}

	meanX, meanY := 0.0, 0.0
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	num, denX, denY := 0.0, 0.0, 0.0
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		num += dx * dy
		denX += dx * dx
		denY += dy * dy
	}
	if denX == 0 || denY == 0 {
		return 0
	}
	return num / math.Sqrt(denX*denY)
}

func interpret(test eval.StatisticalTest, alpha float64, subject string) string {
	if test.IsSignificant {
		return fmt.Sprintf("significant %s (%s, p=%.4f < alpha=%.2f)", subject, test.Name, test.PValue, alpha)
	}
	return fmt.Sprintf("no significant %s (%s, p=%.4f >= alpha=%.2f)", subject, test.Name, test.PValue, alpha)
}

func clampP(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
