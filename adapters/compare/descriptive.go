package compare

import (
	"math"
	"sort"

	"tseval/domain/eval"

	"github.com/montanaflynn/stats"
)

// Describe computes the full descriptive summary of one sample set.
// Empty input yields the zero-valued summary, never an error.
func Describe(sample []float64) eval.DescriptiveStats {
	if len(sample) == 0 {
		return eval.DescriptiveStats{}
	}

	mean, _ := stats.Mean(sample)
	min, _ := stats.Min(sample)
	max, _ := stats.Max(sample)

	variance := 0.0
	stdDev := 0.0
	if len(sample) > 1 {
		variance, _ = stats.SampleVariance(sample)
		stdDev = math.Sqrt(variance)
	}

	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)

	return eval.DescriptiveStats{
		N:        len(sample),
		Mean:     mean,
		Median:   percentile(sorted, 50),
		Mode:     firstMode(sample),
		Variance: variance,
		StdDev:   stdDev,
		Min:      min,
		Max:      max,
		Q1:       q1,
		Q3:       q3,
		IQR:      q3 - q1,
		Skewness: skewness(sample, mean, stdDev),
		Kurtosis: kurtosis(sample, mean, stdDev),
	}
}

// percentile interpolates linearly between closest ranks of sorted data
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// firstMode returns the first value (in sample order) reaching the maximum
// frequency.
func firstMode(sample []float64) float64 {
	frequency := make(map[float64]int, len(sample))
	for _, v := range sample {
		frequency[v]++
	}

	mode := sample[0]
	maxFreq := 0
	for _, v := range sample {
		if frequency[v] > maxFreq {
			maxFreq = frequency[v]
			mode = v
		}
	}
	return mode
}

// skewness is the third standardized moment
func skewness(sample []float64, mean, stdDev float64) float64 {
	if len(sample) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(sample))
	sum := 0.0
	for _, x := range sample {
		d := (x - mean) / stdDev
		sum += d * d * d
	}
	return sum / n
}

// kurtosis is the fourth standardized moment (normal = 3, not excess)
func kurtosis(sample []float64, mean, stdDev float64) float64 {
	if len(sample) < 4 || stdDev == 0 {
		return 3.0
	}

	n := float64(len(sample))
	sum := 0.0
	for _, x := range sample {
		d := (x - mean) / stdDev
		sum += d * d * d * d
	}
	return sum / n
}
