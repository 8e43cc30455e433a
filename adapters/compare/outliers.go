package compare

// Outlier is one value outside the IQR fences, with its sample index
type Outlier struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// DetectOutliers applies the 1.5x IQR fence rule and returns every value
// outside the fences with its position in the original sample.
func DetectOutliers(sample []float64) []Outlier {
	if len(sample) < 4 {
		return nil
	}

	d := Describe(sample)
	lower := d.Q1 - 1.5*d.IQR
	upper := d.Q3 + 1.5*d.IQR

	var outliers []Outlier
	for i, v := range sample {
		if v < lower || v > upper {
			outliers = append(outliers, Outlier{Index: i, Value: v})
		}
	}
	return outliers
}
