package stats

import (
	"encoding/json"
	"math"

	"chartsvc/internal/dataset"
	apperrors "chartsvc/internal/errors"
)

// Summary holds sample statistics of a numeric column. Undefined values are NaN.
type Summary struct {
	Column   string
	Count    int
	Missing  int
	Mean     float64
	Std      float64
	Min      float64
	Max      float64
	Skewness float64
	Kurtosis float64
}

// MarshalJSON writes NaN fields as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column   string   `json:"column"`
		Count    int      `json:"count"`
		Missing  int      `json:"missing"`
		Mean     *float64 `json:"mean"`
		Std      *float64 `json:"std"`
		Min      *float64 `json:"min"`
		Max      *float64 `json:"max"`
		Skewness *float64 `json:"skewness"`
		Kurtosis *float64 `json:"kurtosis"`
	}{
		Column:   s.Column,
		Count:    s.Count,
		Missing:  s.Missing,
		Mean:     nullable(s.Mean),
		Std:      nullable(s.Std),
		Min:      nullable(s.Min),
		Max:      nullable(s.Max),
		Skewness: nullable(s.Skewness),
		Kurtosis: nullable(s.Kurtosis),
	})
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Describe summarizes a numeric column.
func Describe(t *dataset.Table, column string) (Summary, error) {
	values, err := t.Numbers(column)
	if err != nil {
		return Summary{}, err
	}
	s := Summarize(values)
	s.Column = column
	if s.Count == 0 {
		return s, apperrors.NewEmptyDatasetError("column \"" + column + "\" has no values").
			WithContext("column", column)
	}
	return s, nil
}

// Summarize computes sample statistics over the non-NaN values.
func Summarize(values []float64) Summary {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}

	s := Summary{
		Count:    len(present),
		Missing:  len(values) - len(present),
		Mean:     math.NaN(),
		Std:      math.NaN(),
		Min:      math.NaN(),
		Max:      math.NaN(),
		Skewness: math.NaN(),
		Kurtosis: math.NaN(),
	}
	if s.Count == 0 {
		return s
	}

	s.Min, s.Max, _ = Range(present)
	s.Mean = mean(present)
	m2, m3, m4 := centralSums(present, s.Mean)
	n := float64(s.Count)

	if s.Count >= 2 {
		s.Std = math.Sqrt(m2 / (n - 1))
	}
	if m2 == 0 {
		return s
	}
	s.Skewness = skewness(n, m2, m3)
	s.Kurtosis = kurtosis(n, m2, m4)
	return s
}

// Skewness is the adjusted Fisher-Pearson sample skewness of the non-NaN values.
func Skewness(values []float64) float64 { return Summarize(values).Skewness }

// Kurtosis is the bias-corrected sample excess kurtosis of the non-NaN values.
func Kurtosis(values []float64) float64 { return Summarize(values).Kurtosis }

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// centralSums returns the sums of squared, cubed and fourth-power deviations.
func centralSums(values []float64, mu float64) (m2, m3, m4 float64) {
	for _, v := range values {
		d := v - mu
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	return m2, m3, m4
}

func skewness(n, m2, m3 float64) float64 {
	if n < 3 {
		return math.NaN()
	}
	return n * math.Sqrt(n-1) / (n - 2) * m3 / math.Pow(m2, 1.5)
}

func kurtosis(n, m2, m4 float64) float64 {
	if n < 4 {
		return math.NaN()
	}
	adj := 3 * (n - 1) * (n - 1) / ((n - 2) * (n - 3))
	numer := n * (n + 1) * (n - 1) * m4
	denom := (n - 2) * (n - 3) * m2 * m2
	return numer/denom - adj
}
