package stats

import (
	"errors"
	"math"
)

// ErrDegenerateSample is returned when a density cannot be estimated because
// there are fewer than two values or they have zero variance.
var ErrDegenerateSample = errors.New("sample too small or constant for density estimate")

// KDE is a Gaussian kernel density estimate.
type KDE struct {
	samples   []float64
	bandwidth float64
}

// NewKDE fits a Gaussian KDE with Scott's bandwidth, sigma * n^(-1/5).
func NewKDE(values []float64) (*KDE, error) {
	samples := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			samples = append(samples, v)
		}
	}
	s := Summarize(samples)
	if s.Count < 2 || s.Std == 0 || math.IsNaN(s.Std) {
		return nil, ErrDegenerateSample
	}
	return &KDE{
		samples:   samples,
		bandwidth: s.Std * math.Pow(float64(s.Count), -0.2),
	}, nil
}

// Bandwidth returns the kernel standard deviation.
func (k *KDE) Bandwidth() float64 { return k.bandwidth }

// At evaluates the density at x.
func (k *KDE) At(x float64) float64 {
	norm := 1 / (k.bandwidth * math.Sqrt(2*math.Pi) * float64(len(k.samples)))
	var sum float64
	for _, s := range k.samples {
		z := (x - s) / k.bandwidth
		sum += math.Exp(-0.5 * z * z)
	}
	return sum * norm
}

// Evaluate samples the density at points evenly spaced over [lo, hi].
func (k *KDE) Evaluate(lo, hi float64, points int) (xs, ys []float64) {
	if points < 2 {
		points = 2
	}
	xs = make([]float64, points)
	ys = make([]float64, points)
	step := (hi - lo) / float64(points-1)
	for i := range xs {
		xs[i] = lo + float64(i)*step
		ys[i] = k.At(xs[i])
	}
	return xs, ys
}

// Density estimates the density of values at points evenly spaced over their range.
func Density(values []float64, points int) (xs, ys []float64, err error) {
	k, err := NewKDE(values)
	if err != nil {
		return nil, nil, err
	}
	lo, hi, _ := Range(k.samples)
	xs, ys = k.Evaluate(lo, hi, points)
	return xs, ys, nil
}
