package stats

import (
	"errors"
	"fmt"
	"math"

	"chartsvc/internal/dataset"
	apperrors "chartsvc/internal/errors"
)

// DefaultBuckets is used when a bucket count of zero is requested.
const DefaultBuckets = 10

// Bucket is a half-open interval [Lower, Upper) except for the last bucket,
// whose upper bound is inclusive.
type Bucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// HistogramBuckets partitions the non-missing values of a numeric column into
// equal-width buckets spanning [min, max].
func HistogramBuckets(t *dataset.Table, column string, bucketCount int) ([]Bucket, error) {
	values, err := t.Numbers(column)
	if err != nil {
		return nil, err
	}
	buckets, err := Buckets(values, bucketCount)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyDataset) {
			return nil, apperrors.NewEmptyDatasetError(fmt.Sprintf("column %q has no values to plot", column)).
				WithContext("column", column)
		}
		return nil, err
	}
	return buckets, nil
}

// Buckets partitions values, ignoring NaN. A constant series is widened to
// [v-0.5, v+0.5], or by a relative margin where 0.5 is below float precision.
func Buckets(values []float64, bucketCount int) ([]Bucket, error) {
	if bucketCount < 0 {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("bucket count must not be negative, got %d", bucketCount))
	}
	if bucketCount == 0 {
		bucketCount = DefaultBuckets
	}

	lo, hi, n := Range(values)
	if n == 0 {
		return nil, apperrors.NewEmptyDatasetError("no values to plot")
	}
	lo, hi = widen(lo, hi)

	width := (hi - lo) / float64(bucketCount)
	buckets := make([]Bucket, bucketCount)
	for i := range buckets {
		buckets[i].Lower = lo + float64(i)*width
		buckets[i].Upper = lo + float64(i+1)*width
	}
	buckets[bucketCount-1].Upper = hi

	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		i := int((v - lo) / width)
		if i >= bucketCount {
			i = bucketCount - 1
		}
		if i < 0 {
			i = 0
		}
		buckets[i].Count++
	}
	return buckets, nil
}

// minRelativeSpan keeps bucket edges distinguishable at large magnitudes.
const minRelativeSpan = 1e-9

// widen stretches a degenerate range around its midpoint so that every
// bucket has Lower < Upper.
func widen(lo, hi float64) (float64, float64) {
	mid := lo + (hi-lo)/2
	margin := math.Abs(mid) * minRelativeSpan
	if lo != hi && hi-lo >= margin {
		return lo, hi
	}
	d := math.Max(0.5, margin)
	return mid - d, mid + d
}

// Range returns the min and max of the non-NaN values and how many there are.
func Range(values []float64) (lo, hi float64, n int) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		n++
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if n == 0 {
		return math.NaN(), math.NaN(), 0
	}
	return lo, hi, n
}
