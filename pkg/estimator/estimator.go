package estimator

import (
	"errors"
	"math"
	"sort"
)

// Func maps one sample to a scalar statistic. Implementations must be
// deterministic: the replicator never retries a failed estimator because
// rerunning a pure function on the same sample cannot change the outcome.
type Func func(sample []float64) (float64, error)

// PairedFunc maps one paired sample (xs[i] goes with ys[i]) to a scalar.
type PairedFunc func(xs, ys []float64) (float64, error)

var ErrEmptySample = errors.New("empty sample")

// Mean returns the arithmetic mean.
func Mean(sample []float64) (float64, error) {
	if len(sample) == 0 {
		return 0, ErrEmptySample
	}
	sum := 0.0
	for _, v := range sample {
		sum += v
	}
	return sum / float64(len(sample)), nil
}

// Sum returns the total of the sample.
func Sum(sample []float64) (float64, error) {
	if len(sample) == 0 {
		return 0, ErrEmptySample
	}
	sum := 0.0
	for _, v := range sample {
		sum += v
	}
	return sum, nil
}

// StdDev returns the sample standard deviation (n-1 denominator).
func StdDev(sample []float64) (float64, error) {
	if len(sample) == 0 {
		return 0, ErrEmptySample
	}
	if len(sample) == 1 {
		return 0, nil
	}
	mean, _ := Mean(sample)
	variance := 0.0
	for _, v := range sample {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(sample) - 1)
	return math.Sqrt(variance), nil
}

// Median returns the middle order statistic, averaging the two central
// values for even-length samples.
func Median(sample []float64) (float64, error) {
	if len(sample) == 0 {
		return 0, ErrEmptySample
	}
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], nil
	}
	return (sorted[mid-1] + sorted[mid]) / 2, nil
}

// Slope returns the least-squares regression slope of y on x.
func Slope(xs, ys []float64) (float64, error) {
	if len(xs) == 0 || len(ys) == 0 {
		return 0, ErrEmptySample
	}
	if len(xs) != len(ys) {
		return 0, errors.New("paired sample length mismatch")
	}
	mx, _ := Mean(xs)
	my, _ := Mean(ys)
	var sxy, sxx float64
	for i := range xs {
		sxy += (xs[i] - mx) * (ys[i] - my)
		sxx += (xs[i] - mx) * (xs[i] - mx)
	}
	if sxx == 0 {
		return 0, errors.New("degenerate x values, slope undefined")
	}
	return sxy / sxx, nil
}

var registry = map[string]Func{
	"mean":   Mean,
	"sum":    Sum,
	"stddev": StdDev,
	"median": Median,
}

// ByName resolves a stock estimator for the HTTP surface. Library callers
// pass their own Func directly and never go through here.
func ByName(name string) (Func, bool) {
	f, ok := registry[name]
	return f, ok
}
