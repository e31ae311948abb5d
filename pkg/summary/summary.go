package summary

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
)

var (
	ErrInsufficientReplicates = errors.New("insufficient replicates")
	ErrInvalidParameter       = errors.New("invalid parameter")
)

// Summary describes the empirical distribution of a finalized replicate set.
type Summary struct {
	Mean      float64   `json:"mean"`
	StdError  float64   `json:"std_error"`
	Probs     []float64 `json:"probs"`
	Quantiles []float64 `json:"quantiles"`
}

// Quantiles returns the empirical quantiles of the replicate values at the
// given probability levels. The quantile at probability p is taken by linear
// interpolation between the order statistics bracketing rank p*(B-1), the
// same convention as R's default type-7. Summarization never mutates its
// input and is idempotent: the same replicates and probs give bit-identical
// output.
func Quantiles(replicates, probs []float64) ([]float64, error) {
	if len(replicates) == 0 {
		return nil, ErrInsufficientReplicates
	}
	for _, p := range probs {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("%w: probability %v outside [0,1]", ErrInvalidParameter, p)
		}
	}
	sorted := append([]float64(nil), replicates...)
	sort.Float64s(sorted)
	out := make([]float64, len(probs))
	for i, p := range probs {
		out[i] = quantileSorted(sorted, p)
	}
	return out, nil
}

func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// StdError returns the sample standard deviation (n-1 denominator) of the
// replicate values, the bootstrap estimate of the estimator's standard error.
func StdError(replicates []float64) (float64, error) {
	if len(replicates) == 0 {
		return 0, ErrInsufficientReplicates
	}
	if len(replicates) == 1 {
		return 0, nil
	}
	mean := 0.0
	for _, v := range replicates {
		mean += v
	}
	mean /= float64(len(replicates))
	variance := 0.0
	for _, v := range replicates {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(replicates) - 1)
	return math.Sqrt(variance), nil
}

// Interval returns the two-sided percentile interval at the given confidence
// level, e.g. 0.95 yields the 0.025 and 0.975 empirical quantiles.
func Interval(replicates []float64, confidence float64) (float64, float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, 0, fmt.Errorf("%w: confidence %v outside (0,1)", ErrInvalidParameter, confidence)
	}
	alpha := 1 - confidence
	qs, err := Quantiles(replicates, []float64{alpha / 2, 1 - alpha/2})
	if err != nil {
		return 0, 0, err
	}
	return qs[0], qs[1], nil
}

// Summarize computes the mean, bootstrap standard error and requested
// quantiles of a finalized replicate set in one pass.
func Summarize(replicates, probs []float64) (*Summary, error) {
	qs, err := Quantiles(replicates, probs)
	if err != nil {
		return nil, err
	}
	se, err := StdError(replicates)
	if err != nil {
		return nil, err
	}
	mean := 0.0
	for _, v := range replicates {
		mean += v
	}
	mean /= float64(len(replicates))
	return &Summary{
		Mean:      mean,
		StdError:  se,
		Probs:     append([]float64(nil), probs...),
		Quantiles: qs,
	}, nil
}

// NormalInterval returns the analytic mean ± z*sd/sqrt(n) interval for
// comparison against the bootstrap percentile interval. The critical value
// comes from the standard normal inverse CDF, so any confidence level in
// (0,1) works, not just the common table entries.
func NormalInterval(mean, stdDev float64, n int, confidence float64) (float64, float64, error) {
	if n < 1 {
		return 0, 0, fmt.Errorf("%w: sample size %d, need at least 1", ErrInvalidParameter, n)
	}
	if stdDev < 0 {
		return 0, 0, fmt.Errorf("%w: negative std dev %v", ErrInvalidParameter, stdDev)
	}
	if confidence <= 0 || confidence >= 1 {
		return 0, 0, fmt.Errorf("%w: confidence %v outside (0,1)", ErrInvalidParameter, confidence)
	}
	z := stats.StdNormal.InvCDF(1 - (1-confidence)/2)
	margin := z * stdDev / math.Sqrt(float64(n))
	return mean - margin, mean + margin, nil
}
