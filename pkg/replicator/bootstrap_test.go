package replicator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statkit/resample/pkg/estimator"
	"github.com/statkit/resample/pkg/summary"
)

// The percentile interval from bootstrapping the mean of 100 standard-normal
// draws should land close to the analytic mean ± 1.96*sd/sqrt(n) interval.
func TestBootstrapMeanMatchesNormalTheory(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	source := make([]float64, 100)
	for i := range source {
		source[i] = rng.NormFloat64()
	}

	reps, err := Run(rng, 1000, iidConfig(source), estimator.Mean)
	require.NoError(t, err)
	require.Len(t, reps, 1000)

	lo, hi, err := summary.Interval(reps, 0.95)
	require.NoError(t, err)

	mean, err := estimator.Mean(source)
	require.NoError(t, err)
	sd, err := estimator.StdDev(source)
	require.NoError(t, err)
	normLo, normHi, err := summary.NormalInterval(mean, sd, len(source), 0.95)
	require.NoError(t, err)

	assert.InDelta(t, normLo, lo, 0.05)
	assert.InDelta(t, normHi, hi, 0.05)
	assert.Less(t, lo, hi)
}

// Over many repeated trials the 95% percentile interval should contain the
// true mean roughly 95% of the time. This is a statistical property, so the
// seed is fixed and the acceptance band is wide.
func TestIntervalCoverage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping coverage simulation in short mode")
	}

	rng := rand.New(rand.NewSource(12))

	const (
		trials = 300
		n      = 60
		B      = 300
	)
	hits := 0
	source := make([]float64, n)
	for trial := 0; trial < trials; trial++ {
		for i := range source {
			source[i] = rng.NormFloat64() // true mean 0
		}
		reps, err := Run(rng, B, iidConfig(source), estimator.Mean)
		require.NoError(t, err)
		lo, hi, err := summary.Interval(reps, 0.95)
		require.NoError(t, err)
		if lo <= 0 && 0 <= hi {
			hits++
		}
	}

	coverage := float64(hits) / float64(trials)
	assert.Greater(t, coverage, 0.87)
	assert.Less(t, coverage, 0.995)
}
