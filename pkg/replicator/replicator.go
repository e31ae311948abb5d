package replicator

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/statkit/resample/pkg/estimator"
	"github.com/statkit/resample/pkg/sampler"
)

var ErrInvalidReplicates = errors.New("replicate count must be at least 1")

// Run executes B independent draw-then-estimate iterations and returns the
// B estimator values in iteration order. All iterations share cfg, so every
// replicate is generated under identical sampling configuration, and they
// consume a single RNG stream sequentially: the same seed replays the same
// replicate set bit for bit.
//
// An estimator failure aborts the whole run; the error surfaces to the
// caller with the replicate index attached and is never retried.
func Run(rng *rand.Rand, B int, cfg sampler.Config, est estimator.Func) ([]float64, error) {
	if B < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidReplicates, B)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	out := make([]float64, B)
	for i := 0; i < B; i++ {
		s, err := sampler.Draw(rng, cfg)
		if err != nil {
			return nil, err
		}
		v, err := est(s)
		if err != nil {
			return nil, fmt.Errorf("estimator failed on replicate %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// RunPaired is Run for paired datasets: each replicate resamples len(src)
// whole (x, y) pairs with replacement and applies est to the two columns.
func RunPaired(rng *rand.Rand, B int, src []sampler.Pair, est estimator.PairedFunc) ([]float64, error) {
	if B < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidReplicates, B)
	}
	if len(src) == 0 {
		return nil, fmt.Errorf("%w: paired run needs a non-empty source", sampler.ErrInvalidParameter)
	}
	out := make([]float64, B)
	xs := make([]float64, len(src))
	ys := make([]float64, len(src))
	for i := 0; i < B; i++ {
		pairs, err := sampler.DrawPairs(rng, src, len(src))
		if err != nil {
			return nil, err
		}
		for j, p := range pairs {
			xs[j] = p.X
			ys[j] = p.Y
		}
		v, err := est(xs, ys)
		if err != nil {
			return nil, fmt.Errorf("estimator failed on replicate %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
