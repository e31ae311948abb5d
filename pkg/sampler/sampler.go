package sampler

import (
	"errors"
	"fmt"
	"math/rand"
)

// Mode selects the sampling strategy.
type Mode string

const (
	// ModeDistribution draws fresh i.i.d. values from a parametric distribution.
	ModeDistribution Mode = "distribution"
	// ModeEmpirical resamples with replacement from a source sample.
	ModeEmpirical Mode = "empirical"
	// ModeCorrelated draws serially dependent uniforms with coefficient rho.
	ModeCorrelated Mode = "correlated"
)

// Distribution names accepted in ModeDistribution.
const (
	DistNormal      = "normal"
	DistUniform     = "uniform"
	DistExponential = "exponential"
)

var ErrInvalidParameter = errors.New("invalid parameter")

// Config describes one sampling strategy. Only the fields for the selected
// mode are consulted; the same Config drawn repeatedly yields comparable
// samples, which is what makes a replicate set summarizable.
type Config struct {
	Mode Mode `json:"mode"`
	N    int  `json:"n"`

	// ModeDistribution parameters.
	Dist   string  `json:"dist,omitempty"`
	Mean   float64 `json:"mean,omitempty"`
	StdDev float64 `json:"std_dev,omitempty"`
	Low    float64 `json:"low,omitempty"`
	High   float64 `json:"high,omitempty"`
	Rate   float64 `json:"rate,omitempty"`

	// ModeEmpirical source sample.
	Source []float64 `json:"-"`

	// ModeCorrelated parameters. Rho must be in [0,1]; Shift relocates the
	// whole sequence after the dependent uniforms are drawn.
	Rho   float64 `json:"rho,omitempty"`
	Shift float64 `json:"shift,omitempty"`
}

// Validate reports whether the Config can produce a sample.
func (c Config) Validate() error {
	if c.N < 1 {
		return fmt.Errorf("%w: sample size %d, need at least 1", ErrInvalidParameter, c.N)
	}
	switch c.Mode {
	case ModeDistribution:
		switch c.Dist {
		case DistNormal:
			if c.StdDev <= 0 {
				return fmt.Errorf("%w: std_dev %v must be positive", ErrInvalidParameter, c.StdDev)
			}
		case DistUniform:
			if c.High <= c.Low {
				return fmt.Errorf("%w: uniform bounds [%v, %v)", ErrInvalidParameter, c.Low, c.High)
			}
		case DistExponential:
			if c.Rate <= 0 {
				return fmt.Errorf("%w: rate %v must be positive", ErrInvalidParameter, c.Rate)
			}
		default:
			return fmt.Errorf("%w: unknown distribution %q", ErrInvalidParameter, c.Dist)
		}
	case ModeEmpirical:
		if len(c.Source) == 0 {
			return fmt.Errorf("%w: empirical mode needs a non-empty source sample", ErrInvalidParameter)
		}
	case ModeCorrelated:
		if c.Rho < 0 || c.Rho > 1 {
			return fmt.Errorf("%w: rho %v outside [0,1]", ErrInvalidParameter, c.Rho)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidParameter, c.Mode)
	}
	return nil
}

// Draw produces one sample of length cfg.N using the supplied generator.
// The returned slice is freshly allocated on every call so replicates never
// alias each other.
func Draw(rng *rand.Rand, cfg Config) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case ModeDistribution:
		return drawDistribution(rng, cfg), nil
	case ModeEmpirical:
		return drawEmpirical(rng, cfg), nil
	default:
		return drawCorrelated(rng, cfg), nil
	}
}

func drawDistribution(rng *rand.Rand, cfg Config) []float64 {
	out := make([]float64, cfg.N)
	switch cfg.Dist {
	case DistNormal:
		for i := range out {
			out[i] = rng.NormFloat64()*cfg.StdDev + cfg.Mean
		}
	case DistUniform:
		for i := range out {
			out[i] = cfg.Low + rng.Float64()*(cfg.High-cfg.Low)
		}
	case DistExponential:
		for i := range out {
			out[i] = rng.ExpFloat64() / cfg.Rate
		}
	}
	return out
}

func drawEmpirical(rng *rand.Rand, cfg Config) []float64 {
	out := make([]float64, cfg.N)
	for i := range out {
		out[i] = cfg.Source[rng.Intn(len(cfg.Source))]
	}
	return out
}

// drawCorrelated generates the first value uniform on [0,1) and each
// subsequent value as rho*prev + (1-rho)*fresh. rho=0 gives independent
// draws, rho=1 repeats the first draw. N=1 skips the recursion entirely.
func drawCorrelated(rng *rand.Rand, cfg Config) []float64 {
	out := make([]float64, cfg.N)
	out[0] = rng.Float64()
	for i := 1; i < cfg.N; i++ {
		out[i] = cfg.Rho*out[i-1] + (1-cfg.Rho)*rng.Float64()
	}
	if cfg.Shift != 0 {
		for i := range out {
			out[i] += cfg.Shift
		}
	}
	return out
}

// Pair is one (x, y) observation from a paired dataset.
type Pair struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DrawPairs resamples n whole pairs with replacement from src, keeping each
// (x, y) observation intact so statistics over the pairing survive.
func DrawPairs(rng *rand.Rand, src []Pair, n int) ([]Pair, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: sample size %d, need at least 1", ErrInvalidParameter, n)
	}
	if len(src) == 0 {
		return nil, fmt.Errorf("%w: paired resampling needs a non-empty source", ErrInvalidParameter)
	}
	out := make([]Pair, n)
	for i := range out {
		out[i] = src[rng.Intn(len(src))]
	}
	return out, nil
}
