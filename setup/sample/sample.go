// Package sample draws setup times from distribution values so editors can
// preview what the host engine will see. The engine does its own sampling.
package sample

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/inference-sim/setupmatrix/setup"
)

// Sampler generates setup-time samples.
type Sampler interface {
	// Sample returns a non-negative setup time.
	Sample(rng *rand.Rand) float64
}

// ExponentialSampler produces exponentially-distributed setup times.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) float64 {
	return rng.ExpFloat64() * s.mean
}

// GaussianSampler produces Gaussian setup times clamped at zero.
type GaussianSampler struct {
	mean, stdDev float64
}

func (s *GaussianSampler) Sample(rng *rand.Rand) float64 {
	return math.Max(0, rng.NormFloat64()*s.stdDev+s.mean)
}

// LogNormalSampler is parameterized by the mean and standard deviation of
// the setup time itself, not of its logarithm.
type LogNormalSampler struct {
	mu, sigma float64
}

func newLogNormalSampler(mean, stdDev float64) *LogNormalSampler {
	sigma2 := math.Log(1 + (stdDev*stdDev)/(mean*mean))
	return &LogNormalSampler{mu: math.Log(mean) - sigma2/2, sigma: math.Sqrt(sigma2)}
}

func (s *LogNormalSampler) Sample(rng *rand.Rand) float64 {
	return math.Exp(s.mu + s.sigma*rng.NormFloat64())
}

// GammaSampler uses the Marsaglia-Tsang method.
type GammaSampler struct {
	shape, scale float64
}

func (s *GammaSampler) Sample(rng *rand.Rand) float64 {
	return gamma(rng, s.shape) * s.scale
}

func gamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		// boost: Gamma(a) = Gamma(a+1) * U^(1/a)
		u := rng.Float64()
		return gamma(rng, shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3
	c := 1 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if math.Log(u) < 0.5*x*x+d-d*v+d*math.Log(v) {
			return d * v
		}
	}
}

// ErlangSampler draws the sum of k exponential phases with a combined mean.
// Erlang(k, phase) is Gamma(k, phase), so the cost does not grow with k.
type ErlangSampler struct {
	k     int
	phase float64
}

func (s *ErlangSampler) Sample(rng *rand.Rand) float64 {
	return gamma(rng, float64(s.k)) * s.phase
}

// UniformSampler draws from [min, max).
type UniformSampler struct {
	min, max float64
}

func (s *UniformSampler) Sample(rng *rand.Rand) float64 {
	return s.min + rng.Float64()*(s.max-s.min)
}

// TriangularSampler inverts the triangular CDF.
type TriangularSampler struct {
	min, mode, max float64
}

func (s *TriangularSampler) Sample(rng *rand.Rand) float64 {
	u := rng.Float64()
	span := s.max - s.min
	if span == 0 {
		return s.min
	}
	cut := (s.mode - s.min) / span
	if u < cut {
		return s.min + math.Sqrt(u*span*(s.mode-s.min))
	}
	return s.max - math.Sqrt((1-u)*span*(s.max-s.mode))
}

// ConstantSampler always returns the same setup time.
type ConstantSampler struct {
	value float64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) float64 {
	return math.Max(0, s.value)
}

// maxErlangPhases bounds the erlang phase count k.
const maxErlangPhases = 1_000_000

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

func requirePositive(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if params[k] <= 0 {
			return fmt.Errorf("distribution parameter %q must be positive, got %f", k, params[k])
		}
	}
	return nil
}

// New creates a Sampler for d.
func New(d setup.Distribution) (Sampler, error) {
	p := d.Params
	switch d.Type {
	case "exponential":
		if err := requireParam(p, "mean"); err != nil {
			return nil, err
		}
		if err := requirePositive(p, "mean"); err != nil {
			return nil, err
		}
		return &ExponentialSampler{mean: p["mean"]}, nil

	case "gaussian":
		if err := requireParam(p, "mean", "std_dev"); err != nil {
			return nil, err
		}
		return &GaussianSampler{mean: p["mean"], stdDev: p["std_dev"]}, nil

	case "lognormal":
		if err := requireParam(p, "mean", "std_dev"); err != nil {
			return nil, err
		}
		if err := requirePositive(p, "mean"); err != nil {
			return nil, err
		}
		return newLogNormalSampler(p["mean"], p["std_dev"]), nil

	case "gamma":
		if err := requireParam(p, "shape", "scale"); err != nil {
			return nil, err
		}
		if err := requirePositive(p, "shape", "scale"); err != nil {
			return nil, err
		}
		return &GammaSampler{shape: p["shape"], scale: p["scale"]}, nil

	case "erlang":
		if err := requireParam(p, "k", "mean"); err != nil {
			return nil, err
		}
		if err := requirePositive(p, "mean"); err != nil {
			return nil, err
		}
		if p["k"] < 1 || p["k"] > maxErlangPhases || p["k"] != math.Trunc(p["k"]) {
			return nil, fmt.Errorf("erlang k must be an integer in [1, %d], got %f", maxErlangPhases, p["k"])
		}
		k := int(p["k"])
		return &ErlangSampler{k: k, phase: p["mean"] / float64(k)}, nil

	case "uniform":
		if err := requireParam(p, "min", "max"); err != nil {
			return nil, err
		}
		if p["min"] < 0 {
			return nil, fmt.Errorf("uniform min must be non-negative, got %f", p["min"])
		}
		if p["min"] > p["max"] {
			return nil, fmt.Errorf("uniform min %f exceeds max %f", p["min"], p["max"])
		}
		return &UniformSampler{min: p["min"], max: p["max"]}, nil

	case "triangular":
		if err := requireParam(p, "min", "mode", "max"); err != nil {
			return nil, err
		}
		if p["min"] < 0 {
			return nil, fmt.Errorf("triangular min must be non-negative, got %f", p["min"])
		}
		if !(p["min"] <= p["mode"] && p["mode"] <= p["max"]) {
			return nil, fmt.Errorf("triangular requires min <= mode <= max")
		}
		return &TriangularSampler{min: p["min"], mode: p["mode"], max: p["max"]}, nil

	case "constant":
		if err := requireParam(p, "value"); err != nil {
			return nil, err
		}
		return &ConstantSampler{value: p["value"]}, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", d.Type)
	}
}

// Mean estimates the mean setup time of d from n samples drawn with seed.
func Mean(d setup.Distribution, n int, seed int64) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("sample count must be positive, got %d", n)
	}
	s, err := New(d)
	if err != nil {
		return 0, err
	}
	rng := rand.New(rand.NewSource(seed))
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += s.Sample(rng)
	}
	return sum / float64(n), nil
}
