// Package stats implements descriptive and risk statistics over an ordered
// sequence of observations, typically holding-period returns.
//
// Every dispersion, ratio and moment measure is centered on ExpectedProbability,
// an empirical probability-weighted expectation, rather than on the arithmetic
// mean. Each observation is weighted by the share of the sample that falls in its
// own 5-decimal bracket. For samples without repeated values the weights are 1/n;
// duplicate-heavy or heavily quantized data shifts the center away from the mean.
// The estimator has no asymptotic guarantees for small n.
//
// Mode selects between the Literal formulas (the historical behavior, including a
// few non-textbook definitions) and Corrected ones. Both modes share the centering.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Source produces the observations a statistic is computed over.
type Source interface {
	Values() []float64
}

// Series is a plain slice of observations.
type Series []float64

func (s Series) Values() []float64 { return s }

// Mode selects the formula set.
type Mode int

const (
	// Literal reproduces the historical formulas: sample mean divides the sum by n-1,
	// harmonic mean divides by n twice, max/min are seeded with zero, the moment
	// factor 1/n is integer division, and z-scores compute v - mean/stdDev.
	Literal Mode = iota
	// Corrected uses the textbook definitions for the measures listed under Literal.
	Corrected
)

func (m Mode) String() string {
	if m == Corrected {
		return "corrected"
	}
	return "literal"
}

// bracketScale quantizes observations to 5 decimal places in ExpectedProbability.
const bracketScale = 1e5

// Engine applies statistics to a caller-owned Source. It stores no data of its own;
// Values is read on every call.
type Engine struct {
	src  Source
	mode Mode
}

// Option configures an Engine.
type Option func(*Engine)

// WithMode sets the formula set. The default is Literal.
func WithMode(m Mode) Option {
	return func(e *Engine) {
		e.mode = m
	}
}

// New returns an Engine over src.
func New(src Source, opts ...Option) *Engine {
	e := &Engine{src: src, mode: Literal}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Of is shorthand for New(Series(values), opts...).
func Of(values []float64, opts ...Option) *Engine {
	return New(Series(values), opts...)
}

func (e *Engine) Mode() Mode { return e.mode }

func (e *Engine) Values() []float64 { return e.src.Values() }

func (e *Engine) Count() int { return len(e.src.Values()) }

func (e *Engine) PopulationMean() float64 {
	values := e.src.Values()
	return sum(values) / float64(len(values))
}

// SampleMean divides the sum by n-1 in Literal mode. Corrected mode returns the
// arithmetic mean, which is the same for a population and a sample.
func (e *Engine) SampleMean() float64 {
	values := e.src.Values()
	if e.mode == Corrected {
		if len(values) == 0 {
			return math.NaN()
		}
		return stat.Mean(values, nil)
	}
	return sum(values) / (float64(len(values)) - 1)
}

func (e *Engine) GeometricMean() float64 {
	values := e.src.Values()
	product := 1.0
	for _, v := range values {
		product *= 1 + v
	}
	return math.Pow(product, 1/float64(len(values))) - 1
}

// WeightedAverage returns Σ v_i·w_i. It returns 0 when the weights do not match the
// observation count or do not sum to exactly 1.
func (e *Engine) WeightedAverage(weights []float64) float64 {
	values := e.src.Values()
	if len(values) != len(weights) {
		return 0
	}
	if sum(weights) != 1 {
		return 0
	}
	var total float64
	for i, v := range values {
		total += v * weights[i]
	}
	return total
}

// HarmonicMean is n/Σ(1/v) in Corrected mode and (1/Σ(1/v))/n in Literal mode.
func (e *Engine) HarmonicMean() float64 {
	values := e.src.Values()
	if e.mode == Corrected {
		if len(values) == 0 {
			return math.NaN()
		}
		return stat.HarmonicMean(values, nil)
	}
	var reciprocals float64
	for _, v := range values {
		reciprocals += 1 / v
	}
	return (1 / reciprocals) / float64(len(values))
}

// Percentile uses the (n+1)·p/100 rank over the ascending values, with 1-based
// positions and linear interpolation between neighbours. Ranks below 1 clamp to
// the smallest observation and ranks above n to the largest.
func (e *Engine) Percentile(p float64) float64 {
	sorted := append([]float64(nil), e.src.Values()...)
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)

	rank := float64(n+1) * (p / 100)
	switch {
	case math.IsNaN(rank):
		return math.NaN()
	case rank <= 1:
		return sorted[0]
	case rank >= float64(n):
		return sorted[n-1]
	}

	lower := math.Floor(rank)
	if rank == lower {
		return sorted[int(rank)-1]
	}
	upper := math.Ceil(rank)
	vLower := sorted[int(lower)-1]
	vUpper := sorted[int(upper)-1]
	return vLower + (rank-lower)*(vUpper-vLower)
}

func (e *Engine) Range() float64 {
	return e.Max() - e.Min()
}

// Max scans from a zero accumulator in Literal mode, so an all-negative sample
// reports 0. Corrected mode seeds from the observations.
func (e *Engine) Max() float64 {
	values := e.src.Values()
	if e.mode == Corrected {
		if len(values) == 0 {
			return math.NaN()
		}
		return floats.Max(values)
	}
	var m float64
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// Min mirrors Max: Literal mode reports 0 for an all-positive sample.
func (e *Engine) Min() float64 {
	values := e.src.Values()
	if e.mode == Corrected {
		if len(values) == 0 {
			return math.NaN()
		}
		return floats.Min(values)
	}
	var m float64
	for _, v := range values {
		if v < m {
			m = v
		}
	}
	return m
}

func (e *Engine) PopulationVariance() float64 {
	values := e.src.Values()
	return sumPow(values, e.ExpectedProbability(), 2) / float64(len(values))
}

func (e *Engine) SampleVariance() float64 {
	values := e.src.Values()
	return sumPow(values, e.ExpectedProbability(), 2) / (float64(len(values)) - 1)
}

func (e *Engine) PopulationStdDev() float64 {
	return math.Sqrt(e.PopulationVariance())
}

func (e *Engine) SampleStdDev() float64 {
	return math.Sqrt(e.SampleVariance())
}

// DownsideDeviation only accumulates observations at or below the center, but
// still divides by n-1.
func (e *Engine) DownsideDeviation() float64 {
	values := e.src.Values()
	center := e.ExpectedProbability()
	var acc float64
	for _, v := range values {
		if v <= center {
			d := v - center
			acc += d * d
		}
	}
	return math.Sqrt(acc / (float64(len(values)) - 1))
}

func (e *Engine) CoefficientOfVariation() float64 {
	return e.SampleStdDev() / e.ExpectedProbability()
}

func (e *Engine) SharpeRatio(riskFreeRate float64) float64 {
	return (e.ExpectedProbability() - riskFreeRate) / e.SampleStdDev()
}

// ZScores returns v - center/stdDev per observation in Literal mode and
// (v - center)/stdDev in Corrected mode.
func (e *Engine) ZScores() []float64 {
	values := e.src.Values()
	center := e.ExpectedProbability()
	sd := e.SampleStdDev()
	scores := make([]float64, len(values))
	for i, v := range values {
		if e.mode == Corrected {
			scores[i] = (v - center) / sd
		} else {
			scores[i] = v - center/sd
		}
	}
	return scores
}

func (e *Engine) Skewness() float64 {
	values := e.src.Values()
	if len(values) == 0 {
		return math.NaN()
	}
	return e.momentFactor(len(values)) * sumPow(values, e.ExpectedProbability(), 3) / math.Pow(e.SampleStdDev(), 3)
}

func (e *Engine) ExcessKurtosis() float64 {
	values := e.src.Values()
	if len(values) == 0 {
		return math.NaN()
	}
	return e.momentFactor(len(values))*sumPow(values, e.ExpectedProbability(), 4)/math.Pow(e.SampleStdDev(), 4) - 3
}

// momentFactor is 1/n. Literal mode truncates it as integer division, which is 0 for n > 1.
func (e *Engine) momentFactor(n int) float64 {
	if e.mode == Corrected {
		return 1 / float64(n)
	}
	return float64(1 / n)
}

// Covariance pairs observations by index. Sequences of different length yield NaN.
func (e *Engine) Covariance(other Source) float64 {
	a, b := e.src.Values(), other.Values()
	if len(a) != len(b) {
		return math.NaN()
	}
	centerA := e.ExpectedProbability()
	centerB := New(other, WithMode(e.mode)).ExpectedProbability()
	var acc float64
	for i := range a {
		acc += (a[i] - centerA) * (b[i] - centerB)
	}
	return acc / (float64(len(a)) - 1)
}

func (e *Engine) Correlation(other Source) float64 {
	return e.Covariance(other) / (e.SampleStdDev() * New(other, WithMode(e.mode)).SampleStdDev())
}

// Probability is the share of observations exactly equal to value. Only meaningful
// for quantized data.
func (e *Engine) Probability(value float64) float64 {
	values := e.src.Values()
	var hits int
	for _, v := range values {
		if v == value {
			hits++
		}
	}
	return float64(hits) / float64(len(values))
}

// ProbabilityBounds is the share of observations in [lower, upper].
func (e *Engine) ProbabilityBounds(lower, upper float64) float64 {
	return probabilityBounds(e.src.Values(), lower, upper)
}

// ExpectedProbability weights each observation by the empirical probability of its
// own 5-decimal bracket and sums the products. It is the center used by every
// variance, deviation, ratio and moment in this package.
func (e *Engine) ExpectedProbability() float64 {
	values := e.src.Values()
	var expected float64
	for _, v := range values {
		lower := math.Floor(v*bracketScale) / bracketScale
		upper := math.Ceil(v*bracketScale) / bracketScale
		expected += probabilityBounds(values, lower, upper) * v
	}
	return expected
}

func probabilityBounds(values []float64, lower, upper float64) float64 {
	var hits int
	for _, v := range values {
		if v >= lower && v <= upper {
			hits++
		}
	}
	return float64(hits) / float64(len(values))
}

// sum accumulates left to right so the exact-equality weight check is reproducible.
func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func sumPow(values []float64, center, exp float64) float64 {
	var acc float64
	for _, v := range values {
		acc += math.Pow(v-center, exp)
	}
	return acc
}
