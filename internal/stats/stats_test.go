package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var oneToFive = Series{1, 2, 3, 4, 5}

func TestMeans(t *testing.T) {
	tests := []struct {
		name      string
		mode      Mode
		values    Series
		popMean   float64
		sampMean  float64
		harmonic  float64
		tolerance float64
	}{
		{
			name:      "literal one to five",
			mode:      Literal,
			values:    oneToFive,
			popMean:   3,
			sampMean:  3.75,
			harmonic:  (1 / (1 + 0.5 + 1.0/3 + 0.25 + 0.2)) / 5,
			tolerance: 1e-12,
		},
		{
			name:      "corrected one to five",
			mode:      Corrected,
			values:    oneToFive,
			popMean:   3,
			sampMean:  3,
			harmonic:  5 / (1 + 0.5 + 1.0/3 + 0.25 + 0.2),
			tolerance: 1e-12,
		},
		{
			name:      "literal powers of two",
			mode:      Literal,
			values:    Series{1, 2, 4},
			popMean:   7.0 / 3,
			sampMean:  3.5,
			harmonic:  (1 / 1.75) / 3,
			tolerance: 1e-12,
		},
		{
			name:      "corrected powers of two",
			mode:      Corrected,
			values:    Series{1, 2, 4},
			popMean:   7.0 / 3,
			sampMean:  7.0 / 3,
			harmonic:  3 / 1.75,
			tolerance: 1e-12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.values, WithMode(tt.mode))
			assert.Equal(t, len(tt.values), e.Count())
			assert.InDelta(t, tt.popMean, e.PopulationMean(), tt.tolerance)
			assert.InDelta(t, tt.sampMean, e.SampleMean(), tt.tolerance)
			assert.InDelta(t, tt.harmonic, e.HarmonicMean(), tt.tolerance)
		})
	}
}

func TestGeometricMean(t *testing.T) {
	e := Of([]float64{0, 0.10, -0.10})
	want := math.Pow(1.0*1.10*0.90, 1.0/3) - 1
	assert.InDelta(t, want, e.GeometricMean(), 1e-15)
}

func TestWeightedAverage(t *testing.T) {
	e := Of([]float64{1, 2, 3})

	assert.InDelta(t, 1.75, e.WeightedAverage([]float64{0.5, 0.25, 0.25}), 1e-15)
	assert.Equal(t, 0.0, e.WeightedAverage([]float64{0.5, 0.5}), "length mismatch")
	assert.Equal(t, 0.0, e.WeightedAverage([]float64{0.5, 0.25, 0.125}), "weights below one")
	assert.Equal(t, 0.0, e.WeightedAverage([]float64{0.5, 0.5, 0.5}), "weights above one")
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values Series
		p      float64
		want   float64
	}{
		{"median exact rank", oneToFive, 50, 3},
		{"unsorted input", Series{5, 3, 1, 4, 2}, 50, 3},
		{"interpolated", oneToFive, 25, 1.5},
		{"interpolated upper", oneToFive, 75, 4.5},
		{"clamped low", oneToFive, 0, 1},
		{"clamped high", oneToFive, 100, 5},
		{"rank beyond n", oneToFive, 90, 5},
		{"single value", Series{7}, 50, 7},
		{"fractional values", Series{0.1, 0.4, 0.2, 0.3}, 40, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Of(tt.values).Percentile(tt.p), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(Of(nil).Percentile(50)))
}

func TestPercentile_DoesNotMutateSource(t *testing.T) {
	values := Series{3, 1, 2}
	Of(values).Percentile(50)
	assert.Equal(t, Series{3, 1, 2}, values)
}

func TestMaxMinRange(t *testing.T) {
	tests := []struct {
		name   string
		mode   Mode
		values Series
		max    float64
		min    float64
	}{
		{"literal straddling zero", Literal, Series{-0.02, 0.03, 0.01}, 0.03, -0.02},
		{"literal all positive", Literal, Series{1, 2, 3}, 3, 0},
		{"literal all negative", Literal, Series{-3, -2, -1}, 0, -3},
		{"corrected all positive", Corrected, Series{1, 2, 3}, 3, 1},
		{"corrected all negative", Corrected, Series{-3, -2, -1}, -1, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.values, WithMode(tt.mode))
			assert.Equal(t, tt.max, e.Max())
			assert.Equal(t, tt.min, e.Min())
			assert.InDelta(t, tt.max-tt.min, e.Range(), 1e-15)
		})
	}
}

func TestDispersion(t *testing.T) {
	// Integer observations sit exactly on their bracket, so the center is the mean.
	e := Of(oneToFive)
	require.InDelta(t, 3.0, e.ExpectedProbability(), 1e-12)

	assert.InDelta(t, 2.0, e.PopulationVariance(), 1e-12)
	assert.InDelta(t, 2.5, e.SampleVariance(), 1e-12)
	assert.InDelta(t, math.Sqrt(2), e.PopulationStdDev(), 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), e.SampleStdDev(), 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/4), e.DownsideDeviation(), 1e-12)
	assert.InDelta(t, math.Sqrt(2.5)/3, e.CoefficientOfVariation(), 1e-12)
	assert.InDelta(t, (3-1)/math.Sqrt(2.5), e.SharpeRatio(1), 1e-12)
}

func TestZScores(t *testing.T) {
	sd := math.Sqrt(2.5)

	literal := Of(oneToFive).ZScores()
	corrected := Of(oneToFive, WithMode(Corrected)).ZScores()
	require.Len(t, literal, 5)
	require.Len(t, corrected, 5)

	for i, v := range oneToFive {
		assert.InDelta(t, v-3/sd, literal[i], 1e-12)
		assert.InDelta(t, (v-3)/sd, corrected[i], 1e-12)
	}
}

func TestMoments(t *testing.T) {
	values := Series{1, 2, 3, 4, 10}
	center := 4.0
	var cubes, quads, squares float64
	for _, v := range values {
		d := v - center
		squares += d * d
		cubes += d * d * d
		quads += d * d * d * d
	}
	sd := math.Sqrt(squares / 4)

	literal := Of(values)
	assert.Equal(t, 0.0, literal.Skewness(), "1/n truncates to zero")
	assert.Equal(t, -3.0, literal.ExcessKurtosis())

	corrected := Of(values, WithMode(Corrected))
	assert.InDelta(t, cubes/5/math.Pow(sd, 3), corrected.Skewness(), 1e-12)
	assert.InDelta(t, quads/5/math.Pow(sd, 4)-3, corrected.ExcessKurtosis(), 1e-12)
	assert.Greater(t, corrected.Skewness(), 0.0)
}

func TestMoments_Degenerate(t *testing.T) {
	assert.True(t, math.IsNaN(Of(nil).Skewness()))
	assert.True(t, math.IsNaN(Of(nil).ExcessKurtosis()))
	// n = 1: integer 1/1 is 1 and the sample deviation is 0/0.
	assert.True(t, math.IsNaN(Of([]float64{0.5}).Skewness()))
}

func TestCovarianceCorrelation(t *testing.T) {
	x := Series{0.0123456, -0.0234567, 0.0456789, 0.0011111, -0.0099999}
	e := Of(x)

	assert.InDelta(t, e.SampleVariance(), e.Covariance(x), 1e-15)
	assert.InDelta(t, 1.0, e.Correlation(x), 1e-12)

	y := make(Series, len(x))
	for i, v := range x {
		y[i] = -2 * v
	}
	assert.Less(t, e.Covariance(y), 0.0)

	assert.True(t, math.IsNaN(e.Covariance(Series{1, 2})))
	assert.True(t, math.IsNaN(e.Correlation(Series{1, 2})))
}

func TestCorrelation_SelfCorrected(t *testing.T) {
	e := Of([]float64{1, 3, 2, 5, 4, 8}, WithMode(Corrected))
	assert.InDelta(t, 1.0, e.Correlation(Series{1, 3, 2, 5, 4, 8}), 1e-12)
}

func TestProbability(t *testing.T) {
	e := Of([]float64{1, 1, 2, 3})
	assert.Equal(t, 0.5, e.Probability(1))
	assert.Equal(t, 0.0, e.Probability(1.5))
	assert.Equal(t, 0.75, e.ProbabilityBounds(1, 2))
	assert.Equal(t, 0.25, e.ProbabilityBounds(2, 2.5))
}

func TestExpectedProbability_WeightsDuplicates(t *testing.T) {
	e := Of([]float64{1, 1, 2})
	// Each 1 carries probability 2/3 and the 2 carries 1/3: 2/3 + 2/3 + 2/3.
	assert.InDelta(t, 2.0, e.ExpectedProbability(), 1e-12)
	assert.InDelta(t, 4.0/3, e.PopulationMean(), 1e-12)
}

func TestExpectedProbability_UniqueValuesMatchMean(t *testing.T) {
	e := Of([]float64{0.0123456, -0.0234567, 0.0456789})
	assert.InDelta(t, e.PopulationMean(), e.ExpectedProbability(), 1e-12)
}

func TestDegenerateInputsPropagate(t *testing.T) {
	empty := Of(nil)
	assert.Equal(t, 0, empty.Count())
	assert.True(t, math.IsNaN(empty.PopulationMean()))
	assert.True(t, math.IsNaN(empty.SampleMean()+empty.PopulationVariance()))

	single := Of([]float64{0.5})
	assert.True(t, math.IsNaN(single.SampleVariance()))
	assert.True(t, math.IsInf(single.SampleMean(), 1))
}

type closes []float64

func (c closes) Values() []float64 {
	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = v / 100
	}
	return out
}

func TestEngine_CustomSource(t *testing.T) {
	e := New(closes{100, 200, 300})
	assert.Equal(t, 3, e.Count())
	assert.InDelta(t, 2.0, e.PopulationMean(), 1e-12)
	assert.Equal(t, Literal, e.Mode())
}
