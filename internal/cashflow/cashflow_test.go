package cashflow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetPresentValue(t *testing.T) {
	tests := []struct {
		name  string
		cost  float64
		flows []float64
		rate  float64
		want  float64
	}{
		{"single period break even", 100, []float64{110}, 0.10, 0},
		{"cost sign ignored", -100, []float64{110}, 0.10, 0},
		{"zero rate sums flows", 50, []float64{10, 20, 30}, 0, 10},
		{"no flows", 25, nil, 0.05, -25},
		{"two periods", 0, []float64{0, 121}, 0.10, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NetPresentValue(tt.cost, tt.flows, tt.rate), 1e-9)
		})
	}
}

func TestInternalRateOfReturn(t *testing.T) {
	t.Run("single period", func(t *testing.T) {
		irr, err := InternalRateOfReturn(100, []float64{110})
		require.NoError(t, err)
		assert.InDelta(t, 0.10, irr, 1e-9)
	})

	t.Run("bond priced at par yields the coupon rate", func(t *testing.T) {
		irr, err := InternalRateOfReturn(1000, []float64{30, 30, 30, 30, 30, 1030})
		require.NoError(t, err)
		assert.InDelta(t, 0.03, irr, 1e-9)
	})

	t.Run("discount bond yields above coupon", func(t *testing.T) {
		flows := []float64{50, 50, 50, 1050}
		irr, err := InternalRateOfReturn(900, flows)
		require.NoError(t, err)
		assert.Greater(t, irr, 0.05)
		assert.InDelta(t, 0, NetPresentValue(900, flows, irr), 1e-6)
	})

	t.Run("loss", func(t *testing.T) {
		irr, err := InternalRateOfReturn(100, []float64{40, 40})
		require.NoError(t, err)
		assert.Less(t, irr, 0.0)
		assert.InDelta(t, 0, NetPresentValue(100, []float64{40, 40}, irr), 1e-6)
	})
}

func TestInternalRateOfReturn_Errors(t *testing.T) {
	_, err := InternalRateOfReturn(100, nil)
	assert.ErrorIs(t, err, ErrNoCashFlows)

	_, err = InternalRateOfReturn(0, []float64{10})
	assert.ErrorIs(t, err, ErrNoSignChange)

	_, err = InternalRateOfReturn(100, []float64{-10, -5})
	assert.ErrorIs(t, err, ErrNoSignChange)

	_, err = InternalRateOfReturn(100, []float64{math.NaN()})
	assert.Error(t, err)
}
