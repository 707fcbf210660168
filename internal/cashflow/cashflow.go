// Package cashflow discounts periodic cash-flow sequences.
package cashflow

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MaxIterations bounds the Newton-Raphson search in InternalRateOfReturn.
	MaxIterations = 100
	// Precision is the step size below which the search is considered converged.
	Precision = 1e-9
)

var (
	ErrNoCashFlows   = errors.New("no cash flows")
	ErrNoSignChange  = errors.New("cash flows never offset the initial cost")
	ErrNoConvergence = errors.New("internal rate of return did not converge")
)

// NetPresentValue discounts flow t (1-based) at (1+rate)^t and subtracts the
// magnitude of initialCost, so the cost may be given with either sign.
func NetPresentValue(initialCost float64, flows []float64, rate float64) float64 {
	var npv float64
	for i, f := range flows {
		npv += f / math.Pow(1+rate, float64(i+1))
	}
	return npv - math.Abs(initialCost)
}

// derivative of NetPresentValue with respect to rate.
func dNetPresentValue(flows []float64, rate float64) float64 {
	var d float64
	for i, f := range flows {
		t := float64(i + 1)
		d -= t * f / math.Pow(1+rate, t+1)
	}
	return d
}

// InternalRateOfReturn finds the periodic rate at which NetPresentValue is zero.
// The search starts from the average flow relative to the initial cost.
func InternalRateOfReturn(initialCost float64, flows []float64) (float64, error) {
	if len(flows) == 0 {
		return 0, ErrNoCashFlows
	}
	var total float64
	for _, f := range flows {
		total += f
	}
	cost := math.Abs(initialCost)
	if cost == 0 || total <= 0 {
		return 0, ErrNoSignChange
	}

	guess := total/float64(len(flows))/cost
	for i := 0; i < MaxIterations; i++ {
		slope := dNetPresentValue(flows, guess)
		if slope == 0 || math.IsNaN(slope) || math.IsInf(slope, 0) {
			break
		}
		next := guess - NetPresentValue(initialCost, flows, guess)/slope
		if next <= -1 {
			// Halve the distance to the pole instead of crossing it.
			next = (guess - 1) / 2
		}
		if math.Abs(next-guess) < Precision {
			return next, nil
		}
		guess = next
	}
	return 0, fmt.Errorf("%w after %d iterations", ErrNoConvergence, MaxIterations)
}
