// Package analysis turns return series and bonds into report values.
package analysis

import (
	"math"
	"time"

	"FundQuant/internal/bond"
	"FundQuant/internal/cashflow"
	"FundQuant/internal/model"
	"FundQuant/internal/stats"
)

// DefaultPercentiles are reported when Options.Percentiles is empty.
var DefaultPercentiles = []float64{5, 25, 50, 75, 95}

// Options controls series evaluation.
type Options struct {
	Mode         stats.Mode
	RiskFreeRate float64
	Percentiles  []float64
}

// EvaluateSeries computes every statistic over src.
func EvaluateSeries(label string, src stats.Source, opt Options) *model.SeriesReport {
	e := stats.New(src, stats.WithMode(opt.Mode))

	ps := opt.Percentiles
	if len(ps) == 0 {
		ps = DefaultPercentiles
	}
	percentiles := make([]model.Percentile, len(ps))
	for i, p := range ps {
		percentiles[i] = model.Percentile{P: p, Value: e.Percentile(p)}
	}

	return &model.SeriesReport{
		Label:                  label,
		Mode:                   e.Mode().String(),
		Count:                  e.Count(),
		PopulationMean:         e.PopulationMean(),
		SampleMean:             e.SampleMean(),
		GeometricMean:          e.GeometricMean(),
		HarmonicMean:           e.HarmonicMean(),
		ExpectedProbability:    e.ExpectedProbability(),
		Min:                    e.Min(),
		Max:                    e.Max(),
		Range:                  e.Range(),
		PopulationVariance:     e.PopulationVariance(),
		SampleVariance:         e.SampleVariance(),
		PopulationStdDev:       e.PopulationStdDev(),
		SampleStdDev:           e.SampleStdDev(),
		DownsideDeviation:      e.DownsideDeviation(),
		CoefficientOfVariation: e.CoefficientOfVariation(),
		SharpeRatio:            e.SharpeRatio(opt.RiskFreeRate),
		RiskFreeRate:           opt.RiskFreeRate,
		Skewness:               e.Skewness(),
		ExcessKurtosis:         e.ExcessKurtosis(),
		ProbabilityNegative:    e.ProbabilityBounds(math.Inf(-1), math.Nextafter(0, -1)),
		Percentiles:            percentiles,
		GeneratedAt:            time.Now().UTC(),
	}
}

// EvaluateBond values b. A nil marketPrice prices the bond at its present value,
// which is also the initial cost used for NPV and IRR.
func EvaluateBond(name string, b *bond.Bond, marketPrice *float64) *model.BondReport {
	price := b.PresentValue()
	if marketPrice != nil {
		price = *marketPrice
	}
	flows := b.CashFlows()

	r := &model.BondReport{
		Name:             name,
		Frequency:        b.Frequency.String(),
		ParValue:         b.ParValue,
		AnnualRate:       b.AnnualInterestRate,
		IssuanceDate:     b.IssuanceDate,
		MaturityDate:     b.MaturityDate,
		TermYears:        b.TermToMaturity(),
		Periods:          b.CompoundingPeriods(),
		PeriodicRate:     b.PeriodicRate(),
		CouponPayment:    b.CouponPayment(),
		PresentValue:     b.PresentValue(),
		FutureValue:      b.FutureValue(),
		YieldToMaturity:  b.YieldToMaturity(),
		CurrentYield:     b.CurrentYield(),
		AnnualCashFlow:   b.AnnualCashFlow(),
		MarketPrice:      price,
		Duration:         b.Duration(&price),
		ModifiedDuration: b.ModifiedDuration(&price),
		CashFlows:        flows,
		DiscountedFlows:  b.DiscountedCashFlows(),
		NetPresentValue:  cashflow.NetPresentValue(price, flows, b.PeriodicRate()),
		GeneratedAt:      time.Now().UTC(),
	}

	irr, err := cashflow.InternalRateOfReturn(price, flows)
	if err != nil {
		r.InternalRate = math.NaN()
		r.InternalRateErr = err.Error()
	} else {
		r.InternalRate = irr
	}
	return r
}
