package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"FundQuant/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatSeriesReport(t *testing.T) {
	r := &model.SeriesReport{
		Label:               "AAA",
		Mode:                "literal",
		Count:               250,
		PopulationMean:      0.0012,
		SharpeRatio:         0.35,
		RiskFreeRate:        0.0001,
		ProbabilityNegative: 0.42,
		Percentiles:         []model.Percentile{{P: 5, Value: -0.021}, {P: 95, Value: 0.019}},
		GeneratedAt:         time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
	out := FormatSeriesReport(r)

	assert.Contains(t, out, "== AAA | 2024-05-01 09:30 | literal stats, n=250 ==")
	assert.Contains(t, out, "population +0.1200%")
	assert.Contains(t, out, "Sharpe:     0.3500 (risk-free +0.0100%)")
	assert.Contains(t, out, "P(loss):    42.0%")
	assert.Contains(t, out, "p5 -2.1000% | p95 +1.9000%")
}

func TestFormatSeriesReport_NaN(t *testing.T) {
	out := FormatSeriesReport(&model.SeriesReport{Label: "x", SampleMean: math.NaN()})
	assert.Contains(t, out, "NaN")
	assert.NotContains(t, out, "Percentiles")
}

func TestFormatBondReport(t *testing.T) {
	r := &model.BondReport{
		Name:            "T-3Y",
		Frequency:       "semiannual",
		ParValue:        1000,
		AnnualRate:      0.06,
		MaturityDate:    time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		TermYears:       3,
		Periods:         6,
		PeriodicRate:    0.03,
		CouponPayment:   30,
		AnnualCashFlow:  60,
		InternalRate:    0.031,
		CashFlows:       []float64{30, 1030},
		DiscountedFlows: []float64{29.1262, 970.8738},
	}
	out := FormatBondReport(r)

	assert.Contains(t, out, "== Bond T-3Y")
	assert.Contains(t, out, "Par 1000.00 @ +6.0000% semiannual, matures 2027-01-01 (3.00y, 6.00 periods)")
	assert.Contains(t, out, "IRR:          +3.1000% per period")
	assert.Contains(t, out, "    2     1030.0000      970.8738")

	r.InternalRateErr = "internal rate of return did not converge"
	assert.Contains(t, FormatBondReport(r), "IRR:          n/a (internal rate of return did not converge)")
}

func TestFormatPortfolioStatus(t *testing.T) {
	day := func(d int) model.Timestamp {
		return model.NewTimestamp(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC))
	}
	p := &model.Portfolio{
		InitialValue: decimal.NewFromInt(10000),
		InitialDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Assets: map[string]*model.Asset{
			"BBB": {Ticker: "BBB", AmountInvested: decimal.NewFromInt(2500)},
			"AAA": {Ticker: "AAA", AmountInvested: decimal.RequireFromString("5000.5"), StockData: model.StockData{
				Data: []model.PriceRecord{{Close: 10, Date: day(2)}, {Close: 12.5, Date: day(5)}},
			}},
		},
	}
	out := FormatPortfolioStatus(p)

	assert.Contains(t, out, "Initial value: 10000.00 (since 2024-01-01)")
	assert.Contains(t, out, "AAA           5000.50      2 records  2024-01-02..2024-01-05  last 12.50")
	assert.Contains(t, out, "Invested: 7500.50 | unallocated: 2499.50")
	assert.Less(t, strings.Index(out, "AAA"), strings.Index(out, "BBB"))
	assert.NotContains(t, out, "Updated:")
}
