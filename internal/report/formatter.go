package report

import (
	"fmt"
	"sort"
	"strings"

	"FundQuant/internal/model"

	"github.com/shopspring/decimal"
)

// FormatSeriesReport renders the statistics of one return series.
func FormatSeriesReport(r *model.SeriesReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("== %s | %s | %s stats, n=%d ==\n", r.Label, r.GeneratedAt.Format("2006-01-02 15:04"), r.Mode, r.Count))

	b.WriteString(fmt.Sprintf("Mean:       population %s | sample %s\n", pct(r.PopulationMean), pct(r.SampleMean)))
	b.WriteString(fmt.Sprintf("            geometric %s | harmonic %s\n", pct(r.GeometricMean), pct(r.HarmonicMean)))
	b.WriteString(fmt.Sprintf("Expected:   %s\n", pct(r.ExpectedProbability)))
	b.WriteString(fmt.Sprintf("Range:      %s .. %s (%s)\n", pct(r.Min), pct(r.Max), pct(r.Range)))

	b.WriteString(fmt.Sprintf("Std dev:    population %s | sample %s | downside %s\n",
		pct(r.PopulationStdDev), pct(r.SampleStdDev), pct(r.DownsideDeviation)))
	b.WriteString(fmt.Sprintf("Variance:   population %.6g | sample %.6g\n", r.PopulationVariance, r.SampleVariance))
	b.WriteString(fmt.Sprintf("CV:         %.4f\n", r.CoefficientOfVariation))
	b.WriteString(fmt.Sprintf("Sharpe:     %.4f (risk-free %s)\n", r.SharpeRatio, pct(r.RiskFreeRate)))
	b.WriteString(fmt.Sprintf("Skew/Kurt:  %.4f / %.4f\n", r.Skewness, r.ExcessKurtosis))
	b.WriteString(fmt.Sprintf("P(loss):    %.1f%%\n", r.ProbabilityNegative*100))

	if len(r.Percentiles) > 0 {
		parts := make([]string, len(r.Percentiles))
		for i, p := range r.Percentiles {
			parts[i] = fmt.Sprintf("p%g %s", p.P, pct(p.Value))
		}
		b.WriteString("Percentiles: " + strings.Join(parts, " | ") + "\n")
	}
	return b.String()
}

// FormatBondReport renders a bond valuation with its cash-flow schedule.
func FormatBondReport(r *model.BondReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("== Bond %s | %s ==\n", r.Name, r.GeneratedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Par %.2f @ %s %s, matures %s (%.2fy, %.2f periods)\n",
		r.ParValue, pct(r.AnnualRate), r.Frequency, r.MaturityDate.Format("2006-01-02"), r.TermYears, r.Periods))
	b.WriteString(fmt.Sprintf("Coupon:       %.4f per period (%.2f per year)\n", r.CouponPayment, r.AnnualCashFlow))
	b.WriteString(fmt.Sprintf("Value:        present %.4f | future %.4f | price %.4f\n", r.PresentValue, r.FutureValue, r.MarketPrice))
	b.WriteString(fmt.Sprintf("Yield:        to maturity %s | current %s\n", pct(r.YieldToMaturity), pct(r.CurrentYield)))
	b.WriteString(fmt.Sprintf("Duration:     %.4f (modified %.4f)\n", r.Duration, r.ModifiedDuration))
	b.WriteString(fmt.Sprintf("NPV:          %.4f at %s\n", r.NetPresentValue, pct(r.PeriodicRate)))
	if r.InternalRateErr != "" {
		b.WriteString(fmt.Sprintf("IRR:          n/a (%s)\n", r.InternalRateErr))
	} else {
		b.WriteString(fmt.Sprintf("IRR:          %s per period\n", pct(r.InternalRate)))
	}

	b.WriteString("Schedule:\n")
	for i, f := range r.CashFlows {
		var disc float64
		if i < len(r.DiscountedFlows) {
			disc = r.DiscountedFlows[i]
		}
		b.WriteString(fmt.Sprintf("  %3d  %12.4f  %12.4f\n", i+1, f, disc))
	}
	return b.String()
}

// FormatPortfolioStatus summarises holdings and allocations.
func FormatPortfolioStatus(p *model.Portfolio) string {
	var b strings.Builder
	b.WriteString("== Portfolio ==\n")
	b.WriteString(fmt.Sprintf("Initial value: %s (since %s)\n", p.InitialValue.StringFixed(2), p.InitialDate.Format("2006-01-02")))

	tickers := make([]string, 0, len(p.Assets))
	for k := range p.Assets {
		tickers = append(tickers, k)
	}
	sort.Strings(tickers)

	invested := decimal.Zero
	for _, k := range tickers {
		a := p.Assets[k]
		invested = invested.Add(a.AmountInvested)
		line := fmt.Sprintf("  %-8s %12s  %5d records", k, a.AmountInvested.StringFixed(2), len(a.StockData.Data))
		if n := len(a.StockData.Data); n > 0 {
			first, last := a.StockData.Data[0], a.StockData.Data[n-1]
			line += fmt.Sprintf("  %s..%s  last %.2f", first.Date.Format("2006-01-02"), last.Date.Format("2006-01-02"), last.Close)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(fmt.Sprintf("Invested: %s | unallocated: %s\n",
		invested.StringFixed(2), p.InitialValue.Sub(invested).StringFixed(2)))
	if !p.UpdatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Updated: %s\n", p.UpdatedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}

func pct(v float64) string {
	return fmt.Sprintf("%+.4f%%", v*100)
}
