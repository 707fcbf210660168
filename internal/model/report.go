package model

import "time"

// Percentile is the value at rank P (0-100) of a series.
type Percentile struct {
	P     float64 `json:"p"`
	Value float64 `json:"value"`
}

// SeriesReport holds the statistics computed over one return series.
type SeriesReport struct {
	Label                  string
	Mode                   string
	Count                  int
	PopulationMean         float64
	SampleMean             float64
	GeometricMean          float64
	HarmonicMean           float64
	ExpectedProbability    float64
	Min                    float64
	Max                    float64
	Range                  float64
	PopulationVariance     float64
	SampleVariance         float64
	PopulationStdDev       float64
	SampleStdDev           float64
	DownsideDeviation      float64
	CoefficientOfVariation float64
	SharpeRatio            float64
	RiskFreeRate           float64
	Skewness               float64
	ExcessKurtosis         float64
	ProbabilityNegative    float64
	Percentiles            []Percentile
	GeneratedAt            time.Time
}

// BondReport holds the valuation measures of one bond.
type BondReport struct {
	Name             string
	Frequency        string
	ParValue         float64
	AnnualRate       float64
	IssuanceDate     time.Time
	MaturityDate     time.Time
	TermYears        float64
	Periods          float64
	PeriodicRate     float64
	CouponPayment    float64
	PresentValue     float64
	FutureValue      float64
	YieldToMaturity  float64
	CurrentYield     float64
	AnnualCashFlow   float64
	MarketPrice      float64
	Duration         float64
	ModifiedDuration float64
	CashFlows        []float64
	DiscountedFlows  []float64
	NetPresentValue  float64
	InternalRate     float64
	InternalRateErr  string
	GeneratedAt      time.Time
}
