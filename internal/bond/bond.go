package bond

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidMaturityDate is returned when the maturity date is not strictly after
// issuance or leaves less than one compounding period.
var ErrInvalidMaturityDate = errors.New("invalid maturity date")

// Frequency is the number of compounding periods per year.
type Frequency int

const (
	Annual     Frequency = 1
	SemiAnnual Frequency = 2
	Quarterly  Frequency = 4
	Monthly    Frequency = 12
	Weekly     Frequency = 52
	Daily      Frequency = 365
)

// PeriodsPerYear returns the frequency as a float64.
func (f Frequency) PeriodsPerYear() float64 {
	return float64(f)
}

func (f Frequency) String() string {
	switch f {
	case Annual:
		return "annual"
	case SemiAnnual:
		return "semiannual"
	case Quarterly:
		return "quarterly"
	case Monthly:
		return "monthly"
	case Weekly:
		return "weekly"
	case Daily:
		return "daily"
	default:
		return fmt.Sprintf("frequency(%d)", int(f))
	}
}

// ParseFrequency maps a config name such as "semiannual" or "semi-annual" to a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "") {
	case "annual", "yearly":
		return Annual, nil
	case "semiannual":
		return SemiAnnual, nil
	case "quarterly":
		return Quarterly, nil
	case "monthly":
		return Monthly, nil
	case "weekly":
		return Weekly, nil
	case "daily":
		return Daily, nil
	}
	return 0, fmt.Errorf("unknown frequency %q", s)
}

// Bond is a fixed-income instrument. It is immutable after Issue.
type Bond struct {
	IssuanceDate       time.Time
	MaturityDate       time.Time
	Frequency          Frequency
	ParValue           float64
	AnnualInterestRate float64
}

// Issue creates a bond issued now.
func Issue(parValue, annualInterestRate float64, frequency Frequency, maturityDate time.Time) (*Bond, error) {
	return issueAt(time.Now(), parValue, annualInterestRate, frequency, maturityDate)
}

func issueAt(now time.Time, parValue, annualInterestRate float64, frequency Frequency, maturityDate time.Time) (*Bond, error) {
	if !maturityDate.After(now) {
		return nil, ErrInvalidMaturityDate
	}
	b := &Bond{
		IssuanceDate:       now,
		MaturityDate:       maturityDate,
		Frequency:          frequency,
		ParValue:           parValue,
		AnnualInterestRate: annualInterestRate,
	}
	if b.CompoundingPeriods() < 1 {
		return nil, ErrInvalidMaturityDate
	}
	return b, nil
}

// PeriodicRate is the interest rate per compounding period.
func (b *Bond) PeriodicRate() float64 {
	return b.AnnualInterestRate / b.Frequency.PeriodsPerYear()
}

// TermToMaturity is the number of whole days between issuance and maturity, in 365-day years.
func (b *Bond) TermToMaturity() float64 {
	if !b.MaturityDate.After(b.IssuanceDate) {
		return 0
	}
	days := math.Trunc(b.MaturityDate.Sub(b.IssuanceDate).Hours() / 24)
	return days / Daily.PeriodsPerYear()
}

// CompoundingPeriods is fractional: a 3y1d semiannual bond has slightly more than 6 periods.
func (b *Bond) CompoundingPeriods() float64 {
	return b.TermToMaturity() * b.Frequency.PeriodsPerYear()
}

// wholePeriods is the number of regular coupons paid before the terminal payment.
func (b *Bond) wholePeriods() int {
	return int(math.Floor(b.CompoundingPeriods()))
}

func (b *Bond) CouponPayment() float64 {
	return b.ParValue * b.PeriodicRate()
}

func (b *Bond) FutureValue() float64 {
	return b.ParValue * math.Pow(1+b.PeriodicRate(), b.CompoundingPeriods())
}

func (b *Bond) PresentValue() float64 {
	return b.ParValue / math.Pow(1+b.PeriodicRate(), b.CompoundingPeriods())
}

// YieldToMaturity recovers the periodic yield from the present value round trip.
func (b *Bond) YieldToMaturity() float64 {
	return math.Pow(b.ParValue/b.PresentValue()-1, 1/b.CompoundingPeriods())
}

func (b *Bond) AnnualCashFlow() float64 {
	return b.CouponPayment() * b.Frequency.PeriodsPerYear()
}

func (b *Bond) CurrentYield() float64 {
	return b.AnnualCashFlow() / b.PresentValue()
}

// CashFlows returns one coupon per whole period followed by a terminal par+coupon payment.
func (b *Bond) CashFlows() []float64 {
	n := b.wholePeriods()
	coupon := b.CouponPayment()
	flows := make([]float64, 0, n+1)
	for t := 1; t <= n; t++ {
		flows = append(flows, coupon)
	}
	return append(flows, b.ParValue+coupon)
}

// DiscountedCashFlows mirrors CashFlows, discounting each coupon at its period and the
// terminal payment at the fractional period count.
func (b *Bond) DiscountedCashFlows() []float64 {
	n := b.wholePeriods()
	coupon := b.CouponPayment()
	growth := 1 + b.PeriodicRate()
	flows := make([]float64, 0, n+1)
	for t := 1; t <= n; t++ {
		flows = append(flows, coupon/math.Pow(growth, float64(t)))
	}
	return append(flows, (b.ParValue+coupon)/math.Pow(growth, b.CompoundingPeriods()))
}

// Duration is the Macaulay duration. A nil marketPrice prices the bond at PresentValue.
func (b *Bond) Duration(marketPrice *float64) float64 {
	price := b.PresentValue()
	if marketPrice != nil {
		price = *marketPrice
	}

	coupon := b.CouponPayment()
	growth := 1 + b.PeriodicRate()
	periods := b.CompoundingPeriods()

	var weighted float64
	for t := 1; t <= b.wholePeriods(); t++ {
		ft := float64(t)
		weighted += ft * coupon / math.Pow(growth, ft)
	}
	weighted += periods * (b.ParValue + coupon) / math.Pow(growth, periods)

	return weighted / price
}

func (b *Bond) ModifiedDuration(marketPrice *float64) float64 {
	return b.Duration(marketPrice) / (1 + b.YieldToMaturity()/b.CompoundingPeriods())
}
