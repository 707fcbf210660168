package portfolio

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"FundQuant/internal/logger"
	"FundQuant/internal/model"
	"FundQuant/internal/returns"
	"FundQuant/internal/stats"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrUnknownTicker  = errors.New("unknown ticker")
	ErrNoCommonDates  = errors.New("no dates shared by all weighted tickers")
	ErrInvalidWeights = errors.New("weights must sum to 1")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrOverAllocation = errors.New("allocations exceed the initial value")
)

const weightSumTolerance = 1e-9

// Manager owns a portfolio and persists it after every change. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	p        *model.Portfolio
	filePath string
	log      zerolog.Logger
}

// NewManager loads the portfolio at filePath, or starts a new one with initialValue
// dated now. An empty filePath keeps the portfolio in memory only.
func NewManager(filePath string, initialValue decimal.Decimal, log zerolog.Logger) (*Manager, error) {
	p := &model.Portfolio{Assets: map[string]*model.Asset{}}
	if filePath != "" {
		loaded, err := LoadState(filePath)
		if err != nil {
			return nil, err
		}
		p = loaded
	}

	if p.InitialDate.IsZero() {
		p.InitialValue = initialValue
		p.InitialDate = time.Now().UTC()
	}

	m := &Manager{p: p, filePath: filePath, log: logger.Component(log, "portfolio")}
	if err := m.save(); err != nil {
		return nil, err
	}
	m.log.Info().
		Str("initial_value", p.InitialValue.String()).
		Int("assets", len(p.Assets)).
		Msg("portfolio loaded")
	return m, nil
}

// Snapshot returns a copy of the portfolio. Record slices are copied as well.
func (m *Manager) Snapshot() model.Portfolio {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *m.p
	cp.Assets = make(map[string]*model.Asset, len(m.p.Assets))
	for k, a := range m.p.Assets {
		ac := *a
		ac.StockData.Data = append([]model.PriceRecord(nil), a.StockData.Data...)
		cp.Assets[k] = &ac
	}
	return cp
}

// Tickers returns the held tickers in sorted order.
func (m *Manager) Tickers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickers()
}

func (m *Manager) tickers() []string {
	out := make([]string, 0, len(m.p.Assets))
	for k := range m.p.Assets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// AddRecords files each record under its symbol and keeps every asset sorted by
// date. A record for a UTC calendar day the asset already holds replaces the
// stored one, whatever its time of day.
// It returns the number of new dates added.
func (m *Manager) AddRecords(records []model.PriceRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	touched := map[string]bool{}
	var added int
	for _, r := range records {
		if r.Symbol == "" {
			continue
		}
		a := m.asset(r.Symbol)
		if i := indexOfDate(a.StockData.Data, r.Date.Time); i >= 0 {
			a.StockData.Data[i] = r
		} else {
			a.StockData.Data = append(a.StockData.Data, r)
			added++
		}
		touched[r.Symbol] = true
	}

	for sym := range touched {
		data := m.p.Assets[sym].StockData.Data
		sort.SliceStable(data, func(i, j int) bool { return data[i].Date.Before(data[j].Date.Time) })
		m.p.Assets[sym].StockData.Pagination = model.Pagination{Count: len(data), Total: len(data)}
	}

	if err := m.save(); err != nil {
		return added, err
	}
	return added, nil
}

func indexOfDate(data []model.PriceRecord, d time.Time) int {
	key := dayKey(d)
	for i := range data {
		if dayKey(data[i].Date.Time) == key {
			return i
		}
	}
	return -1
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func (m *Manager) asset(ticker string) *model.Asset {
	a, ok := m.p.Assets[ticker]
	if !ok {
		a = &model.Asset{Ticker: ticker, AmountInvested: decimal.Zero}
		m.p.Assets[ticker] = a
	}
	return a
}

// Allocate sets the amount invested in ticker, adding the asset if needed. The sum
// of all allocations may not exceed the initial value when one is set.
func (m *Manager) Allocate(ticker string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%s: %w", ticker, ErrNegativeAmount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	total := amount
	for k, a := range m.p.Assets {
		if k != ticker {
			total = total.Add(a.AmountInvested)
		}
	}
	if m.p.InitialValue.IsPositive() && total.GreaterThan(m.p.InitialValue) {
		return fmt.Errorf("%w: %s > %s", ErrOverAllocation, total.StringFixed(2), m.p.InitialValue.StringFixed(2))
	}

	m.asset(ticker).AmountInvested = amount
	return m.save()
}

// Unallocated is the part of the initial value not assigned to any asset.
func (m *Manager) Unallocated() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	rest := m.p.InitialValue
	for _, a := range m.p.Assets {
		rest = rest.Sub(a.AmountInvested)
	}
	return rest
}

// Weights derives each ticker's share of the total amount invested. Nil when nothing is invested.
func (m *Manager) Weights() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	for _, a := range m.p.Assets {
		total = total.Add(a.AmountInvested)
	}
	if !total.IsPositive() {
		return nil
	}
	weights := make(map[string]float64, len(m.p.Assets))
	for k, a := range m.p.Assets {
		weights[k] = a.AmountInvested.Div(total).InexactFloat64()
	}
	return weights
}

// Returns derives the holding-period returns of one ticker.
func (m *Manager) Returns(ticker string) (stats.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.returns(ticker)
}

func (m *Manager) returns(ticker string) (stats.Series, error) {
	a, ok := m.p.Assets[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	r, err := returns.FromStockData(&a.StockData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	return r, nil
}

// Aggregate combines asset returns into one series, Σ w_i·r_i per period. Every
// weighted ticker must be held and weights must sum to 1. Only days held by all
// weighted tickers take part, so each period spans the same calendar days for
// every asset; dividends paid on a dropped day are not counted.
func (m *Manager) Aggregate(weights map[string]float64) (stats.Series, error) {
	if len(weights) == 0 {
		return nil, ErrInvalidWeights
	}

	tickers := make([]string, 0, len(weights))
	ws := make([]float64, 0, len(weights))
	for k := range weights {
		tickers = append(tickers, k)
	}
	sort.Strings(tickers)
	for _, k := range tickers {
		ws = append(ws, weights[k])
	}
	if s := floats.Sum(ws); math.Abs(s-1) > weightSumTolerance {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidWeights, s)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	histories := make([][]model.PriceRecord, len(tickers))
	held := map[string]int{}
	for i, k := range tickers {
		a, ok := m.p.Assets[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, k)
		}
		if len(a.StockData.Data) == 0 {
			return nil, fmt.Errorf("%s: %w", k, returns.ErrEmptySeries)
		}
		histories[i] = a.StockData.Data
		for _, r := range a.StockData.Data {
			held[dayKey(r.Date.Time)]++
		}
	}

	var out []float64
	for i, k := range tickers {
		shared := make([]model.PriceRecord, 0, len(histories[i]))
		for _, r := range histories[i] {
			if held[dayKey(r.Date.Time)] == len(tickers) {
				shared = append(shared, r)
			}
		}
		if len(shared) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrNoCommonDates, tickers)
		}
		r, err := returns.HoldingPeriod(shared)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		if out == nil {
			out = make([]float64, len(r))
		}
		floats.AddScaled(out, ws[i], r)
	}
	return stats.Series(out), nil
}

func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	if err := SaveState(m.filePath, m.p); err != nil {
		m.log.Error().Err(err).Str("path", m.filePath).Msg("failed to save portfolio")
		return fmt.Errorf("save portfolio: %w", err)
	}
	return nil
}
