package collector

import (
	"context"
	"fmt"
	"time"

	"FundQuant/internal/logger"
	"FundQuant/internal/model"

	"github.com/rs/zerolog"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price   float64
	Records []model.PriceRecord
	Err     error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchEOD(_ context.Context, symbols []string, days int) ([]model.PriceRecord, error) {
	if err := validateRequest(symbols, days); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Records != nil {
		return m.Records, nil
	}
	var out []model.PriceRecord
	for _, s := range symbols {
		out = append(out, generateMockRecords(s, m.Price, days)...)
	}
	return out, nil
}

// generateMockRecords walks the price up and down by 1% so every series has
// both gains and losses.
func generateMockRecords(symbol string, basePrice float64, count int) []model.PriceRecord {
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -count)
	records := make([]model.PriceRecord, count)
	p := basePrice
	for i := 0; i < count; i++ {
		if i > 0 {
			if i%3 == 0 {
				p *= 0.99
			} else {
				p *= 1.01
			}
		}
		records[i] = model.PriceRecord{
			Open:        p * 0.999,
			High:        p * 1.005,
			Low:         p * 0.995,
			Close:       p,
			Volume:      1000000,
			AdjClose:    p,
			SplitFactor: 1,
			Symbol:      symbol,
			Exchange:    "MOCK",
			Date:        model.NewTimestamp(start.AddDate(0, 0, i)),
		}
	}
	return records
}

// Sink receives fetched records.
type Sink interface {
	AddRecords(records []model.PriceRecord) (int, error)
}

// Collector fetches price history for the configured symbols into a Sink.
type Collector struct {
	Fetcher Fetcher
	Sink    Sink
	Symbols []string
	Days    int
	log     zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, sink Sink, symbols []string, days int, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Sink:    sink,
		Symbols: symbols,
		Days:    days,
		log:     logger.Component(log, "collector").With().Str("provider", fetcher.Name()).Logger(),
	}
}

// Collect downloads the history and hands it to the sink. It returns the number
// of records the sink accepted.
func (c *Collector) Collect(ctx context.Context) (int, error) {
	start := time.Now()
	records, err := c.Fetcher.FetchEOD(ctx, c.Symbols, c.Days)
	if err != nil {
		return 0, fmt.Errorf("fetch eod: %w", err)
	}
	added, err := c.Sink.AddRecords(records)
	if err != nil {
		return added, fmt.Errorf("store records: %w", err)
	}
	c.log.Info().
		Strs("symbols", c.Symbols).
		Int("fetched", len(records)).
		Int("added", added).
		Dur("elapsed", time.Since(start)).
		Msg("price history collected")
	return added, nil
}
