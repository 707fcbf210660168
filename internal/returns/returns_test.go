package returns

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"FundQuant/internal/model"
	"FundQuant/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(day int, close, dividend float64) model.PriceRecord {
	return model.PriceRecord{
		Symbol:   "AAPL",
		Exchange: "XNAS",
		Close:    close,
		Dividend: dividend,
		Date:     model.NewTimestamp(time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)),
	}
}

func TestHoldingPeriod(t *testing.T) {
	records := []model.PriceRecord{
		record(1, 100, 0),
		record(4, 110, 0),
		record(5, 99, 0),
		record(6, 99, 0.99),
	}

	got, err := HoldingPeriod(records)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, 0.0, got[0])
	assert.InDelta(t, 0.10, got[1], 1e-12)
	assert.InDelta(t, -0.10, got[2], 1e-12)
	assert.InDelta(t, 0.01, got[3], 1e-12)
}

func TestHoldingPeriod_SingleRecord(t *testing.T) {
	got, err := HoldingPeriod([]model.PriceRecord{record(1, 50, 0)})
	require.NoError(t, err)
	assert.Equal(t, stats.Series{0}, got)
}

func TestHoldingPeriod_Errors(t *testing.T) {
	_, err := HoldingPeriod(nil)
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = HoldingPeriod([]model.PriceRecord{record(5, 100, 0), record(4, 101, 0)})
	assert.ErrorIs(t, err, ErrUnsorted)

	_, err = FromStockData(nil)
	assert.ErrorIs(t, err, ErrEmptySeries)
}

func TestHoldingPeriod_SameDayAccepted(t *testing.T) {
	got, err := HoldingPeriod([]model.PriceRecord{record(4, 100, 0), record(4, 102, 0)})
	require.NoError(t, err)
	assert.InDelta(t, 0.02, got[1], 1e-12)
}

func TestFromStockData_SavedResponse(t *testing.T) {
	body := `{
		"pagination": {"limit": 1000, "offset": 0, "count": 3, "total": 3},
		"data": [
			{"open": 10, "high": 11, "low": 9, "close": 10, "volume": 1000, "dividend": 0,
			 "split_factor": 1, "symbol": "MSFT", "exchange": "XNAS", "date": "2024-03-01T00:00:00+0000"},
			{"open": 10, "high": 12, "low": 10, "close": 11, "volume": 1200, "dividend": 0,
			 "split_factor": 1, "symbol": "MSFT", "exchange": "XNAS", "date": "2024-03-04T00:00:00+0000"},
			{"open": 11, "high": 12, "low": 10, "close": 11, "volume": 900, "dividend": 0.11,
			 "split_factor": 1, "symbol": "MSFT", "exchange": "XNAS", "date": "2024-03-05T00:00:00+0000"}
		]
	}`
	path := filepath.Join(t.TempDir(), "MSFT.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	sd, err := model.LoadStockData(path)
	require.NoError(t, err)
	assert.Equal(t, 3, sd.Pagination.Total)

	got, err := FromStockData(sd)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got[0])
	assert.InDelta(t, 0.1, got[1], 1e-12)
	assert.InDelta(t, 0.01, got[2], 1e-12)

}

func TestHoldingPeriod_FeedsStatistics(t *testing.T) {
	records := []model.PriceRecord{record(1, 100, 0), record(4, 110, 0), record(5, 99, 0)}
	series, err := HoldingPeriod(records)
	require.NoError(t, err)

	// Compounding the geometric mean over every period recovers the total return.
	g := stats.New(series).GeometricMean()
	assert.InDelta(t, 1.10*0.90-1, math.Pow(1+g, 3)-1, 1e-12)
}
