// Package returns derives holding-period returns from chronologically ordered price records.
package returns

import (
	"errors"
	"fmt"

	"FundQuant/internal/model"
	"FundQuant/internal/stats"
)

var (
	ErrEmptySeries = errors.New("no price records")
	ErrUnsorted    = errors.New("price records are not in chronological order")
)

// HoldingPeriod returns one return per record. The first entry is always 0;
// entry i is (close[i] - close[i-1] + dividend[i]) / close[i-1].
// Records must already be sorted by date; equal dates are accepted.
func HoldingPeriod(records []model.PriceRecord) (stats.Series, error) {
	if len(records) == 0 {
		return nil, ErrEmptySeries
	}
	series := make(stats.Series, len(records))
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		if cur.Date.Before(prev.Date.Time) {
			return nil, fmt.Errorf("%w: %s at index %d precedes %s", ErrUnsorted,
				cur.Date.Format("2006-01-02"), i, prev.Date.Format("2006-01-02"))
		}
		series[i] = (cur.Close - prev.Close + cur.Dividend) / prev.Close
	}
	return series, nil
}

// FromStockData derives returns for a single-symbol StockData page.
func FromStockData(sd *model.StockData) (stats.Series, error) {
	if sd == nil {
		return nil, ErrEmptySeries
	}
	return HoldingPeriod(sd.Data)
}

