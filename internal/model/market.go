package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// PriceRecord is one end-of-day quote for a symbol, including adjusted values and dividends.
type PriceRecord struct {
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      float64   `json:"volume"`
	AdjHigh     float64   `json:"adj_high"`
	AdjLow      float64   `json:"adj_low"`
	AdjClose    float64   `json:"adj_close"`
	AdjOpen     float64   `json:"adj_open"`
	AdjVolume   float64   `json:"adj_volume"`
	SplitFactor float64   `json:"split_factor"`
	Dividend    float64   `json:"dividend"`
	Symbol      string    `json:"symbol"`
	Exchange    string    `json:"exchange"`
	Date        Timestamp `json:"date"`
}

// Pagination is the paging envelope of an EOD response.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Total  int `json:"total"`
}

// StockData is one page of EOD quotes as returned by the data provider.
type StockData struct {
	Pagination Pagination    `json:"pagination"`
	Data       []PriceRecord `json:"data"`
}

// LoadStockData reads a saved EOD response from disk.
func LoadStockData(path string) (*StockData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stock data: %w", err)
	}
	var sd StockData
	if err := json.Unmarshal(raw, &sd); err != nil {
		return nil, fmt.Errorf("decode stock data: %w", err)
	}
	return &sd, nil
}

// Timestamp accepts the provider's "+0000" offsets as well as RFC 3339 and plain dates.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NewTimestamp wraps t in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Time.UTC().Format(time.RFC3339))
}
