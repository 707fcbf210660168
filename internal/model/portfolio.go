package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is a ticker held in a portfolio together with its fetched price history.
type Asset struct {
	AmountInvested decimal.Decimal `json:"amount_invested"`
	Ticker         string          `json:"ticker"`
	StockData      StockData       `json:"stock_data"`
}

// Portfolio maps tickers to assets. InitialValue is the capital allocated across them.
type Portfolio struct {
	InitialValue decimal.Decimal   `json:"initial_value"`
	InitialDate  time.Time         `json:"initial_date"`
	Assets       map[string]*Asset `json:"assets"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
