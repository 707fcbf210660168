package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"FundQuant/internal/model"
)

var (
	ErrNoSymbols = errors.New("no symbols provided")
	ErrNoDays    = errors.New("no days provided")
)

// DefaultTimeout applies to every provider request.
const DefaultTimeout = 30 * time.Second

// Fetcher downloads end-of-day price records for a set of symbols.
type Fetcher interface {
	// FetchEOD returns up to days records per symbol. Records of different symbols
	// may be interleaved and are not guaranteed to be in date order.
	FetchEOD(ctx context.Context, symbols []string, days int) ([]model.PriceRecord, error)
	Name() string
}

func validateRequest(symbols []string, days int) error {
	if len(symbols) == 0 {
		return ErrNoSymbols
	}
	if days <= 0 {
		return ErrNoDays
	}
	return nil
}

// newHTTPClient builds a client that routes through proxyURL when one is set.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: transport,
	}
}
