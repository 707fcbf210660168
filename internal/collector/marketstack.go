package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"FundQuant/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultMarketstackURL is the base URL of the Marketstack v1 API.
	DefaultMarketstackURL = "http://api.marketstack.com/v1"

	// PageLimit is the maximum number of records Marketstack returns per request.
	PageLimit = 1000

	// DefaultRateLimit is the default request rate (requests per second).
	DefaultRateLimit = 5
)

// MarketstackFetcher implements Fetcher using the Marketstack EOD endpoint.
type MarketstackFetcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// MarketstackOption configures a MarketstackFetcher.
type MarketstackOption func(*MarketstackFetcher)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) MarketstackOption {
	return func(f *MarketstackFetcher) {
		f.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) MarketstackOption {
	return func(f *MarketstackFetcher) {
		f.client = c
	}
}

// WithProxy routes requests through proxyURL.
func WithProxy(proxyURL string) MarketstackOption {
	return func(f *MarketstackFetcher) {
		f.client = newHTTPClient(proxyURL)
	}
}

// WithRateLimit sets the request rate. Values <= 0 disable pacing.
func WithRateLimit(requestsPerSecond int) MarketstackOption {
	return func(f *MarketstackFetcher) {
		if requestsPerSecond <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) MarketstackOption {
	return func(f *MarketstackFetcher) {
		f.log = l
	}
}

// NewMarketstackFetcher creates a Marketstack client.
func NewMarketstackFetcher(apiKey string, opts ...MarketstackOption) *MarketstackFetcher {
	f := &MarketstackFetcher{
		baseURL: DefaultMarketstackURL,
		apiKey:  apiKey,
		client:  newHTTPClient(""),
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *MarketstackFetcher) Name() string { return "marketstack" }

// FetchEOD pages through /eod in steps of PageLimit until days records per
// symbol have been collected or the provider reports no more data.
func (f *MarketstackFetcher) FetchEOD(ctx context.Context, symbols []string, days int) ([]model.PriceRecord, error) {
	if err := validateRequest(symbols, days); err != nil {
		return nil, err
	}

	want := days * len(symbols)
	var records []model.PriceRecord
	for offset := 0; len(records) < want; offset += PageLimit {
		page, err := f.fetchPage(ctx, symbols, offset)
		if err != nil {
			return nil, fmt.Errorf("marketstack offset %d: %w", offset, err)
		}
		records = append(records, page.Data...)
		f.log.Debug().
			Int("offset", offset).
			Int("count", len(page.Data)).
			Int("total", page.Pagination.Total).
			Msg("marketstack page fetched")

		if len(page.Data) == 0 || offset+len(page.Data) >= page.Pagination.Total {
			break
		}
	}
	if len(records) > want {
		records = records[:want]
	}
	return records, nil
}

func (f *MarketstackFetcher) fetchPage(ctx context.Context, symbols []string, offset int) (*model.StockData, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("access_key", f.apiKey)
	params.Set("symbols", strings.Join(symbols, ","))
	params.Set("limit", strconv.Itoa(PageLimit))
	params.Set("offset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/eod?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}

	var page model.StockData
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &page, nil
}
