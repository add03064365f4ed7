package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"momentumbot/internal/model"
)

const yahooDefaultBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps exchange symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(baseURL, proxyURL string, timeout time.Duration) *YahooFetcher {
	if baseURL == "" {
		baseURL = yahooDefaultBaseURL
	}
	return &YahooFetcher{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL, timeout),
		SymbolMap: map[string]string{
			"JUP-USDT-SWAP": "JUP29210-USD",
			"JUP-USDT":      "JUP29210-USD",
			"BTC-USDT-SWAP": "BTC-USD",
			"ETH-USDT-SWAP": "ETH-USD",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(vals []*float64, i int) (float64, bool) {
	if i >= len(vals) || vals[i] == nil {
		return 0, false
	}
	return *vals[i], true
}

func (f *YahooFetcher) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.Bar, error) {
	step, err := intervalDuration(interval)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), interval, yahooRange(step*time.Duration(limit)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %v: %w", err, model.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %v: %w", err, model.ErrUpstreamUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s: %w", resp.StatusCode, string(body), model.ErrUpstreamUnavailable)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %v: %w", err, model.ErrUpstreamUnavailable)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s: %w", chart.Chart.Error.Description, model.ErrUpstreamUnavailable)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s: %w", symbol, model.ErrUpstreamUnavailable)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, ok1 := at(quote.Open, i)
		h, ok2 := at(quote.High, i)
		l, ok3 := at(quote.Low, i)
		c, ok4 := at(quote.Close, i)
		if !(ok1 && ok2 && ok3 && ok4) {
			continue // null bar: no trades in the interval
		}
		v, _ := at(quote.Volume, i)
		bars = append(bars, model.Bar{
			Timestamp: ts * 1000,
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    v,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	bars = dedupe(bars)
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

// intervalDuration parses candle intervals such as "15m", "1h", "1d", "1w".
func intervalDuration(interval string) (time.Duration, error) {
	if len(interval) < 2 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	unit := map[string]time.Duration{
		"m": time.Minute,
		"h": time.Hour,
		"d": 24 * time.Hour,
		"w": 7 * 24 * time.Hour,
	}[strings.ToLower(interval[len(interval)-1:])]
	if unit == 0 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	return time.Duration(n) * unit, nil
}

// yahooRange picks the smallest chart range covering span. Intraday data stops at 60 days.
func yahooRange(span time.Duration) string {
	day := 24 * time.Hour
	switch {
	case span <= day:
		return "1d"
	case span <= 5*day:
		return "5d"
	case span <= 30*day:
		return "1mo"
	case span <= 60*day:
		return "60d"
	case span <= 365*day:
		return "1y"
	default:
		return "2y"
	}
}
