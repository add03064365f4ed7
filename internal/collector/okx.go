package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"momentumbot/internal/model"
)

const okxDefaultBaseURL = "https://www.okx.com"

// OKXFetcher implements Fetcher using the OKX public market-data REST API.
type OKXFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewOKXFetcher creates a fetcher with optional proxy support.
func NewOKXFetcher(baseURL, proxyURL string, timeout time.Duration) *OKXFetcher {
	if baseURL == "" {
		baseURL = okxDefaultBaseURL
	}
	return &OKXFetcher{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *OKXFetcher) Name() string { return "okx" }

// okxCandles is the response envelope of /api/v5/market/candles.
// Each row is [ts, o, h, l, c, vol, volCcy, volCcyQuote, confirm], newest first.
type okxCandles struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

func (f *OKXFetcher) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.Bar, error) {
	q := url.Values{}
	q.Set("instId", symbol)
	q.Set("bar", interval)
	q.Set("limit", fmt.Sprintf("%d", limit))
	endpoint := fmt.Sprintf("%s/api/v5/market/candles?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("okx fetch: %v: %w", err, model.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("okx read body: %v: %w", err, model.ErrUpstreamUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("okx: status %d, body: %s: %w", resp.StatusCode, string(body), model.ErrUpstreamUnavailable)
	}

	var candles okxCandles
	if err := json.Unmarshal(body, &candles); err != nil {
		return nil, fmt.Errorf("okx decode: %v: %w", err, model.ErrUpstreamUnavailable)
	}
	if candles.Code != "0" {
		return nil, fmt.Errorf("okx api error %s: %s: %w", candles.Code, candles.Msg, model.ErrUpstreamUnavailable)
	}
	if len(candles.Data) == 0 {
		return nil, fmt.Errorf("okx: no candles for %s: %w", symbol, model.ErrUpstreamUnavailable)
	}

	bars := make([]model.Bar, 0, len(candles.Data))
	for i, row := range candles.Data {
		b, err := parseOKXRow(row)
		if err != nil {
			return nil, fmt.Errorf("okx row %d: %v: %w", i, err, model.ErrUpstreamUnavailable)
		}
		bars = append(bars, b)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	return dedupe(bars), nil
}

func parseOKXRow(row []string) (model.Bar, error) {
	if len(row) < 6 {
		return model.Bar{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}
	ts, err := decimal.NewFromString(row[0])
	if err != nil {
		return model.Bar{}, fmt.Errorf("timestamp %q: %w", row[0], err)
	}
	vals := make([]float64, 5)
	for i := range vals {
		d, err := decimal.NewFromString(row[i+1])
		if err != nil {
			return model.Bar{}, fmt.Errorf("field %d %q: %w", i+1, row[i+1], err)
		}
		vals[i] = d.InexactFloat64()
	}
	return model.Bar{
		Timestamp: ts.IntPart(),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

// dedupe drops bars whose timestamp repeats the previous one. Input must be sorted.
func dedupe(bars []model.Bar) []model.Bar {
	if len(bars) < 2 {
		return bars
	}
	out := bars[:1]
	for _, b := range bars[1:] {
		if b.Timestamp == out[len(out)-1].Timestamp {
			continue
		}
		out = append(out, b)
	}
	return out
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
