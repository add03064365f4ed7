package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"momentumbot/internal/calculator"
	"momentumbot/internal/model"
)

// Collector fetches bars for the configured instrument and runs the indicator engine.
type Collector struct {
	Fetcher  Fetcher
	Symbol   string
	Interval string
	Limit    int
	Params   model.IndicatorParams

	// Observe, when set, receives the duration of each fetch.
	Observe func(d time.Duration, err error)
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol, interval string, limit int, params model.IndicatorParams) *Collector {
	return &Collector{
		Fetcher:  fetcher,
		Symbol:   symbol,
		Interval: interval,
		Limit:    limit,
		Params:   params,
	}
}

// Fetch retrieves the bar series. Any fetch or shape failure is ErrUpstreamUnavailable.
func (c *Collector) Fetch(ctx context.Context) (*model.Series, error) {
	start := time.Now()
	bars, err := c.Fetcher.FetchBars(ctx, c.Symbol, c.Interval, c.Limit)
	if c.Observe != nil {
		c.Observe(time.Since(start), err)
	}
	if err != nil {
		if !errors.Is(err, model.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%v: %w", err, model.ErrUpstreamUnavailable)
		}
		return nil, fmt.Errorf("fetch %s %s from %s: %w", c.Symbol, c.Interval, c.Fetcher.Name(), err)
	}

	series := &model.Series{
		Symbol:    c.Symbol,
		Interval:  c.Interval,
		Bars:      bars,
		FetchedAt: time.Now().UTC(),
	}
	if idx := series.CheckOrder(); idx >= 0 {
		return nil, fmt.Errorf("malformed series from %s: timestamp at bar %d does not increase: %w",
			c.Fetcher.Name(), idx, model.ErrUpstreamUnavailable)
	}
	return series, nil
}

// Collect fetches bars and computes the indicator snapshot.
func (c *Collector) Collect(ctx context.Context) (*calculator.Result, error) {
	series, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] fetched %d bars for %s from %s", series.Len(), c.Symbol, c.Fetcher.Name())
	if last, ok := series.Last(); ok {
		log.Printf("[INFO] latest price: $%.4f at %s", last.Close, last.Time().Format(time.RFC3339))
	}

	res, err := calculator.Compute(series, c.Params)
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}
	log.Printf("[INFO] RSI: %s | Stochastic %%K: %s | %%D: %s",
		res.Latest.RSI, res.Latest.StochK, res.Latest.StochD)
	return res, nil
}
