package calculator

import (
	"errors"
	"fmt"

	"momentumbot/internal/model"
)

// Result is the indicator engine output: one point per bar plus the latest snapshot.
type Result struct {
	Points []model.IndicatorPoint
	Latest model.Snapshot
}

// Compute derives RSI and the stochastic oscillator for every bar of the series.
// It returns ErrDataInsufficient when the latest RSI or smoothed %K is undefined.
func Compute(series *model.Series, params model.IndicatorParams) (*Result, error) {
	if series == nil {
		return nil, errors.New("nil series")
	}
	if params.RSIWindow <= 0 || params.StochWindow <= 0 || params.StochSmooth <= 0 {
		return nil, fmt.Errorf("invalid indicator params %+v", params)
	}
	n := series.Len()
	if need := params.MinBars(); n < need {
		return nil, fmt.Errorf("have %d bars, need %d: %w", n, need, model.ErrDataInsufficient)
	}

	rsi, err := RSISeries(series.Closes(), params.RSIWindow)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	stoch, err := StochasticSeries(series.Bars, params.StochWindow, params.StochSmooth)
	if err != nil {
		return nil, fmt.Errorf("stochastic: %w", err)
	}

	points := make([]model.IndicatorPoint, n)
	for i, b := range series.Bars {
		points[i] = model.IndicatorPoint{
			Timestamp: b.Timestamp,
			Close:     b.Close,
			RSI:       rsi[i],
			RawK:      stoch.RawK[i],
			StochK:    stoch.K[i],
			StochD:    stoch.D[i],
		}
	}

	last := points[n-1]
	if !last.RSI.Usable() {
		return nil, fmt.Errorf("latest rsi undefined: %w", model.ErrDataInsufficient)
	}
	if !last.StochK.Usable() {
		return nil, fmt.Errorf("latest stochastic %%K undefined (flat range in window): %w", model.ErrDataInsufficient)
	}

	return &Result{
		Points: points,
		Latest: model.Snapshot{
			Timestamp: last.Timestamp,
			Price:     last.Close,
			RSI:       last.RSI,
			StochK:    last.StochK,
			StochD:    last.StochD,
		},
	}, nil
}
