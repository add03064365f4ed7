package calculator

import (
	"errors"

	"momentumbot/internal/model"
)

// Stochastic holds the aligned stochastic oscillator series.
type Stochastic struct {
	RawK []model.Reading
	K    []model.Reading // SMA(RawK, smooth)
	D    []model.Reading // SMA(K, smooth)
}

// StochasticSeries computes the price stochastic oscillator over close/high/low.
// Raw %K is undefined during warm-up and wherever the window's high equals its low.
func StochasticSeries(bars []model.Bar, window, smooth int) (*Stochastic, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	if smooth <= 0 {
		return nil, errors.New("smooth window must be positive")
	}

	raw := make([]model.Reading, len(bars))
	for i := window - 1; i < len(bars); i++ {
		high, low, err := WindowRange(bars, i, window)
		if err != nil {
			return nil, err
		}
		if pos, ok := RangePosition(bars[i].Close, high, low); ok {
			raw[i] = model.Defined(pos)
		}
	}

	k, err := SMASeries(raw, smooth)
	if err != nil {
		return nil, err
	}
	d, err := SMASeries(k, smooth)
	if err != nil {
		return nil, err
	}
	return &Stochastic{RawK: raw, K: k, D: d}, nil
}
