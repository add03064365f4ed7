package calculator

import (
	"errors"
	"math"

	"momentumbot/internal/model"
)

// WindowRange scans bars[end-window+1..end] and returns the highest high and lowest low.
func WindowRange(bars []model.Bar, end, window int) (high, low float64, err error) {
	if window <= 0 {
		return 0, 0, errors.New("window must be positive")
	}
	if end < 0 || end >= len(bars) {
		return 0, 0, errors.New("window end out of range")
	}
	start := end - window + 1
	if start < 0 {
		return 0, 0, model.ErrDataInsufficient
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i <= end; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// RangePosition returns where price sits within [low, high] on a 0-100 scale.
// ok is false for a flat range.
func RangePosition(price, high, low float64) (pos float64, ok bool) {
	if high <= low {
		return 0, false
	}
	return 100 * (price - low) / (high - low), true
}
