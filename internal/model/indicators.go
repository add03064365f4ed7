package model

import (
	"fmt"
	"math"
	"time"
)

// Reading is an indicator value that may be undefined (warm-up, flat range).
type Reading struct {
	Value float64
	Valid bool
}

// Defined wraps v as a valid reading.
func Defined(v float64) Reading { return Reading{Value: v, Valid: true} }

// Undefined is the zero reading.
var Undefined = Reading{}

// Usable reports whether the reading can be compared against thresholds.
func (r Reading) Usable() bool {
	return r.Valid && !math.IsNaN(r.Value) && !math.IsInf(r.Value, 0)
}

// String formats the reading with two decimals, or "n/a".
func (r Reading) String() string {
	if !r.Usable() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", r.Value)
}

// IndicatorPoint holds the indicator values aligned to one bar.
type IndicatorPoint struct {
	Timestamp int64
	Close     float64
	RSI       Reading
	RawK      Reading
	StochK    Reading // smoothed %K
	StochD    Reading
}

// Snapshot is the latest indicator reading used for classification.
type Snapshot struct {
	Timestamp int64
	Price     float64
	RSI       Reading
	StochK    Reading
	StochD    Reading
}

// Time returns the snapshot bar time in UTC.
func (s Snapshot) Time() time.Time {
	return time.UnixMilli(s.Timestamp).UTC()
}

// IndicatorParams configures window sizes for the indicator engine.
type IndicatorParams struct {
	RSIWindow   int
	StochWindow int
	StochSmooth int
}

// DefaultIndicatorParams returns RSI(14) and Stochastic(14, 3).
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{RSIWindow: 14, StochWindow: 14, StochSmooth: 3}
}

// MinBars is the number of bars needed for a defined latest RSI and smoothed %K.
func (p IndicatorParams) MinBars() int {
	return max(p.RSIWindow+1, p.StochWindow+p.StochSmooth)
}
