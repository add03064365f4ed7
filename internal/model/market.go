package model

import "time"

// Bar represents a single OHLCV candlestick. Timestamp is the bar open time in epoch milliseconds.
type Bar struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Time returns the bar open time in UTC.
func (b Bar) Time() time.Time {
	return time.UnixMilli(b.Timestamp).UTC()
}

// Series is an ordered, read-only sequence of bars for one instrument and interval.
type Series struct {
	Symbol    string
	Interval  string
	Bars      []Bar
	FetchedAt time.Time
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Last returns the most recent bar. ok is false for an empty series.
func (s *Series) Last() (bar Bar, ok bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Closes extracts close prices in bar order.
func (s *Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// CheckOrder reports the index of the first bar whose timestamp does not strictly
// increase, or -1 when the series is well ordered.
func (s *Series) CheckOrder() int {
	for i := 1; i < len(s.Bars); i++ {
		if s.Bars[i].Timestamp <= s.Bars[i-1].Timestamp {
			return i
		}
	}
	return -1
}
