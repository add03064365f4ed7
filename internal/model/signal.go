package model

import "time"

// Category identifies which alert rule fired.
type Category string

const (
	CategoryNone             Category = "NONE"
	CategoryStrongOversold   Category = "STRONG_OVERSOLD"
	CategoryStrongOverbought Category = "STRONG_OVERBOUGHT"
	CategoryRSIWatch         Category = "RSI_WATCH"
	CategoryStochWatch       Category = "STOCH_WATCH"
	CategoryStatus           Category = "STATUS_UPDATE"
)

// Label returns the human-facing alert type used in notification titles.
func (c Category) Label() string {
	switch c {
	case CategoryStrongOversold:
		return "STRONG OVERSOLD"
	case CategoryStrongOverbought:
		return "STRONG OVERBOUGHT"
	case CategoryRSIWatch:
		return "RSI OVERSOLD"
	case CategoryStochWatch:
		return "STOCHASTIC OVERSOLD"
	case CategoryStatus:
		return "STATUS UPDATE"
	default:
		return "NONE"
	}
}

// Alert is the classifier output. Message has all values interpolated.
type Alert struct {
	Category  Category
	Condition string // OVERSOLD, OVERBOUGHT or WATCH
	Message   string
	Price     float64
	RSI       float64
	StochK    float64
	BarTime   time.Time
}
