package strategy

import (
	"fmt"
	"math"
)

// Thresholds are the fixed levels the classifier compares against.
type Thresholds struct {
	RSILow          float64 `yaml:"rsi_low"`
	RSIHigh         float64 `yaml:"rsi_high"`
	StochStrongLow  float64 `yaml:"stoch_strong_low"`
	StochStrongHigh float64 `yaml:"stoch_strong_high"`
	StochWeakLow    float64 `yaml:"stoch_weak_low"`
}

// DefaultThresholds returns RSI 30/70 and stochastic 10/90 (strong) and 20 (weak).
func DefaultThresholds() Thresholds {
	return Thresholds{
		RSILow:          30,
		RSIHigh:         70,
		StochStrongLow:  10,
		StochStrongHigh: 90,
		StochWeakLow:    20,
	}
}

// Validate checks the levels are inside [0,100] and do not overlap.
func (t Thresholds) Validate() error {
	levels := []struct {
		name string
		v    float64
	}{
		{"rsi_low", t.RSILow}, {"rsi_high", t.RSIHigh},
		{"stoch_strong_low", t.StochStrongLow}, {"stoch_strong_high", t.StochStrongHigh},
		{"stoch_weak_low", t.StochWeakLow},
	}
	for _, l := range levels {
		if math.IsNaN(l.v) || l.v < 0 || l.v > 100 {
			return fmt.Errorf("thresholds.%s must be within [0,100], got %g", l.name, l.v)
		}
	}
	if t.RSILow >= t.RSIHigh {
		return fmt.Errorf("thresholds.rsi_low (%g) must be below rsi_high (%g)", t.RSILow, t.RSIHigh)
	}
	if t.StochStrongLow >= t.StochStrongHigh {
		return fmt.Errorf("thresholds.stoch_strong_low (%g) must be below stoch_strong_high (%g)", t.StochStrongLow, t.StochStrongHigh)
	}
	if t.StochStrongLow > t.StochWeakLow {
		return fmt.Errorf("thresholds.stoch_strong_low (%g) must not exceed stoch_weak_low (%g)", t.StochStrongLow, t.StochWeakLow)
	}
	return nil
}
