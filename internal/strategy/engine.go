package strategy

import (
	"fmt"
	"strconv"

	"momentumbot/internal/model"
)

// Config is the classifier input besides the snapshot.
type Config struct {
	Instrument string // display name used in alert headlines
	Thresholds Thresholds
}

// Classify maps the latest snapshot to at most one alert. Rules are checked in
// order and the first match wins:
//  1. strong oversold:   rsi < RSILow  && k < StochStrongLow
//  2. strong overbought: rsi > RSIHigh && k > StochStrongHigh
//  3. rsi watch:         rsi < RSILow
//  4. stochastic watch:  k < StochWeakLow
//
// A nil alert with a nil error means no rule fired. Undefined readings return ErrDataInsufficient.
func Classify(snap model.Snapshot, cfg Config) (*model.Alert, error) {
	if !snap.RSI.Usable() {
		return nil, fmt.Errorf("classify: rsi undefined: %w", model.ErrDataInsufficient)
	}
	if !snap.StochK.Usable() {
		return nil, fmt.Errorf("classify: stochastic %%K undefined: %w", model.ErrDataInsufficient)
	}

	rsi, k, price := snap.RSI.Value, snap.StochK.Value, snap.Price
	th := cfg.Thresholds
	name := cfg.Instrument

	alert := &model.Alert{
		Price:   price,
		RSI:     rsi,
		StochK:  k,
		BarTime: snap.Time(),
	}

	switch {
	case rsi < th.RSILow && k < th.StochStrongLow:
		alert.Category = model.CategoryStrongOversold
		alert.Condition = "OVERSOLD"
		alert.Message = fmt.Sprintf("**%s - STRONG OVERSOLD!**\n\n"+
			"💰 **Price**: $%.4f\n"+
			"📉 **RSI**: %.2f (< %s)\n"+
			"📊 **Stochastic %%K**: %.2f (< %s)\n\n"+
			"🎯 **Potential LONG opportunity**",
			name, price, rsi, level(th.RSILow), k, level(th.StochStrongLow))
	case rsi > th.RSIHigh && k > th.StochStrongHigh:
		alert.Category = model.CategoryStrongOverbought
		alert.Condition = "OVERBOUGHT"
		alert.Message = fmt.Sprintf("**%s - STRONG OVERBOUGHT!**\n\n"+
			"💰 **Price**: $%.4f\n"+
			"📈 **RSI**: %.2f (> %s)\n"+
			"📊 **Stochastic %%K**: %.2f (> %s)\n\n"+
			"⚠️ **Potential SHORT opportunity**",
			name, price, rsi, level(th.RSIHigh), k, level(th.StochStrongHigh))
	case rsi < th.RSILow:
		alert.Category = model.CategoryRSIWatch
		alert.Condition = "WATCH"
		alert.Message = fmt.Sprintf("**RSI Oversold Signal**\n"+
			"Price: $%.4f\n"+
			"RSI: %.2f (< %s)\n"+
			"👀 Watch for Stochastic confirmation",
			price, rsi, level(th.RSILow))
	case k < th.StochWeakLow:
		alert.Category = model.CategoryStochWatch
		alert.Condition = "WATCH"
		alert.Message = fmt.Sprintf("**Stochastic Oversold Signal**\n"+
			"Price: $%.4f\n"+
			"Stochastic %%K: %.2f (< %s)\n"+
			"👀 Watch for RSI confirmation",
			price, k, level(th.StochWeakLow))
	default:
		return nil, nil
	}
	return alert, nil
}

func level(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
