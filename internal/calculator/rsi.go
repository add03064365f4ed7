package calculator

import (
	"errors"

	"momentumbot/internal/model"
)

// RSISeries computes the Wilder-smoothed RSI for every close.
// The first period entries are undefined; out[period] is seeded with simple averages.
func RSISeries(closes []float64, period int) ([]model.Reading, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]model.Reading, len(closes))
	if len(closes) < period+1 {
		return out, nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	p := float64(period)
	avgGain /= p
	avgLoss /= p
	out[period] = model.Defined(rsiFromAverages(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = model.Defined(rsiFromAverages(avgGain, avgLoss))
	}
	return out, nil
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

// A zero average loss pins RSI at 100, including a flat series.
func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
