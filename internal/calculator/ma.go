package calculator

import (
	"errors"

	"momentumbot/internal/model"
)

// SMASeries smooths a series of readings with a trailing simple moving average.
// out[i] is defined only when all period inputs ending at i are defined.
func SMASeries(values []model.Reading, period int) ([]model.Reading, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]model.Reading, len(values))
	sum := 0.0
	run := 0 // consecutive defined inputs ending at i
	for i, v := range values {
		if !v.Usable() {
			sum, run = 0, 0
			continue
		}
		sum += v.Value
		run++
		if run > period {
			sum -= values[i-period].Value
		}
		if run >= period {
			out[i] = model.Defined(sum / float64(period))
		}
	}
	return out, nil
}
