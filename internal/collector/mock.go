package collector

import (
	"context"
	"time"

	"momentumbot/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.Bar
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _ string, interval string, limit int) ([]model.Bar, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	step, err := intervalDuration(interval)
	if err != nil {
		step = 15 * time.Minute
	}
	return GenerateMockBars(m.Price, limit, step, time.Now()), nil
}

// GenerateMockBars builds count gently rising bars ending at end.
func GenerateMockBars(basePrice float64, count int, step time.Duration, end time.Time) []model.Bar {
	bars := make([]model.Bar, count)
	start := end.Truncate(step).Add(-time.Duration(count-1) * step)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Timestamp: start.Add(time.Duration(i) * step).UnixMilli(),
			Open:      p * 0.999,
			High:      p * 1.005,
			Low:       p * 0.995,
			Close:     p,
			Volume:    1000000,
		}
	}
	return bars
}
