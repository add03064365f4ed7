package collector

import (
	"context"

	"momentumbot/internal/model"
)

// Fetcher retrieves recent bars for one instrument and interval, oldest first.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.Bar, error)
	Name() string
}
