package calculator

import (
	"errors"
	"testing"

	"momentumbot/internal/model"
)

func series(bars []model.Bar) *model.Series {
	return &model.Series{Symbol: "TEST", Interval: "15m", Bars: bars}
}

func TestCompute_InsufficientBars(t *testing.T) {
	res, err := Compute(series(risingBars(10)), model.DefaultIndicatorParams())
	if !errors.Is(err, model.ErrDataInsufficient) {
		t.Fatalf("expected ErrDataInsufficient, got %v", err)
	}
	if res != nil {
		t.Error("expected nil result on insufficient data")
	}
}

func TestCompute_MinimumBars(t *testing.T) {
	p := model.DefaultIndicatorParams()
	if p.MinBars() != 17 {
		t.Fatalf("MinBars = %d, want 17", p.MinBars())
	}
	res, err := Compute(series(risingBars(p.MinBars())), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Latest.RSI.Valid || !res.Latest.StochK.Valid {
		t.Errorf("latest snapshot must be defined: %+v", res.Latest)
	}
	if res.Latest.StochD.Valid {
		t.Error("%D needs two more bars and must still be undefined")
	}
}

func TestCompute_AlignedToBars(t *testing.T) {
	bars := risingBars(100)
	res, err := Compute(series(bars), model.DefaultIndicatorParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Points) != len(bars) {
		t.Fatalf("got %d points, want %d", len(res.Points), len(bars))
	}
	for i, pt := range res.Points {
		if pt.Timestamp != bars[i].Timestamp || pt.Close != bars[i].Close {
			t.Fatalf("point %d misaligned", i)
		}
	}
	last := bars[len(bars)-1]
	if res.Latest.Timestamp != last.Timestamp || res.Latest.Price != last.Close {
		t.Errorf("latest snapshot must be the final bar, got %+v", res.Latest)
	}
	if res.Latest.RSI.Value != 100 {
		t.Errorf("rising closes: rsi = %.2f, want 100", res.Latest.RSI.Value)
	}
	assertClose(t, "stoch_k", res.Latest.StochK.Value, 100, 1e-9)
	assertClose(t, "stoch_d", res.Latest.StochD.Value, 100, 1e-9)
}

func TestCompute_FlatSeriesIsInsufficient(t *testing.T) {
	// RSI is defined (100) but the stochastic range is flat.
	_, err := Compute(series(flatBars(50, 1.5)), model.DefaultIndicatorParams())
	if !errors.Is(err, model.ErrDataInsufficient) {
		t.Fatalf("expected ErrDataInsufficient, got %v", err)
	}
}

func TestCompute_InvalidParams(t *testing.T) {
	_, err := Compute(series(risingBars(50)), model.IndicatorParams{RSIWindow: 0, StochWindow: 14, StochSmooth: 3})
	if err == nil || errors.Is(err, model.ErrDataInsufficient) {
		t.Errorf("expected a parameter error, got %v", err)
	}
	if _, err := Compute(nil, model.DefaultIndicatorParams()); err == nil {
		t.Error("expected error for nil series")
	}
}

func TestCompute_Deterministic(t *testing.T) {
	bars := risingBars(40)
	bars[35] = bar(35, 140, 120, 121)
	a, err := Compute(series(bars), model.DefaultIndicatorParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := Compute(series(bars), model.DefaultIndicatorParams())
	if a.Latest != b.Latest {
		t.Errorf("repeated compute differs: %+v vs %+v", a.Latest, b.Latest)
	}
}
