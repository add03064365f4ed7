package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"momentumbot/internal/collector"
	"momentumbot/internal/metrics"
	"momentumbot/internal/model"
	"momentumbot/internal/notifier"
	"momentumbot/internal/strategy"
)

const step = int64(15 * 60 * 1000)

type recordingNotifier struct {
	err  error
	sent []notifier.Message
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) Notify(_ context.Context, msg notifier.Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

// fallingBars close at the bar low: RSI 0 and %K 0.
func fallingBars(n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		c := 100 - float64(i)*0.5
		bars[i] = model.Bar{Timestamp: int64(i) * step, Open: c + 0.5, High: c + 1, Low: c, Close: c}
	}
	return bars
}

// risingBars close at the bar high: RSI 100 and %K 100.
func risingBars(n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		c := 100 + float64(i)*0.5
		bars[i] = model.Bar{Timestamp: int64(i) * step, Open: c - 0.5, High: c, Low: c - 1, Close: c}
	}
	return bars
}

// choppyBars alternate between two closes inside a fixed range: RSI near 50, %K near 50.
func choppyBars(n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		c := 100 + float64(i%2)
		bars[i] = model.Bar{Timestamp: int64(i) * step, Open: 100.5, High: 101.5, Low: 99.5, Close: c}
	}
	return bars
}

func newTestScheduler(bars []model.Bar, fetchErr error, n notifier.Notifier, status bool) (*Scheduler, *collector.MockFetcher) {
	mock := &collector.MockFetcher{Bars: bars, Err: fetchErr}
	col := collector.NewCollector(mock, "JUP-USDT-SWAP", "15m", 100, model.DefaultIndicatorParams())
	strat := strategy.Config{Instrument: "JUP PERPETUAL FUTURES", Thresholds: strategy.DefaultThresholds()}
	s := NewScheduler(context.Background(), col, strat, n, status)
	s.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return s, mock
}

func TestRunOnce_StrongOversoldDelivered(t *testing.T) {
	rec := &recordingNotifier{}
	s, _ := newTestScheduler(fallingBars(100), nil, rec, true)
	m := metrics.New()
	h := metrics.NewHealthStatus(time.Hour)
	s.WithMetrics(m, h)

	rep, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Category() != model.CategoryStrongOversold {
		t.Fatalf("category = %s, want STRONG_OVERSOLD", rep.Category())
	}
	if !rep.Delivered || rep.StatusSent || rep.DeliveryErr != nil {
		t.Errorf("unexpected delivery state: %+v", rep)
	}
	if len(rec.sent) != 1 || rec.sent[0].Title != "🚨 STRONG OVERSOLD" || rec.sent[0].Color != notifier.ColorOversold {
		t.Errorf("unexpected messages: %+v", rec.sent)
	}
	if rep.RunID == "" {
		t.Error("run id must be set")
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.OutcomeOK)); got != 1 {
		t.Errorf("ok runs = %v", got)
	}
	if got := testutil.ToFloat64(m.AlertsTotal.WithLabelValues(string(model.CategoryStrongOversold))); got != 1 {
		t.Errorf("alerts = %v", got)
	}
	if h.LastOutcome != metrics.OutcomeOK {
		t.Errorf("health outcome = %q", h.LastOutcome)
	}
}

func TestRunOnce_StrongOverbought(t *testing.T) {
	rec := &recordingNotifier{}
	s, _ := newTestScheduler(risingBars(100), nil, rec, true)
	rep, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Category() != model.CategoryStrongOverbought {
		t.Fatalf("category = %s", rep.Category())
	}
	if !strings.Contains(rec.sent[0].Body, "RSI**: 100.00 (> 70)") {
		t.Errorf("unexpected body:\n%s", rec.sent[0].Body)
	}
}

func TestRunOnce_NoAlertSendsStatus(t *testing.T) {
	rec := &recordingNotifier{}
	s, _ := newTestScheduler(choppyBars(100), nil, rec, true)
	rep, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Alert != nil {
		t.Fatalf("expected no alert, got %s (rsi=%s k=%s)", rep.Category(), rep.Snapshot.RSI, rep.Snapshot.StochK)
	}
	if !rep.StatusSent || !rep.Delivered {
		t.Errorf("status update expected: %+v", rep)
	}
	if len(rec.sent) != 1 || rec.sent[0].Category != model.CategoryStatus {
		t.Fatalf("unexpected messages: %+v", rec.sent)
	}
	if !strings.Contains(rec.sent[0].Body, "JUP PERPETUAL FUTURES Status Update") {
		t.Errorf("unexpected status body:\n%s", rec.sent[0].Body)
	}
}

func TestRunOnce_NoAlertStatusDisabled(t *testing.T) {
	rec := &recordingNotifier{}
	s, _ := newTestScheduler(choppyBars(100), nil, rec, false)
	rep, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.sent) != 0 || rep.StatusSent || rep.Delivered {
		t.Errorf("nothing should be sent: %+v", rep)
	}
}

func TestRunOnce_InsufficientDataAborts(t *testing.T) {
	rec := &recordingNotifier{}
	s, _ := newTestScheduler(risingBars(10), nil, rec, true)
	m := metrics.New()
	s.WithMetrics(m, nil)

	rep, err := s.RunOnce(context.Background())
	if !errors.Is(err, model.ErrDataInsufficient) {
		t.Fatalf("expected ErrDataInsufficient, got %v", err)
	}
	if rep.Snapshot != nil || rep.Alert != nil {
		t.Error("classification must not run on insufficient data")
	}
	if len(rec.sent) != 0 {
		t.Error("nothing may be delivered on insufficient data")
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.OutcomeDataInsufficient)); got != 1 {
		t.Errorf("data_insufficient runs = %v", got)
	}
}

func TestRunOnce_UpstreamUnavailableAborts(t *testing.T) {
	rec := &recordingNotifier{}
	s, mock := newTestScheduler(nil, errors.New("dial tcp: i/o timeout"), rec, true)
	rep, err := s.RunOnce(context.Background())
	if !errors.Is(err, model.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if mock.Calls != 1 {
		t.Errorf("fetch calls = %d, want 1", mock.Calls)
	}
	if rep.Alert != nil || len(rec.sent) != 0 {
		t.Error("nothing may be classified or delivered when upstream fails")
	}
}

func TestRunOnce_DeliveryFailureKeepsAlert(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("status 500")}
	s, _ := newTestScheduler(fallingBars(100), nil, rec, true)
	m := metrics.New()
	s.WithMetrics(m, nil)

	rep, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("delivery failure must not fail the run: %v", err)
	}
	if rep.Alert == nil || rep.Category() != model.CategoryStrongOversold {
		t.Fatalf("alert must survive delivery failure: %+v", rep)
	}
	if rep.Delivered || !errors.Is(rep.DeliveryErr, model.ErrDeliveryFailed) {
		t.Errorf("expected ErrDeliveryFailed in report, got %v", rep.DeliveryErr)
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues(metrics.OutcomeDeliveryFailed)); got != 1 {
		t.Errorf("delivery_failed runs = %v", got)
	}
}

func TestRunOnce_NoEndpointStillClassifies(t *testing.T) {
	s, _ := newTestScheduler(fallingBars(100), nil, notifier.NewLogNotifier(), true)
	rep, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Category() != model.CategoryStrongOversold {
		t.Errorf("category = %s", rep.Category())
	}
}

func TestRegister(t *testing.T) {
	s, _ := newTestScheduler(choppyBars(100), nil, &recordingNotifier{}, true)
	if err := s.Register("0 */15 * * * *"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Cron.Entries()) != 1 {
		t.Errorf("entries = %d, want 1", len(s.Cron.Entries()))
	}
	if err := s.Register("not a cron spec"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestRunNow(t *testing.T) {
	rec := &recordingNotifier{}
	s, mock := newTestScheduler(risingBars(100), nil, rec, true)
	if !s.RunNow() {
		t.Fatal("RunNow skipped with nothing in flight")
	}
	if mock.Calls != 1 || len(rec.sent) != 1 {
		t.Errorf("RunNow must perform one full pass: fetches=%d sent=%d", mock.Calls, len(rec.sent))
	}
}

func TestRunNow_SkipsWhileRunning(t *testing.T) {
	rec := &recordingNotifier{}
	s, mock := newTestScheduler(risingBars(100), nil, rec, true)
	s.running.Lock()
	if s.RunNow() {
		t.Error("RunNow must not overlap a pass in flight")
	}
	s.running.Unlock()
	if mock.Calls != 0 || len(rec.sent) != 0 {
		t.Errorf("skipped pass touched the pipeline: fetches=%d sent=%d", mock.Calls, len(rec.sent))
	}
	if !s.RunNow() {
		t.Error("RunNow should run once the previous pass finished")
	}
}
