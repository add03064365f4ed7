package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"momentumbot/internal/collector"
	"momentumbot/internal/metrics"
	"momentumbot/internal/model"
	"momentumbot/internal/notifier"
	"momentumbot/internal/strategy"
)

// Report is the outcome of one pipeline run.
type Report struct {
	RunID       string
	Started     time.Time
	Finished    time.Time
	Snapshot    *model.Snapshot
	Alert       *model.Alert // nil when no rule fired
	StatusSent  bool
	Delivered   bool
	DeliveryErr error
}

// Category returns the classified category, CategoryNone when no alert fired.
func (r *Report) Category() model.Category {
	if r.Alert == nil {
		return model.CategoryNone
	}
	return r.Alert.Category
}

// Scheduler runs the fetch, compute, classify, notify pipeline, once or on a cron schedule.
type Scheduler struct {
	Cron          *cron.Cron
	Collector     *collector.Collector
	Strategy      strategy.Config
	Notifier      notifier.Notifier
	StatusUpdates bool
	Metrics       *metrics.Metrics      // optional
	Health        *metrics.HealthStatus // optional
	Ctx           context.Context

	now     func() time.Time
	running sync.Mutex // held by the cron job and RunNow while a pass is in flight
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, strat strategy.Config, n notifier.Notifier, statusUpdates bool) *Scheduler {
	s := &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Collector:     col,
		Strategy:      strat,
		Notifier:      n,
		StatusUpdates: statusUpdates,
		Ctx:           ctx,
		now:           time.Now,
	}
	return s
}

// WithMetrics attaches Prometheus collectors and the health tracker.
func (s *Scheduler) WithMetrics(m *metrics.Metrics, h *metrics.HealthStatus) *Scheduler {
	s.Metrics = m
	s.Health = h
	if m != nil && s.Collector.Observe == nil {
		s.Collector.Observe = func(d time.Duration, _ error) {
			m.FetchDuration.Observe(d.Seconds())
		}
	}
	return s
}

// Register schedules the pipeline on the given cron spec (with seconds field).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.scheduledRun() }); err != nil {
		return fmt.Errorf("register pipeline task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the pipeline immediately (for RUN_ON_START).
// It returns false without running when another pass is still in flight.
func (s *Scheduler) RunNow() bool {
	return s.scheduledRun()
}

func (s *Scheduler) scheduledRun() bool {
	if !s.running.TryLock() {
		log.Println("[WARN] previous pass still running, skipping")
		return false
	}
	defer s.running.Unlock()
	if _, err := s.RunOnce(s.Ctx); err != nil {
		log.Printf("[ERROR] pipeline run: %v", err)
	}
	return true
}

// RunOnce performs one pass. DataInsufficient and UpstreamUnavailable abort before
// classification and are returned. A delivery failure is recorded in the report only.
func (s *Scheduler) RunOnce(ctx context.Context) (*Report, error) {
	rep := &Report{RunID: uuid.NewString(), Started: s.now()}
	log.Printf("[INFO] run=%s started for %s", rep.RunID, s.Collector.Symbol)

	res, err := s.Collector.Collect(ctx)
	if err != nil {
		return s.finish(rep, fmt.Errorf("run %s: %w", rep.RunID, err))
	}
	snap := res.Latest
	rep.Snapshot = &snap
	if s.Metrics != nil {
		s.Metrics.ObserveSnapshot(snap)
	}

	alert, err := strategy.Classify(snap, s.Strategy)
	if err != nil {
		return s.finish(rep, fmt.Errorf("run %s: %w", rep.RunID, err))
	}
	rep.Alert = alert
	if s.Metrics != nil {
		s.Metrics.AlertsTotal.WithLabelValues(string(rep.Category())).Inc()
	}

	var msg *notifier.Message
	switch {
	case alert != nil:
		log.Printf("[INFO] run=%s alert %s: rsi=%.2f stoch_k=%.2f price=%.4f",
			rep.RunID, alert.Category, alert.RSI, alert.StochK, alert.Price)
		m := notifier.FormatAlert(alert, s.now())
		msg = &m
	case s.StatusUpdates:
		log.Printf("[INFO] run=%s no alerts triggered, sending status update", rep.RunID)
		m := notifier.FormatStatus(s.Strategy.Instrument, snap, s.now())
		msg = &m
		rep.StatusSent = true
	default:
		log.Printf("[INFO] run=%s no alerts triggered", rep.RunID)
	}

	if msg != nil {
		start := time.Now()
		err := s.Notifier.Notify(ctx, *msg)
		if s.Metrics != nil {
			s.Metrics.NotifyDuration.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			if !errors.Is(err, model.ErrDeliveryFailed) {
				err = fmt.Errorf("%v: %w", err, model.ErrDeliveryFailed)
			}
			rep.DeliveryErr = fmt.Errorf("notify via %s: %w", s.Notifier.Name(), err)
			log.Printf("[ERROR] run=%s %v", rep.RunID, rep.DeliveryErr)
		} else {
			rep.Delivered = true
		}
	}
	return s.finish(rep, nil)
}

func (s *Scheduler) finish(rep *Report, err error) (*Report, error) {
	rep.Finished = s.now()
	outcome := outcomeOf(rep, err)
	if s.Metrics != nil {
		s.Metrics.RunsTotal.WithLabelValues(outcome).Inc()
	}
	if s.Health != nil {
		s.Health.Record(rep.Finished, outcome, err)
	}
	if err != nil {
		log.Printf("[ERROR] run=%s aborted (%s): %v", rep.RunID, outcome, err)
	} else {
		log.Printf("[INFO] run=%s completed: category=%s delivered=%v in %s",
			rep.RunID, rep.Category(), rep.Delivered, rep.Finished.Sub(rep.Started).Round(time.Millisecond))
	}
	return rep, err
}

func outcomeOf(rep *Report, err error) string {
	switch {
	case err == nil && rep.DeliveryErr != nil:
		return metrics.OutcomeDeliveryFailed
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, model.ErrDataInsufficient):
		return metrics.OutcomeDataInsufficient
	case errors.Is(err, model.ErrUpstreamUnavailable):
		return metrics.OutcomeUpstream
	default:
		return metrics.OutcomeError
	}
}
