// Package metrics exposes run outcomes and the latest indicator readings to Prometheus.
package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"momentumbot/internal/model"
)

// Run outcomes used as the "outcome" label.
const (
	OutcomeOK               = "ok"
	OutcomeDataInsufficient = "data_insufficient"
	OutcomeUpstream         = "upstream_unavailable"
	OutcomeDeliveryFailed   = "delivery_failed"
	OutcomeError            = "error"
)

// Metrics holds all Prometheus collectors for the bot.
type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal      *prometheus.CounterVec // labels: outcome
	AlertsTotal    *prometheus.CounterVec // labels: category
	LatestRSI      prometheus.Gauge
	LatestStochK   prometheus.Gauge
	LatestPrice    prometheus.Gauge
	FetchDuration  prometheus.Histogram
	NotifyDuration prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "momentumbot_runs_total",
			Help: "Pipeline runs by outcome",
		}, []string{"outcome"}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "momentumbot_alerts_total",
			Help: "Classifier results by category",
		}, []string{"category"}),
		LatestRSI: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "momentumbot_latest_rsi",
			Help: "RSI of the most recent bar",
		}),
		LatestStochK: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "momentumbot_latest_stoch_k",
			Help: "Smoothed stochastic %K of the most recent bar",
		}),
		LatestPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "momentumbot_latest_price",
			Help: "Close of the most recent bar",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "momentumbot_fetch_duration_seconds",
			Help:    "Bar source request latency",
			Buckets: prometheus.DefBuckets,
		}),
		NotifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "momentumbot_notify_duration_seconds",
			Help:    "Notification delivery latency",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.Registry.MustRegister(
		m.RunsTotal,
		m.AlertsTotal,
		m.LatestRSI,
		m.LatestStochK,
		m.LatestPrice,
		m.FetchDuration,
		m.NotifyDuration,
	)
	return m
}

// ObserveSnapshot records the latest indicator readings. Undefined readings leave gauges untouched.
func (m *Metrics) ObserveSnapshot(s model.Snapshot) {
	m.LatestPrice.Set(s.Price)
	if s.RSI.Usable() {
		m.LatestRSI.Set(s.RSI.Value)
	}
	if s.StochK.Usable() {
		m.LatestStochK.Set(s.StochK.Value)
	}
}

// HealthStatus tracks the last run for /healthz.
type HealthStatus struct {
	mu          sync.RWMutex
	LastRunAt   time.Time
	LastOutcome string
	LastError   string
	MaxAge      time.Duration
}

// NewHealthStatus creates a health tracker. Runs older than maxAge report unhealthy.
func NewHealthStatus(maxAge time.Duration) *HealthStatus {
	return &HealthStatus{MaxAge: maxAge}
}

// Record stores the outcome of a run.
func (h *HealthStatus) Record(at time.Time, outcome string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastRunAt = at
	h.LastOutcome = outcome
	h.LastError = ""
	if err != nil {
		h.LastError = err.Error()
	}
}

type healthResponse struct {
	Status      string `json:"status"`
	LastRunAt   string `json:"last_run_at,omitempty"`
	LastOutcome string `json:"last_outcome,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

// ServeHTTP reports 503 when no run has completed within MaxAge.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := healthResponse{Status: "ok", LastOutcome: h.LastOutcome, LastError: h.LastError}
	code := http.StatusOK
	if h.LastRunAt.IsZero() {
		status.Status = "starting"
	} else {
		status.LastRunAt = h.LastRunAt.UTC().Format(time.RFC3339)
		if h.MaxAge > 0 && time.Since(h.LastRunAt) > h.MaxAge {
			status.Status = "stale"
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Printf("[WARN] write health response: %v", err)
	}
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, m *Metrics, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", health)

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the server mux.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[INFO] metrics server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[ERROR] metrics server: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Printf("[WARN] metrics server shutdown: %v", err)
	}
}
