package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"momentumbot/internal/collector"
	"momentumbot/internal/config"
	"momentumbot/internal/metrics"
	"momentumbot/internal/model"
	"momentumbot/internal/notifier"
	"momentumbot/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] momentum bot starting...")
	os.Exit(run())
}

// run wires the pipeline and returns the process exit code.
func run() int {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	fetcher := newFetcher(cfg)
	log.Printf("[INFO] data source: %s, instrument %s %s x%d",
		fetcher.Name(), cfg.Instrument.Symbol, cfg.Instrument.Interval, cfg.Instrument.Limit)

	col := collector.NewCollector(fetcher, cfg.Instrument.Symbol, cfg.Instrument.Interval,
		cfg.Instrument.Limit, cfg.IndicatorParams())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, cfg.StrategyConfig(), newNotifier(cfg), cfg.StatusUpdates())

	if cfg.Metrics.Addr != "" && !cfg.ServeMetrics() {
		log.Printf("[WARN] metrics.addr %s ignored in run-once mode", cfg.Metrics.Addr)
	}
	var srv *metrics.Server
	if cfg.ServeMetrics() {
		m := metrics.New()
		health := metrics.NewHealthStatus(3 * time.Hour)
		sched.WithMetrics(m, health)
		srv = metrics.NewServer(cfg.Metrics.Addr, m, health)
		srv.Start()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			srv.Stop(shutdownCtx)
		}()
	}

	if cfg.RunOnce() {
		return runOnce(ctx, sched)
	}

	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Printf("[FATAL] register cron task: %v", err)
		return 1
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing pipeline now")
		go sched.RunNow()
	}

	log.Printf("[INFO] running on schedule %q. Press Ctrl+C to stop.", cfg.Schedule.Cron)
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
	return 0
}

// runOnce executes a single pass and maps the result to a process exit code.
func runOnce(ctx context.Context, sched *scheduler.Scheduler) int {
	rep, err := sched.RunOnce(ctx)
	switch {
	case errors.Is(err, model.ErrDataInsufficient):
		log.Printf("[ERROR] not enough data to classify: %v", err)
		return 2
	case errors.Is(err, model.ErrUpstreamUnavailable):
		log.Printf("[ERROR] failed to get data: %v", err)
		return 3
	case err != nil:
		log.Printf("[ERROR] run failed: %v", err)
		return 1
	}
	if rep.DeliveryErr != nil {
		log.Printf("[WARN] result %s computed but not delivered: %v", rep.Category(), rep.DeliveryErr)
	}
	log.Println("[INFO] bot execution completed")
	return 0
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.DataSource.BaseURL, cfg.Proxy, cfg.FetchTimeout())
	case "mock":
		return &collector.MockFetcher{Price: 0.5}
	default:
		return collector.NewOKXFetcher(cfg.DataSource.BaseURL, cfg.Proxy, cfg.FetchTimeout())
	}
}

// newNotifier wires every configured channel. Without any, delivery is skipped and logged.
func newNotifier(cfg *config.Config) notifier.Notifier {
	var channels notifier.Multi
	if cfg.Notify.DiscordWebhook != "" {
		d := notifier.NewDiscordNotifier(cfg.Notify.DiscordWebhook, cfg.Notify.BotName, cfg.Proxy, cfg.NotifyTimeout())
		d.PlainText = cfg.Notify.PlainText
		channels = append(channels, d)
	}
	if cfg.Telegram.BotToken != "" {
		channels = append(channels, notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, cfg.NotifyTimeout()))
	}
	switch len(channels) {
	case 0:
		log.Println("[WARN] no notification endpoint configured, alerts will only be logged")
		return notifier.NewLogNotifier()
	case 1:
		return channels[0]
	default:
		return channels
	}
}
