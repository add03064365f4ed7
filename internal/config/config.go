package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"momentumbot/internal/model"
	"momentumbot/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Instrument struct {
		Symbol   string `yaml:"symbol"`
		Name     string `yaml:"name"`
		Interval string `yaml:"interval"`
		Limit    int    `yaml:"limit"`
	} `yaml:"instrument"`
	DataSource struct {
		Provider       string `yaml:"provider"`
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"data_source"`
	Indicators struct {
		RSIWindow   int `yaml:"rsi_window"`
		StochWindow int `yaml:"stoch_window"`
		StochSmooth int `yaml:"stoch_smooth"`
	} `yaml:"indicators"`
	Thresholds strategy.Thresholds `yaml:"thresholds"`
	Notify     struct {
		DiscordWebhook string `yaml:"discord_webhook"`
		BotName        string `yaml:"bot_name"`
		PlainText      bool   `yaml:"plain_text"`
		StatusUpdates  *bool  `yaml:"status_updates"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"notify"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron    string `yaml:"cron"`
		RunOnce *bool  `yaml:"run_once"`
	} `yaml:"schedule"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
// A missing file is not an error. Threshold keys absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{Thresholds: strategy.DefaultThresholds()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DISCORD_WEBHOOK"); v != "" {
		c.Notify.DiscordWebhook = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("INSTRUMENT_SYMBOL"); v != "" {
		c.Instrument.Symbol = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("RUN_ONCE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RUN_ONCE: %w", err)
		}
		c.Schedule.RunOnce = &b
	}
	if v := os.Getenv("STATUS_UPDATES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STATUS_UPDATES: %w", err)
		}
		c.Notify.StatusUpdates = &b
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Instrument.Symbol == "" {
		c.Instrument.Symbol = "JUP-USDT-SWAP"
	}
	if c.Instrument.Name == "" {
		c.Instrument.Name = "JUP PERPETUAL FUTURES"
	}
	if c.Instrument.Interval == "" {
		c.Instrument.Interval = "15m"
	}
	if c.Instrument.Limit == 0 {
		c.Instrument.Limit = 100
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "okx"
	}
	if c.DataSource.TimeoutSeconds == 0 {
		c.DataSource.TimeoutSeconds = 30
	}

	def := model.DefaultIndicatorParams()
	if c.Indicators.RSIWindow == 0 {
		c.Indicators.RSIWindow = def.RSIWindow
	}
	if c.Indicators.StochWindow == 0 {
		c.Indicators.StochWindow = def.StochWindow
	}
	if c.Indicators.StochSmooth == 0 {
		c.Indicators.StochSmooth = def.StochSmooth
	}

	if c.Notify.BotName == "" {
		c.Notify.BotName = "JUP Bot"
	}
	if c.Notify.StatusUpdates == nil {
		on := true
		c.Notify.StatusUpdates = &on
	}
	if c.Notify.TimeoutSeconds == 0 {
		c.Notify.TimeoutSeconds = 10
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 */15 * * * *"
	}
	if c.Schedule.RunOnce == nil {
		once := true
		c.Schedule.RunOnce = &once
	}
}

// Validate checks that all fields are usable. A missing notification endpoint is allowed.
func (c *Config) Validate() error {
	if c.Instrument.Symbol == "" {
		return fmt.Errorf("instrument.symbol is required")
	}
	switch c.DataSource.Provider {
	case "okx", "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider must be okx, yahoo or mock, got %q", c.DataSource.Provider)
	}
	p := c.IndicatorParams()
	if p.RSIWindow <= 0 || p.StochWindow <= 0 || p.StochSmooth <= 0 {
		return fmt.Errorf("indicator windows must be positive: %+v", p)
	}
	if c.Instrument.Limit < p.MinBars() {
		return fmt.Errorf("instrument.limit (%d) must be at least %d for the configured windows", c.Instrument.Limit, p.MinBars())
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if !c.RunOnce() {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: %w", err)
		}
	}
	return nil
}

// IndicatorParams returns the configured engine windows.
func (c *Config) IndicatorParams() model.IndicatorParams {
	return model.IndicatorParams{
		RSIWindow:   c.Indicators.RSIWindow,
		StochWindow: c.Indicators.StochWindow,
		StochSmooth: c.Indicators.StochSmooth,
	}
}

// StrategyConfig returns the classifier configuration.
func (c *Config) StrategyConfig() strategy.Config {
	return strategy.Config{Instrument: c.Instrument.Name, Thresholds: c.Thresholds}
}

// RunOnce reports whether the process runs a single pipeline pass and exits.
func (c *Config) RunOnce() bool {
	return c.Schedule.RunOnce == nil || *c.Schedule.RunOnce
}

// ServeMetrics reports whether the /metrics server should start. A one-shot
// pass exits before anything could scrape it.
func (c *Config) ServeMetrics() bool {
	return c.Metrics.Addr != "" && !c.RunOnce()
}

// StatusUpdates reports whether a status message is sent when no rule fires.
func (c *Config) StatusUpdates() bool {
	return c.Notify.StatusUpdates == nil || *c.Notify.StatusUpdates
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}

func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Notify.TimeoutSeconds) * time.Second
}
