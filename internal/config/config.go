package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/orgr/arbitrage-bot/internal/types"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type VenueCfg struct {
	ID      types.VenueID `yaml:"id"`
	Kind    string        `yaml:"kind"`
	RestURL string        `yaml:"rest_url"`
	WsURL   string        `yaml:"ws_url"`

	// MinRequestGapMs paces the adapter's outgoing requests. 0 keeps the
	// adapter's own default.
	MinRequestGapMs int `yaml:"min_request_gap_ms"`

	// Quotes seeds the static adapter; ignored by real venues.
	Quotes []StaticQuoteCfg `yaml:"quotes"`
}

type StaticQuoteCfg struct {
	Instrument types.InstrumentID `yaml:"instrument"`
	Bid        string             `yaml:"bid"`
	Ask        string             `yaml:"ask"`
}

type ScanCfg struct {
	Threshold       string `yaml:"threshold"`
	FetchDeadlineMs int    `yaml:"fetch_deadline_ms"`
	MaxConcurrency  int    `yaml:"max_concurrency"`
	PollIntervalMs  int    `yaml:"poll_interval_ms"`
	MaxInstruments  int    `yaml:"max_instruments"` // 0 = full universe

	ThresholdValue decimal.Decimal `yaml:"-"`
}

type RedisCfg struct {
	Addr      string `yaml:"addr"`
	DB        int    `yaml:"db"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Stream    string `yaml:"stream"`
	ActiveKey string `yaml:"active_key"`
	LatestNS  string `yaml:"latest_ns"`
}

type Config struct {
	Scan   ScanCfg    `yaml:"scan"`
	Venues []VenueCfg `yaml:"venues"`
	Redis  RedisCfg   `yaml:"redis"`

	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`

	Dash struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"dash"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// .env for deploy-time secrets; missing file is fine.
	_ = godotenv.Load()
	applyEnvOverrides(&c)

	if c.Scan.Threshold == "" {
		c.Scan.Threshold = "0"
	}
	if c.Scan.FetchDeadlineMs == 0 {
		c.Scan.FetchDeadlineMs = 2000
	}
	if c.Scan.MaxConcurrency == 0 {
		c.Scan.MaxConcurrency = 8
	}
	if c.Scan.PollIntervalMs == 0 {
		c.Scan.PollIntervalMs = 3000
	}
	if c.Redis.Stream == "" {
		c.Redis.Stream = "opp:stream"
	}
	if c.Redis.ActiveKey == "" {
		c.Redis.ActiveKey = "opp:active"
	}
	if c.Redis.LatestNS == "" {
		c.Redis.LatestNS = "opp:latest:"
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	th, err := decimal.NewFromString(c.Scan.Threshold)
	if err != nil {
		return fmt.Errorf("scan.threshold %q: %w", c.Scan.Threshold, err)
	}
	if th.IsNegative() {
		return fmt.Errorf("scan.threshold must be >= 0, got %s", th)
	}
	c.Scan.ThresholdValue = th

	if c.Scan.FetchDeadlineMs < 0 {
		return fmt.Errorf("scan.fetch_deadline_ms must be > 0, got %d", c.Scan.FetchDeadlineMs)
	}
	if c.Scan.PollIntervalMs < 0 {
		return fmt.Errorf("scan.poll_interval_ms must be > 0, got %d", c.Scan.PollIntervalMs)
	}
	// errgroup treats a negative limit as unbounded, so reject it here.
	if c.Scan.MaxConcurrency < 0 {
		return fmt.Errorf("scan.max_concurrency must be > 0, got %d", c.Scan.MaxConcurrency)
	}
	if c.Scan.MaxInstruments < 0 {
		return fmt.Errorf("scan.max_instruments must be >= 0, got %d", c.Scan.MaxInstruments)
	}

	if len(c.Venues) < 2 {
		return fmt.Errorf("need at least 2 venues, got %d", len(c.Venues))
	}
	seen := map[types.VenueID]struct{}{}
	for _, v := range c.Venues {
		if v.ID == "" || v.Kind == "" {
			return fmt.Errorf("venue entries need both id and kind")
		}
		if _, dup := seen[v.ID]; dup {
			return fmt.Errorf("duplicate venue id %q", v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	return nil
}

// applyEnvOverrides lets operators inject redis credentials at deploy time
// without touching the YAML file.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("ARBBOT_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("ARBBOT_REDIS_USERNAME"); v != "" {
		c.Redis.Username = v
	}
	if v := os.Getenv("ARBBOT_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
}

func (c *Config) FetchDeadline() time.Duration {
	return time.Duration(c.Scan.FetchDeadlineMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Scan.PollIntervalMs) * time.Millisecond
}
