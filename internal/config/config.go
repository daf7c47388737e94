package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/dinofightergenesis/dinofighterg/internal/economy"
	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken      string  `yaml:"bot_token"`
		ChatID        string  `yaml:"chat_id"`
		RatePerSecond float64 `yaml:"rate_per_second"`
		MaxRetries    int     `yaml:"max_retries"`
		Polling       bool    `yaml:"polling"`
	} `yaml:"telegram"`
	Store struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	} `yaml:"store"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		AccrualCron string `yaml:"accrual_cron"`
		SaleCron    string `yaml:"sale_cron"`
	} `yaml:"schedule"`
	Economy EconomyConfig `yaml:"economy"`
	Sale    SaleConfig    `yaml:"sale"`
	HTTP    struct {
		Addr          string  `yaml:"addr"`
		RatePerSecond float64 `yaml:"rate_per_second"`
		Burst         int     `yaml:"burst"`
	} `yaml:"http"`
	Auth struct {
		Mode      string `yaml:"mode"`
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
		Header    string `yaml:"header"`
	} `yaml:"auth"`
	Sessions struct {
		// IdleTTL is how long a holder session stays cached without requests.
		IdleTTL time.Duration `yaml:"idle_ttl"`
	} `yaml:"sessions"`
	Logging LoggingConfig `yaml:"logging"`
	Proxy   string        `yaml:"proxy"`
}

// EconomyConfig overrides the default reward economics. Unset fields keep
// their defaults.
type EconomyConfig struct {
	TierRates           map[string]decimal.Decimal `yaml:"tier_rates"`
	SlotBaseCost        *decimal.Decimal           `yaml:"slot_base_cost"`
	SlotFreeCount       *int                       `yaml:"slot_free_count"`
	SlotGrowth          *decimal.Decimal           `yaml:"slot_growth"`
	SlotBurnShare       *decimal.Decimal           `yaml:"slot_burn_share"`
	TicketPrice         *decimal.Decimal           `yaml:"ticket_price"`
	TicketBurnShare     *decimal.Decimal           `yaml:"ticket_burn_share"`
	ReferralDailyReward *decimal.Decimal           `yaml:"referral_daily_reward"`
}

// SaleConfig overrides the default sale schedule and caps.
type SaleConfig struct {
	StartAt       string           `yaml:"start_at"` // RFC 3339
	StartDelay    *time.Duration   `yaml:"start_delay"`
	EpochDuration time.Duration    `yaml:"epoch_duration"`
	BasePrice     *decimal.Decimal `yaml:"base_price"`
	PriceGrowth   *decimal.Decimal `yaml:"price_growth"`
	WalletCap     *decimal.Decimal `yaml:"wallet_cap"`
	EpochCap      *decimal.Decimal `yaml:"epoch_cap"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	JSON       bool   `yaml:"json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SALE_START_AT"); v != "" {
		cfg.Sale.StartAt = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Defaults
	if cfg.Telegram.RatePerSecond == 0 {
		cfg.Telegram.RatePerSecond = 1
	}
	if cfg.Telegram.MaxRetries == 0 {
		cfg.Telegram.MaxRetries = 3
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "sqlite"
	}
	if cfg.Store.Path == "" {
		switch cfg.Store.Backend {
		case "sqlite":
			cfg.Store.Path = "data/documents.db"
		case "leveldb":
			cfg.Store.Path = "data/documents.ldb"
		case "file":
			cfg.Store.Path = "data/documents"
		}
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/events.db"
	}
	if cfg.Schedule.AccrualCron == "" {
		cfg.Schedule.AccrualCron = "@every 1s"
	}
	if cfg.Schedule.SaleCron == "" {
		cfg.Schedule.SaleCron = "@every 1s"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.RatePerSecond == 0 {
		cfg.HTTP.RatePerSecond = 20
	}
	if cfg.HTTP.Burst == 0 {
		cfg.HTTP.Burst = 40
	}
	// A secret alone selects jwt. Header mode is never chosen implicitly.
	if cfg.Auth.Mode == "" && cfg.Auth.JWTSecret != "" {
		cfg.Auth.Mode = "jwt"
	}
	if cfg.Auth.Header == "" {
		cfg.Auth.Header = "X-Holder-ID"
	}
	if cfg.Sessions.IdleTTL == 0 {
		cfg.Sessions.IdleTTL = 30 * time.Minute
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = 100
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 5
	}
	if cfg.Logging.MaxAgeDays == 0 {
		cfg.Logging.MaxAgeDays = 30
	}

	return cfg, nil
}

// Validate checks that all required fields are set and the economics are
// self-consistent.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "sqlite", "leveldb", "file":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for backend %q", c.Store.Backend)
		}
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	switch c.Auth.Mode {
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required in jwt mode")
		}
	case "header":
	case "":
		return fmt.Errorf("auth.mode is not set: configure auth.jwt_secret or set auth.mode to header explicitly")
	default:
		return fmt.Errorf("auth.mode %q is not supported", c.Auth.Mode)
	}
	if c.Sessions.IdleTTL < 0 {
		return fmt.Errorf("sessions.idle_ttl must not be negative")
	}
	if _, err := c.EconomyParams(); err != nil {
		return err
	}
	if _, err := c.SaleParams(); err != nil {
		return err
	}
	return nil
}

// EconomyParams overlays the configured economics on the defaults.
func (c *Config) EconomyParams() (economy.Params, error) {
	p := economy.DefaultParams()
	e := c.Economy
	for name, rate := range e.TierRates {
		tier, err := model.ParseTier(name)
		if err != nil {
			return economy.Params{}, fmt.Errorf("economy.tier_rates: %w", err)
		}
		p.TierRates[tier] = rate
	}
	setDecimal(&p.SlotBaseCost, e.SlotBaseCost)
	setDecimal(&p.SlotGrowth, e.SlotGrowth)
	setDecimal(&p.SlotBurnShare, e.SlotBurnShare)
	setDecimal(&p.TicketPrice, e.TicketPrice)
	setDecimal(&p.TicketBurnShare, e.TicketBurnShare)
	setDecimal(&p.ReferralDailyReward, e.ReferralDailyReward)
	if e.SlotFreeCount != nil {
		p.SlotFreeCount = *e.SlotFreeCount
	}
	if err := p.Validate(); err != nil {
		return economy.Params{}, fmt.Errorf("economy: %w", err)
	}
	return p, nil
}

// SaleParams overlays the configured sale settings on the defaults.
func (c *Config) SaleParams() (economy.SaleParams, error) {
	p := economy.DefaultSaleParams()
	s := c.Sale
	if s.StartAt != "" {
		t, err := time.Parse(time.RFC3339, s.StartAt)
		if err != nil {
			return economy.SaleParams{}, fmt.Errorf("sale.start_at: %w", err)
		}
		p.StartAt = t
	}
	if s.StartDelay != nil {
		p.StartDelay = *s.StartDelay
	}
	if s.EpochDuration != 0 {
		p.EpochDuration = s.EpochDuration
	}
	setDecimal(&p.BasePrice, s.BasePrice)
	setDecimal(&p.PriceGrowth, s.PriceGrowth)
	setDecimal(&p.WalletCap, s.WalletCap)
	setDecimal(&p.EpochCap, s.EpochCap)
	if err := p.Validate(); err != nil {
		return economy.SaleParams{}, fmt.Errorf("sale: %w", err)
	}
	return p, nil
}

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}
