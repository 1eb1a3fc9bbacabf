package config

import (
	"fmt"
	"os"
	"time"

	"github.com/myconcall-sys/myconcall/pkg/config"
)

// Screener holds credentials and scrape targets for Screener.in.
type Screener struct {
	BaseURL       string        `mapstructure:"base_url"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	TargetConcall int           `mapstructure:"target_concall_count"`
	PageTimeout   time.Duration `mapstructure:"page_timeout"`
}

// Extractor holds settings for PDF download and phone extraction.
type Extractor struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetry       int           `mapstructure:"max_retry"`
	RateLimitDelay time.Duration `mapstructure:"rate_limit_delay"`
	MaxPhones      int           `mapstructure:"max_phones"`
}

// Google holds spreadsheet and calendar targets plus credential sources.
type Google struct {
	CredentialsBase64 string        `mapstructure:"credentials_base64"`
	CredentialsFile   string        `mapstructure:"credentials_file"`
	SpreadsheetID     string        `mapstructure:"spreadsheet_id"`
	SheetName         string        `mapstructure:"sheet_name"`
	ConcallCalendarID string        `mapstructure:"concall_calendar_id"`
	MainCalendarID    string        `mapstructure:"main_calendar_id"`
	EventDuration     time.Duration `mapstructure:"event_duration"`
}

// Watchlist identifies one named watchlist page on the source site.
type Watchlist struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// Watchlists holds the user-curated lists that drive colors and mirroring.
type Watchlists struct {
	MirrorList string      `mapstructure:"mirror_list"`
	CoreList   string      `mapstructure:"core_list"`
	Sources    []Watchlist `mapstructure:"sources"`
}

// SMTP holds settings for the run-summary email.
type SMTP struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

// Telegram holds configuration for the optional Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Notifier groups the notification channels.
type Notifier struct {
	SMTP     SMTP     `mapstructure:"smtp"`
	Telegram Telegram `mapstructure:"telegram"`
}

// Runner holds run-level settings.
type Runner struct {
	LockFile      string `mapstructure:"lock_file"`
	CSVBackupPath string `mapstructure:"csv_backup_path"`
	CronSchedule  string `mapstructure:"cron_schedule"`
}

// Config holds the full configuration for the concall sync service.
type Config struct {
	App        config.App    `mapstructure:"app"`
	Logger     config.Logger `mapstructure:"logger"`
	Screener   Screener      `mapstructure:"screener"`
	Extractor  Extractor     `mapstructure:"extractor"`
	Google     Google        `mapstructure:"google"`
	Watchlists Watchlists    `mapstructure:"watchlists"`
	Notifier   Notifier      `mapstructure:"notifier"`
	Runner     Runner        `mapstructure:"runner"`
}

// Load loads the service configuration from the given path. Secrets left empty
// in the file are filled from the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}

	fillFromEnv(&cfg.Screener.Username, "SCREENER_USERNAME")
	fillFromEnv(&cfg.Screener.Password, "SCREENER_PASSWORD")
	fillFromEnv(&cfg.Google.CredentialsBase64, "GOOGLE_CREDENTIALS_BASE64")
	fillFromEnv(&cfg.Notifier.SMTP.Password, "SMTP_PASSWORD")

	cfg.applyDefaults()

	if cfg.Screener.Username == "" || cfg.Screener.Password == "" {
		return nil, fmt.Errorf("screener credentials are required: set SCREENER_USERNAME and SCREENER_PASSWORD")
	}

	return &cfg, nil
}

func fillFromEnv(target *string, key string) {
	if *target == "" {
		*target = os.Getenv(key)
	}
}

func (c *Config) applyDefaults() {
	if c.Screener.BaseURL == "" {
		c.Screener.BaseURL = "https://www.screener.in"
	}
	if c.Screener.TargetConcall == 0 {
		c.Screener.TargetConcall = 100
	}
	if c.Screener.PageTimeout == 0 {
		c.Screener.PageTimeout = 10 * time.Second
	}
	if c.Extractor.RequestTimeout == 0 {
		c.Extractor.RequestTimeout = 30 * time.Second
	}
	if c.Extractor.MaxRetry == 0 {
		c.Extractor.MaxRetry = 3
	}
	if c.Extractor.RateLimitDelay == 0 {
		c.Extractor.RateLimitDelay = 300 * time.Millisecond
	}
	if c.Extractor.MaxPhones == 0 {
		c.Extractor.MaxPhones = 3
	}
	if c.Google.SheetName == "" {
		c.Google.SheetName = "Sheet1"
	}
	if c.Google.EventDuration == 0 {
		c.Google.EventDuration = time.Hour
	}
	if c.Watchlists.MirrorList == "" {
		c.Watchlists.MirrorList = "My Stonks"
	}
	if c.Watchlists.CoreList == "" {
		c.Watchlists.CoreList = "Core Watchlist"
	}
	if c.Runner.LockFile == "" {
		c.Runner.LockFile = "concall-sync.lock"
	}
	if c.Runner.CronSchedule == "" {
		c.Runner.CronSchedule = "30 8 * * *"
	}
}
