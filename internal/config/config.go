package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultScheduleURL is the Chernivtsi oblenergo shutdowns page.
	DefaultScheduleURL = "https://oblenergo.cv.ua/shutdowns/"
	// DefaultFreshness is how long a fetched table is served from cache.
	DefaultFreshness = 10 * time.Minute
	// DefaultGroupCount is the number of groups offered in the bot keyboard.
	DefaultGroupCount = 18
)

type Config struct {
	BotToken            string        `koanf:"bot_token"`
	ScheduleURL         string        `koanf:"schedule_url"`
	ScheduleNextQuery   string        `koanf:"schedule_next_query"` // appended for tomorrow's page
	Freshness           time.Duration `koanf:"schedule_freshness"`
	FetchTimeout        time.Duration `koanf:"fetch_timeout"`
	Timezone            string        `koanf:"timezone"`
	GroupCount          int           `koanf:"group_count"`
	Port                string        `koanf:"port"`
	UsersFile           string        `koanf:"users_file"`
	DatabaseURL         string        `koanf:"database_url"` // empty: subscriptions live in UsersFile
	RedisURL            string        `koanf:"redis_url"`    // empty: notified snapshot kept in memory
	RabbitMQURL         string        `koanf:"rabbitmq_url"` // empty: no change events published
	DailyHour           int           `koanf:"daily_hour"`
	WarningMinute       int           `koanf:"warning_minute"`
	ChangeCheckInterval time.Duration `koanf:"change_check_interval"`
	QuietFrom           int           `koanf:"quiet_from"` // silent notifications from this hour...
	QuietTo             int           `koanf:"quiet_to"`   // ...until this hour
	LogLevel            string        `koanf:"log_level"`
	PingPrivileged      bool          `koanf:"ping_privileged"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		ScheduleURL:         DefaultScheduleURL,
		ScheduleNextQuery:   "next=1",
		Freshness:           DefaultFreshness,
		FetchTimeout:        30 * time.Second,
		Timezone:            "Europe/Kyiv",
		GroupCount:          DefaultGroupCount,
		Port:                "8080",
		UsersFile:           "./users.json",
		DailyHour:           23,
		WarningMinute:       35,
		ChangeCheckInterval: 15 * time.Minute,
		QuietFrom:           23,
		QuietTo:             7,
		LogLevel:            "info",
	}
}

// Load builds the config from defaults, an optional YAML file and the
// environment, in that order of precedence (environment wins). Environment
// variables use the upper-cased key names, e.g. SCHEDULE_FRESHNESS=5m.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	known := knownKeys()
	if err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if !known[key] {
			return ""
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func knownKeys() map[string]bool {
	return map[string]bool{
		"bot_token": true, "schedule_url": true, "schedule_next_query": true,
		"schedule_freshness": true, "fetch_timeout": true, "timezone": true,
		"group_count": true, "port": true, "users_file": true,
		"database_url": true, "redis_url": true, "rabbitmq_url": true,
		"daily_hour": true, "warning_minute": true, "change_check_interval": true,
		"quiet_from": true, "quiet_to": true, "log_level": true, "ping_privileged": true,
	}
}

// Validate checks the values. requireToken is set for commands that start the bot.
func (c *Config) Validate(requireToken bool) error {
	var errs []error
	if requireToken && c.BotToken == "" {
		errs = append(errs, errors.New("BOT_TOKEN is required. Get one from @BotFather on Telegram"))
	}
	if c.ScheduleURL == "" {
		errs = append(errs, errors.New("schedule_url must not be empty"))
	}
	if c.Freshness <= 0 {
		errs = append(errs, errors.New("schedule_freshness must be positive"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("fetch_timeout must be positive"))
	}
	if c.GroupCount <= 0 {
		errs = append(errs, errors.New("group_count must be positive"))
	}
	if c.ChangeCheckInterval <= 0 {
		errs = append(errs, errors.New("change_check_interval must be positive"))
	}
	for name, h := range map[string]int{"daily_hour": c.DailyHour, "quiet_from": c.QuietFrom, "quiet_to": c.QuietTo} {
		if h < 0 || h > 23 {
			errs = append(errs, fmt.Errorf("%s must be within 0..23, got %d", name, h))
		}
	}
	if c.WarningMinute < 0 || c.WarningMinute > 59 {
		errs = append(errs, fmt.Errorf("warning_minute must be within 0..59, got %d", c.WarningMinute))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	return errors.Join(errs...)
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
