package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	ChannelID    string

	// Esportal configuration
	EsportalUsername string
	EsportalBaseURL  string

	// Ledger configuration
	StartingBalance int64
	StipendAmount   int64
	StipendHour     int    // Hour of day when the daily stipend is credited (0-23)
	Timezone        string // IANA zone for the stipend schedule

	// Betting configuration
	PollInterval time.Duration
	BetWindow    time.Duration

	// Persistence configuration
	LedgerFile  string
	DatabaseURL string // When set, the ledger snapshot lives in Postgres instead of LedgerFile

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		ChannelID:        os.Getenv("CHANNEL_ID"),
		EsportalUsername: os.Getenv("ESPORTAL_USERNAME"),
		EsportalBaseURL:  os.Getenv("ESPORTAL_BASE_URL"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Environment:      os.Getenv("ENVIRONMENT"),

		// Defaults
		StartingBalance: 1000,
		StipendAmount:   100,
		StipendHour:     6,
		Timezone:        "Europe/Helsinki",
		PollInterval:    30 * time.Second,
		BetWindow:       5 * time.Minute,
		LedgerFile:      "balances.json",
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		parsed, err := strconv.ParseInt(balance, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid STARTING_BALANCE %q: %w", balance, err)
		}
		config.StartingBalance = parsed
	}
	if amount := os.Getenv("STIPEND_AMOUNT"); amount != "" {
		parsed, err := strconv.ParseInt(amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid STIPEND_AMOUNT %q: %w", amount, err)
		}
		config.StipendAmount = parsed
	}
	if hour := os.Getenv("STIPEND_HOUR"); hour != "" {
		parsed, err := strconv.Atoi(hour)
		if err != nil || parsed < 0 || parsed > 23 {
			return nil, fmt.Errorf("invalid STIPEND_HOUR %q", hour)
		}
		config.StipendHour = parsed
	}
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
		config.Timezone = tz
	}
	if interval := os.Getenv("POLL_INTERVAL_SECONDS"); interval != "" {
		parsed, err := strconv.Atoi(interval)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid POLL_INTERVAL_SECONDS %q", interval)
		}
		config.PollInterval = time.Duration(parsed) * time.Second
	}
	if window := os.Getenv("BET_WINDOW_MINUTES"); window != "" {
		parsed, err := strconv.Atoi(window)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid BET_WINDOW_MINUTES %q", window)
		}
		config.BetWindow = time.Duration(parsed) * time.Minute
	}
	if file := os.Getenv("LEDGER_FILE"); file != "" {
		config.LedgerFile = file
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.ChannelID == "" {
			return nil, fmt.Errorf("CHANNEL_ID is required")
		}
		if config.EsportalUsername == "" {
			return nil, fmt.Errorf("ESPORTAL_USERNAME is required")
		}
	}

	return config, nil
}

// Location resolves the configured stipend timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
