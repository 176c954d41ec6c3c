package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/NgigiN/banker/internal/openbanking"
)

type Config struct {
	// Open banking API
	NordeaBaseURL      string
	NordeaClientID     string
	NordeaClientSecret string
	NordeaToken        string
	UpstreamTimeout    time.Duration
	MaxPages           int

	// HTTP surface
	Port           string
	RequestTimeout time.Duration

	// Chat bot
	DiscordBotToken  string
	DiscordChannelId string
	ReminderSchedule string
	GoalSpreadDays   int

	DBPath   string
	LogLevel string
}

func Load() (*Config, error) {
	clientID := os.Getenv("NORDEA_CLIENT_ID")
	if clientID == "" {
		return nil, fmt.Errorf("NORDEA_CLIENT_ID is not set")
	}
	clientSecret := os.Getenv("NORDEA_CLIENT_SECRET")
	if clientSecret == "" {
		return nil, fmt.Errorf("NORDEA_CLIENT_SECRET is not set")
	}
	token := os.Getenv("NORDEA_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("NORDEA_TOKEN is not set")
	}

	cfg := &Config{
		NordeaBaseURL:      getEnv("NORDEA_BASE_URL", openbanking.DefaultBaseURL),
		NordeaClientID:     clientID,
		NordeaClientSecret: clientSecret,
		NordeaToken:        token,
		UpstreamTimeout:    getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		MaxPages:           getEnvInt("MAX_PAGES", openbanking.DefaultMaxPages),

		Port:           getEnv("PORT", "5000"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),

		DiscordBotToken:  os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordChannelId: os.Getenv("DISCORD_CHANNEL_ID"),
		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 9 * * *"),
		GoalSpreadDays:   getEnvInt("GOAL_SPREAD_DAYS", 0),

		DBPath:   getEnv("DB_PATH", "banker.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks everything Load can't catch with a missing variable.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be between 1 and 65535", c.Port))
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "REQUEST_TIMEOUT must be positive")
	}
	if c.UpstreamTimeout <= 0 {
		problems = append(problems, "UPSTREAM_TIMEOUT must be positive")
	}
	if c.MaxPages < 1 {
		problems = append(problems, fmt.Sprintf("invalid MAX_PAGES %d: must be at least 1", c.MaxPages))
	}
	if c.GoalSpreadDays < 0 {
		problems = append(problems, fmt.Sprintf("invalid GOAL_SPREAD_DAYS %d: must not be negative", c.GoalSpreadDays))
	}
	if c.DiscordBotToken != "" && c.DiscordChannelId == "" {
		problems = append(problems, "DISCORD_CHANNEL_ID is required when DISCORD_BOT_TOKEN is set")
	}
	if _, err := cron.ParseStandard(c.ReminderSchedule); err != nil {
		problems = append(problems, fmt.Sprintf("invalid REMINDER_SCHEDULE %q: %v", c.ReminderSchedule, err))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid LOG_LEVEL %q", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Upstream is the open-banking client configuration.
func (c *Config) Upstream() openbanking.Config {
	return openbanking.Config{
		BaseURL:      c.NordeaBaseURL,
		ClientID:     c.NordeaClientID,
		ClientSecret: c.NordeaClientSecret,
		Token:        c.NordeaToken,
		Timeout:      c.UpstreamTimeout,
		MaxPages:     c.MaxPages,
	}
}

// DiscordEnabled reports whether the chat bot should be started.
func (c *Config) DiscordEnabled() bool {
	return c.DiscordBotToken != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
