package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FeedConfig controls how the scoreboard is fetched
type FeedConfig struct {
	Source     string        `yaml:"source"`   // "http" or "browser"
	BaseURL    string        `yaml:"base_url"` // scoreboard host
	Timeout    time.Duration `yaml:"timeout"`
	UserAgents []string      `yaml:"user_agents"` // pool; one is picked at startup
}

// PollConfig controls the poll timer
type PollConfig struct {
	Interval         time.Duration `yaml:"interval"`
	InactiveInterval time.Duration `yaml:"inactive_interval"`
}

// ChatConfig holds chat connection and channel settings
type ChatConfig struct {
	TelegramToken string   `yaml:"telegram_token"`
	LiveChannels  []string `yaml:"live_channels"` // announcement targets
	DebugChannel  string   `yaml:"debug_channel"` // operational channel
	Style         string   `yaml:"style"`         // "plain", "irc" or "markdown"
	CommandPrefix string   `yaml:"command_prefix"`
}

// SlackConfig holds the optional Slack webhook
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the query API server configuration
type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds all application configuration
type Config struct {
	League      string      `yaml:"league"` // "fbs" or "fcs"
	AliasesPath string      `yaml:"aliases_path"`
	Feed        FeedConfig  `yaml:"feed"`
	Poll        PollConfig  `yaml:"poll"`
	Chat        ChatConfig  `yaml:"chat"`
	Slack       SlackConfig `yaml:"slack"`
	Redis       RedisConfig `yaml:"redis"`
	HTTP        HTTPConfig  `yaml:"http"`
	Log         LogConfig   `yaml:"log"`
}

// DefaultUserAgents is the pool used when none is configured
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		League:      "fbs",
		AliasesPath: "data/teams.yaml",
		Feed: FeedConfig{
			Source:     "http",
			BaseURL:    "https://www.espn.com",
			Timeout:    15 * time.Second,
			UserAgents: DefaultUserAgents,
		},
		Poll: PollConfig{
			Interval:         10 * time.Second,
			InactiveInterval: 5 * time.Minute,
		},
		Chat: ChatConfig{
			Style:         "markdown",
			CommandPrefix: "/",
		},
		HTTP: HTTPConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path (optional), applies environment overrides and validates
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides file values with environment variables
func (c *Config) applyEnv() error {
	c.League = getEnv("SCOREBOT_LEAGUE", c.League)
	c.AliasesPath = getEnv("ALIASES_PATH", c.AliasesPath)

	c.Feed.Source = getEnv("FEED_SOURCE", c.Feed.Source)
	c.Feed.BaseURL = getEnv("FEED_BASE_URL", c.Feed.BaseURL)

	c.Chat.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", c.Chat.TelegramToken)
	c.Chat.LiveChannels = getEnvList("LIVE_CHANNELS", c.Chat.LiveChannels)
	c.Chat.DebugChannel = getEnv("DEBUG_CHANNEL", c.Chat.DebugChannel)
	c.Chat.Style = getEnv("CHAT_STYLE", c.Chat.Style)
	c.Chat.CommandPrefix = getEnv("COMMAND_PREFIX", c.Chat.CommandPrefix)

	c.Slack.WebhookURL = getEnv("SLACK_WEBHOOK_URL", c.Slack.WebhookURL)
	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)

	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.CORSOrigins = getEnvList("CORS_ORIGINS", c.HTTP.CORSOrigins)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	var err error
	if c.Feed.Timeout, err = getEnvDuration("FEED_TIMEOUT", c.Feed.Timeout); err != nil {
		return err
	}
	if c.Poll.Interval, err = getEnvDuration("POLL_INTERVAL", c.Poll.Interval); err != nil {
		return err
	}
	if c.Poll.InactiveInterval, err = getEnvDuration("POLL_INACTIVE_INTERVAL", c.Poll.InactiveInterval); err != nil {
		return err
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.League {
	case "fbs", "fcs":
	default:
		return fmt.Errorf("unsupported league %q (want fbs or fcs)", c.League)
	}

	switch c.Feed.Source {
	case "http", "browser":
	default:
		return fmt.Errorf("unsupported feed source %q (want http or browser)", c.Feed.Source)
	}

	switch c.Chat.Style {
	case "plain", "irc", "markdown":
	default:
		return fmt.Errorf("unsupported chat style %q", c.Chat.Style)
	}

	if c.Chat.CommandPrefix == "" {
		return fmt.Errorf("chat command_prefix is required")
	}
	if c.Feed.BaseURL == "" {
		return fmt.Errorf("feed base_url is required")
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("feed timeout must be positive")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Poll.InactiveInterval < c.Poll.Interval {
		return fmt.Errorf("poll inactive_interval (%s) must not be shorter than interval (%s)",
			c.Poll.InactiveInterval, c.Poll.Interval)
	}
	if len(c.Feed.UserAgents) == 0 {
		c.Feed.UserAgents = DefaultUserAgents
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList reads a comma-separated environment variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
