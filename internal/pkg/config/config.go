package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Vodeneev/betcode/internal/pkg/models"
)

type Config struct {
	Server    ServerConfig              `yaml:"server"`
	Logging   LoggingConfig             `yaml:"logging"`
	Resolver  ResolverConfig            `yaml:"resolver"`
	Platforms map[string]PlatformConfig `yaml:"platforms"`
	Markets   MarketsConfig             `yaml:"markets"`
	Chat      ChatConfig                `yaml:"chat"`
	Audit     AuditConfig               `yaml:"audit"`
	Telegram  TelegramConfig            `yaml:"telegram"`
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"` // must exceed resolver.timeout * len(url_templates)
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins       []string      `yaml:"cors_origins"`
	ConvertRate       float64       `yaml:"convert_rate"` // conversions per second across all clients
	ConvertBurst      int           `yaml:"convert_burst"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`   // optional JSON log file, in addition to stdout
}

type ResolverConfig struct {
	Fetcher     string        `yaml:"fetcher"` // "chrome" or "static"
	Timeout     time.Duration `yaml:"timeout"` // per navigation
	UserAgent   string        `yaml:"user_agent"`
	ChromePath  string        `yaml:"chrome_path"`
	Headful     bool          `yaml:"headful"`
	SettleDelay time.Duration `yaml:"settle_delay"` // wait for client-side rendering after navigation
}

// PlatformConfig controls how codes of one source platform are resolved.
type PlatformConfig struct {
	URLTemplates []string               `yaml:"url_templates"` // "{code}" is replaced with the booking code
	Selectors    []string               `yaml:"selectors"`
	Fixtures     map[string]models.Slip `yaml:"fixtures"`
}

type MarketsConfig struct {
	Extra []MarketMapping `yaml:"extra"`
}

type MarketMapping struct {
	Platform string `yaml:"platform"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

type ChatConfig struct {
	RedisURL string `yaml:"redis_url"` // empty: broadcast stays within this instance
	Channel  string `yaml:"channel"`
}

type AuditConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
}

type TelegramConfig struct {
	BotToken string        `yaml:"bot_token"`
	ChatID   int64         `yaml:"chat_id"`
	Cooldown time.Duration `yaml:"cooldown"` // per platform+code
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ApplyEnv()
	config.ApplyDefaults()
	return &config, nil
}

// Default returns a config with every default applied, for tools that run without a file.
func Default() *Config {
	var config Config
	config.ApplyEnv()
	config.ApplyDefaults()
	return &config
}

// ApplyEnv overrides settings that should not be committed into config files.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("CHAT_REDIS_URL"); v != "" {
		c.Chat.RedisURL = v
	}
	if v := os.Getenv("AUDIT_POSTGRES_DSN"); v != "" {
		c.Audit.PostgresDSN = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
}

func (c *Config) ApplyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		c.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = 2 * time.Minute
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.ConvertRate <= 0 {
		c.Server.ConvertRate = 2
	}
	if c.Server.ConvertBurst <= 0 {
		c.Server.ConvertBurst = 5
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	c.Resolver.Fetcher = strings.ToLower(strings.TrimSpace(c.Resolver.Fetcher))
	if c.Resolver.Fetcher == "" {
		c.Resolver.Fetcher = "chrome"
	}
	if c.Resolver.Timeout <= 0 {
		c.Resolver.Timeout = 25 * time.Second
	}
	if c.Resolver.UserAgent == "" {
		c.Resolver.UserAgent = DefaultUserAgent
	}

	platforms := make(map[string]PlatformConfig, len(c.Platforms))
	for name, pc := range c.Platforms {
		platforms[strings.ToLower(strings.TrimSpace(name))] = pc
	}
	c.Platforms = platforms

	if c.Chat.Channel == "" {
		c.Chat.Channel = "betcode:chat"
	}
	if c.Telegram.Cooldown <= 0 {
		c.Telegram.Cooldown = 10 * time.Minute
	}
}

// Platform returns the resolution settings for a platform name (case-insensitive).
func (c *Config) Platform(name string) PlatformConfig {
	return c.Platforms[strings.ToLower(strings.TrimSpace(name))]
}

const DefaultUserAgent = "Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Mobile Safari/537.36"
