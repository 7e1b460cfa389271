package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Frontend FrontendConfig
	Logging  LoggingConfig
	Input    InputConfig
	Feed     FeedConfig
	Redis    RedisConfig
	Debug    DebugConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	FrameRate    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type FrontendConfig struct {
	URL            string
	AllowedOrigins []string
	CORSDebug      bool
}

type LoggingConfig struct {
	Level      string
	Format     string
	JSONFormat bool
}

// InputConfig throttles viewer input messages per connection
type InputConfig struct {
	Enabled         bool
	EventsPerSecond float64
	BurstSize       int
}

type FeedConfig struct {
	Enabled   bool
	URL       string
	Timeout   time.Duration
	MaxComets int
	CacheTTL  time.Duration
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
}

type DebugConfig struct {
	Input bool
}

const DefaultFeedURL = "https://data.nasa.gov/resource/b67r-rgxc.json"

// GetEnv returns the value of key or def when unset
func GetEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// Load reads .env when present, then the environment, and validates the result
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using system environment variables")
	}

	p := &envParser{}
	cfg := &Config{
		Server:   loadServerConfig(p),
		Frontend: loadFrontendConfig(),
		Logging:  loadLoggingConfig(),
		Input:    loadInputConfig(p),
		Feed:     loadFeedConfig(p),
		Redis:    loadRedisConfig(p),
		Debug:    loadDebugConfig(),
	}
	if p.err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", p.err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// envParser reads numeric settings and keeps the first malformed one
type envParser struct {
	err error
}

func (p *envParser) integer(key, def string) int {
	v := GetEnv(key, def)
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n
}

func (p *envParser) number(key, def string) float64 {
	v := GetEnv(key, def)
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return f
}

func loadServerConfig(p *envParser) ServerConfig {
	frameRate := p.integer("FRAME_RATE", "30")
	readTimeout := p.integer("SERVER_READ_TIMEOUT_SECONDS", "10")
	writeTimeout := p.integer("SERVER_WRITE_TIMEOUT_SECONDS", "10")
	idleTimeout := p.integer("SERVER_IDLE_TIMEOUT_SECONDS", "60")

	return ServerConfig{
		Port:         GetEnv("SERVER_PORT", "8080"),
		Environment:  GetEnv("ENVIRONMENT", "development"),
		FrameRate:    frameRate,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
		IdleTimeout:  time.Duration(idleTimeout) * time.Second,
	}
}

func loadFrontendConfig() FrontendConfig {
	url := GetEnv("FRONTEND_URL", "http://localhost:8080")
	origins := []string{url}
	for _, o := range strings.Split(GetEnv("CORS_ALLOWED_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" && o != url {
			origins = append(origins, o)
		}
	}

	return FrontendConfig{
		URL:            url,
		AllowedOrigins: origins,
		CORSDebug:      GetEnv("CORS_DEBUG", "") == "true",
	}
}

func loadLoggingConfig() LoggingConfig {
	format := GetEnv("LOG_FORMAT", "")
	if format == "" {
		format = "text"
		if GetEnv("ENVIRONMENT", "development") == "production" {
			format = "json"
		}
	}

	return LoggingConfig{
		Level:      GetEnv("LOG_LEVEL", "info"),
		Format:     format,
		JSONFormat: format == "json",
	}
}

func loadInputConfig(p *envParser) InputConfig {
	eventsPerSecond := p.number("INPUT_RATE_PER_SECOND", "60")
	burstSize := p.integer("INPUT_BURST_SIZE", "120")

	return InputConfig{
		Enabled:         GetEnv("INPUT_RATE_LIMIT_ENABLED", "true") == "true",
		EventsPerSecond: eventsPerSecond,
		BurstSize:       burstSize,
	}
}

func loadFeedConfig(p *envParser) FeedConfig {
	timeout := p.integer("COMET_FEED_TIMEOUT_SECONDS", "10")
	maxComets := p.integer("COMET_FEED_MAX", "20")
	ttl := p.integer("COMET_CACHE_TTL_MINUTES", "360")

	return FeedConfig{
		Enabled:   GetEnv("COMET_FEED_ENABLED", "true") == "true",
		URL:       GetEnv("COMET_FEED_URL", DefaultFeedURL),
		Timeout:   time.Duration(timeout) * time.Second,
		MaxComets: maxComets,
		CacheTTL:  time.Duration(ttl) * time.Minute,
	}
}

func loadRedisConfig(p *envParser) RedisConfig {
	db := p.integer("REDIS_DB", "0")

	return RedisConfig{
		Enabled:  GetEnv("REDIS_ENABLED", "false") == "true",
		URL:      GetEnv("REDIS_URL", ""),
		Host:     GetEnv("REDIS_HOST", "localhost"),
		Port:     GetEnv("REDIS_PORT", "6379"),
		Password: GetEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func loadDebugConfig() DebugConfig {
	return DebugConfig{
		Input: GetEnv("DEBUG_INPUT", "") == "true",
	}
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("SERVER_PORT must be numeric, got %q", c.Server.Port)
	}
	if c.Server.FrameRate <= 0 || c.Server.FrameRate > 240 {
		return fmt.Errorf("FRAME_RATE must be between 1 and 240, got %d", c.Server.FrameRate)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT_SECONDS, SERVER_WRITE_TIMEOUT_SECONDS and SERVER_IDLE_TIMEOUT_SECONDS must be positive")
	}
	if c.Input.Enabled && (!(c.Input.EventsPerSecond > 0) || c.Input.BurstSize <= 0) {
		return fmt.Errorf("INPUT_RATE_PER_SECOND and INPUT_BURST_SIZE must be positive")
	}
	if c.Feed.Enabled {
		if c.Feed.URL == "" {
			return fmt.Errorf("COMET_FEED_URL is required when the comet feed is enabled")
		}
		if c.Feed.Timeout <= 0 {
			return fmt.Errorf("COMET_FEED_TIMEOUT_SECONDS must be positive")
		}
		if c.Feed.MaxComets < 0 {
			return fmt.Errorf("COMET_FEED_MAX must not be negative")
		}
		if c.Feed.CacheTTL < 0 {
			return fmt.Errorf("COMET_CACHE_TTL_MINUTES must not be negative")
		}
	}
	return nil
}

// Addr is host:port for a Redis connection without a URL
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}
