package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // scheduler timezone must resolve on minimal images

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	CORS      CORSConfig      `toml:"cors"`
	Logging   LoggingConfig   `toml:"logging"`
	FX        FXConfig        `toml:"fx"`
	Market    MarketConfig    `toml:"market"`
	Advisor   AdvisorConfig   `toml:"advisor"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Security  SecurityConfig  `toml:"security"`
	Portfolio PortfolioConfig `toml:"portfolio"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `toml:"port"`
	Host string `toml:"host"`
	Addr string `toml:"-"` // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // json or console
}

// FXConfig configures the exchange-rate provider.
// URL may contain a single %s which is replaced with the pivot currency.
type FXConfig struct {
	URL      string   `toml:"url"`
	RatesKey string   `toml:"rates_path"`
	TTL      Duration `toml:"ttl"`
	Timeout  Duration `toml:"timeout"`
}

// MarketConfig configures the market-data client.
type MarketConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

// AdvisorConfig configures the AI advisor.
type AdvisorConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// SchedulerConfig configures the in-process cron jobs.
type SchedulerConfig struct {
	Enabled    bool   `toml:"enabled"`
	AutoInvest string `toml:"auto_invest"`
	Report     string `toml:"report"`
	Timezone   string `toml:"timezone"`
}

// SecurityConfig holds secrets used for encryption at rest.
type SecurityConfig struct {
	SecretKey string `toml:"secret_key"`
}

// PortfolioConfig holds portfolio-wide defaults.
type PortfolioConfig struct {
	BaseCurrency string `toml:"base_currency"`
}

// Duration is a time.Duration read from strings such as "90s" in TOML files.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// NewDefaultConfig returns the configuration used when nothing is overridden.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "5001",
			Host: "localhost",
		},
		Database: DatabaseConfig{
			Path: "./data/portfolio_dashboard.db",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		FX: FXConfig{
			URL:      "https://open.er-api.com/v6/latest/%s",
			RatesKey: "$.rates",
			TTL:      Duration{time.Hour},
			Timeout:  Duration{10 * time.Second},
		},
		Market: MarketConfig{
			BaseURL: "https://query1.finance.yahoo.com",
			Timeout: Duration{10 * time.Second},
		},
		Advisor: AdvisorConfig{
			Model: "gemini-2.5-flash",
		},
		Scheduler: SchedulerConfig{
			Enabled:    true,
			AutoInvest: "0 9 * * *",
			Report:     "0 7 * * MON",
			Timezone:   "Asia/Seoul",
		},
		Portfolio: PortfolioConfig{
			BaseCurrency: "KRW",
		},
	}
}

// Load reads configuration from the .env file, an optional TOML file named by
// CONFIG_FILE and environment variables, in that order of increasing priority.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := NewDefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// Validate checks values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	if len(c.Portfolio.BaseCurrency) != 3 {
		return fmt.Errorf("invalid base currency %q", c.Portfolio.BaseCurrency)
	}
	if c.FX.TTL.Duration <= 0 {
		return fmt.Errorf("fx ttl must be positive, got %s", c.FX.TTL)
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid scheduler timezone %q: %w", c.Scheduler.Timezone, err)
	}
	return nil
}

func applyEnvOverrides(c *Config) {
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.CORS.AllowedOrigins = splitList(origins)
	}
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
	c.FX.URL = getEnv("FX_API_URL", c.FX.URL)
	c.FX.TTL.Duration = getEnvDuration("FX_CACHE_TTL", c.FX.TTL.Duration)
	c.Market.BaseURL = getEnv("MARKET_BASE_URL", c.Market.BaseURL)
	c.Market.Timeout.Duration = getEnvDuration("MARKET_TIMEOUT", c.Market.Timeout.Duration)
	c.Advisor.APIKey = getEnv("GEMINI_API_KEY", c.Advisor.APIKey)
	c.Advisor.Model = getEnv("ADVISOR_MODEL", c.Advisor.Model)
	c.Scheduler.Enabled = getEnvBool("SCHEDULER_ENABLED", c.Scheduler.Enabled)
	c.Scheduler.AutoInvest = getEnv("SCHEDULER_AUTO_INVEST", c.Scheduler.AutoInvest)
	c.Scheduler.Report = getEnv("SCHEDULER_REPORT", c.Scheduler.Report)
	c.Scheduler.Timezone = getEnv("SCHEDULER_TIMEZONE", c.Scheduler.Timezone)
	c.Security.SecretKey = getEnv("SECRET_KEY", c.Security.SecretKey)
	c.Portfolio.BaseCurrency = strings.ToUpper(getEnv("BASE_CURRENCY", c.Portfolio.BaseCurrency))
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
