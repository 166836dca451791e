package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API       APIConfig       `yaml:"api"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Recording RecordingConfig `yaml:"recording"`
	LogLevel  string          `yaml:"log_level"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// RateLimit is the sustained number of upstream requests per second.
	RateLimit float64       `yaml:"rate_limit"`
	Burst     int           `yaml:"burst"`
	Timeout   time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RecordingConfig struct {
	SessionPolicy string `yaml:"session_policy"`
	// Timezone is the zone session dates and start times are combined in.
	// Empty means the process zone.
	Timezone string `yaml:"timezone"`
}

func defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			RateLimit: 20,
			Burst:     10,
			Timeout:   10 * time.Second,
		},
		Server: ServerConfig{
			Port:           "3000",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Database:  DatabaseConfig{Path: "leagueos.db"},
		Recording: RecordingConfig{SessionPolicy: string(league.PolicyStrict)},
		LogLevel:  "info",
	}
}

// Load reads .env, then the YAML file named by CONFIG_FILE, then applies
// environment overrides.
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg, err := LoadConfig(getEnv("CONFIG_FILE", "leagueos.yaml"))
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("api_base_url", cfg.API.BaseURL).
		Str("server_port", cfg.Server.Port).
		Str("db_path", cfg.Database.Path).
		Str("session_policy", cfg.Recording.SessionPolicy).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// and the environment, in that order.
func LoadConfig(filename string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid API_RATE_LIMIT value: %w", err)
		}
		cfg.API.RateLimit = f
	}
	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid API_TIMEOUT value: %w", err)
		}
		cfg.API.Timeout = d
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SESSION_POLICY"); v != "" {
		cfg.Recording.SessionPolicy = v
	}
	if v := os.Getenv("RECORDING_TIMEZONE"); v != "" {
		cfg.Recording.Timezone = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.API.RateLimit <= 0 {
		return fmt.Errorf("api rate limit must be positive, got %v", c.API.RateLimit)
	}
	if _, err := league.ParseSessionPolicy(c.Recording.SessionPolicy); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// SessionPolicy is only valid on a configuration that passed Validate.
func (c *Config) SessionPolicy() league.SessionPolicy {
	p, _ := league.ParseSessionPolicy(c.Recording.SessionPolicy)
	return p
}

// Location returns the fallback recording zone, time.Local when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Recording.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Recording.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load recording timezone: %w", err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Module provides the configuration. Load logs through the bootstrap logger,
// since the application logger is built from the loaded level.
var Module = fx.Provide(fx.Annotate(Load, fx.ParamTags(`name:"bootstrap"`)))
