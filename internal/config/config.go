// Package config provides unified configuration loading for the dialogue engine.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dialogueforge/dialogueforge/internal/domain"
)

// Config holds all configuration for the dialogue engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Cache         CacheConfig         `yaml:"cache"`
	Generation    GenerationConfig    `yaml:"generation"`
	Chunking      ChunkingConfig      `yaml:"chunking"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
}

// DatabaseConfig holds session-store connection settings.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"` // sqlite or postgres
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	JournalMode  string `yaml:"journal_mode"`
}

// PostgresConfig holds Postgres-specific settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// CacheConfig holds completion-cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// GenerationConfig holds completion-service settings.
type GenerationConfig struct {
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url"` // empty uses the provider default
	Model             string        `yaml:"model"`
	Temperature       float64       `yaml:"temperature"`
	QuestionsPerChunk int           `yaml:"questions_per_chunk"`
	Style             string        `yaml:"style"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
}

// ChunkingConfig holds chunker settings.
type ChunkingConfig struct {
	MaxChars int `yaml:"max_chars"`
}

// PipelineConfig holds batch-processing settings.
type PipelineConfig struct {
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment overrides.
// An empty path skips the file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	// A local .env is optional; ignore absence.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.ConfigError("read config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.ConfigError("parse config file", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8090,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     60 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxUploadBytes:   64 << 20,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path:         "dialogueforge.db",
				MaxOpenConns: 1,
				JournalMode:  "WAL",
			},
			Postgres: PostgresConfig{
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        15 * time.Minute,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Generation: GenerationConfig{
			Model:             "gpt-4o-mini",
			Temperature:       0.7,
			QuestionsPerChunk: 3,
			Style:             string(domain.StyleQA),
			Timeout:           60 * time.Second,
			MaxRetries:        3,
		},
		Chunking: ChunkingConfig{
			MaxChars: 2000,
		},
		Pipeline: PipelineConfig{
			Workers: 1,
			Timeout: 10 * time.Minute,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return domain.ConfigError(fmt.Sprintf("unknown database driver %q", c.Database.Driver), nil)
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return domain.ConfigError(fmt.Sprintf("unknown cache driver %q", c.Cache.Driver), nil)
	}
	if !domain.ValidStyle(domain.DialogueStyle(c.Generation.Style)) {
		return domain.ConfigError(fmt.Sprintf("unknown dialogue style %q", c.Generation.Style), nil)
	}
	if c.Generation.QuestionsPerChunk <= 0 || c.Generation.QuestionsPerChunk > domain.MaxQuestionsPerChunk {
		return domain.ConfigError(fmt.Sprintf("questions_per_chunk must be in 1..%d", domain.MaxQuestionsPerChunk), nil)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return domain.ConfigError("temperature must be in [0, 2]", nil)
	}
	if c.Chunking.MaxChars <= 0 {
		return domain.ConfigError("chunking.max_chars must be positive", nil)
	}
	if c.Pipeline.Workers <= 0 {
		return domain.ConfigError("pipeline.workers must be positive", nil)
	}
	return nil
}

// applyEnvOverrides layers environment variables over the loaded configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DIALOGUEFORGE_API_KEY"); v != "" {
		cfg.Generation.APIKey = v
	}
	// Accept the conventional variable as a fallback key source.
	if cfg.Generation.APIKey == "" {
		cfg.Generation.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("DIALOGUEFORGE_BASE_URL"); v != "" {
		cfg.Generation.BaseURL = v
	}
	if v := os.Getenv("DIALOGUEFORGE_MODEL"); v != "" {
		cfg.Generation.Model = v
	}
	if v := os.Getenv("DIALOGUEFORGE_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DIALOGUEFORGE_DB_PATH"); v != "" {
		cfg.Database.SQLite.Path = v
	}
	if v := os.Getenv("DIALOGUEFORGE_PG_DSN"); v != "" {
		cfg.Database.Postgres.DSN = v
	}
	if v := os.Getenv("DIALOGUEFORGE_REDIS_ADDR"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("DIALOGUEFORGE_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("DIALOGUEFORGE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.Workers = n
		}
	}
	if v := os.Getenv("DIALOGUEFORGE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}
}
