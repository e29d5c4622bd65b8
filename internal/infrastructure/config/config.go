package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port         string `env:"PORT,          default=8080"`
	Env          string `env:"ENV,           default=development"`
	JWTSecret    string `env:"JWT_SECRET"`
	LogLevel     string `env:"LOG_LEVEL,     default=info"`
	Timezone     string `env:"USAGE_TIMEZONE, default=Local"`
	AuditWorkers int    `env:"AUDIT_WORKERS, default=4"`

	Mongo  MongoConfig
	Redis  RedisConfig
	TTS    TTSConfig
	Gemini GeminiConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=voxgate"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,       default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,         default=0"`
	CacheTTL time.Duration `env:"MARKUP_CACHE_TTL, default=24h"`
}

type TTSConfig struct {
	APIKey       string        `env:"GOOGLE_TTS_API_KEY"`
	BaseURL      string        `env:"GOOGLE_TTS_BASE_URL, default=https://texttospeech.googleapis.com/v1"`
	Timeout      time.Duration `env:"TTS_TIMEOUT,         default=30s"`
	DefaultVoice string        `env:"TTS_DEFAULT_VOICE,   default=en-US-Wavenet-D"`
}

type GeminiConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY"`
	Model   string        `env:"GEMINI_MODEL,       default=gemini-1.5-flash"`
	BaseURL string        `env:"GEMINI_BASE_URL,    default=https://generativelanguage.googleapis.com/v1beta"`
	Timeout time.Duration `env:"GEMINI_TIMEOUT,     default=15s"`
	Enabled bool          `env:"ENRICHMENT_ENABLED, default=true"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.AuditWorkers <= 0 {
		cfg.AuditWorkers = 1
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether human-readable logs should be used.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Location resolves USAGE_TIMEZONE. The usage day boundary is computed in it.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid USAGE_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
