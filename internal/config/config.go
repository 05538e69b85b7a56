package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/riskboard/pkg/constants"
)

// Config holds the application's configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Data    DataConfig    `mapstructure:"data"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // in seconds
	IdleTimeout    int      `mapstructure:"idle_timeout"`  // in seconds
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
}

// Address returns the host:port pair the HTTP server listens on.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DataConfig struct {
	Dir             string `mapstructure:"dir"`
	Watch           bool   `mapstructure:"watch"`
	LoadConcurrency int    `mapstructure:"load_concurrency"`
	PreviewRows     int    `mapstructure:"preview_rows"`
	SampleThreshold int    `mapstructure:"sample_threshold"`
}

type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Address   string        `mapstructure:"address"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	ExportTTL time.Duration `mapstructure:"export_ttl"`
}

type ScoringConfig struct {
	MissingPolicy string `mapstructure:"missing_policy"`
	SampleSize    int    `mapstructure:"sample_size"`
	Seed          int64  `mapstructure:"seed"`
}

// Policy returns the configured missing-value policy.
func (c *ScoringConfig) Policy() constants.MissingPolicy {
	return constants.MissingPolicy(strings.ToLower(c.MissingPolicy))
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	Environment    string  `mapstructure:"environment"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Data.LoadConcurrency <= 0 {
		return fmt.Errorf("data.load_concurrency must be positive")
	}
	switch c.Scoring.Policy() {
	case constants.MissingPolicyPropagate, constants.MissingPolicyNeutral:
	default:
		return fmt.Errorf("scoring.missing_policy must be %q or %q, got %q",
			constants.MissingPolicyPropagate, constants.MissingPolicyNeutral, c.Scoring.MissingPolicy)
	}
	switch constants.LogLevel(strings.ToLower(c.Log.Level)) {
	case "", constants.LogLevelDebug, constants.LogLevelInfo, constants.LogLevelWarn, constants.LogLevelError:
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when redis is enabled")
	}
	if c.Tracing.Enabled && c.Tracing.JaegerEndpoint == "" {
		return fmt.Errorf("tracing.jaeger_endpoint is required when tracing is enabled")
	}
	return nil
}
