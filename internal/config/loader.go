package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
	"github.com/turtacn/riskboard/pkg/constants"
)

// EnvPrefix is the prefix for environment overrides, e.g. RISKBOARD_DATA_DIR.
const EnvPrefix = "RISKBOARD"

// SetDefaults registers a default for every configuration key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_upload_bytes", constants.DefaultUploadLimit)

	v.SetDefault("data.dir", "processed_data")
	v.SetDefault("data.watch", true)
	v.SetDefault("data.load_concurrency", 4)
	v.SetDefault("data.preview_rows", constants.DefaultPreviewRows)
	v.SetDefault("data.sample_threshold", constants.DefaultSampleThreshold)

	v.SetDefault("cache.ttl", constants.DefaultTableCacheTTL)
	v.SetDefault("cache.cleanup_interval", constants.DefaultTableCacheCleanup)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.export_ttl", constants.DefaultExportCacheTTL)

	v.SetDefault("scoring.missing_policy", string(constants.MissingPolicyPropagate))
	v.SetDefault("scoring.sample_size", constants.DefaultSampleSize)
	v.SetDefault("scoring.seed", constants.DefaultSeed)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "")
	v.SetDefault("tracing.service_name", "riskboard")
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sampling_rate", 1.0)
}

// LoadConfig loads the configuration from file and environment variables.
// An empty path searches /etc/riskboard/ and the working directory for config.yaml.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/riskboard/")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
