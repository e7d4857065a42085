package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
//
// Environment variables use the ADAPT_ prefix with underscores for nesting,
// e.g. ADAPT_SERVER_PORT, ADAPT_DATABASE_URL, ADAPT_ASSESSMENT_EASY_QUOTA.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file next to the binary or in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; environment variables and defaults apply.
	}

	v.SetEnvPrefix("ADAPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Assessment.LowAccuracy >= cfg.Assessment.HighAccuracy {
		return nil, fmt.Errorf("invalid configuration: low_accuracy must be below high_accuracy")
	}

	return &cfg, nil
}

// setDefaults registers the default value for every setting so a bare
// environment still yields a runnable configuration (aside from the
// database URL, which has no sensible default).
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("assessment.easy_quota", 7)
	v.SetDefault("assessment.medium_quota", 6)
	v.SetDefault("assessment.hard_quota", 7)
	v.SetDefault("assessment.initial_tier", "easy")
	v.SetDefault("assessment.up_threshold", 2)
	v.SetDefault("assessment.down_threshold", 2)
	v.SetDefault("assessment.clamp_policy", "closest_band")
	v.SetDefault("assessment.strategy", "hybrid")
	v.SetDefault("assessment.high_accuracy", 0.8)
	v.SetDefault("assessment.low_accuracy", 0.5)
	v.SetDefault("assessment.min_topic_attempts", 2)
	v.SetDefault("assessment.trailing_window", 6)
	v.SetDefault("assessment.sweep_interval", 5*time.Minute)
	v.SetDefault("assessment.retention", 2*time.Hour)
}
