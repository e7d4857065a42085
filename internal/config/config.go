package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Assessment AssessmentConfig `mapstructure:"assessment" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AssessmentConfig contains the adaptive testing engine settings: the fixed
// per-band quotas, progression thresholds, estimation strategy, profiling
// thresholds and the abandoned-session sweep policy.
type AssessmentConfig struct {
	EasyQuota   int `mapstructure:"easy_quota"   validate:"required,gt=0"`
	MediumQuota int `mapstructure:"medium_quota" validate:"required,gt=0"`
	HardQuota   int `mapstructure:"hard_quota"   validate:"required,gt=0"`

	InitialTier   string `mapstructure:"initial_tier"   validate:"required,oneof=easy medium hard"`
	UpThreshold   int    `mapstructure:"up_threshold"   validate:"required,gte=1"`
	DownThreshold int    `mapstructure:"down_threshold" validate:"required,gte=1"`
	ClampPolicy   string `mapstructure:"clamp_policy"   validate:"required,oneof=closest_band highest_remaining"`

	Strategy string `mapstructure:"strategy" validate:"required,oneof=item_response weighted_average rule_based hybrid"`

	HighAccuracy     float64 `mapstructure:"high_accuracy"      validate:"required,gt=0,lte=1"`
	LowAccuracy      float64 `mapstructure:"low_accuracy"       validate:"required,gt=0,lte=1"`
	MinTopicAttempts int     `mapstructure:"min_topic_attempts" validate:"required,gte=1"`
	TrailingWindow   int     `mapstructure:"trailing_window"    validate:"required,gte=2"`

	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required"`
	Retention     time.Duration `mapstructure:"retention"      validate:"required"`
}
