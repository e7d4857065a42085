package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADAPT_DATABASE_URL", "postgres://localhost:5432/adapt")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres://localhost:5432/adapt", cfg.Database.URL)

	assert.Equal(t, 7, cfg.Assessment.EasyQuota)
	assert.Equal(t, 6, cfg.Assessment.MediumQuota)
	assert.Equal(t, 7, cfg.Assessment.HardQuota)
	assert.Equal(t, "easy", cfg.Assessment.InitialTier)
	assert.Equal(t, 2, cfg.Assessment.UpThreshold)
	assert.Equal(t, 2, cfg.Assessment.DownThreshold)
	assert.Equal(t, "closest_band", cfg.Assessment.ClampPolicy)
	assert.Equal(t, "hybrid", cfg.Assessment.Strategy)
	assert.Equal(t, 0.8, cfg.Assessment.HighAccuracy)
	assert.Equal(t, 0.5, cfg.Assessment.LowAccuracy)
	assert.Equal(t, 2, cfg.Assessment.MinTopicAttempts)
	assert.Equal(t, 6, cfg.Assessment.TrailingWindow)
	assert.Equal(t, 5*time.Minute, cfg.Assessment.SweepInterval)
	assert.Equal(t, 2*time.Hour, cfg.Assessment.Retention)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ADAPT_DATABASE_URL", "postgres://localhost:5432/adapt")
	t.Setenv("ADAPT_SERVER_PORT", "9090")
	t.Setenv("ADAPT_SERVER_LOG_LEVEL", "debug")
	t.Setenv("ADAPT_ASSESSMENT_EASY_QUOTA", "3")
	t.Setenv("ADAPT_ASSESSMENT_STRATEGY", "item_response")
	t.Setenv("ADAPT_ASSESSMENT_RETENTION", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 3, cfg.Assessment.EasyQuota)
	assert.Equal(t, "item_response", cfg.Assessment.Strategy)
	assert.Equal(t, time.Hour, cfg.Assessment.Retention)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("ADAPT_DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "ADAPT_SERVER_PORT", "70000"},
		{"unknown log level", "ADAPT_SERVER_LOG_LEVEL", "verbose"},
		{"unknown strategy", "ADAPT_ASSESSMENT_STRATEGY", "guesswork"},
		{"unknown clamp policy", "ADAPT_ASSESSMENT_CLAMP_POLICY", "nearest"},
		{"unknown initial tier", "ADAPT_ASSESSMENT_INITIAL_TIER", "extreme"},
		{"zero trailing window", "ADAPT_ASSESSMENT_TRAILING_WINDOW", "0"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("ADAPT_DATABASE_URL", "postgres://localhost:5432/adapt")
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsInvertedAccuracyThresholds(t *testing.T) {
	t.Setenv("ADAPT_DATABASE_URL", "postgres://localhost:5432/adapt")
	t.Setenv("ADAPT_ASSESSMENT_LOW_ACCURACY", "0.9")
	t.Setenv("ADAPT_ASSESSMENT_HIGH_ACCURACY", "0.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "low_accuracy")
}
