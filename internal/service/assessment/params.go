package assessment

import (
	"github.com/quizmith/adapt-api/internal/config"
	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/quizmith/adapt-api/internal/domain/cat"
)

// ParamsFromConfig builds the engine parameter set from the application's
// assessment configuration. Fields the configuration does not cover keep
// their engine defaults.
func ParamsFromConfig(cfg config.AssessmentConfig) *cat.Params {
	return cat.NewParams(cat.ParamsConfig{
		EasyQuota:   cfg.EasyQuota,
		MediumQuota: cfg.MediumQuota,
		HardQuota:   cfg.HardQuota,

		InitialTier:   domain.Tier(cfg.InitialTier),
		UpThreshold:   cfg.UpThreshold,
		DownThreshold: cfg.DownThreshold,
		ClampPolicy:   cat.ClampPolicy(cfg.ClampPolicy),
		Strategy:      cat.Strategy(cfg.Strategy),

		HighAccuracy:     cfg.HighAccuracy,
		LowAccuracy:      cfg.LowAccuracy,
		MinTopicAttempts: cfg.MinTopicAttempts,
		TrailingWindow:   cfg.TrailingWindow,
	})
}
