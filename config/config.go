// Package config loads the system configuration from YAML and converts it
// into the typed tuning structs each component consumes. Missing keys fall
// back to production defaults, so an empty file is a valid configuration.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/border-sentry/go-intel/detection"
	"github.com/border-sentry/go-intel/grid"
	"github.com/border-sentry/go-intel/threat"
	"github.com/border-sentry/go-intel/tracking"
)

// Scoring is the file shape of the threat factor model. Class points are
// keyed by label so operators edit "person: 1", not enum ordinals.
type Scoring struct {
	ClassPoints map[string]int `mapstructure:"class_points"`

	DayPoints     int `mapstructure:"day_points"`
	EveningPoints int `mapstructure:"evening_points"`
	NightPoints   int `mapstructure:"night_points"`

	SinglePoints     int `mapstructure:"single_points"`
	PairPoints       int `mapstructure:"pair_points"`
	SmallGroupPoints int `mapstructure:"small_group_points"`
	LargeGroupPoints int `mapstructure:"large_group_points"`

	HighConfidencePoints   int `mapstructure:"high_confidence_points"`
	MediumConfidencePoints int `mapstructure:"medium_confidence_points"`
	LowConfidencePoints    int `mapstructure:"low_confidence_points"`

	MovementPoints map[string]int `mapstructure:"movement_points"`

	CriticalThreshold int `mapstructure:"critical_threshold"`
	MediumThreshold   int `mapstructure:"medium_threshold"`
	LowThreshold      int `mapstructure:"low_threshold"`
}

// Config is the full system configuration.
type Config struct {
	Grid      grid.MapperConfig         `mapstructure:"grid"`
	Patrols   []grid.PatrolUnit         `mapstructure:"patrols"`
	Validator detection.ValidatorConfig `mapstructure:"validator"`
	// NMSThreshold is the IoU at which same-class duplicates are suppressed.
	NMSThreshold float32         `mapstructure:"nms_threshold"`
	Tracker      tracking.Config `mapstructure:"tracker"`
	Scoring      Scoring         `mapstructure:"scoring"`
}

// Default returns the production configuration.
func Default() Config {
	return Config{
		Grid:         grid.DefaultMapperConfig(),
		Validator:    detection.DefaultValidatorConfig(),
		NMSThreshold: detection.DefaultNMSThreshold,
		Tracker:      tracking.DefaultConfig(),
		Scoring:      defaultScoring(),
	}
}

func defaultScoring() Scoring {
	d := threat.DefaultScoringConfig()
	classPoints := make(map[string]int, len(d.ClassPoints))
	for class, points := range d.ClassPoints {
		classPoints[class.Label()] = points
	}
	movementPoints := make(map[string]int, len(d.MovementPoints))
	for movement, points := range d.MovementPoints {
		movementPoints[string(movement)] = points
	}
	return Scoring{
		ClassPoints:            classPoints,
		DayPoints:              d.DayPoints,
		EveningPoints:          d.EveningPoints,
		NightPoints:            d.NightPoints,
		SinglePoints:           d.SinglePoints,
		PairPoints:             d.PairPoints,
		SmallGroupPoints:       d.SmallGroupPoints,
		LargeGroupPoints:       d.LargeGroupPoints,
		HighConfidencePoints:   d.HighConfidencePoints,
		MediumConfidencePoints: d.MediumConfidencePoints,
		LowConfidencePoints:    d.LowConfidencePoints,
		MovementPoints:         movementPoints,
		CriticalThreshold:      d.CriticalThreshold,
		MediumThreshold:        d.MediumThreshold,
		LowThreshold:           d.LowThreshold,
	}
}

// ScoringConfig converts the file shape into the engine's tuning struct.
// Unknown class labels are dropped; the engine treats absent classes as
// zero points anyway.
func (s Scoring) ScoringConfig() threat.ScoringConfig {
	cfg := threat.ScoringConfig{
		ClassPoints:            make(map[detection.Class]int, len(s.ClassPoints)),
		DayPoints:              s.DayPoints,
		EveningPoints:          s.EveningPoints,
		NightPoints:            s.NightPoints,
		SinglePoints:           s.SinglePoints,
		PairPoints:             s.PairPoints,
		SmallGroupPoints:       s.SmallGroupPoints,
		LargeGroupPoints:       s.LargeGroupPoints,
		HighConfidencePoints:   s.HighConfidencePoints,
		MediumConfidencePoints: s.MediumConfidencePoints,
		LowConfidencePoints:    s.LowConfidencePoints,
		MovementPoints:         make(map[threat.Movement]int, len(s.MovementPoints)),
		CriticalThreshold:      s.CriticalThreshold,
		MediumThreshold:        s.MediumThreshold,
		LowThreshold:           s.LowThreshold,
	}
	for label, points := range s.ClassPoints {
		if class := detection.ParseClass(label); class != detection.ClassUnknown {
			cfg.ClassPoints[class] = points
		}
	}
	for movement, points := range s.MovementPoints {
		cfg.MovementPoints[threat.Movement(movement)] = points
	}
	return cfg
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "reading config file %q", path)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrapf(err, "unmarshaling config file %q", path)
	}

	// Viper folds map keys to lower case; restore canonical grid references.
	if len(cfg.Grid.Zones) > 0 {
		zones := make(map[string]grid.ZoneInfo, len(cfg.Grid.Zones))
		for ref, zone := range cfg.Grid.Zones {
			zones[strings.ToUpper(ref)] = zone
		}
		cfg.Grid.Zones = zones
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config file %q", path)
	}
	return cfg, nil
}

// Validate checks the cross-field invariants the individual components
// would otherwise reject at construction. Failing here is fatal; a
// misconfigured scoring model must never score anything.
func (c Config) Validate() error {
	if err := c.Scoring.ScoringConfig().Validate(); err != nil {
		return errors.Wrap(err, "scoring")
	}
	if c.NMSThreshold <= 0 || c.NMSThreshold > 1 {
		return errors.Errorf("nms_threshold %v outside (0, 1]", c.NMSThreshold)
	}
	if c.Tracker.MatchIoU <= 0 || c.Tracker.MatchIoU > 1 {
		return errors.Errorf("tracker match_iou %v outside (0, 1]", c.Tracker.MatchIoU)
	}
	if c.Tracker.MinHits < 1 {
		return errors.Errorf("tracker min_hits %d must be at least 1", c.Tracker.MinHits)
	}
	if c.Tracker.MaxAge < 1 {
		return errors.Errorf("tracker max_age %d must be at least 1", c.Tracker.MaxAge)
	}
	if _, err := grid.NewMapper(c.Grid); err != nil {
		return errors.Wrap(err, "grid")
	}
	return nil
}
