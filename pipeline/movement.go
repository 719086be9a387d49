package pipeline

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/border-sentry/go-intel/geometry"
	"github.com/border-sentry/go-intel/threat"
)

// MovementConfig tunes the motion-pattern classifier. Speeds are in pixels
// per frame over the track's center history.
type MovementConfig struct {
	// StationaryMaxSpeed is the mean speed at or below which a track is
	// considered stationary.
	StationaryMaxSpeed float64 `mapstructure:"stationary_max_speed"`
	// SlowMaxSpeed is the mean speed at or below which a moving track is
	// slow rather than fast.
	SlowMaxSpeed float64 `mapstructure:"slow_max_speed"`
	// ErraticHeadingStdDev is the heading standard deviation in radians
	// above which a moving track is classified erratic regardless of speed.
	ErraticHeadingStdDev float64 `mapstructure:"erratic_heading_stddev"`
	// MinSamples is the minimum history length before any classification
	// other than stationary is attempted.
	MinSamples int `mapstructure:"min_samples"`
}

// DefaultMovementConfig returns the production tuning.
func DefaultMovementConfig() MovementConfig {
	return MovementConfig{
		StationaryMaxSpeed:   1.5,
		SlowMaxSpeed:         8.0,
		ErraticHeadingStdDev: 1.2,
		MinSamples:           3,
	}
}

// MovementClassifier maps a track's center history to a motion pattern.
type MovementClassifier struct {
	cfg MovementConfig
}

// NewMovementClassifier creates a classifier with the given tuning.
func NewMovementClassifier(cfg MovementConfig) *MovementClassifier {
	return &MovementClassifier{cfg: cfg}
}

// Classify derives the motion pattern from center history. Short histories
// default to stationary so new tracks never pick up movement points before
// there is real evidence of motion.
func (c *MovementClassifier) Classify(history []geometry.Point) threat.Movement {
	if len(history) < c.cfg.MinSamples {
		return threat.MovementStationary
	}

	speeds := make([]float64, 0, len(history)-1)
	headings := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1], history[i]
		step := float64(prev.DistanceTo(cur))
		speeds = append(speeds, step)
		if step > 0 {
			headings = append(headings, math.Atan2(float64(cur.Y-prev.Y), float64(cur.X-prev.X)))
		}
	}

	meanSpeed := stat.Mean(speeds, nil)
	if meanSpeed <= c.cfg.StationaryMaxSpeed {
		return threat.MovementStationary
	}

	// Heading spread uses unwrapped deltas so a track oscillating around
	// the -pi/pi seam is not misread as erratic.
	if len(headings) >= 2 {
		deltas := make([]float64, 0, len(headings)-1)
		for i := 1; i < len(headings); i++ {
			d := headings[i] - headings[i-1]
			for d > math.Pi {
				d -= 2 * math.Pi
			}
			for d < -math.Pi {
				d += 2 * math.Pi
			}
			deltas = append(deltas, d)
		}
		if len(deltas) >= 2 && stat.StdDev(deltas, nil) > c.cfg.ErraticHeadingStdDev {
			return threat.MovementErratic
		}
	}

	if meanSpeed <= c.cfg.SlowMaxSpeed {
		return threat.MovementSlow
	}
	return threat.MovementFast
}
