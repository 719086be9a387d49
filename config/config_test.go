package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/border-sentry/go-intel/detection"
	"github.com/border-sentry/go-intel/threat"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Grid.FrameWidth)
	assert.Equal(t, 6, cfg.Grid.Columns)
	assert.Equal(t, float32(0.45), cfg.NMSThreshold)
	assert.Equal(t, float32(0.3), cfg.Tracker.MatchIoU)
	assert.Equal(t, 11, cfg.Scoring.CriticalThreshold)
	assert.Equal(t, 1, cfg.Scoring.ClassPoints["person"])
	assert.Equal(t, 3, cfg.Scoring.ClassPoints["truck"])
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
nms_threshold: 0.5
tracker:
  match_iou: 0.25
  min_hits: 3
scoring:
  night_points: 4
grid:
  zones:
    A-1:
      sensitivity: critical
      points: 5
      nearest_patrol: PATROL-A1
      patrol_eta_minutes: 5
patrols:
  - id: ALPHA-1
    mobility: vehicle
    base_grid: B-2
    status: active
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, float32(0.5), cfg.NMSThreshold)
	assert.Equal(t, float32(0.25), cfg.Tracker.MatchIoU)
	assert.Equal(t, 3, cfg.Tracker.MinHits)
	// Untouched keys keep their defaults.
	assert.Equal(t, 15, cfg.Tracker.MaxAge)
	assert.Equal(t, 4, cfg.Scoring.NightPoints)
	assert.Equal(t, 11, cfg.Scoring.CriticalThreshold)

	zone, ok := cfg.Grid.Zones["A-1"]
	require.True(t, ok, "zone A-1 must load")
	assert.Equal(t, "critical", zone.Sensitivity)
	assert.Equal(t, 5, zone.Points)
	assert.Equal(t, "PATROL-A1", zone.NearestPatrol)

	require.Len(t, cfg.Patrols, 1)
	assert.Equal(t, "ALPHA-1", cfg.Patrols[0].ID)
}

func TestLoadRejectsBadThresholdOrdering(t *testing.T) {
	path := writeConfig(t, `
scoring:
  critical_threshold: 5
  medium_threshold: 6
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scoring")
}

func TestLoadRejectsBadNMSThreshold(t *testing.T) {
	path := writeConfig(t, "nms_threshold: 1.5\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestScoringConfigConversion(t *testing.T) {
	s := defaultScoring()
	s.ClassPoints["zeppelin"] = 9

	cfg := s.ScoringConfig()
	assert.Equal(t, 1, cfg.ClassPoints[detection.ClassPerson])
	assert.Equal(t, 2, cfg.ClassPoints[detection.ClassCar])
	assert.Equal(t, 3, cfg.ClassPoints[detection.ClassBus])
	// Labels outside the known class set are dropped.
	assert.NotContains(t, cfg.ClassPoints, detection.ClassUnknown)
	assert.Equal(t, 3, cfg.MovementPoints[threat.MovementErratic])
	require.NoError(t, cfg.Validate())
}
