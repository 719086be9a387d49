package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/border-sentry/go-intel/config"
	"github.com/border-sentry/go-intel/detection"
	"github.com/border-sentry/go-intel/geometry"
	"github.com/border-sentry/go-intel/grid"
	"github.com/border-sentry/go-intel/threat"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Grid.Zones = map[string]grid.ZoneInfo{
		"A-1": {
			Sensitivity:      "critical",
			Terrain:          "riverbank",
			Points:           5,
			NearestPatrol:    "PATROL-A1",
			PatrolETAMinutes: 5,
		},
	}
	cfg.Patrols = []grid.PatrolUnit{
		{ID: "PATROL-A1", Mobility: grid.MobilityVehicle, BaseGrid: "A-2", Status: grid.StatusActive},
	}
	return cfg
}

func testStream(t *testing.T) *Stream {
	t.Helper()
	s, err := NewStream("cam-north", testConfig())
	require.NoError(t, err, "stream construction from defaults must succeed")
	return s
}

func det(label string, conf float32, x1, y1, x2, y2 float32, frame int, ts time.Time) detection.RawDetection {
	return detection.New(label, conf, geometry.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}, frame, ts)
}

func TestProcessFrameFiltersAndSuppresses(t *testing.T) {
	s := testStream(t)
	ts := time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC)

	raw := []detection.RawDetection{
		// Valid person in A-1.
		det("person", 0.95, 20, 20, 60, 110, 0, ts),
		// Near-duplicate of the first, lower confidence.
		det("person", 0.80, 22, 22, 62, 112, 0, ts),
		// Too small to be real.
		det("person", 0.90, 5, 5, 12, 12, 0, ts),
	}

	res, err := s.ProcessFrame(context.Background(), 0, ts, raw)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Raw)
	assert.Equal(t, 2, res.Validated, "tiny box must be rejected")
	assert.Equal(t, 1, res.Kept, "near-duplicate must be suppressed")
	require.Len(t, res.Records, 1)
	require.Len(t, res.Assessments, 1)

	a := res.Assessments[0]
	assert.Equal(t, "A-1", a.Zone)
	assert.Equal(t, "A-1", res.Records[0].GridRef)
	assert.False(t, res.Records[0].Confirmed, "first sighting is tentative")
}

func TestProcessFrameConfirmsTracks(t *testing.T) {
	s := testStream(t)
	ts := time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC)

	box := []float32{20, 20, 60, 110}
	for frame := 0; frame < 2; frame++ {
		dx := float32(frame * 3)
		res, err := s.ProcessFrame(context.Background(), frame, ts,
			[]detection.RawDetection{det("person", 0.95, box[0]+dx, box[1], box[2]+dx, box[3], frame, ts)})
		require.NoError(t, err)
		require.Len(t, res.Records, 1)

		if frame == 0 {
			assert.False(t, res.Records[0].Confirmed)
		} else {
			assert.True(t, res.Records[0].Confirmed, "second consecutive match must confirm")
			assert.Equal(t, 1, res.Records[0].TrackID, "track identity must persist across frames")
		}
	}

	live, confirmed := s.TrackStats()
	assert.Equal(t, 1, live)
	assert.Equal(t, 1, confirmed)
}

func TestProcessFrameGroupEscalation(t *testing.T) {
	s := testStream(t)
	ts := time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC)

	// Three people in A-1, well separated so suppression keeps all three.
	raw := []detection.RawDetection{
		det("person", 0.95, 5, 5, 30, 70, 0, ts),
		det("person", 0.93, 40, 5, 65, 70, 0, ts),
		det("person", 0.91, 75, 20, 100, 90, 0, ts),
	}

	res, err := s.ProcessFrame(context.Background(), 0, ts, raw)
	require.NoError(t, err)
	require.Len(t, res.Assessments, 3)

	for _, a := range res.Assessments {
		require.Equal(t, "A-1", a.Zone)
		// person 1 + night 3 + zone 5 + small group 3 + high conf 1
		assert.Equal(t, 13, a.TotalScore)
		assert.Equal(t, threat.LevelCritical, a.Level)
		assert.Contains(t, a.RecommendedAction, "PATROL-A1")
	}
}

func TestProcessFrameAssessmentsSortedMostUrgentFirst(t *testing.T) {
	s := testStream(t)
	ts := time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC)

	raw := []detection.RawDetection{
		// Person alone in a default zone.
		det("person", 0.80, 500, 380, 540, 470, 0, ts),
		// Truck in the critical zone.
		det("truck", 0.95, 5, 5, 100, 90, 0, ts),
	}

	res, err := s.ProcessFrame(context.Background(), 0, ts, raw)
	require.NoError(t, err)
	require.Len(t, res.Assessments, 2)
	assert.Equal(t, "A-1", res.Assessments[0].Zone, "critical-zone truck must sort first")
	for i := 1; i < len(res.Assessments); i++ {
		assert.LessOrEqual(t, res.Assessments[i-1].Priority, res.Assessments[i].Priority)
	}
}

func TestProcessFrameDeterministicAcrossRuns(t *testing.T) {
	ts := time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC)
	raw := []detection.RawDetection{
		det("person", 0.95, 5, 5, 30, 70, 0, ts),
		det("car", 0.88, 200, 200, 300, 260, 0, ts),
		det("person", 0.70, 400, 100, 430, 170, 0, ts),
	}

	first, err := testStream(t).ProcessFrame(context.Background(), 0, ts, raw)
	require.NoError(t, err)
	second, err := testStream(t).ProcessFrame(context.Background(), 0, ts, raw)
	require.NoError(t, err)

	require.Len(t, second.Assessments, len(first.Assessments))
	for i := range first.Assessments {
		assert.Equal(t, first.Assessments[i].Zone, second.Assessments[i].Zone)
		assert.Equal(t, first.Assessments[i].TotalScore, second.Assessments[i].TotalScore)
		assert.Equal(t, first.Assessments[i].Level, second.Assessments[i].Level)
	}
}

func TestProcessFrameCanceledContext(t *testing.T) {
	s := testStream(t)
	ts := time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ProcessFrame(ctx, 0, ts,
		[]detection.RawDetection{det("person", 0.95, 20, 20, 60, 110, 0, ts)})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessFrameEmptyInput(t *testing.T) {
	s := testStream(t)
	ts := time.Now()

	res, err := s.ProcessFrame(context.Background(), 0, ts, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Raw)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Assessments)

	stats := s.Stats()
	assert.Zero(t, stats.AssessmentsMade)
}
