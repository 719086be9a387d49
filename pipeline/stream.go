// Package pipeline wires the per-frame stages together. A Stream owns the
// stateful stages (tracker, scoring counters) for one camera feed; frames
// must be fed in order by a single goroutine.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/border-sentry/go-intel/config"
	"github.com/border-sentry/go-intel/detection"
	"github.com/border-sentry/go-intel/grid"
	"github.com/border-sentry/go-intel/threat"
	"github.com/border-sentry/go-intel/tracking"
)

// Record is one fully enriched detection: the tracked detection, its grid
// reference, and its assessment.
type Record struct {
	tracking.TrackedDetection

	GridRef    string            `json:"grid_ref"`
	Assessment threat.Assessment `json:"assessment"`
}

// FrameResult is the output of one processed frame.
type FrameResult struct {
	FrameIndex int       `json:"frame_index"`
	Timestamp  time.Time `json:"timestamp"`

	// Raw is the number of detections handed in before filtering.
	Raw int `json:"raw"`
	// Validated is the count surviving plausibility filtering.
	Validated int `json:"validated"`
	// Kept is the count surviving duplicate suppression.
	Kept int `json:"kept"`

	// Records are in input order.
	Records []Record `json:"records"`
	// Assessments are the records' assessments sorted most urgent first.
	Assessments []threat.Assessment `json:"assessments"`
}

// Stream processes one camera feed. Construction is cheap; the expensive
// state is the tracker and the engine counters, both stream-local.
type Stream struct {
	name        string
	frameWidth  int
	frameHeight int

	validator  *detection.Validator
	suppressor *detection.Suppressor
	tracker    *tracking.Tracker
	movement   *MovementClassifier
	mapper     *grid.Mapper
	roster     *grid.Roster
	engine     *threat.Engine
}

// NewStream builds a stream from the loaded configuration.
func NewStream(name string, cfg config.Config) (*Stream, error) {
	mapper, err := grid.NewMapper(cfg.Grid)
	if err != nil {
		return nil, errors.Wrap(err, "building grid mapper")
	}
	roster := grid.NewRoster(mapper, cfg.Patrols)
	engine, err := threat.NewEngine(cfg.Scoring.ScoringConfig(), mapper, roster)
	if err != nil {
		return nil, errors.Wrap(err, "building threat engine")
	}
	return &Stream{
		name:        name,
		frameWidth:  cfg.Grid.FrameWidth,
		frameHeight: cfg.Grid.FrameHeight,
		validator:   detection.NewValidator(cfg.Validator),
		suppressor:  detection.NewSuppressor(cfg.NMSThreshold),
		tracker:     tracking.NewTracker(cfg.Tracker),
		movement:    NewMovementClassifier(DefaultMovementConfig()),
		mapper:      mapper,
		roster:      roster,
		engine:      engine,
	}, nil
}

// Name returns the stream identifier.
func (s *Stream) Name() string { return s.name }

// Mapper exposes the stream's grid for overlay rendering.
func (s *Stream) Mapper() *grid.Mapper { return s.mapper }

// Roster exposes the stream's patrol roster.
func (s *Stream) Roster() *grid.Roster { return s.roster }

// Stats returns the engine's running counters.
func (s *Stream) Stats() threat.Stats { return s.engine.Stats() }

// TrackStats reports live and lifetime-confirmed track counts.
func (s *Stream) TrackStats() (live, confirmed int) {
	return s.tracker.LiveCount(), s.tracker.UniqueConfirmed()
}

// ProcessFrame runs one frame through validate, suppress, track, and score.
// Frames must arrive in order. Scoring fans out across detections; the
// result ordering is deterministic regardless of goroutine scheduling.
func (s *Stream) ProcessFrame(ctx context.Context, frameIndex int, ts time.Time, raw []detection.RawDetection) (FrameResult, error) {
	res := FrameResult{
		FrameIndex: frameIndex,
		Timestamp:  ts,
		Raw:        len(raw),
	}

	validated := s.validator.Filter(raw, s.frameWidth, s.frameHeight)
	res.Validated = len(validated)

	kept := s.suppressor.Suppress(validated)
	res.Kept = len(kept)

	tracked := s.tracker.Update(frameIndex, kept)
	if len(tracked) == 0 {
		return res, nil
	}

	// Group size is a frame-wide fact, computed before the fan-out.
	groupSizes := make(map[string]int, len(tracked))
	records := make([]Record, len(tracked))
	for i, td := range tracked {
		c := td.Center()
		records[i] = Record{
			TrackedDetection: td,
			GridRef:          s.mapper.ReferenceAt(float64(c.X), float64(c.Y)),
		}
		groupSizes[records[i].GridRef]++
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range records {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := &records[i]
			c := r.Center()
			r.Assessment = s.engine.Score(threat.Input{
				Class:      r.Class,
				Confidence: r.Confidence,
				CenterX:    float64(c.X),
				CenterY:    float64(c.Y),
				Timestamp:  r.Timestamp,
				GroupSize:  groupSizes[r.GridRef],
				Movement:   s.movement.Classify(r.History),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return FrameResult{}, errors.Wrapf(err, "scoring frame %d", frameIndex)
	}
	res.Records = records

	assessments := make([]threat.Assessment, len(records))
	for i, r := range records {
		assessments[i] = r.Assessment
	}
	sort.SliceStable(assessments, func(i, j int) bool {
		if assessments[i].Priority != assessments[j].Priority {
			return assessments[i].Priority < assessments[j].Priority
		}
		return assessments[i].TotalScore > assessments[j].TotalScore
	})
	res.Assessments = assessments
	return res, nil
}
