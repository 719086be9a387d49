package threat

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/border-sentry/go-intel/detection"
	"github.com/border-sentry/go-intel/grid"
)

// Movement is the optional motion-pattern input to scoring, derived
// upstream from track velocity history.
type Movement string

const (
	MovementStationary Movement = "stationary"
	MovementSlow       Movement = "slow"
	MovementFast       Movement = "fast"
	MovementErratic    Movement = "erratic"
)

// ScoringConfig carries every tunable of the factor model.
type ScoringConfig struct {
	// ClassPoints maps object classes to base points. Classes absent from
	// the table score zero.
	ClassPoints map[detection.Class]int

	// Time-of-day points. Day is [06:00,18:00), evening [18:00,22:00),
	// night otherwise.
	DayPoints     int
	EveningPoints int
	NightPoints   int

	// Group size bands.
	SinglePoints     int
	PairPoints       int
	SmallGroupPoints int // 3-5
	LargeGroupPoints int // 6+

	// Confidence bands.
	HighConfidencePoints   int // >= 0.90
	MediumConfidencePoints int // 0.75-0.89
	LowConfidencePoints    int // < 0.75

	// Movement bands.
	MovementPoints map[Movement]int

	// Strictly ordered level thresholds.
	CriticalThreshold int
	MediumThreshold   int
	LowThreshold      int
}

// DefaultScoringConfig returns the production factor tables.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		ClassPoints: map[detection.Class]int{
			detection.ClassPerson:     1,
			detection.ClassBicycle:    1,
			detection.ClassCar:        2,
			detection.ClassMotorcycle: 2,
			detection.ClassBus:        3,
			detection.ClassTruck:      3,
		},
		DayPoints:              -1,
		EveningPoints:          1,
		NightPoints:            3,
		SinglePoints:           0,
		PairPoints:             2,
		SmallGroupPoints:       3,
		LargeGroupPoints:       5,
		HighConfidencePoints:   1,
		MediumConfidencePoints: 0,
		LowConfidencePoints:    -1,
		MovementPoints: map[Movement]int{
			MovementStationary: 0,
			MovementSlow:       1,
			MovementFast:       2,
			MovementErratic:    3,
		},
		CriticalThreshold: 11,
		MediumThreshold:   6,
		LowThreshold:      1,
	}
}

// Validate enforces the threshold ordering invariant. Violating it makes
// the level mapping ambiguous, so it is a fatal configuration error.
func (c ScoringConfig) Validate() error {
	if c.CriticalThreshold <= c.MediumThreshold {
		return errors.Errorf("critical threshold %d must be higher than medium threshold %d",
			c.CriticalThreshold, c.MediumThreshold)
	}
	if c.MediumThreshold <= c.LowThreshold {
		return errors.Errorf("medium threshold %d must be higher than low threshold %d",
			c.MediumThreshold, c.LowThreshold)
	}
	return nil
}

// Stats is a snapshot of the engine's running counters.
type Stats struct {
	AssessmentsMade int `json:"assessments_made"`
	CriticalCount   int `json:"critical_count"`
	MediumCount     int `json:"medium_count"`
	LowCount        int `json:"low_count"`
	NoThreatCount   int `json:"no_threat_count"`
}

// Engine scores detections. Scoring itself is deterministic and
// side-effect-free aside from the running counters, which exist purely for
// reporting.
type Engine struct {
	cfg    ScoringConfig
	mapper *grid.Mapper
	roster *grid.Roster

	mu    sync.Mutex
	stats Stats
}

// NewEngine builds a scoring engine over the given grid. The roster is
// optional; without one, recommended actions fall back to the zone's static
// patrol hint. Fails fast on threshold-order violations.
func NewEngine(cfg ScoringConfig, mapper *grid.Mapper, roster *grid.Roster) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid scoring config")
	}
	if mapper == nil {
		return nil, errors.New("scoring engine requires a grid mapper")
	}
	return &Engine{cfg: cfg, mapper: mapper, roster: roster}, nil
}

// Input is everything scoring needs about one detection. GroupSize is the
// number of simultaneous detections sharing the detection's grid cell in
// the same frame; BatchAssess computes it for you.
type Input struct {
	Class      detection.Class
	Confidence float32
	// Center pixel of the detection box; resolved to a grid cell.
	CenterX, CenterY float64
	Timestamp        time.Time
	GroupSize        int
	Movement         Movement
}

// Score produces a complete assessment for one detection. Identical inputs
// always yield an identical assessment apart from the generated id.
func (e *Engine) Score(in Input) Assessment {
	cell := e.mapper.CellAt(in.CenterX, in.CenterY)

	factors := make([]Factor, 0, 6)
	total := 0

	// Object type.
	typePoints := e.cfg.ClassPoints[in.Class]
	factors = append(factors, Factor{
		Name:        "Object Type",
		Value:       strings.ToUpper(in.Class.Label()),
		Points:      typePoints,
		Description: in.Class.Description(),
	})
	total += typePoints

	// Time of day.
	period, timePoints := e.timeFactor(in.Timestamp.Hour())
	factors = append(factors, Factor{
		Name:        "Time of Day",
		Value:       fmt.Sprintf("%s (%02d:00)", strings.ToUpper(string(period)), in.Timestamp.Hour()),
		Points:      timePoints,
		Description: period.description(),
	})
	total += timePoints

	// Zone location.
	zonePoints := cell.Zone.Points
	factors = append(factors, Factor{
		Name:        "Zone Location",
		Value:       fmt.Sprintf("Grid %s (%s)", cell.Reference, cell.Zone.Sensitivity),
		Points:      zonePoints,
		Description: zoneDescription(cell),
	})
	total += zonePoints

	// Group size.
	groupSize := in.GroupSize
	if groupSize < 1 {
		groupSize = 1
	}
	band, groupPoints := e.groupFactor(groupSize)
	factors = append(factors, Factor{
		Name:        "Group Size",
		Value:       fmt.Sprintf("%d (%s)", groupSize, band),
		Points:      groupPoints,
		Description: groupDescription(band),
	})
	total += groupPoints

	// Confidence adjustment.
	confBand, confPoints := e.confidenceFactor(in.Confidence)
	factors = append(factors, Factor{
		Name:        "Detection Confidence",
		Value:       fmt.Sprintf("%.0f%% (%s)", in.Confidence*100, confBand),
		Points:      confPoints,
		Description: confidenceDescription(confBand),
	})
	total += confPoints

	// Movement pattern, reported only when the caller supplied one that
	// contributes.
	if in.Movement != "" && in.Movement != MovementStationary {
		movePoints := e.cfg.MovementPoints[in.Movement]
		factors = append(factors, Factor{
			Name:        "Movement Pattern",
			Value:       strings.ToUpper(string(in.Movement)),
			Points:      movePoints,
			Description: movementDescription(in.Movement),
		})
		total += movePoints
	}

	level := e.levelFor(total)

	a := Assessment{
		ID:                uuid.New(),
		TotalScore:        total,
		Level:             level,
		Factors:           factors,
		RecommendedAction: e.recommendedAction(level, cell),
		Color:             level.Color(),
		Priority:          level.Priority(),
		Zone:              cell.Reference,
		Timestamp:         in.Timestamp,
	}

	e.count(level)
	return a
}

// BatchAssess scores a batch of detections from one frame. Group size is a
// batch-wide input: the batch is first partitioned by grid reference, then
// every member of a group is scored with that group's size. Results are
// sorted by (priority ascending, score descending).
func (e *Engine) BatchAssess(inputs []Input) []Assessment {
	// First pass: group sizes by grid reference.
	groupSizes := make(map[string]int)
	refs := make([]string, len(inputs))
	for i, in := range inputs {
		ref := e.mapper.ReferenceAt(in.CenterX, in.CenterY)
		refs[i] = ref
		groupSizes[ref]++
	}

	// Second pass: score with group context.
	assessments := make([]Assessment, len(inputs))
	for i, in := range inputs {
		in.GroupSize = groupSizes[refs[i]]
		assessments[i] = e.Score(in)
	}

	sort.SliceStable(assessments, func(i, j int) bool {
		if assessments[i].Priority != assessments[j].Priority {
			return assessments[i].Priority < assessments[j].Priority
		}
		return assessments[i].TotalScore > assessments[j].TotalScore
	})
	return assessments
}

// Stats returns a snapshot of the running counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *Engine) count(level Level) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.AssessmentsMade++
	switch level {
	case LevelCritical:
		e.stats.CriticalCount++
	case LevelMedium:
		e.stats.MediumCount++
	case LevelLow:
		e.stats.LowCount++
	default:
		e.stats.NoThreatCount++
	}
}

func (e *Engine) levelFor(score int) Level {
	switch {
	case score >= e.cfg.CriticalThreshold:
		return LevelCritical
	case score >= e.cfg.MediumThreshold:
		return LevelMedium
	case score >= e.cfg.LowThreshold:
		return LevelLow
	default:
		return LevelNone
	}
}

type timePeriod string

const (
	periodDay     timePeriod = "day"
	periodEvening timePeriod = "evening"
	periodNight   timePeriod = "night"
)

func (p timePeriod) description() string {
	switch p {
	case periodDay:
		return "Daytime activity - normal operations period"
	case periodEvening:
		return "Evening hours - increased vigilance required"
	default:
		return "Nighttime activity - high suspicion period"
	}
}

func (e *Engine) timeFactor(hour int) (timePeriod, int) {
	switch {
	case hour >= 6 && hour < 18:
		return periodDay, e.cfg.DayPoints
	case hour >= 18 && hour < 22:
		return periodEvening, e.cfg.EveningPoints
	default:
		return periodNight, e.cfg.NightPoints
	}
}

func (e *Engine) groupFactor(size int) (string, int) {
	switch {
	case size <= 1:
		return "single", e.cfg.SinglePoints
	case size == 2:
		return "pair", e.cfg.PairPoints
	case size <= 5:
		return "small_group", e.cfg.SmallGroupPoints
	default:
		return "large_group", e.cfg.LargeGroupPoints
	}
}

func (e *Engine) confidenceFactor(confidence float32) (string, int) {
	switch {
	case confidence >= 0.90:
		return "high", e.cfg.HighConfidencePoints
	case confidence >= 0.75:
		return "medium", e.cfg.MediumConfidencePoints
	default:
		return "low", e.cfg.LowConfidencePoints
	}
}

// recommendedAction derives the response text from the level and the
// zone's patrol context. With a roster attached, the live nearest-patrol
// answer wins over the static zone hint.
func (e *Engine) recommendedAction(level Level, cell grid.Cell) string {
	patrol := cell.Zone.NearestPatrol
	eta := cell.Zone.PatrolETAMinutes
	if patrol == "" {
		patrol = "nearest unit"
	}
	if e.roster != nil {
		if d := e.roster.NearestPatrol(cell.Reference); d.Available() {
			patrol = d.Unit.ID
			eta = d.ETAMinutes
		}
	}

	switch level {
	case LevelCritical:
		return fmt.Sprintf("IMMEDIATE DISPATCH: Alert %s, ETA %d min. Notify command post. Maintain visual tracking.", patrol, eta)
	case LevelMedium:
		return fmt.Sprintf("PRIORITY ALERT: Notify supervisor. %s on standby. Continue monitoring and tracking.", patrol)
	case LevelLow:
		return "MONITOR: Log incident. Track movement. Notify patrol if pattern changes."
	default:
		return "LOG ONLY: Record detection for analysis. No immediate action required."
	}
}

func zoneDescription(cell grid.Cell) string {
	switch cell.Zone.Sensitivity {
	case "critical":
		return fmt.Sprintf("CRITICAL ZONE (%s) - Enemy territory, highest threat", cell.Reference)
	case "high":
		return fmt.Sprintf("HIGH SENSITIVITY (%s) - Approach zone, elevated risk", cell.Reference)
	case "medium":
		return fmt.Sprintf("BORDER ZONE (%s) - Active border crossing area", cell.Reference)
	case "normal":
		return fmt.Sprintf("PATROL ZONE (%s) - Our territory, standard monitoring", cell.Reference)
	case "low":
		return fmt.Sprintf("SAFE ZONE (%s) - Internal area, minimal threat", cell.Reference)
	}
	return fmt.Sprintf("Zone %s - %s", cell.Reference, cell.Zone.Terrain)
}

func groupDescription(band string) string {
	switch band {
	case "single":
		return "Single individual detected"
	case "pair":
		return "Two individuals detected - possible coordinated activity"
	case "small_group":
		return "Small group (3-5) detected - organized operation suspected"
	default:
		return "Large group (6+) detected - significant threat"
	}
}

func confidenceDescription(band string) string {
	switch band {
	case "high":
		return "High confidence detection - detector very certain"
	case "medium":
		return "Medium confidence detection - reasonable certainty"
	default:
		return "Low confidence detection - possible false positive"
	}
}

func movementDescription(m Movement) string {
	switch m {
	case MovementSlow:
		return "Slow movement detected - cautious approach"
	case MovementFast:
		return "Fast movement detected - attempting rapid crossing"
	case MovementErratic:
		return "Erratic movement - suspicious behavior pattern"
	}
	return "Movement detected"
}
