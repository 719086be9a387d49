// Package threat - Point-based threat scoring. Each detection is evaluated
// against independent factors (object type, time of day, zone, group size,
// confidence, movement) and the summed score maps to a discrete threat
// level with a recommended response.
package threat

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Level is a discrete threat category.
type Level string

const (
	LevelCritical Level = "CRITICAL"
	LevelMedium   Level = "MEDIUM"
	LevelLow      Level = "LOW"
	LevelNone     Level = "NO_THREAT"
)

// Priority returns the sort rank for the level; lower is more urgent.
func (l Level) Priority() int {
	switch l {
	case LevelCritical:
		return 1
	case LevelMedium:
		return 2
	case LevelLow:
		return 3
	case LevelNone:
		return 4
	}
	return 5
}

// Color returns the display color for the level.
func (l Level) Color() string {
	switch l {
	case LevelCritical:
		return "#FF0000"
	case LevelMedium:
		return "#FFA500"
	case LevelLow:
		return "#FFFF00"
	case LevelNone:
		return "#00FF00"
	}
	return "#FFFFFF"
}

// Factor is one named contributor to a score. Purely a reporting artifact;
// it is never re-consumed by the engine.
type Factor struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Points      int    `json:"points"`
	Description string `json:"description"`
}

// Assessment is the scoring output for one detection. Created fresh per
// assessment and never mutated afterward.
type Assessment struct {
	ID                uuid.UUID `json:"id"`
	TotalScore        int       `json:"total_score"`
	Level             Level     `json:"threat_level"`
	Factors           []Factor  `json:"factors"`
	RecommendedAction string    `json:"recommended_action"`
	Color             string    `json:"color"`
	// Priority is the inverse rank of the level; lower sorts first.
	Priority  int       `json:"priority"`
	Zone      string    `json:"zone"`
	Timestamp time.Time `json:"timestamp"`
}

// Explanation renders a human-readable breakdown of the assessment.
func (a Assessment) Explanation() string {
	var b strings.Builder
	fmt.Fprintf(&b, "THREAT ASSESSMENT: %s\n", a.Level)
	fmt.Fprintf(&b, "Total Score: %d points\n", a.TotalScore)
	fmt.Fprintf(&b, "Zone: %s\n\n", a.Zone)
	b.WriteString("Factor Breakdown:\n")
	for _, f := range a.Factors {
		sign := ""
		if f.Points >= 0 {
			sign = "+"
		}
		fmt.Fprintf(&b, "  - %s: %s (%s%d pts)\n", f.Name, f.Value, sign, f.Points)
		fmt.Fprintf(&b, "    %s\n", f.Description)
	}
	fmt.Fprintf(&b, "\nRecommended Action: %s", a.RecommendedAction)
	return b.String()
}
