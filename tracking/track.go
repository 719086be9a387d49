// Package tracking - IoU-based multi-object tracker. Matches per-frame
// detections to persistent track identities, maintains track lifecycle, and
// reports velocity and history for each matched detection.
package tracking

import (
	"fmt"

	"github.com/border-sentry/go-intel/detection"
	"github.com/border-sentry/go-intel/geometry"
)

// State is a track's lifecycle state. A track never reverts from Confirmed
// to Tentative.
type State uint8

const (
	// Tentative tracks have fewer matched frames than the confirmation
	// threshold.
	Tentative State = iota
	// Confirmed tracks have been matched at least MinHits times.
	Confirmed
)

func (s State) String() string {
	if s == Confirmed {
		return "confirmed"
	}
	return "tentative"
}

// Velocity is pixel displacement per processed frame.
type Velocity struct {
	DX, DY float32
}

// Track is a persistent object identity spanning frames. Owned and mutated
// only by the Tracker; everything else sees copies.
type Track struct {
	// ID is unique, monotonically assigned, and never reused.
	ID int
	// Class is fixed for the track's lifetime.
	Class detection.Class
	// Label is the detector label the track was created with.
	Label string

	Box      geometry.Box
	Center   geometry.Point
	Velocity Velocity

	// Hits is the number of frames this track was matched.
	Hits int
	// FirstFrame is the frame the track was created on.
	FirstFrame int
	// LastMatched is the most recent frame with a match.
	LastMatched int

	State State

	// History holds past centers, oldest first, capped at the tracker's
	// history limit.
	History []geometry.Point
}

// Age returns the track's age in frames as of the given frame.
func (t *Track) Age(currentFrame int) int {
	return currentFrame - t.FirstFrame + 1
}

func (t *Track) String() string {
	return fmt.Sprintf("track %d (%s, %s): hits=%d box=%s",
		t.ID, t.Label, t.State, t.Hits, t.Box)
}
