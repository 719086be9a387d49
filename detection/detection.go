package detection

import (
	"fmt"
	"time"

	"github.com/border-sentry/go-intel/geometry"
)

// RawDetection is one detector output for one frame. Immutable once
// produced; downstream stages enrich copies, never the original.
type RawDetection struct {
	Class      Class
	Label      string
	Confidence float32
	Box        geometry.Box
	FrameIndex int
	Timestamp  time.Time
}

// New builds a RawDetection from a detector label, resolving the class.
func New(label string, confidence float32, box geometry.Box, frameIndex int, ts time.Time) RawDetection {
	return RawDetection{
		Class:      ParseClass(label),
		Label:      label,
		Confidence: confidence,
		Box:        box,
		FrameIndex: frameIndex,
		Timestamp:  ts,
	}
}

// Center returns the box center point.
func (d RawDetection) Center() geometry.Point {
	return d.Box.Center()
}

func (d RawDetection) String() string {
	return fmt.Sprintf("Object %s (confidence %.2f): %s frame=%d",
		d.Label, d.Confidence, d.Box, d.FrameIndex)
}
