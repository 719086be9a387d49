package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/border-sentry/go-intel/geometry"
	"github.com/border-sentry/go-intel/threat"
)

func points(coords ...float32) []geometry.Point {
	out := make([]geometry.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, geometry.Point{X: coords[i], Y: coords[i+1]})
	}
	return out
}

func TestClassifyShortHistoryIsStationary(t *testing.T) {
	c := NewMovementClassifier(DefaultMovementConfig())

	assert.Equal(t, threat.MovementStationary, c.Classify(nil))
	assert.Equal(t, threat.MovementStationary, c.Classify(points(100, 100)))
	assert.Equal(t, threat.MovementStationary, c.Classify(points(100, 100, 120, 100)))
}

func TestClassifyJitterIsStationary(t *testing.T) {
	c := NewMovementClassifier(DefaultMovementConfig())

	h := points(100, 100, 101, 100, 100, 101, 101, 101, 100, 100)
	assert.Equal(t, threat.MovementStationary, c.Classify(h))
}

func TestClassifySteadySlowWalk(t *testing.T) {
	c := NewMovementClassifier(DefaultMovementConfig())

	// 4 px per frame in a straight line.
	h := points(100, 100, 104, 100, 108, 100, 112, 100, 116, 100)
	assert.Equal(t, threat.MovementSlow, c.Classify(h))
}

func TestClassifyFastRun(t *testing.T) {
	c := NewMovementClassifier(DefaultMovementConfig())

	// 20 px per frame in a straight line.
	h := points(100, 100, 120, 100, 140, 100, 160, 100, 180, 100)
	assert.Equal(t, threat.MovementFast, c.Classify(h))
}

func TestClassifyZigzagIsErratic(t *testing.T) {
	c := NewMovementClassifier(DefaultMovementConfig())

	// Direction reverses every frame.
	h := points(100, 100, 120, 102, 100, 104, 120, 106, 100, 108, 120, 110)
	assert.Equal(t, threat.MovementErratic, c.Classify(h))
}
