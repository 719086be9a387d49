package grid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUnits() []PatrolUnit {
	return []PatrolUnit{
		{ID: "PATROL-A1", Name: "Alpha Unit", Mobility: MobilityVehicle, BaseGrid: "A-5", Status: StatusActive, Personnel: 4, ResponseTimeMinutes: 5},
		{ID: "PATROL-B2", Name: "Bravo Unit", Mobility: MobilityVehicle, BaseGrid: "D-5", Status: StatusActive, Personnel: 4, ResponseTimeMinutes: 7},
		{ID: "PATROL-C3", Name: "Charlie Unit", Mobility: MobilityFoot, BaseGrid: "F-4", Status: StatusActive, Personnel: 6, ResponseTimeMinutes: 12},
		{ID: "PATROL-D4", Name: "Delta Unit", Mobility: MobilityVehicle, BaseGrid: "B-5", Status: StatusStandby, Personnel: 4, ResponseTimeMinutes: 8},
	}
}

func testRoster(t *testing.T) *Roster {
	t.Helper()
	return NewRoster(testMapper(t), testUnits())
}

func TestNearestPatrolUsesHint(t *testing.T) {
	r := testRoster(t)

	// A-1 is configured with NearestPatrol=PATROL-A1, ETA 5.
	d := r.NearestPatrol("A-1")
	require.True(t, d.Available(), "a patrol should be found")
	assert.Equal(t, "PATROL-A1", d.Unit.ID, "configured hint should win when available")
	assert.Equal(t, 5, d.ETAMinutes, "hinted ETA comes from zone config")
}

func TestNearestPatrolSkipsUnavailableHint(t *testing.T) {
	r := testRoster(t)
	require.NoError(t, r.UpdateStatus("PATROL-A1", StatusDispatched))

	d := r.NearestPatrol("A-1")
	require.True(t, d.Available(), "other units remain available")
	assert.NotEqual(t, "PATROL-A1", d.Unit.ID, "dispatched hint must be skipped")
}

func TestNearestPatrolScansByETA(t *testing.T) {
	r := testRoster(t)

	// C-3 has no hint. Distances from C-3: A-5 dist 2, D-5 dist 2,
	// F-4 dist 3, B-5 dist 2. Vehicles at dist 2: ETA 2*1.5+2 = 5;
	// foot at dist 3: 3*4+2 = 14. First vehicle in roster order wins.
	d := r.NearestPatrol("C-3")
	require.True(t, d.Available())
	assert.Equal(t, "PATROL-A1", d.Unit.ID, "minimum-ETA vehicle should win, first in order on ties")
	assert.Equal(t, 5, d.ETAMinutes)
}

func TestNearestPatrolFootVsVehicle(t *testing.T) {
	units := []PatrolUnit{
		{ID: "FOOT-NEAR", Mobility: MobilityFoot, BaseGrid: "C-3", Status: StatusActive},
		{ID: "VEHICLE-FAR", Mobility: MobilityVehicle, BaseGrid: "F-5", Status: StatusActive},
	}
	r := NewRoster(testMapper(t), units)

	// Target C-2: foot at dist 1 → 4+2 = 6; vehicle at dist 3 → 4.5+2 = 6.5.
	d := r.NearestPatrol("C-2")
	require.True(t, d.Available())
	assert.Equal(t, "FOOT-NEAR", d.Unit.ID, "a close foot patrol can beat a distant vehicle")
	assert.Equal(t, 6, d.ETAMinutes)
}

func TestNearestPatrolNoneAvailable(t *testing.T) {
	r := testRoster(t)
	for _, u := range testUnits() {
		require.NoError(t, r.UpdateStatus(u.ID, StatusDispatched))
	}

	d := r.NearestPatrol("C-3")
	assert.False(t, d.Available(), "no available unit is a valid result, not an error")
	assert.Nil(t, d.Unit)
}

func TestUpdateStatusUnknownUnit(t *testing.T) {
	r := testRoster(t)
	assert.Error(t, r.UpdateStatus("PATROL-Z9", StatusActive), "unknown unit id is an error")
}

func TestRosterConcurrentDispatch(t *testing.T) {
	r := testRoster(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := r.NearestPatrol("A-1")
			if d.Available() {
				_ = r.UpdateStatus(d.Unit.ID, StatusDispatched)
			}
		}()
	}
	wg.Wait()

	// Every unit ends in a coherent state; the race detector guards the
	// locking discipline.
	for _, u := range r.Units() {
		assert.Contains(t, []PatrolStatus{StatusActive, StatusStandby, StatusDispatched}, u.Status)
	}
}

func TestActiveUnits(t *testing.T) {
	r := testRoster(t)
	assert.Len(t, r.ActiveUnits(), 3, "three units start active")

	require.NoError(t, r.UpdateStatus("PATROL-B2", StatusStandby))
	assert.Len(t, r.ActiveUnits(), 2)
}
