package grid

import (
	"sync"

	"github.com/pkg/errors"
)

// Mobility is a patrol unit's movement model.
type Mobility string

const (
	MobilityVehicle Mobility = "vehicle"
	MobilityFoot    Mobility = "foot"
)

// PatrolStatus is a patrol unit's operational state.
type PatrolStatus string

const (
	StatusActive     PatrolStatus = "active"
	StatusStandby    PatrolStatus = "standby"
	StatusDispatched PatrolStatus = "dispatched"
)

// Available reports whether a unit in this status can take a dispatch.
func (s PatrolStatus) Available() bool {
	return s == StatusActive || s == StatusStandby
}

// PatrolUnit is a dispatchable responder.
type PatrolUnit struct {
	ID                  string       `json:"id" mapstructure:"id"`
	Name                string       `json:"name" mapstructure:"name"`
	Mobility            Mobility     `json:"mobility" mapstructure:"mobility"`
	BaseGrid            string       `json:"base_grid" mapstructure:"base_grid"`
	Status              PatrolStatus `json:"status" mapstructure:"status"`
	Personnel           int          `json:"personnel" mapstructure:"personnel"`
	ResponseTimeMinutes int          `json:"response_time_minutes" mapstructure:"response_time_minutes"`
}

// ETA model constants, in minutes. Vehicles cover a grid cell faster than
// foot patrols; every dispatch pays a fixed mobilization cost.
const (
	vehicleMinutesPerCell = 1.5
	footMinutesPerCell    = 4.0
	mobilizationMinutes   = 2.0
)

// estimateETA converts a Chebyshev grid distance into minutes.
func estimateETA(gridDistance int, mobility Mobility) float64 {
	perCell := footMinutesPerCell
	if mobility == MobilityVehicle {
		perCell = vehicleMinutesPerCell
	}
	return float64(gridDistance)*perCell + mobilizationMinutes
}

// Roster holds the patrol units and answers nearest-patrol queries.
// Status updates are the only writes to shared state in the core and are
// serialized by the roster lock.
type Roster struct {
	mapper *Mapper

	mu    sync.RWMutex
	units map[string]*PatrolUnit
	order []string
}

// NewRoster builds a roster over the given grid. Unit order is preserved
// for deterministic iteration.
func NewRoster(mapper *Mapper, units []PatrolUnit) *Roster {
	r := &Roster{
		mapper: mapper,
		units:  make(map[string]*PatrolUnit, len(units)),
		order:  make([]string, 0, len(units)),
	}
	for i := range units {
		u := units[i]
		if _, dup := r.units[u.ID]; dup {
			continue
		}
		r.units[u.ID] = &u
		r.order = append(r.order, u.ID)
	}
	return r
}

// Unit returns a copy of the unit with the given id.
func (r *Roster) Unit(id string) (PatrolUnit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[id]
	if !ok {
		return PatrolUnit{}, false
	}
	return *u, true
}

// Units returns copies of all units in configuration order.
func (r *Roster) Units() []PatrolUnit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PatrolUnit, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.units[id])
	}
	return out
}

// ActiveUnits returns copies of all units with active status.
func (r *Roster) ActiveUnits() []PatrolUnit {
	var out []PatrolUnit
	for _, u := range r.Units() {
		if u.Status == StatusActive {
			out = append(out, u)
		}
	}
	return out
}

// UpdateStatus sets a unit's status. The write is atomic with respect to
// concurrent NearestPatrol queries so two callers cannot both observe a
// unit as free while one dispatches it.
func (r *Roster) UpdateStatus(id string, status PatrolStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[id]
	if !ok {
		return errors.Errorf("unknown patrol unit %q", id)
	}
	u.Status = status
	return nil
}

// Dispatch is a valid "no patrol available" carrier: Unit is nil when no
// unit qualifies. Callers must handle the nil case; it is not an error.
type Dispatch struct {
	Unit       *PatrolUnit
	ETAMinutes int
}

// Available reports whether a responding unit was found.
func (d Dispatch) Available() bool {
	return d.Unit != nil
}

// NearestPatrol finds the best-responding unit for a zone.
//
// The zone's pre-configured nearest-patrol hint is used when that unit is
// available; otherwise all available units are scanned and the minimum-ETA
// candidate wins. Ties keep the earlier unit in configuration order, so
// results are deterministic.
func (r *Roster) NearestPatrol(reference string) Dispatch {
	zone := r.mapper.ZoneAt(reference)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if zone.NearestPatrol != "" {
		if u, ok := r.units[zone.NearestPatrol]; ok && u.Status.Available() {
			hinted := *u
			return Dispatch{Unit: &hinted, ETAMinutes: zone.PatrolETAMinutes}
		}
	}

	var best *PatrolUnit
	bestETA := 0.0
	for _, id := range r.order {
		u := r.units[id]
		if !u.Status.Available() {
			continue
		}
		dist, err := r.mapper.Distance(reference, u.BaseGrid)
		if err != nil {
			continue
		}
		eta := estimateETA(dist, u.Mobility)
		if best == nil || eta < bestETA {
			best = u
			bestETA = eta
		}
	}

	if best == nil {
		return Dispatch{}
	}
	found := *best
	return Dispatch{Unit: &found, ETAMinutes: int(bestETA)}
}
