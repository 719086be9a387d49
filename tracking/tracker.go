package tracking

import (
	"sort"

	"github.com/border-sentry/go-intel/detection"
	"github.com/border-sentry/go-intel/geometry"
)

// Config tunes the tracker.
type Config struct {
	// MatchIoU is the minimum IoU for a detection to continue an existing
	// track. Lower than the NMS threshold: the goal is temporal
	// continuity, not duplicate removal.
	MatchIoU float32 `mapstructure:"match_iou"`
	// MinHits is the number of matched frames before a track is Confirmed.
	MinHits int `mapstructure:"min_hits"`
	// MaxAge is the number of frames a track may go unmatched before it is
	// evicted.
	MaxAge int `mapstructure:"max_age"`
	// HistoryCap bounds the per-track center history.
	HistoryCap int `mapstructure:"history_cap"`
}

// DefaultConfig returns the production tracker tuning.
func DefaultConfig() Config {
	return Config{
		MatchIoU:   0.3,
		MinHits:    2,
		MaxAge:     15,
		HistoryCap: 30,
	}
}

// TrackedDetection is a detection enriched with its track's identity and
// motion. History is a copy; mutating it does not touch the track.
type TrackedDetection struct {
	detection.RawDetection

	TrackID   int
	Confirmed bool
	Hits      int
	// TrackAge is the track's age in frames, including this one.
	TrackAge int
	Velocity Velocity
	History  []geometry.Point
}

// Tracker matches frame detections to live tracks. One tracker per video
// stream; track-id namespaces never cross streams. Not safe for concurrent
// use — frames are inherently sequential.
type Tracker struct {
	cfg Config

	tracks map[int]*Track
	nextID int
	frame  int

	// confirmedEver counts tracks that ever reached Confirmed, including
	// evicted ones. This is the stream's unique-object count.
	confirmedEver int
}

// NewTracker creates a tracker with the given tuning.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg:    cfg,
		tracks: make(map[int]*Track),
		nextID: 1,
	}
}

// Update advances the tracker by one frame. Detections are matched to live
// tracks by same-class greedy maximum-IoU assignment in descending
// confidence order; unmatched detections start new Tentative tracks. The
// tracker never rejects input; there is no error path.
//
// Returns the input detections enriched with track information, in input
// order.
func (t *Tracker) Update(frameIndex int, dets []detection.RawDetection) []TrackedDetection {
	t.frame = frameIndex

	out := make([]TrackedDetection, len(dets))
	matchedTracks := make(map[int]bool)
	matchedDets := make(map[int]bool)

	// Process in descending confidence so the greedy assignment is
	// deterministic and order-stable.
	order := make([]int, len(dets))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dets[order[a]].Confidence > dets[order[b]].Confidence
	})

	for _, detIdx := range order {
		d := dets[detIdx]

		bestID := 0
		var bestIoU float32
		for _, tr := range t.liveInOrder() {
			if matchedTracks[tr.ID] {
				continue
			}
			if tr.Class != d.Class {
				continue
			}
			iou := d.Box.IoU(tr.Box)
			if iou > t.cfg.MatchIoU && iou > bestIoU {
				bestIoU = iou
				bestID = tr.ID
			}
		}

		if bestID != 0 {
			matchedTracks[bestID] = true
			matchedDets[detIdx] = true
			out[detIdx] = t.matchTrack(t.tracks[bestID], d)
		}
	}

	// Unmatched detections spawn new tracks.
	for i, d := range dets {
		if !matchedDets[i] {
			out[i] = t.spawnTrack(d)
		}
	}

	t.evictStale()

	return out
}

// liveInOrder returns live tracks in ascending id order so matching is
// deterministic regardless of map iteration.
func (t *Tracker) liveInOrder() []*Track {
	ids := make([]int, 0, len(t.tracks))
	for id := range t.tracks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*Track, len(ids))
	for i, id := range ids {
		out[i] = t.tracks[id]
	}
	return out
}

func (t *Tracker) matchTrack(tr *Track, d detection.RawDetection) TrackedDetection {
	newCenter := d.Center()
	tr.Velocity = Velocity{
		DX: newCenter.X - tr.Center.X,
		DY: newCenter.Y - tr.Center.Y,
	}
	tr.Box = d.Box
	tr.Center = newCenter
	tr.LastMatched = t.frame
	tr.Hits++

	tr.History = append(tr.History, newCenter)
	if len(tr.History) > t.cfg.HistoryCap {
		tr.History = tr.History[len(tr.History)-t.cfg.HistoryCap:]
	}

	if tr.State == Tentative && tr.Hits >= t.cfg.MinHits {
		tr.State = Confirmed
		t.confirmedEver++
	}

	return t.enrich(tr, d)
}

func (t *Tracker) spawnTrack(d detection.RawDetection) TrackedDetection {
	center := d.Center()
	tr := &Track{
		ID:          t.nextID,
		Class:       d.Class,
		Label:       d.Label,
		Box:         d.Box,
		Center:      center,
		Hits:        1,
		FirstFrame:  t.frame,
		LastMatched: t.frame,
		State:       Tentative,
		History:     []geometry.Point{center},
	}
	t.nextID++

	if tr.Hits >= t.cfg.MinHits {
		tr.State = Confirmed
		t.confirmedEver++
	}

	t.tracks[tr.ID] = tr
	return t.enrich(tr, d)
}

func (t *Tracker) enrich(tr *Track, d detection.RawDetection) TrackedDetection {
	history := make([]geometry.Point, len(tr.History))
	copy(history, tr.History)

	return TrackedDetection{
		RawDetection: d,
		TrackID:      tr.ID,
		Confirmed:    tr.State == Confirmed,
		Hits:         tr.Hits,
		TrackAge:     tr.Age(t.frame),
		Velocity:     tr.Velocity,
		History:      history,
	}
}

func (t *Tracker) evictStale() {
	for id, tr := range t.tracks {
		if t.frame-tr.LastMatched > t.cfg.MaxAge {
			delete(t.tracks, id)
		}
	}
}

// Live returns copies of the live tracks in ascending id order.
func (t *Tracker) Live() []Track {
	live := t.liveInOrder()
	out := make([]Track, len(live))
	for i, tr := range live {
		out[i] = *tr
		out[i].History = append([]geometry.Point(nil), tr.History...)
	}
	return out
}

// Track returns a copy of the live track with the given id.
func (t *Tracker) Track(id int) (Track, bool) {
	tr, ok := t.tracks[id]
	if !ok {
		return Track{}, false
	}
	cp := *tr
	cp.History = append([]geometry.Point(nil), tr.History...)
	return cp, true
}

// UniqueConfirmed returns how many distinct tracks ever reached Confirmed,
// including tracks that have since been evicted. This is the deduplicated
// object count for the stream.
func (t *Tracker) UniqueConfirmed() int {
	return t.confirmedEver
}

// LiveCount returns the number of live tracks.
func (t *Tracker) LiveCount() int {
	return len(t.tracks)
}
