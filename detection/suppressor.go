package detection

import "sort"

// DefaultNMSThreshold is the IoU at or above which two same-class boxes are
// considered duplicates of one physical object.
const DefaultNMSThreshold float32 = 0.45

// Suppressor performs per-class greedy non-maximum suppression within one
// frame. Cross-class overlap is never suppressed; a person and a vehicle may
// legitimately overlap.
type Suppressor struct {
	threshold float32
}

// NewSuppressor creates a suppressor with the given IoU threshold.
func NewSuppressor(iouThreshold float32) *Suppressor {
	return &Suppressor{threshold: iouThreshold}
}

// Threshold returns the configured IoU threshold.
func (s *Suppressor) Threshold() float32 {
	return s.threshold
}

// Suppress collapses overlapping same-class boxes, keeping the
// highest-confidence representative of each cluster.
//
// Guarantee: among kept boxes of the same class, no two have
// IoU >= threshold. Applying Suppress to its own output removes nothing.
func (s *Suppressor) Suppress(dets []RawDetection) []RawDetection {
	if len(dets) == 0 {
		return nil
	}

	// Partition by class; suppression never crosses class boundaries.
	byClass := make(map[Class][]RawDetection)
	var order []Class
	for _, d := range dets {
		if _, seen := byClass[d.Class]; !seen {
			order = append(order, d.Class)
		}
		byClass[d.Class] = append(byClass[d.Class], d)
	}

	result := make([]RawDetection, 0, len(dets))
	for _, class := range order {
		result = append(result, s.suppressClass(byClass[class])...)
	}
	return result
}

func (s *Suppressor) suppressClass(dets []RawDetection) []RawDetection {
	if len(dets) == 1 {
		return dets
	}

	sorted := make([]RawDetection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]RawDetection, 0, len(sorted))
	remaining := sorted
	for len(remaining) > 0 {
		best := remaining[0]
		kept = append(kept, best)

		survivors := remaining[:0:0]
		for _, d := range remaining[1:] {
			if best.Box.IoU(d.Box) < s.threshold {
				survivors = append(survivors, d)
			}
		}
		remaining = survivors
	}
	return kept
}
