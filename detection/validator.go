package detection

// ValidatorConfig tunes the geometric plausibility filter.
type ValidatorConfig struct {
	// MinBoxSize is the minimum width/height in pixels. Smaller boxes are
	// treated as sensor noise.
	MinBoxSize float32 `mapstructure:"min_box_size"`
	// MaxFrameFraction is the largest fraction of a frame dimension a box
	// may span before it is treated as a full-frame false positive.
	MaxFrameFraction float32 `mapstructure:"max_frame_fraction"`
	// MaxPersonAspect is the widest width/height ratio accepted for an
	// upright person.
	MaxPersonAspect float32 `mapstructure:"max_person_aspect"`
	// MinPersonAspect is the narrowest width/height ratio accepted for a
	// person.
	MinPersonAspect float32 `mapstructure:"min_person_aspect"`
	// MinVehicleAspect is the narrowest width/height ratio accepted for a
	// wheeled vehicle (vehicles should not be much taller than wide).
	MinVehicleAspect float32 `mapstructure:"min_vehicle_aspect"`
}

// DefaultValidatorConfig returns the tuning used in production.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		MinBoxSize:       15,
		MaxFrameFraction: 0.9,
		MaxPersonAspect:  2.5,
		MinPersonAspect:  0.15,
		MinVehicleAspect: 0.3,
	}
}

// Validator filters implausible raw detections. Rejection is advisory
// filtering, not an error: rejected detections are dropped from the
// pipeline silently.
type Validator struct {
	cfg ValidatorConfig
}

// NewValidator creates a validator with the given tuning.
func NewValidator(cfg ValidatorConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate reports whether a detection is geometrically plausible within a
// frame of the given dimensions.
func (v *Validator) Validate(d RawDetection, frameWidth, frameHeight int) bool {
	b := d.Box
	w := float32(frameWidth)
	h := float32(frameHeight)

	// Box must lie inside the frame.
	if b.X1 < 0 || b.Y1 < 0 || b.X2 > w || b.Y2 > h {
		return false
	}
	if !b.Valid() {
		return false
	}

	boxW := b.Width()
	boxH := b.Height()

	// Too small: likely noise.
	if boxW < v.cfg.MinBoxSize || boxH < v.cfg.MinBoxSize {
		return false
	}

	// Too large: likely a false positive covering the whole frame.
	if boxW > w*v.cfg.MaxFrameFraction || boxH > h*v.cfg.MaxFrameFraction {
		return false
	}

	aspect := b.AspectRatio()

	switch {
	case d.Class == ClassPerson:
		// An upright person is taller than wide.
		if aspect > v.cfg.MaxPersonAspect || aspect < v.cfg.MinPersonAspect {
			return false
		}
	case d.Class.Vehicle():
		if aspect < v.cfg.MinVehicleAspect {
			return false
		}
	}

	return true
}

// Filter returns the detections that pass Validate, preserving input order.
func (v *Validator) Filter(dets []RawDetection, frameWidth, frameHeight int) []RawDetection {
	kept := make([]RawDetection, 0, len(dets))
	for _, d := range dets {
		if v.Validate(d, frameWidth, frameHeight) {
			kept = append(kept, d)
		}
	}
	return kept
}
