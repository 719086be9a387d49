// Package detection - Raw detector output models, geometric validation, and
// per-frame duplicate suppression.
package detection

// Class is the closed set of object classes the pipeline scores. Detector
// labels outside this set map to ClassUnknown, which is scored with zero
// base points rather than rejected.
type Class int

const (
	ClassUnknown Class = iota
	ClassPerson
	ClassBicycle
	ClassCar
	ClassMotorcycle
	ClassBus
	ClassTruck
)

var classLabels = map[Class]string{
	ClassUnknown:    "unknown",
	ClassPerson:     "person",
	ClassBicycle:    "bicycle",
	ClassCar:        "car",
	ClassMotorcycle: "motorcycle",
	ClassBus:        "bus",
	ClassTruck:      "truck",
}

var labelClasses = map[string]Class{
	"person":     ClassPerson,
	"bicycle":    ClassBicycle,
	"car":        ClassCar,
	"motorcycle": ClassMotorcycle,
	"bus":        ClassBus,
	"truck":      ClassTruck,
}

// ParseClass maps a detector label to a Class. Unrecognized labels return
// ClassUnknown; there is no error path.
func ParseClass(label string) Class {
	if c, ok := labelClasses[label]; ok {
		return c
	}
	return ClassUnknown
}

// Label returns the canonical lowercase label.
func (c Class) Label() string {
	if l, ok := classLabels[c]; ok {
		return l
	}
	return "unknown"
}

func (c Class) String() string {
	return c.Label()
}

// Vehicle reports whether the class is a wheeled vehicle. Used by aspect
// ratio validation and the object-type factor.
func (c Class) Vehicle() bool {
	switch c {
	case ClassCar, ClassMotorcycle, ClassBus, ClassTruck:
		return true
	}
	return false
}

// Description returns the rationale string used when the class contributes
// to a threat factor.
func (c Class) Description() string {
	switch c {
	case ClassPerson:
		return "Personnel detected - potential unauthorized entry"
	case ClassBicycle:
		return "Bicycle detected - possible low-profile crossing"
	case ClassCar:
		return "Light vehicle detected - potential smuggling"
	case ClassMotorcycle:
		return "Motorcycle detected - fast infiltration capability"
	case ClassBus:
		return "Large vehicle detected - mass transport capability"
	case ClassTruck:
		return "Heavy vehicle detected - significant smuggling risk"
	}
	return "Unknown object type"
}
