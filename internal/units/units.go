// Package units provides the velocity units the CLI can report in.
package units

// Unit constants
const (
	PxPerSecond = "pxs" // pixels per second, the estimator's native unit
	PxPerFrame  = "pxf" // pixels per frame at the source frame rate
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{PxPerSecond, PxPerFrame}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "pxs, pxf"
}

// Suffix returns the display suffix for unit.
func Suffix(unit string) string {
	if unit == PxPerFrame {
		return "px/frame"
	}
	return "px/s"
}

// ConvertVelocity converts a velocity component from pixels per second to
// the target units. A non-positive fps leaves the value unchanged.
func ConvertVelocity(pxPerSecond, fps float64, targetUnits string) float64 {
	switch targetUnits {
	case PxPerFrame:
		if fps <= 0 {
			return pxPerSecond
		}
		return pxPerSecond / fps
	default:
		return pxPerSecond
	}
}
