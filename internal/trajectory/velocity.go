package trajectory

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// DefaultVelocityWindow is the trailing window used when none is configured.
const DefaultVelocityWindow = 5

var (
	// ErrInsufficientSamples is returned when there is no sample before the
	// bounce to difference against.
	ErrInsufficientSamples = errors.New("insufficient pre-bounce samples")

	// ErrInvalidTimeStep is returned for a non-positive frame interval.
	ErrInvalidTimeStep = errors.New("time step must be positive")

	// ErrInvalidWindow is returned for a velocity window below one.
	ErrInvalidWindow = errors.New("velocity window must be at least 1")
)

// Velocity is in pixels per second.
type Velocity struct {
	VX float64
	VY float64
}

// EstimateVelocity averages backward differences over the samples leading into
// the bounce. Pair i spans samples i-1 and i for i in
// [max(1, bounce.Index-window), bounce.Index], so the window never reaches
// before the first sample.
func EstimateVelocity(l *Log, bounce BounceEvent, dt float64, window int) (Velocity, error) {
	if dt <= 0 {
		return Velocity{}, fmt.Errorf("%w: %g", ErrInvalidTimeStep, dt)
	}
	if window < 1 {
		return Velocity{}, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}
	if bounce.Index < 0 || bounce.Index >= l.Len() {
		return Velocity{}, fmt.Errorf("%w: index %d of %d", ErrBounceFrameMissing, bounce.Index, l.Len())
	}

	start := bounce.Index - window
	if start < 1 {
		start = 1
	}
	if start > bounce.Index {
		return Velocity{}, fmt.Errorf("%w: bounce at frame %d is the first sample", ErrInsufficientSamples, bounce.Frame)
	}

	n := bounce.Index - start + 1
	vx := make([]float64, 0, n)
	vy := make([]float64, 0, n)
	for i := start; i <= bounce.Index; i++ {
		p0, p1 := l.samples[i-1], l.samples[i]
		vx = append(vx, (p1.X-p0.X)/dt)
		vy = append(vy, (p1.Y-p0.Y)/dt)
	}
	return Velocity{VX: stat.Mean(vx, nil), VY: stat.Mean(vy, nil)}, nil
}
