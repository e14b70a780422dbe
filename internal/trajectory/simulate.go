package trajectory

// Physics holds the constants of the spin-free bounce model. Units are tuned
// to pixel space rather than SI.
type Physics struct {
	Gravity float64 // added to vy once per step, scaled by dt
	Damping float64 // fraction of vy kept on rebound
	Drag    float64 // fractional velocity loss per step
	GroundY float64 // y of the ground line, normally the frame height
}

// DefaultPhysics returns the constants used for 1080p broadcast footage.
func DefaultPhysics() Physics {
	return Physics{
		Gravity: 9.8,
		Damping: 0.7,
		Drag:    0.001,
		GroundY: 1080,
	}
}

// simulationState is owned by a single Simulate call.
type simulationState struct {
	x, y   float64
	vx, vy float64
}

func (s *simulationState) step(dt float64, p Physics) {
	s.vy += p.Gravity * dt
	s.vx *= 1 - p.Drag
	s.vy *= 1 - p.Drag

	s.x += s.vx * dt
	s.y += s.vy * dt

	if s.y >= p.GroundY {
		s.y = p.GroundY
		s.vy = -s.vy * p.Damping
	}
}

// Simulate integrates the model forward from start with explicit Euler steps
// and returns the positions keyed by relative frame 1..frames. The result
// depends only on its arguments.
func Simulate(start Point, v Velocity, frames int, dt float64, p Physics) *Log {
	if frames <= 0 {
		return NewLog(nil)
	}
	state := simulationState{x: start.X, y: start.Y, vx: v.VX, vy: v.VY}
	samples := make([]Sample, 0, frames)
	for frame := 1; frame <= frames; frame++ {
		state.step(dt, p)
		samples = append(samples, Sample{Frame: frame, Point: Point{X: state.x, Y: state.y}})
	}
	return NewLog(samples)
}

// PredictCounterfactual simulates the post-bounce path with no spin: the
// incoming vertical velocity is damped and inverted at the bounce position,
// and the simulation runs for as many samples as the log holds after the
// bounce.
func PredictCounterfactual(l *Log, bounce BounceEvent, v Velocity, dt float64, p Physics) (*Log, error) {
	if dt <= 0 {
		return nil, ErrInvalidTimeStep
	}
	if bounce.Index < 0 || bounce.Index >= l.Len() {
		return nil, ErrBounceFrameMissing
	}
	start := l.samples[bounce.Index].Point
	seeded := Velocity{VX: v.VX, VY: -v.VY * p.Damping}
	remaining := l.Len() - bounce.Index - 1
	return Simulate(start, seeded, remaining, dt, p), nil
}
