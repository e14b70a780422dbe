package trajectory

import (
	"fmt"

	"github.com/banshee-data/spin.report/internal/monitoring"
)

// Options configures an analysis run.
type Options struct {
	FPS     float64 // source frame rate; dt = 1/FPS
	Window  int     // trailing sample pairs for velocity estimation
	Physics Physics
}

// DefaultOptions returns 30 fps, a five-sample window and DefaultPhysics.
func DefaultOptions() Options {
	return Options{
		FPS:     30,
		Window:  DefaultVelocityWindow,
		Physics: DefaultPhysics(),
	}
}

// TimeStep returns the frame interval in seconds.
func (o Options) TimeStep() float64 {
	if o.FPS <= 0 {
		return 0
	}
	return 1 / o.FPS
}

// Result is the output of Analyze. When Found is false no bounce was detected
// and the remaining fields are zero.
type Result struct {
	Found          bool
	Bounce         BounceEvent
	Velocity       Velocity
	Simulated      *Log // relative frames 1..n
	Counterfactual *Log // observed up to the bounce, simulated after it
	DeviationDeg   float64
}

// Analyze runs bounce detection, velocity estimation, simulation and merging
// over an observed log.
func Analyze(actual *Log, opts Options) (*Result, error) {
	if actual.IsEmpty() {
		return nil, ErrEmptyLog
	}
	dt := opts.TimeStep()

	bounce, found := DetectBounce(actual)
	if !found {
		monitoring.Logf("bounce not detected in %d samples", actual.Len())
		return &Result{}, nil
	}
	monitoring.Logf("bounce detected at frame %d", bounce.Frame)

	v, err := EstimateVelocity(actual, bounce, dt, opts.Window)
	if err != nil {
		return nil, fmt.Errorf("estimate velocity: %w", err)
	}
	monitoring.Logf("estimated pre-bounce velocity: vx=%.2f, vy=%.2f", v.VX, v.VY)

	simulated, err := PredictCounterfactual(actual, bounce, v, dt, opts.Physics)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	counterfactual := Merge(actual, bounce.Frame, simulated)

	deviation, err := DeviationAngle(actual, counterfactual, bounce.Frame)
	if err != nil {
		return nil, fmt.Errorf("deviation: %w", err)
	}

	return &Result{
		Found:          true,
		Bounce:         bounce,
		Velocity:       v,
		Simulated:      simulated,
		Counterfactual: counterfactual,
		DeviationDeg:   deviation,
	}, nil
}

// Comparison is the outcome of comparing an observed log with a
// counterfactual log produced earlier.
type Comparison struct {
	Found        bool
	Bounce       BounceEvent
	DeviationDeg float64
}

// Compare detects the bounce in the observed log and measures the deviation
// against counterfactual.
func Compare(actual, counterfactual *Log) (*Comparison, error) {
	if actual.IsEmpty() {
		return nil, ErrEmptyLog
	}
	bounce, found := DetectBounce(actual)
	if !found {
		return &Comparison{}, nil
	}
	deviation, err := DeviationAngle(actual, counterfactual, bounce.Frame)
	if err != nil {
		return nil, err
	}
	return &Comparison{Found: true, Bounce: bounce, DeviationDeg: deviation}, nil
}
