// Package render draws static charts of an analysed bounce: the observed
// trail, the spin-free counterfactual trail, the bounce marker and the
// deviation angle. It consumes the analysis output and does no analysis of
// its own.
package render

import (
	"errors"
	"fmt"

	"github.com/banshee-data/spin.report/internal/trajectory"
)

// ErrNoActual is returned when there is no observed trail to draw.
var ErrNoActual = errors.New("render: actual trajectory is empty")

// Input is everything the renderers need.
type Input struct {
	Actual         *trajectory.Log
	Counterfactual *trajectory.Log
	Bounce         trajectory.BounceEvent
	DeviationDeg   float64
}

// Legend and label text shared by both renderers.
const (
	actualLegend         = "Original (Spin)"
	counterfactualLegend = "Predicted (No Spin)"
)

func (in Input) validate() error {
	if in.Actual.IsEmpty() {
		return ErrNoActual
	}
	return nil
}

func deviationLabel(deg float64) string {
	return fmt.Sprintf("Spin Angle Deviation: %.2f degrees", deg)
}
