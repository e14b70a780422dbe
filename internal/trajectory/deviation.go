package trajectory

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DeviationAngle returns the angle in degrees between the actual and the
// predicted post-bounce displacement, each measured from the actual bounce
// position to the last sample of its log. If either displacement is zero the
// angle is 0.
func DeviationAngle(actual, predicted *Log, bounceFrame int) (float64, error) {
	bounce, ok := actual.Lookup(bounceFrame)
	if !ok {
		return 0, fmt.Errorf("%w: frame %d", ErrBounceFrameMissing, bounceFrame)
	}
	endActual, ok := actual.Last()
	if !ok {
		return 0, fmt.Errorf("actual: %w", ErrEmptyLog)
	}
	endPred, ok := predicted.Last()
	if !ok {
		return 0, fmt.Errorf("predicted: %w", ErrEmptyLog)
	}

	origin := toVec(bounce.Point)
	vActual := r2.Sub(toVec(endActual.Point), origin)
	vPred := r2.Sub(toVec(endPred.Point), origin)
	return angleBetween(vActual, vPred), nil
}

func angleBetween(a, b r2.Vec) float64 {
	na, nb := r2.Norm(a), r2.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	cos := r2.Dot(a, b) / (na * nb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

func toVec(p Point) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}
