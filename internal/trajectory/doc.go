// Package trajectory reconstructs a ball's path from a per-frame coordinate
// log, finds the bounce, and builds a spin-free counterfactual continuation
// for comparison against what was actually observed.
//
// Stages are plain functions over immutable *Log values:
//
//	DetectBounce -> EstimateVelocity -> PredictCounterfactual -> Merge
//	                                                          \-> DeviationAngle
//
// Positions are in image pixels with y growing downward, so the bounce shows
// up as a local maximum in y.
package trajectory
