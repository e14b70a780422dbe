package units

import (
	"math"
	"testing"
)

func TestConvertVelocity(t *testing.T) {
	tests := []struct {
		name     string
		pxs      float64
		fps      float64
		units    string
		expected float64
	}{
		{"600 px/s at 30 fps to px/frame", 600, 30, PxPerFrame, 20},
		{"600 px/s at 60 fps to px/frame", 600, 60, PxPerFrame, 10},
		{"negative vy to px/frame", -750, 30, PxPerFrame, -25},
		{"px/s unchanged", 600, 30, PxPerSecond, 600},
		{"unknown units default to px/s", 600, 30, "unknown", 600},
		{"zero fps leaves value", 600, 0, PxPerFrame, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertVelocity(tt.pxs, tt.fps, tt.units)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ConvertVelocity(%f, %f, %s) = %f, want %f", tt.pxs, tt.fps, tt.units, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid pxs", PxPerSecond, true},
		{"valid pxf", PxPerFrame, true},
		{"invalid unit", "mph", false},
		{"empty string", "", false},
		{"case sensitive", "PXS", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestSuffix(t *testing.T) {
	if got := Suffix(PxPerFrame); got != "px/frame" {
		t.Errorf("Suffix(pxf) = %q", got)
	}
	if got := Suffix(PxPerSecond); got != "px/s" {
		t.Errorf("Suffix(pxs) = %q", got)
	}
	if got := GetValidUnitsString(); got != "pxs, pxf" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
}
