package trajectory

import (
	"errors"
	"sort"

	"github.com/banshee-data/spin.report/internal/monitoring"
)

var (
	// ErrEmptyLog is returned when a stage needs at least one sample.
	ErrEmptyLog = errors.New("coordinate log is empty")

	// ErrBounceFrameMissing is returned when a bounce frame or sequence
	// position does not refer to a sample in the log.
	ErrBounceFrameMissing = errors.New("bounce frame not present in coordinate log")
)

// Point is a position in pixel space.
type Point struct {
	X float64
	Y float64
}

// Sample is one coordinate log record.
type Sample struct {
	Frame int
	Point
}

// Log is an immutable, frame-ordered coordinate log. Frames are unique and
// strictly positive; gaps are allowed.
type Log struct {
	samples []Sample
	index   map[int]int // frame -> position in samples
}

// NewLog builds a Log from samples in any order. A later sample for a frame
// already seen replaces the earlier one. Samples with a non-positive frame
// are dropped.
func NewLog(samples []Sample) *Log {
	byFrame := make(map[int]Sample, len(samples))
	for _, s := range samples {
		if s.Frame <= 0 {
			monitoring.Debugf("dropping sample with non-positive frame %d", s.Frame)
			continue
		}
		byFrame[s.Frame] = s
	}

	sorted := make([]Sample, 0, len(byFrame))
	for _, s := range byFrame {
		sorted = append(sorted, s)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })

	index := make(map[int]int, len(sorted))
	for i, s := range sorted {
		index[s.Frame] = i
	}
	return &Log{samples: sorted, index: index}
}

// Len returns the number of samples.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.samples)
}

// IsEmpty reports whether the log has no samples.
func (l *Log) IsEmpty() bool { return l.Len() == 0 }

// At returns the sample at sequence position i (0-based, ascending frame).
// It panics unless 0 <= i < Len(), like a slice index.
func (l *Log) At(i int) Sample { return l.samples[i] }

// Lookup returns the sample recorded for frame.
func (l *Log) Lookup(frame int) (Sample, bool) {
	if l == nil {
		return Sample{}, false
	}
	i, ok := l.index[frame]
	if !ok {
		return Sample{}, false
	}
	return l.samples[i], true
}

// First returns the earliest sample.
func (l *Log) First() (Sample, bool) {
	if l.IsEmpty() {
		return Sample{}, false
	}
	return l.samples[0], true
}

// Last returns the latest sample.
func (l *Log) Last() (Sample, bool) {
	if l.IsEmpty() {
		return Sample{}, false
	}
	return l.samples[len(l.samples)-1], true
}

// Samples returns a copy of the samples in ascending frame order.
func (l *Log) Samples() []Sample {
	if l == nil {
		return nil
	}
	out := make([]Sample, len(l.samples))
	copy(out, l.samples)
	return out
}

// Frames returns the frame numbers in ascending order.
func (l *Log) Frames() []int {
	frames := make([]int, l.Len())
	for i := range frames {
		frames[i] = l.samples[i].Frame
	}
	return frames
}

// Points returns the positions in ascending frame order.
func (l *Log) Points() []Point {
	pts := make([]Point, l.Len())
	for i := range pts {
		pts[i] = l.samples[i].Point
	}
	return pts
}
