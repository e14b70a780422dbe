// Package detection converts per-frame object detector output into a
// coordinate log. It is the boundary between the external detector and the
// trajectory analysis.
package detection

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/banshee-data/spin.report/internal/monitoring"
	"github.com/banshee-data/spin.report/internal/trajectory"
)

// Box is an axis-aligned bounding box in pixels.
type Box struct {
	X1, Y1, X2, Y2 float64
}

// MarshalJSON encodes the box as [x1, y1, x2, y2].
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X1, b.Y1, b.X2, b.Y2})
}

// UnmarshalJSON decodes a box from [x1, y1, x2, y2].
func (b *Box) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("box must be [x1, y1, x2, y2]: %w", err)
	}
	if len(v) != 4 {
		return fmt.Errorf("box must have 4 coordinates, got %d", len(v))
	}
	*b = Box{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}
	return nil
}

// Detection is one candidate object in a frame.
type Detection struct {
	ClassID    int     `json:"class_id"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// Frame holds the detections for one decoded video frame. Index is 1-based.
type Frame struct {
	Index      int         `json:"frame"`
	Detections []Detection `json:"detections"`
}

// SelectBest returns the highest-confidence detection of classID. On equal
// confidence the earlier detection is kept.
func SelectBest(dets []Detection, classID int) (Detection, bool) {
	var best Detection
	found := false
	for _, d := range dets {
		if d.ClassID != classID {
			continue
		}
		if !found || d.Confidence > best.Confidence {
			best = d
			found = true
		}
	}
	return best, found
}

// Center returns the box center. Corners are truncated to whole pixels first
// and the sums are floor-divided, so the result is always integral.
func Center(b Box) trajectory.Point {
	x1, y1 := int64(b.X1), int64(b.Y1)
	x2, y2 := int64(b.X2), int64(b.Y2)
	return trajectory.Point{
		X: float64(floorDiv(x1+x2, 2)),
		Y: float64(floorDiv(y1+y2, 2)),
	}
}

func floorDiv(a, b int64) int64 {
	return int64(math.Floor(float64(a) / float64(b)))
}

// BuildLog emits one sample per frame whose detections include classID,
// positioned at the center of the most confident box. Frames without a
// qualifying detection are left out of the log.
func BuildLog(frames []Frame, classID int) *trajectory.Log {
	samples := make([]trajectory.Sample, 0, len(frames))
	for _, f := range frames {
		if len(f.Detections) == 0 {
			monitoring.Debugf("frame %d: no object detected", f.Index)
			continue
		}
		best, ok := SelectBest(f.Detections, classID)
		if !ok {
			monitoring.Debugf("frame %d: no class %d object detected", f.Index, classID)
			continue
		}
		c := Center(best.Box)
		monitoring.Debugf("frame %d: ball at (%d,%d)", f.Index, int64(c.X), int64(c.Y))
		samples = append(samples, trajectory.Sample{Frame: f.Index, Point: c})
	}
	return trajectory.NewLog(samples)
}

// ReadFrames decodes JSON Lines input, one Frame object per line. Blank lines
// are ignored; any other undecodable line is an error since detector output
// is machine generated.
func ReadFrames(r io.Reader) ([]Frame, error) {
	var frames []Frame
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var f Frame
		if err := json.Unmarshal([]byte(line), &f); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		frames = append(frames, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read detections: %w", err)
	}
	return frames, nil
}
