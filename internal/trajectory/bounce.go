package trajectory

// BounceEvent marks the sample where the ball meets the ground.
type BounceEvent struct {
	Frame    int
	Index    int // sequence position in the log; frames may be sparse
	Position Point
}

// DetectBounce returns the first local maximum in y, scanning four samples
// (prev, curr, next, after) at a time. curr qualifies on a sharp peak
// (y rises into it and falls after it) or on a flat peak, where curr and next
// share the same y and after falls away. The second result is false when no
// window qualifies.
//
// The detector takes the log as-is. A noisy sample that forms a spurious peak
// before the real bounce wins.
func DetectBounce(l *Log) (BounceEvent, bool) {
	n := l.Len()
	for i := 1; i+2 < n; i++ {
		prev := l.samples[i-1].Y
		curr := l.samples[i].Y
		next := l.samples[i+1].Y
		after := l.samples[i+2].Y

		sharp := curr > prev && curr > next
		flat := curr > prev && curr == next && next > after
		if sharp || flat {
			s := l.samples[i]
			return BounceEvent{Frame: s.Frame, Index: i, Position: s.Point}, true
		}
	}
	return BounceEvent{}, false
}
