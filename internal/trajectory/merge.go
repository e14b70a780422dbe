package trajectory

// Merge splices the observed samples up to and including bounceFrame with the
// simulated samples, renumbered to follow the bounce frame without gaps. The
// inputs are not modified.
func Merge(actual *Log, bounceFrame int, simulated *Log) *Log {
	merged := make([]Sample, 0, actual.Len()+simulated.Len())
	for _, s := range actual.Samples() {
		if s.Frame <= bounceFrame {
			merged = append(merged, s)
		}
	}
	next := bounceFrame + 1
	for i, s := range simulated.Samples() {
		merged = append(merged, Sample{Frame: next + i, Point: s.Point})
	}
	return NewLog(merged)
}
