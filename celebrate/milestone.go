package celebrate

import "sort"

// MilestoneTracker fires each configured viewer-count threshold exactly
// once for the process lifetime. A threshold fires when a new sample
// reaches it AND the sample is strictly greater than the previous one;
// the monotonic-increase guard keeps flat or regressed reads from firing.
type MilestoneTracker struct {
	thresholds []int // ascending
	celebrated map[int]bool
	last       int
}

// NewMilestoneTracker builds a tracker over thresholds (copied and sorted
// ascending).
func NewMilestoneTracker(thresholds []int) *MilestoneTracker {
	ts := make([]int, len(thresholds))
	copy(ts, thresholds)
	sort.Ints(ts)
	return &MilestoneTracker{
		thresholds: ts,
		celebrated: make(map[int]bool),
	}
}

// Observe records a viewer-count sample and returns the thresholds that
// fire, in ascending order. A single jump can fire several at once.
func (t *MilestoneTracker) Observe(count int) []int {
	var fired []int
	for _, th := range t.thresholds {
		if count >= th && !t.celebrated[th] && count > t.last {
			t.celebrated[th] = true
			fired = append(fired, th)
		}
	}
	t.last = count
	return fired
}

// Celebrated returns the already-fired thresholds in ascending order.
func (t *MilestoneTracker) Celebrated() []int {
	var out []int
	for _, th := range t.thresholds {
		if t.celebrated[th] {
			out = append(out, th)
		}
	}
	return out
}

// LastCount returns the most recent sample observed.
func (t *MilestoneTracker) LastCount() int { return t.last }
