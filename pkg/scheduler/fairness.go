package scheduler

import "math"

// loadTracker counts the shifts handed to each worker during a single solve
type loadTracker struct {
	counts []int
}

func newLoadTracker(workers int) *loadTracker {
	return &loadTracker{counts: make([]int, workers)}
}

func (l *loadTracker) add(worker int) {
	l.counts[worker]++
}

func (l *loadTracker) count(worker int) int {
	return l.counts[worker]
}

// fairnessScore returns a percentage (0-100) representing how evenly
// shifts are distributed. 100% is perfectly fair (Standard Deviation = 0).
func (l *loadTracker) fairnessScore() float64 {
	if len(l.counts) == 0 {
		return 100.0
	}

	var sum float64
	for _, c := range l.counts {
		sum += float64(c)
	}
	if sum == 0 {
		return 100.0
	}

	mean := sum / float64(len(l.counts))

	var varianceSum float64
	for _, c := range l.counts {
		diff := float64(c) - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(l.counts)))

	// 0% means SD is >= mean
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}
