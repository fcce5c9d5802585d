package regime

import (
	"fmt"
	"math"
)

const (
	// DefaultWindowPeriods is the trailing window for rolling z-scores,
	// two years of weekly observations
	DefaultWindowPeriods = 104

	// MinObservationsForZScore is the fewest window entries a z-score may
	// be computed from
	MinObservationsForZScore = 10
)

// RollingWindow is a bounded append-only ring buffer over float64
// observations with oldest-entry eviction. It follows single-owner
// discipline: one goroutine appends, readers share the owner's
// synchronization. It is not designed for concurrent writers.
type RollingWindow struct {
	values []float64
	next   int
	full   bool
}

// NewRollingWindow creates a window holding at most capacity entries
func NewRollingWindow(capacity int) *RollingWindow {
	if capacity <= 0 {
		capacity = DefaultWindowPeriods
	}
	return &RollingWindow{values: make([]float64, capacity)}
}

// Append adds an observation, evicting the oldest once the window is full
func (w *RollingWindow) Append(v float64) {
	w.values[w.next] = v
	w.next++
	if w.next == len(w.values) {
		w.next = 0
		w.full = true
	}
}

// Len returns the number of observations currently held
func (w *RollingWindow) Len() int {
	if w.full {
		return len(w.values)
	}
	return w.next
}

// Capacity returns the fixed window size
func (w *RollingWindow) Capacity() int {
	return len(w.values)
}

// Mean returns the arithmetic mean of the held observations
func (w *RollingWindow) Mean() float64 {
	n := w.Len()
	if n == 0 {
		return 0
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += w.values[i]
	}
	return sum / float64(n)
}

// StdDev returns the population standard deviation of the held observations
func (w *RollingWindow) StdDev() float64 {
	n := w.Len()
	if n == 0 {
		return 0
	}

	mean := w.Mean()
	sumSq := 0.0
	for i := 0; i < n; i++ {
		d := w.values[i] - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n))
}

// ZScore standardizes v against the window's trailing distribution. It
// refuses to standardize against too few observations or a degenerate
// (zero-variance) window.
func (w *RollingWindow) ZScore(v float64) (float64, error) {
	n := w.Len()
	if n < MinObservationsForZScore {
		return 0, fmt.Errorf("insufficient observations for z-score: %d < %d", n, MinObservationsForZScore)
	}

	sd := w.StdDev()
	if sd == 0 {
		return 0, fmt.Errorf("zero variance over %d observations", n)
	}

	return (v - w.Mean()) / sd, nil
}
