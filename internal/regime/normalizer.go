package regime

import (
	"context"
	"fmt"
	"log/slog"
)

// Normalizer keeps one rolling window per indicator series and standardizes
// raw readings against their own trailing distribution, so a 1970s reading
// and a 2020s reading land on the same scale.
//
// The series map is the only long-lived mutable state in the core; it
// follows single-owner discipline. Callers that feed it from multiple
// goroutines must serialize access themselves (the service layer does).
type Normalizer struct {
	windowPeriods int
	series        map[string]*RollingWindow
	logger        *slog.Logger
}

// NewNormalizer creates a normalizer with the given trailing window length;
// zero or negative means DefaultWindowPeriods
func NewNormalizer(windowPeriods int, logger *slog.Logger) *Normalizer {
	if windowPeriods <= 0 {
		windowPeriods = DefaultWindowPeriods
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		windowPeriods: windowPeriods,
		series:        make(map[string]*RollingWindow),
		logger:        logger,
	}
}

// Observe appends a raw reading to the named series, creating the series on
// first use
func (n *Normalizer) Observe(ctx context.Context, name string, value float64) {
	w, ok := n.series[name]
	if !ok {
		w = NewRollingWindow(n.windowPeriods)
		n.series[name] = w
		n.logger.DebugContext(ctx, "created indicator series",
			slog.String("indicator", name),
			slog.Int("window_periods", n.windowPeriods),
		)
	}
	w.Append(value)
}

// ZScore standardizes value against the named series' trailing window
func (n *Normalizer) ZScore(name string, value float64) (float64, error) {
	w, ok := n.series[name]
	if !ok {
		return 0, fmt.Errorf("no observations recorded for indicator %q", name)
	}

	z, err := w.ZScore(value)
	if err != nil {
		return 0, fmt.Errorf("z-score for %q: %w", name, err)
	}
	return z, nil
}

// SeriesLen reports how many observations the named series currently holds
func (n *Normalizer) SeriesLen(name string) int {
	if w, ok := n.series[name]; ok {
		return w.Len()
	}
	return 0
}

// NormalizeToEra shifts a raw reading by the gap between its own era
// baseline and the modern baseline, making sparse historical readings
// roughly comparable with current thresholds. Indicators without a baseline
// entry pass through unchanged.
func (n *Normalizer) NormalizeToEra(value float64, indicator string, era Era) float64 {
	historical, ok := Baseline(era, indicator)
	if !ok {
		return value
	}
	modern, ok := Baseline(EraModern, indicator)
	if !ok {
		return value
	}
	return value - historical + modern
}
