package mac

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// OverrideProvider supplies era-dependent override rules for a pillar. The
// regime package implements it with historical policy-cap tables; a nil
// provider means no era caps apply.
type OverrideProvider interface {
	RulesFor(pillar string, asOf time.Time) []OverrideRule
}

// Calculator drives the full indicator-to-multiplier pipeline against an
// immutable threshold table. Construct once at startup and share freely.
type Calculator struct {
	thresholds ThresholdSet
	engine     *Engine
	overrides  OverrideProvider
	logger     *slog.Logger

	// CalibrationFactor is a fixed systematic bias correction discovered by
	// prior backtesting, applied multiplicatively to the raw composite. It
	// is never re-derived at runtime.
	calibrationFactor float64
}

// NewCalculator creates a calculator over the given threshold set. Pillar
// weights come from the set itself; overrides may be nil.
func NewCalculator(thresholds ThresholdSet, overrides OverrideProvider, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}

	weights := make(map[string]float64, len(thresholds.Pillars))
	for _, p := range thresholds.Pillars {
		if p.Weight > 0 {
			weights[p.Name] = p.Weight
		}
	}

	return &Calculator{
		thresholds:        thresholds,
		engine:            NewEngine(weights),
		overrides:         overrides,
		logger:            logger,
		calibrationFactor: 1.0,
	}
}

// SetCalibrationFactor sets the fixed scalar bias correction. Intended for
// construction time only; the calculator is otherwise immutable.
func (c *Calculator) SetCalibrationFactor(factor float64) error {
	if factor <= 0 {
		return fmt.Errorf("calibration factor must be positive, got %v", factor)
	}
	c.calibrationFactor = factor
	return nil
}

// SetMultiplierParams replaces the transform shape parameters. Intended for
// construction time only.
func (c *Calculator) SetMultiplierParams(p MultiplierParams) error {
	if !p.IsValid() {
		return fmt.Errorf("invalid multiplier params: alpha=%v beta=%v", p.Alpha, p.Beta)
	}
	c.engine.multiplier = p
	return nil
}

// Engine exposes the underlying composite engine, used by callers that need
// the external-modifier hook.
func (c *Calculator) Engine() *Engine {
	return c.engine
}

// Calculate runs the whole pipeline over a fully populated indicator map:
// score each configured indicator, aggregate per pillar, compose the MAC
// score. Missing indicators degrade their pillar to a neutral constituent
// with a low-confidence marker rather than aborting.
func (c *Calculator) Calculate(ctx context.Context, indicators map[string]float64, asOf time.Time) MACResult {
	start := time.Now()

	pillars := make([]PillarResult, 0, len(c.thresholds.Pillars))
	missing := 0

	for _, spec := range c.thresholds.Pillars {
		scores := make([]IndicatorScore, 0, len(spec.Indicators))
		weights := make(map[string]float64, len(spec.Indicators))

		for _, ts := range spec.Indicators {
			if ts.Weight > 0 {
				weights[ts.Indicator] = ts.Weight
			}

			value, ok := indicators[ts.Indicator]
			if !ok {
				missing++
				scores = append(scores, NeutralIndicatorScore(ts))
				continue
			}

			obs := IndicatorObservation{Name: ts.Indicator, Value: value, Observed: asOf}
			scores = append(scores, ScoreIndicator(obs, ts))
		}

		var rules []OverrideRule
		if c.overrides != nil {
			rules = c.overrides.RulesFor(spec.Name, asOf)
		}

		pillar := AggregatePillar(spec.Name, scores, weights, rules)
		pillars = append(pillars, pillar)

		c.logger.DebugContext(ctx, "aggregated pillar",
			slog.String("pillar", pillar.Pillar),
			slog.Float64("score", pillar.Score),
			slog.String("method", string(pillar.Method)),
			slog.Bool("low_confidence", pillar.LowConfidence),
		)
	}

	result := c.engine.Compose(pillars)
	result.AsOf = asOf

	if c.calibrationFactor != 1.0 {
		result = c.applyCalibrationFactor(result)
	}

	c.logger.InfoContext(ctx, "mac calculation completed",
		slog.Float64("mac_score", result.MACScore),
		slog.Int("breaches", len(result.BreachFlags)),
		slog.Bool("regime_break", result.RegimeBreak),
		slog.Int("missing_indicators", missing),
		slog.Duration("duration", time.Since(start)),
	)

	return result
}

// applyCalibrationFactor rescales the composite and re-derives the states
// that depend on it. Breach flags are pillar-level and unaffected.
func (c *Calculator) applyCalibrationFactor(result MACResult) MACResult {
	result.MACScore = clamp01(result.MACScore * c.calibrationFactor)
	result.RegimeBreak = result.MACScore < BreachFloor

	if result.RegimeBreak {
		result.Multiplier = nil
	} else {
		m := Multiplier(result.MACScore, c.engine.multiplier)
		result.Multiplier = &m
	}

	return result
}
