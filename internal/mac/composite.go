package mac

import (
	"fmt"
	"sort"
)

// Engine combines pillar composites into the overall MAC score. An Engine is
// immutable after construction and safe for concurrent use.
type Engine struct {
	weights    map[string]float64
	multiplier MultiplierParams
}

// NewEngine creates a composite engine with the given pillar weights. Nil or
// empty weights mean equal weighting across whatever pillars are supplied.
func NewEngine(weights map[string]float64) *Engine {
	return &Engine{
		weights:    weights,
		multiplier: DefaultMultiplierParams(),
	}
}

// NewEngineWithMultiplier creates an engine with explicit multiplier
// parameters, used by the backtest calibrator to probe the transform shape
func NewEngineWithMultiplier(weights map[string]float64, params MultiplierParams) *Engine {
	return &Engine{weights: weights, multiplier: params}
}

// Compose blends pillar results into a MACResult: weighted composite, breach
// detection, multi-breach interaction penalty, regime-break classification
// and (when not regime-broken) the shock-transmission multiplier.
func (e *Engine) Compose(pillars []PillarResult) MACResult {
	result := MACResult{
		PillarScores: make(map[string]float64, len(pillars)),
		Pillars:      pillars,
	}

	totalWeight := 0.0
	weightedSum := 0.0
	var breached []PillarResult

	for _, p := range pillars {
		result.PillarScores[p.Pillar] = p.Score
		if p.LowConfidence {
			result.LowConfidence = true
		}

		w := 1.0
		if len(e.weights) > 0 {
			if cw, ok := e.weights[p.Pillar]; ok && cw > 0 {
				w = cw
			}
		}
		totalWeight += w
		weightedSum += w * p.Score

		if p.Score < BreachFloor {
			breached = append(breached, p)
			result.BreachFlags = append(result.BreachFlags, p.Pillar)
		}
	}

	sort.Strings(result.BreachFlags)

	mac := NeutralScore
	if totalWeight > 0 {
		mac = weightedSum / totalWeight
	}

	if len(breached) >= 2 {
		depths := make([]float64, len(breached))
		for i, p := range breached {
			depths[i] = (BreachFloor - p.Score) / BreachFloor
		}
		result.InteractionPenalty = InteractionPenalty(depths)
		mac -= result.InteractionPenalty
	}

	result.MACScore = clamp01(mac)
	result.RegimeBreak = result.MACScore < BreachFloor

	if !result.RegimeBreak {
		m := Multiplier(result.MACScore, e.multiplier)
		result.Multiplier = &m
	}

	return result
}

// InteractionPenalty is the closed-form multi-breach penalty subtracted from
// the naive weighted composite when n >= 2 pillars breach simultaneously:
//
//	penalty = InteractionPenaltyRate * (n-1) * (1 + meanDepth)
//
// where depth_i = (BreachFloor - score_i) / BreachFloor measures how far each
// breached pillar sits below the floor. The form is linear in its inputs and
// therefore continuous: a +-10% perturbation of the breach depths moves the
// penalty by a proportionally bounded amount, which the tests verify.
func InteractionPenalty(depths []float64) float64 {
	n := len(depths)
	if n < 2 {
		return 0
	}

	sum := 0.0
	for _, d := range depths {
		sum += clamp01(d)
	}
	meanDepth := sum / float64(n)

	return InteractionPenaltyRate * float64(n-1) * (1 + meanDepth)
}

// ApplyExternalModifier multiplicatively discounts the MAC score with an
// external 0..1 modifier supplied by the resilience/leverage adjustment
// layers. It records whether the adjustment itself pushed the score across
// the breach boundary, so a modifier-caused regime break stays traceable to
// its cause. The receiver result is not mutated.
func (e *Engine) ApplyExternalModifier(result MACResult, modifier float64) (MACResult, error) {
	if modifier < 0 || modifier > 1 {
		return result, fmt.Errorf("external modifier %v outside [0,1]", modifier)
	}

	adjusted := clamp01(result.MACScore * modifier)
	result.AdjustedScore = &adjusted

	if adjusted < BreachFloor {
		if !result.RegimeBreak {
			result.AdjustmentCausedBreach = true
		}
		result.RegimeBreak = true
		result.Multiplier = nil
	} else {
		m := Multiplier(adjusted, e.multiplier)
		result.Multiplier = &m
	}

	return result, nil
}
