package mac

import (
	"math"
)

// ForcedBreachRule returns the built-in override that encodes "one severe leg
// breaches the whole pillar": once any critical constituent individually
// breaches, the pillar composite is clamped to ForcedBreachCap regardless of
// the blended value. It always runs ahead of any era-dependent rules.
func ForcedBreachRule() OverrideRule {
	return OverrideRule{
		Reason: "critical_indicator_breach",
		Cap:    ForcedBreachCap,
		Forces: true,
		Applies: func(pr PillarResult) bool {
			for _, c := range pr.Constituents {
				if c.Critical && !c.Missing && c.Score < BreachFloor {
					return true
				}
			}
			return false
		},
	}
}

// AggregatePillar combines constituent indicator scores into one pillar
// composite.
//
// Method selection is dispersion-driven: when max-min across the scores
// exceeds DispersionThreshold the pillar is constraint-bound and the worst
// constituent dominates (MethodMin); otherwise the scores are blended with
// the supplied weights (MethodWeightedAvg, equal weights when none are
// configured). The override chain then runs in order; the forced-breach rule
// is prepended automatically, era caps and other caller rules follow.
func AggregatePillar(name string, scores []IndicatorScore, weights map[string]float64, overrides []OverrideRule) PillarResult {
	result := PillarResult{
		Pillar:       name,
		Constituents: scores,
		Method:       MethodWeightedAvg,
	}

	if len(scores) == 0 {
		// No configured indicators at all: neutral with low confidence
		result.Score = NeutralScore
		result.LowConfidence = true
		return result
	}

	minScore, maxScore := math.Inf(1), math.Inf(-1)
	for _, s := range scores {
		if s.Missing {
			result.LowConfidence = true
		}
		if s.Score < minScore {
			minScore = s.Score
		}
		if s.Score > maxScore {
			maxScore = s.Score
		}
	}

	if maxScore-minScore > DispersionThreshold {
		// One severely stressed dimension should dominate a pillar that
		// looks fine on average
		result.Method = MethodMin
		result.Score = minScore
	} else {
		result.Score = weightedAverage(scores, weights)
	}

	rules := append([]OverrideRule{ForcedBreachRule()}, overrides...)
	for _, rule := range rules {
		if rule.Applies == nil || !rule.Applies(result) {
			continue
		}
		if rule.Forces {
			result.CriticalBreach = true
			result.Method = MethodForced
		}
		if result.Score > rule.Cap {
			result.Score = rule.Cap
		}
		result.Overrides = append(result.Overrides, rule.Reason)
	}

	result.Score = clamp01(result.Score)
	return result
}

// weightedAverage blends scores with the configured per-indicator weights,
// renormalizing over the weights actually present. Indicators without a
// configured weight share the residual equally.
func weightedAverage(scores []IndicatorScore, weights map[string]float64) float64 {
	totalWeight := 0.0
	weightedSum := 0.0

	for _, s := range scores {
		w := 1.0
		if len(weights) > 0 {
			if cw, ok := weights[s.Indicator]; ok && cw > 0 {
				w = cw
			}
		}
		totalWeight += w
		weightedSum += w * s.Score
	}

	if totalWeight == 0 {
		return NeutralScore
	}
	return weightedSum / totalWeight
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
