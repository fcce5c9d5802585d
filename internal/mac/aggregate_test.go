package mac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoresOf(values ...float64) []IndicatorScore {
	scores := make([]IndicatorScore, len(values))
	for i, v := range values {
		scores[i] = IndicatorScore{Indicator: indicatorName(i), Score: v}
	}
	return scores
}

func indicatorName(i int) string {
	return string(rune('a' + i))
}

func TestAggregatePillarDispersionSelection(t *testing.T) {
	// Dispersion 0.7 > 0.35: one severely stressed dimension dominates
	result := AggregatePillar("liquidity", scoresOf(0.9, 0.9, 0.2), nil, nil)
	assert.Equal(t, MethodMin, result.Method)
	assert.Equal(t, 0.2, result.Score)

	// Dispersion 0.05: tight cluster blends normally
	result = AggregatePillar("valuation", scoresOf(0.6, 0.65, 0.62), nil, nil)
	assert.Equal(t, MethodWeightedAvg, result.Method)
	assert.InDelta(t, 0.6233, result.Score, 1e-3)
}

func TestAggregatePillarWeights(t *testing.T) {
	scores := scoresOf(0.8, 0.6)
	weights := map[string]float64{"a": 3.0, "b": 1.0}

	result := AggregatePillar("volatility", scores, weights, nil)
	assert.Equal(t, MethodWeightedAvg, result.Method)
	assert.InDelta(t, 0.75, result.Score, 1e-12)
}

func TestAggregatePillarForcedBreach(t *testing.T) {
	// A blended value well above the floor is still clamped once a
	// critical constituent breaches on its own
	scores := []IndicatorScore{
		{Indicator: "vix", Score: 0.1, Critical: true},
		{Indicator: "move", Score: 0.35},
		{Indicator: "vvix", Score: 0.4},
	}

	result := AggregatePillar("volatility", scores, nil, nil)
	require.True(t, result.CriticalBreach)
	assert.Equal(t, MethodForced, result.Method)
	assert.LessOrEqual(t, result.Score, ForcedBreachCap)
	assert.Contains(t, result.Overrides, "critical_indicator_breach")
}

func TestAggregatePillarCriticalAboveFloorDoesNotForce(t *testing.T) {
	scores := []IndicatorScore{
		{Indicator: "vix", Score: 0.25, Critical: true},
		{Indicator: "move", Score: 0.3},
	}

	result := AggregatePillar("volatility", scores, nil, nil)
	assert.False(t, result.CriticalBreach)
	assert.Equal(t, MethodWeightedAvg, result.Method)
}

func TestAggregatePillarMissingConstituent(t *testing.T) {
	scores := []IndicatorScore{
		{Indicator: "cds_spread", Score: 0.7},
		{Indicator: "em_flows", Score: NeutralScore, Missing: true},
	}

	result := AggregatePillar("contagion", scores, nil, nil)
	assert.True(t, result.LowConfidence)
	assert.InDelta(t, 0.6, result.Score, 1e-12)
}

func TestAggregatePillarEmpty(t *testing.T) {
	result := AggregatePillar("policy", nil, nil, nil)
	assert.Equal(t, NeutralScore, result.Score)
	assert.True(t, result.LowConfidence)
}

func TestAggregatePillarEraCapChain(t *testing.T) {
	// Era caps run after base aggregation in declaration order, and each
	// applied rule records its reason
	goldStandardCap := OverrideRule{
		Reason: "era_cap_gold_standard_policy",
		Cap:    0.6,
		Applies: func(pr PillarResult) bool {
			return pr.Pillar == "policy"
		},
	}

	result := AggregatePillar("policy", scoresOf(0.9, 0.85, 0.95), nil, []OverrideRule{goldStandardCap})
	assert.Equal(t, 0.6, result.Score)
	assert.Equal(t, MethodWeightedAvg, result.Method, "era cap does not change the recorded method")
	assert.Equal(t, []string{"era_cap_gold_standard_policy"}, result.Overrides)

	// A rule whose cap exceeds the composite leaves the score alone but is
	// not recorded either
	looseCap := OverrideRule{
		Reason:  "era_cap_loose",
		Cap:     0.99,
		Applies: func(pr PillarResult) bool { return true },
	}
	result = AggregatePillar("policy", scoresOf(0.9), nil, []OverrideRule{looseCap})
	assert.InDelta(t, 0.9, result.Score, 1e-12)
	assert.Contains(t, result.Overrides, "era_cap_loose")
}

func TestAggregatePillarScoreBounded(t *testing.T) {
	for _, scores := range [][]IndicatorScore{
		scoresOf(0, 0, 0),
		scoresOf(1, 1, 1),
		scoresOf(0, 1),
		scoresOf(0.5),
	} {
		result := AggregatePillar("any", scores, nil, nil)
		require.GreaterOrEqual(t, result.Score, 0.0)
		require.LessOrEqual(t, result.Score, 1.0)
	}
}
