package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macpulse/internal/mac"
)

func TestValidateDefaultThresholds(t *testing.T) {
	// The shipped table must always satisfy its own ordering rules
	require.NoError(t, ValidateThresholds(mac.DefaultThresholds()))
}

func TestValidateRejectsNonMonotonicLadder(t *testing.T) {
	set := mac.ThresholdSet{Pillars: []mac.PillarSpec{{
		Name: "liquidity",
		Indicators: []mac.ThresholdSpec{{
			Indicator:     "ted_spread",
			Ample:         0.6,
			Thin:          0.3, // out of order
			Breach:        1.0,
			LowerIsBetter: true,
		}},
	}}}

	err := ValidateThresholds(set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ted_spread")
}

func TestValidateRejectsNonNestedBands(t *testing.T) {
	set := mac.ThresholdSet{Pillars: []mac.PillarSpec{{
		Name: "valuation",
		Indicators: []mac.ThresholdSpec{{
			Indicator:  "term_premium",
			Ranged:     true,
			AmpleBand:  mac.Band{Low: 0.5, High: 2.5},
			ThinBand:   mac.Band{Low: 1.0, High: 3.5}, // does not contain ample
			BreachBand: mac.Band{Low: -1.5, High: 4.5},
		}},
	}}}

	err := ValidateThresholds(set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thin_band")
}

func TestValidateRejectsDuplicateIndicators(t *testing.T) {
	set := mac.ThresholdSet{Pillars: []mac.PillarSpec{
		{
			Name: "liquidity",
			Indicators: []mac.ThresholdSpec{
				{Indicator: "ted_spread", Ample: 0.3, Thin: 0.6, Breach: 1.0, LowerIsBetter: true},
			},
		},
		{
			Name: "volatility",
			Indicators: []mac.ThresholdSpec{
				{Indicator: "ted_spread", Ample: 0.3, Thin: 0.6, Breach: 1.0, LowerIsBetter: true},
			},
		},
	}}

	err := ValidateThresholds(set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate indicator")
}

func TestValidateRejectsEmptyTable(t *testing.T) {
	assert.Error(t, ValidateThresholds(mac.ThresholdSet{}))
}

func TestLoadThresholdsFromYAML(t *testing.T) {
	const doc = `pillars:
  - name: liquidity
    weight: 1.0
    indicators:
      - indicator: ted_spread
        ample: 0.3
        thin: 0.6
        breach: 1.0
        lower_is_better: true
        critical: true
  - name: policy
    indicators:
      - indicator: policy_rate_headroom
        ample: 3.0
        thin: 1.5
        breach: 0.25
        lower_is_better: false
`

	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	set, err := LoadThresholds(path)
	require.NoError(t, err)
	require.Len(t, set.Pillars, 2)
	assert.Equal(t, []string{"liquidity", "policy"}, set.PillarNames())
	assert.True(t, set.Pillars[0].Indicators[0].Critical)
	assert.False(t, set.Pillars[1].Indicators[0].LowerIsBetter)
}

func TestLoadThresholdsRejectsInvalidFile(t *testing.T) {
	const doc = `pillars:
  - name: liquidity
    indicators:
      - indicator: ted_spread
        ample: 1.0
        thin: 0.6
        breach: 0.3
        lower_is_better: true
`

	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := LoadThresholds(path)
	require.Error(t, err)
}

func TestLoadThresholdsMissingFile(t *testing.T) {
	_, err := LoadThresholds(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
