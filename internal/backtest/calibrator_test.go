package backtest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macpulse/internal/mac"
	"macpulse/internal/regime"
)

func newTestCalibrator(t *testing.T) *Calibrator {
	t.Helper()
	calc := mac.NewCalculator(mac.DefaultThresholds(), regime.EraCaps{}, slog.Default())
	return NewCalibrator(calc, slog.Default())
}

func TestBuiltinLibraryFullPass(t *testing.T) {
	calib := newTestCalibrator(t)

	summary := calib.Run(context.Background(), BuiltinLibrary())

	assert.Equal(t, BuiltinLibraryVersion, summary.LibraryVersion)
	assert.Equal(t, 10, summary.Scenarios)
	assert.Equal(t, 1.0, summary.CalibrationFactor)

	for _, res := range summary.Results {
		assert.True(t, res.MACInRange, "%s: mac %.4f outside expected range", res.Scenario, res.MACScore)
		assert.True(t, res.BreachesMatch, "%s: breach flags %v", res.Scenario, res.BreachFlags)
		assert.True(t, res.HedgePredictionCorrect, "%s: hedge prediction wrong", res.Scenario)
	}

	assert.Equal(t, 1.0, summary.MACAccuracy)
	assert.Equal(t, 1.0, summary.BreachAccuracy)
	assert.Equal(t, 1.0, summary.HedgeAccuracy)
	assert.Equal(t, 1.0, summary.OverallPassRate)
}

func TestCovidScenarioDetail(t *testing.T) {
	// The deepest modern fixture: three forced pillar breaches, interaction
	// penalty engaged, composite in regime-break territory
	calib := newTestCalibrator(t)

	var covid *Scenario
	lib := BuiltinLibrary()
	for i := range lib.Scenarios {
		if lib.Scenarios[i].Name == "covid_2020" {
			covid = &lib.Scenarios[i]
		}
	}
	require.NotNil(t, covid)

	res := calib.evaluate(context.Background(), *covid)
	assert.InDelta(t, 0.0678, res.MACScore, 1e-3)
	assert.True(t, res.RegimeBreak)
	assert.ElementsMatch(t, []string{"liquidity", "positioning", "volatility"}, res.BreachFlags)
	assert.True(t, res.Passed)
}

func TestEraCapShapesInterwarScenario(t *testing.T) {
	// 1929 with era caps lands at the interwar policy ceiling; without them
	// the policy pillar would sit above 0.55 and shift the composite
	capped := newTestCalibrator(t)
	uncapped := NewCalibrator(
		mac.NewCalculator(mac.DefaultThresholds(), nil, slog.Default()),
		slog.Default(),
	)

	var crash *Scenario
	lib := BuiltinLibrary()
	for i := range lib.Scenarios {
		if lib.Scenarios[i].Name == "crash_of_1929" {
			crash = &lib.Scenarios[i]
		}
	}
	require.NotNil(t, crash)

	withCap := capped.evaluate(context.Background(), *crash)
	withoutCap := uncapped.evaluate(context.Background(), *crash)

	assert.True(t, withCap.Passed)
	assert.Greater(t, withoutCap.MACScore, withCap.MACScore)
}

func TestCalibrationFactorAffectsRangeOnly(t *testing.T) {
	calib := newTestCalibrator(t)
	require.NoError(t, calib.SetCalibrationFactor(0.5))

	summary := calib.Run(context.Background(), BuiltinLibrary())
	assert.Equal(t, 0.5, summary.CalibrationFactor)

	// Halving the composite pushes mid-range fixtures out of their expected
	// windows, but the breach axis is untouched
	assert.Less(t, summary.MACAccuracy, 1.0)
	assert.Equal(t, 1.0, summary.BreachAccuracy)
	assert.Equal(t, 1.0, summary.HedgeAccuracy)
}

func TestSetCalibrationFactorRejectsNonPositive(t *testing.T) {
	calib := newTestCalibrator(t)
	assert.Error(t, calib.SetCalibrationFactor(0))
	assert.Error(t, calib.SetCalibrationFactor(-1.5))
}

func TestRunEmptyLibrary(t *testing.T) {
	calib := newTestCalibrator(t)

	summary := calib.Run(context.Background(), Library{Version: "empty"})
	assert.Equal(t, 0, summary.Scenarios)
	assert.Equal(t, 0.0, summary.OverallPassRate)
	assert.Empty(t, summary.Results)
}

func TestLoadLibraryRoundTrip(t *testing.T) {
	const doc = `version: "test.1"
scenarios:
  - name: synthetic_calm
    date: "2024-06-28"
    indicators:
      vix_level: 14
      ted_spread: 0.2
    expected_mac_range:
      low: 0.7
      high: 1.0
    expected_breaches: []
    hedge_held: true
`

	path := filepath.Join(t.TempDir(), "library.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	lib, err := LoadLibrary(path)
	require.NoError(t, err)
	assert.Equal(t, "test.1", lib.Version)
	require.Len(t, lib.Scenarios, 1)

	s := lib.Scenarios[0]
	assert.Equal(t, "synthetic_calm", s.Name)
	assert.Equal(t, time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC), s.Date)
	assert.Equal(t, 14.0, s.Indicators["vix_level"])
	assert.True(t, s.ExpectedMACRange.Contains(0.85))
	assert.True(t, s.HedgeHeld)
}

func TestLoadLibraryRejectsBadDate(t *testing.T) {
	const doc = `version: "test.2"
scenarios:
  - name: bad_date
    date: "October 2008"
    indicators: {}
    expected_mac_range: {low: 0, high: 1}
`

	path := filepath.Join(t.TempDir(), "library.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := LoadLibrary(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_date")
}

func TestLoadLibraryRejectsInvertedRange(t *testing.T) {
	const doc = `version: "test.3"
scenarios:
  - name: inverted
    date: "2020-03-20"
    indicators: {}
    expected_mac_range: {low: 0.8, high: 0.2}
`

	path := filepath.Join(t.TempDir(), "library.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := LoadLibrary(path)
	require.Error(t, err)
}

func TestLoadLibraryMissingFile(t *testing.T) {
	_, err := LoadLibrary(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
