package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macpulse/internal/backtest"
	"macpulse/internal/mac"
	"macpulse/internal/regime"
)

func newBacktestService(t *testing.T) *BacktestService {
	t.Helper()
	calc := mac.NewCalculator(mac.DefaultThresholds(), regime.EraCaps{}, slog.Default())
	calibrator := backtest.NewCalibrator(calc, slog.Default())
	return NewBacktestService(calibrator, backtest.BuiltinLibrary(), nil, slog.Default())
}

func TestBacktestServiceRun(t *testing.T) {
	svc := newBacktestService(t)

	summary := svc.Run(context.Background())
	assert.Equal(t, 10, summary.Scenarios)
	assert.Equal(t, 1.0, summary.OverallPassRate)
	assert.Equal(t, svc.LibraryVersion(), summary.LibraryVersion)
}

func TestScenarioLookup(t *testing.T) {
	svc := newBacktestService(t)

	sc, err := svc.Scenario("gfc_2008")
	require.NoError(t, err)
	assert.Equal(t, "gfc_2008", sc.Name)

	_, err = svc.Scenario("tulip_mania_1637")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestScenarioNamesOrdered(t *testing.T) {
	svc := newBacktestService(t)

	names := svc.ScenarioNames()
	require.Len(t, names, 10)
	assert.Equal(t, "panic_of_1907", names[0])
	assert.Equal(t, "gilt_crisis_2022", names[9])
}
