package regime

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCreatesSeriesOnFirstUse(t *testing.T) {
	n := NewNormalizer(0, slog.Default())
	assert.Equal(t, 0, n.SeriesLen("vix_level"))

	n.Observe(context.Background(), "vix_level", 18.0)
	assert.Equal(t, 1, n.SeriesLen("vix_level"))
	assert.Equal(t, 0, n.SeriesLen("ted_spread"))
}

func TestZScoreStandardizesAgainstOwnSeries(t *testing.T) {
	n := NewNormalizer(0, slog.Default())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		n.Observe(ctx, "vix_level", float64(10+i))
	}

	// mean 14.5, values at the mean standardize to zero
	z, err := n.ZScore("vix_level", 14.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, z, 1e-9)

	above, err := n.ZScore("vix_level", 20.0)
	require.NoError(t, err)
	assert.Greater(t, above, 0.0)
}

func TestZScoreRejectsUnknownSeries(t *testing.T) {
	n := NewNormalizer(0, slog.Default())

	_, err := n.ZScore("ted_spread", 0.5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no observations")
}

func TestZScoreRejectsShortSeries(t *testing.T) {
	n := NewNormalizer(0, slog.Default())
	ctx := context.Background()

	for i := 0; i < MinObservationsForZScore-1; i++ {
		n.Observe(ctx, "vix_level", float64(i))
	}

	_, err := n.ZScore("vix_level", 5.0)
	assert.Error(t, err)
}

func TestZScoreRejectsDegenerateSeries(t *testing.T) {
	n := NewNormalizer(0, slog.Default())
	ctx := context.Background()

	for i := 0; i < MinObservationsForZScore; i++ {
		n.Observe(ctx, "vix_level", 16.0)
	}

	_, err := n.ZScore("vix_level", 16.0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "zero variance")
}

func TestNormalizerWindowEviction(t *testing.T) {
	n := NewNormalizer(5, slog.Default())
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		n.Observe(ctx, "vix_level", float64(i))
	}

	assert.Equal(t, 5, n.SeriesLen("vix_level"))
}

func TestNormalizeToEraShiftsByBaselineGap(t *testing.T) {
	n := NewNormalizer(0, slog.Default())

	historical, ok := Baseline(EraBrettonWoods, "sovereign_spread")
	require.True(t, ok)
	modern, ok := Baseline(EraModern, "sovereign_spread")
	require.True(t, ok)

	got := n.NormalizeToEra(2.0, "sovereign_spread", EraBrettonWoods)
	assert.InDelta(t, 2.0-historical+modern, got, 1e-9)
}

func TestNormalizeToEraPassesThroughUnknownIndicator(t *testing.T) {
	n := NewNormalizer(0, slog.Default())

	got := n.NormalizeToEra(42.0, "unknown_series", EraModern)
	assert.Equal(t, 42.0, got)
}
