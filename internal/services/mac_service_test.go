package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macpulse/internal/mac"
	"macpulse/internal/regime"
)

func newMACService(t *testing.T) *MACService {
	t.Helper()
	calc := mac.NewCalculator(mac.DefaultThresholds(), regime.EraCaps{}, slog.Default())
	return NewMACService(calc, regime.NewNormalizer(0, slog.Default()), nil, slog.Default())
}

func TestCalculateRejectsEmptySnapshot(t *testing.T) {
	svc := newMACService(t)
	_, err := svc.Calculate(context.Background(), nil, time.Now(), nil)
	require.Error(t, err)
}

func TestCalculateAppliesModifier(t *testing.T) {
	svc := newMACService(t)

	indicators := map[string]float64{
		"ted_spread": 0.2,
		"vix_level":  14,
	}

	modifier := 0.9
	result, err := svc.Calculate(context.Background(), indicators, time.Now(), &modifier)
	require.NoError(t, err)
	require.NotNil(t, result.AdjustedScore)
	assert.InDelta(t, result.MACScore*0.9, *result.AdjustedScore, 1e-9)
}

func TestCalculateRejectsOutOfRangeModifier(t *testing.T) {
	svc := newMACService(t)

	modifier := 1.5
	_, err := svc.Calculate(context.Background(), map[string]float64{"vix_level": 14}, time.Now(), &modifier)
	require.Error(t, err)
}

func TestCalculateFeedsCompositeWindow(t *testing.T) {
	svc := newMACService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Calculate(context.Background(), map[string]float64{"vix_level": 14}, time.Now(), nil)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, svc.SeriesLen("mac_composite"))
}

func TestObserveAndZScore(t *testing.T) {
	svc := newMACService(t)

	ctx := context.Background()
	for i := 0; i < regime.MinObservationsForZScore; i++ {
		svc.Observe(ctx, "vix_level", float64(10+i))
	}

	z, err := svc.ZScore("vix_level", 14.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, z, 1e-9)

	_, err = svc.ZScore("unknown_series", 1.0)
	require.Error(t, err)
}
