package sovereign

import (
	"context"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitRecoversKnownCoefficients(t *testing.T) {
	// Synthetic overlap period from a known quadratic plus small Gaussian
	// noise; the fit must recover the generating coefficients
	const (
		trueA = 0.85
		trueB = 0.12
		trueC = 0.004
	)

	rng := rand.New(rand.NewSource(42))
	var spreads, macs []float64
	for i := 0; i < 80; i++ {
		ss := 0.5 + 9.5*rng.Float64() // spreads between 0.5 and 10
		mac := trueA - trueB*ss + trueC*ss*ss + rng.NormFloat64()*0.01
		spreads = append(spreads, ss)
		macs = append(macs, mac)
	}

	calib := NewCalibrator(slog.Default())
	coeffs, err := calib.Fit(context.Background(), spreads, macs)
	require.NoError(t, err)

	assert.InDelta(t, trueA, coeffs.A, 0.05)
	assert.InDelta(t, trueB, coeffs.B, 0.05)
	assert.InDelta(t, trueC, coeffs.C, 0.05)
	assert.Equal(t, 80, coeffs.Observations)
	assert.Less(t, coeffs.ResidualSE, 0.02)
}

func TestFitExactQuadratic(t *testing.T) {
	// Noise-free data: residual SE collapses to ~0 and the recovery is
	// essentially exact
	var spreads, macs []float64
	for i := 0; i < 12; i++ {
		ss := float64(i)
		spreads = append(spreads, ss)
		macs = append(macs, 0.9-0.1*ss+0.003*ss*ss)
	}

	coeffs, err := NewCalibrator(nil).Fit(context.Background(), spreads, macs)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, coeffs.A, 1e-8)
	assert.InDelta(t, 0.1, coeffs.B, 1e-8)
	assert.InDelta(t, 0.003, coeffs.C, 1e-8)
	assert.InDelta(t, 0.0, coeffs.ResidualSE, 1e-8)
}

func TestFitFailsClosed(t *testing.T) {
	calib := NewCalibrator(nil)

	// Nine points: one short of identifiability
	spreads := make([]float64, MinOverlapObservations-1)
	macs := make([]float64, MinOverlapObservations-1)
	for i := range spreads {
		spreads[i] = float64(i)
		macs[i] = 0.5
	}

	_, err := calib.Fit(context.Background(), spreads, macs)
	require.ErrorIs(t, err, ErrUnderdetermined)
}

func TestFitMismatchedSeries(t *testing.T) {
	_, err := NewCalibrator(nil).Fit(context.Background(), []float64{1, 2, 3}, []float64{0.5, 0.6})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnderdetermined)
}

func TestFitDegenerateSpreads(t *testing.T) {
	// A constant spread column makes the normal equations singular
	spreads := make([]float64, 20)
	macs := make([]float64, 20)
	for i := range spreads {
		spreads[i] = 2.0
		macs[i] = 0.6
	}

	_, err := NewCalibrator(nil).Fit(context.Background(), spreads, macs)
	require.Error(t, err)
}

func TestEstimateInterval(t *testing.T) {
	coeffs := Coefficients{A: 0.8, B: 0.1, C: 0.002, ResidualSE: 0.05, Observations: 40}

	est := coeffs.Estimate(2.0)
	assert.True(t, est.AggregateOnly, "proxy estimates never carry a pillar decomposition")
	assert.InDelta(t, 0.608, est.MAC, 1e-9)
	assert.InDelta(t, 0.608-1.28*0.05, est.Lower, 1e-9)
	assert.InDelta(t, 0.608+1.28*0.05, est.Upper, 1e-9)
}

func TestEstimateClamped(t *testing.T) {
	coeffs := Coefficients{A: 0.9, B: 0.15, C: 0.0, ResidualSE: 0.1}

	// Extreme spread drives the raw quadratic negative; estimates stay in
	// the score domain
	est := coeffs.Estimate(20.0)
	assert.Equal(t, 0.0, est.MAC)
	assert.Equal(t, 0.0, est.Lower)

	est = coeffs.Estimate(0.0)
	assert.LessOrEqual(t, est.Upper, 1.0)
}
