package sovereign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

const (
	// MinOverlapObservations is the fewest overlap points a quadratic fit
	// is attempted on; a 3-parameter fit below this is unidentifiable
	MinOverlapObservations = 10

	// ConfidenceZ80 is the standard normal quantile for a two-sided 80%
	// interval
	ConfidenceZ80 = 1.28
)

// ErrUnderdetermined is returned when too few overlap observations are
// supplied to identify the quadratic. Fitting fails closed rather than
// producing a meaningless curve.
var ErrUnderdetermined = errors.New("sovereign: insufficient overlap observations for quadratic fit")

// Coefficients is a fitted proxy mapping. Read-only once produced.
type Coefficients struct {
	A            float64   `json:"a"`
	B            float64   `json:"b"`
	C            float64   `json:"c"`
	ResidualSE   float64   `json:"residual_se"`
	Observations int       `json:"observations"`
	FittedAt     time.Time `json:"fitted_at"`
}

// Estimate is an aggregate-only MAC estimate from a single spread reading
type Estimate struct {
	MAC   float64 `json:"mac"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	// AggregateOnly flags that no pillar decomposition backs this number
	AggregateOnly bool `json:"aggregate_only"`
}

// Calibrator fits proxy coefficients over an overlap period
type Calibrator struct {
	logger *slog.Logger
}

// NewCalibrator creates a proxy calibrator
func NewCalibrator(logger *slog.Logger) *Calibrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calibrator{logger: logger}
}

// Fit estimates MAC = a - b*SS + c*SS^2 by ordinary least squares over
// paired (spread, mac) overlap observations. The 3x3 normal-equation system
// is solved directly with Gaussian elimination and partial pivoting.
func (c *Calibrator) Fit(ctx context.Context, spreads, macScores []float64) (Coefficients, error) {
	if len(spreads) != len(macScores) {
		return Coefficients{}, fmt.Errorf("mismatched overlap series: %d spreads vs %d mac scores", len(spreads), len(macScores))
	}
	n := len(spreads)
	if n < MinOverlapObservations {
		return Coefficients{}, fmt.Errorf("%w: %d < %d", ErrUnderdetermined, n, MinOverlapObservations)
	}

	// Normal equations X'X beta = X'y for the basis (1, -SS, SS^2)
	var s0, s1, s2, s3, s4 float64
	var t0, t1, t2 float64
	for i := 0; i < n; i++ {
		ss := spreads[i]
		y := macScores[i]
		ss2 := ss * ss

		s0++
		s1 += ss
		s2 += ss2
		s3 += ss2 * ss
		s4 += ss2 * ss2

		t0 += y
		t1 += ss * y
		t2 += ss2 * y
	}

	// Solve for (a, b, c) in MAC = a - b*SS + c*SS^2, i.e. columns
	// (1, -SS, SS^2)
	m := [3][4]float64{
		{s0, -s1, s2, t0},
		{-s1, s2, -s3, -t1},
		{s2, -s3, s4, t2},
	}

	sol, err := solve3(m)
	if err != nil {
		return Coefficients{}, fmt.Errorf("solve normal equations: %w", err)
	}

	// Residual standard error with 3 fitted parameters
	ssr := 0.0
	for i := 0; i < n; i++ {
		fitted := sol[0] - sol[1]*spreads[i] + sol[2]*spreads[i]*spreads[i]
		r := macScores[i] - fitted
		ssr += r * r
	}
	se := math.Sqrt(ssr / float64(n-3))

	coeffs := Coefficients{
		A:            sol[0],
		B:            sol[1],
		C:            sol[2],
		ResidualSE:   se,
		Observations: n,
		FittedAt:     time.Now().UTC(),
	}

	c.logger.InfoContext(ctx, "sovereign proxy calibrated",
		slog.Int("observations", n),
		slog.Float64("a", coeffs.A),
		slog.Float64("b", coeffs.B),
		slog.Float64("c", coeffs.C),
		slog.Float64("residual_se", se),
	)

	return coeffs, nil
}

// Estimate maps a spread reading through the fitted quadratic. The point
// estimate and the 80% interval bounds are clamped to [0,1]; the result is
// aggregate-only by construction.
func (co Coefficients) Estimate(spread float64) Estimate {
	point := co.A - co.B*spread + co.C*spread*spread
	margin := ConfidenceZ80 * co.ResidualSE

	return Estimate{
		MAC:           clamp01(point),
		Lower:         clamp01(point - margin),
		Upper:         clamp01(point + margin),
		AggregateOnly: true,
	}
}

// solve3 solves a 3x3 augmented linear system with Gaussian elimination and
// partial pivoting
func solve3(m [3][4]float64) ([3]float64, error) {
	var sol [3]float64

	for col := 0; col < 3; col++ {
		// Pivot on the largest remaining magnitude in this column
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return sol, fmt.Errorf("singular normal-equation matrix at column %d", col)
		}
		m[col], m[pivot] = m[pivot], m[col]

		for row := col + 1; row < 3; row++ {
			factor := m[row][col] / m[col][col]
			for k := col; k < 4; k++ {
				m[row][k] -= factor * m[col][k]
			}
		}
	}

	for row := 2; row >= 0; row-- {
		v := m[row][3]
		for k := row + 1; k < 3; k++ {
			v -= m[row][k] * sol[k]
		}
		sol[row] = v / m[row][row]
	}

	return sol, nil
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
