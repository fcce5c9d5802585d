package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	apperrors "macpulse/internal/errors"
	"macpulse/internal/infrastructure"
	"macpulse/internal/sovereign"
)

// ErrNotCalibrated is returned when an estimate is requested before any
// successful fit
var ErrNotCalibrated = errors.New("sovereign proxy not calibrated")

// ProxyService guards the fitted proxy coefficients. Fits replace the held
// coefficients atomically; estimates read the current fit.
type ProxyService struct {
	calibrator *sovereign.Calibrator
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger

	mu     sync.RWMutex
	coeffs *sovereign.Coefficients
}

// NewProxyService creates a proxy service. Metrics may be nil.
func NewProxyService(calibrator *sovereign.Calibrator, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ProxyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProxyService{
		calibrator: calibrator,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "proxy_service")),
	}
}

// Calibrate fits the proxy mapping over an overlap period and retains the
// coefficients for subsequent estimates
func (s *ProxyService) Calibrate(ctx context.Context, spreads, macScores []float64) (sovereign.Coefficients, error) {
	coeffs, err := s.calibrator.Fit(ctx, spreads, macScores)
	if err != nil {
		return sovereign.Coefficients{}, apperrors.NewCalibrationError("proxy fit rejected", err)
	}

	s.mu.Lock()
	s.coeffs = &coeffs
	s.mu.Unlock()

	return coeffs, nil
}

// Estimate maps a spread reading through the current fit
func (s *ProxyService) Estimate(ctx context.Context, spread float64) (sovereign.Estimate, error) {
	s.mu.RLock()
	coeffs := s.coeffs
	s.mu.RUnlock()

	if coeffs == nil {
		return sovereign.Estimate{}, ErrNotCalibrated
	}

	est := coeffs.Estimate(spread)

	if s.metrics != nil {
		s.metrics.ProxyEstimatesTotal.Add(ctx, 1)
	}

	s.logger.DebugContext(ctx, "proxy estimate served",
		slog.Float64("spread", spread),
		slog.Float64("mac", est.MAC),
	)

	return est, nil
}

// Coefficients returns the current fit, if any
func (s *ProxyService) Coefficients() (sovereign.Coefficients, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.coeffs == nil {
		return sovereign.Coefficients{}, false
	}
	return *s.coeffs, true
}
