package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "macpulse/internal/errors"
	"macpulse/internal/infrastructure"
	"macpulse/internal/mac"
	"macpulse/internal/regime"
)

// MACService drives MAC calculations for the transport layer. It owns the
// calculator and the regime normalizer; both are safe for concurrent use.
type MACService struct {
	calc    *mac.Calculator
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	// normMu serializes access to the normalizer, which is single-owner
	normMu     sync.Mutex
	normalizer *regime.Normalizer
}

// NewMACService creates a MAC service. Metrics may be nil when the metric
// pipeline is disabled.
func NewMACService(calc *mac.Calculator, normalizer *regime.Normalizer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *MACService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MACService{
		calc:       calc,
		normalizer: normalizer,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "mac_service")),
	}
}

// Calculate runs the full pipeline over an indicator snapshot. An optional
// external modifier in [0,1] is applied after composition; the result records
// whether the modifier itself caused the regime break.
func (s *MACService) Calculate(ctx context.Context, indicators map[string]float64, asOf time.Time, modifier *float64) (mac.MACResult, error) {
	if len(indicators) == 0 {
		return mac.MACResult{}, apperrors.NewAppValidationError("no indicators supplied")
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	start := time.Now()
	result := s.calc.Calculate(ctx, indicators, asOf)

	if modifier != nil {
		adjusted, err := s.calc.Engine().ApplyExternalModifier(result, *modifier)
		if err != nil {
			return mac.MACResult{}, apperrors.NewCalculationError("apply external modifier", err)
		}
		result = adjusted
	}

	// Feed the composite into its own rolling window so regime shifts in
	// the score itself are observable
	s.normMu.Lock()
	s.normalizer.Observe(ctx, "mac_composite", result.EffectiveScore())
	s.normMu.Unlock()

	s.recordMetrics(ctx, result, time.Since(start))

	return result, nil
}

// ZScore standardizes a raw indicator value against its rolling window
func (s *MACService) ZScore(indicator string, value float64) (float64, error) {
	s.normMu.Lock()
	defer s.normMu.Unlock()
	return s.normalizer.ZScore(indicator, value)
}

// Observe appends an indicator observation to its rolling window
func (s *MACService) Observe(ctx context.Context, indicator string, value float64) {
	s.normMu.Lock()
	defer s.normMu.Unlock()
	s.normalizer.Observe(ctx, indicator, value)
}

// SeriesLen reports how many observations a series window currently holds
func (s *MACService) SeriesLen(indicator string) int {
	s.normMu.Lock()
	defer s.normMu.Unlock()
	return s.normalizer.SeriesLen(indicator)
}

func (s *MACService) recordMetrics(ctx context.Context, result mac.MACResult, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}

	s.metrics.CalculationsTotal.Add(ctx, 1)
	s.metrics.CalculationDuration.Record(ctx, elapsed.Seconds())

	for _, pillar := range result.BreachFlags {
		s.metrics.PillarBreachesTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("pillar", pillar)))
	}
	if result.RegimeBreak {
		s.metrics.RegimeBreaksTotal.Add(ctx, 1)
	}
}
