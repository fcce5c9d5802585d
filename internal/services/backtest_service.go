package services

import (
	"context"
	"fmt"
	"log/slog"

	"macpulse/internal/backtest"
	apperrors "macpulse/internal/errors"
	"macpulse/internal/infrastructure"
)

// BacktestService runs the validation calibrator over scenario libraries
type BacktestService struct {
	calibrator *backtest.Calibrator
	library    backtest.Library
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
}

// NewBacktestService creates a backtest service over a fixed library
func NewBacktestService(calibrator *backtest.Calibrator, library backtest.Library, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *BacktestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BacktestService{
		calibrator: calibrator,
		library:    library,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "backtest_service")),
	}
}

// Run replays the whole configured library
func (s *BacktestService) Run(ctx context.Context) backtest.Summary {
	summary := s.calibrator.Run(ctx, s.library)

	if s.metrics != nil {
		s.metrics.BacktestRunsTotal.Add(ctx, 1)
	}

	return summary
}

// Scenario returns one named fixture from the configured library
func (s *BacktestService) Scenario(name string) (backtest.Scenario, error) {
	for _, sc := range s.library.Scenarios {
		if sc.Name == name {
			return sc, nil
		}
	}
	return backtest.Scenario{}, apperrors.NewNotFoundError(fmt.Sprintf("scenario %q", name))
}

// ScenarioNames lists the configured fixtures in library order
func (s *BacktestService) ScenarioNames() []string {
	names := make([]string, len(s.library.Scenarios))
	for i, sc := range s.library.Scenarios {
		names[i] = sc.Name
	}
	return names
}

// LibraryVersion reports the configured library version
func (s *BacktestService) LibraryVersion() string {
	return s.library.Version
}
