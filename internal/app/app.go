package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"macpulse/internal/backtest"
	"macpulse/internal/config"
	"macpulse/internal/errors"
	"macpulse/internal/infrastructure"
	"macpulse/internal/mac"
	customMiddleware "macpulse/internal/middleware"
	"macpulse/internal/regime"
	"macpulse/internal/services"
	"macpulse/internal/sovereign"
	handlers "macpulse/internal/transport/http"
)

const (
	Version = "v1.0.0"
	AppName = "MAC Pulse - Market Absorption Capacity Engine"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics

	Calculator      *mac.Calculator
	MACService      *services.MACService
	ProxyService    *services.ProxyService
	BacktestService *services.BacktestService
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the calculator and the service layer. A broken
// threshold table is a fatal startup error; a half-configured scoring engine
// must never serve traffic.
func (a *Application) initializeServices() error {
	thresholds := mac.DefaultThresholds()
	if a.Config.Engine.ThresholdsFile != "" {
		loaded, err := config.LoadThresholds(a.Config.Engine.ThresholdsFile)
		if err != nil {
			return fmt.Errorf("failed to load threshold table: %w", err)
		}
		thresholds = loaded
		a.Logger.Info("threshold table loaded",
			slog.String("path", a.Config.Engine.ThresholdsFile),
			slog.Int("pillars", len(thresholds.Pillars)))
	}

	var overrides mac.OverrideProvider
	if a.Config.Regime.EraCapsEnabled {
		overrides = regime.EraCaps{}
	}

	calc := mac.NewCalculator(thresholds, overrides, a.Logger)
	if err := calc.SetCalibrationFactor(a.Config.Engine.CalibrationFactor); err != nil {
		return fmt.Errorf("invalid calibration factor: %w", err)
	}
	if err := calc.SetMultiplierParams(mac.MultiplierParams{
		Alpha: a.Config.Engine.MultiplierAlpha,
		Beta:  a.Config.Engine.MultiplierBeta,
	}); err != nil {
		return fmt.Errorf("invalid multiplier params: %w", err)
	}
	a.Calculator = calc

	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	normalizer := regime.NewNormalizer(a.Config.Regime.WindowPeriods, a.Logger)
	a.MACService = services.NewMACService(calc, normalizer, metrics, a.Logger)
	a.ProxyService = services.NewProxyService(sovereign.NewCalibrator(a.Logger), metrics, a.Logger)

	// The backtest endpoint replays the builtin library with an uncalibrated
	// pipeline; the calibration factor is probed by the run itself
	backtestCalc := mac.NewCalculator(thresholds, overrides, a.Logger)
	backtestCalibrator := backtest.NewCalibrator(backtestCalc, a.Logger)
	if err := backtestCalibrator.SetCalibrationFactor(a.Config.Engine.CalibrationFactor); err != nil {
		return fmt.Errorf("invalid calibration factor: %w", err)
	}
	a.BacktestService = services.NewBacktestService(backtestCalibrator, backtest.BuiltinLibrary(), metrics, a.Logger)

	return nil
}

// setupRouter configures the middleware chain and the route tree
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Metrics(a.Metrics))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Prometheus endpoint stays outside the middleware group
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	validation := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))
		r.Use(customMiddleware.ContentTypeValidator("application/json"))
		r.Use(validation.ValidateRequest)

		healthHandler := handlers.NewHealthHandler(Version, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		handlers.NewMACHandler(a.MACService, a.Logger).RegisterRoutes(r)
		handlers.NewRegimeHandler(a.MACService, a.Logger).RegisterRoutes(r)
		handlers.NewProxyHandler(a.ProxyService, a.Logger).RegisterRoutes(r)
		handlers.NewBacktestHandler(a.BacktestService, a.Logger).RegisterRoutes(r)
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins:   a.Config.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}

// createServer builds the HTTP server from the validated configuration
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run runs the application until interrupted. The server and the signal
// watcher share an errgroup; whichever exits first tears the other down
// through context cancellation.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Logger.InfoContext(ctx, "starting server",
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutdown requested")
		return a.Stop(context.Background())
	})

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return g.Wait()
}
