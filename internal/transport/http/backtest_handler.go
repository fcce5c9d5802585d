package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "macpulse/internal/errors"
	"macpulse/internal/services"
)

// BacktestHandler handles scenario-library validation requests
type BacktestHandler struct {
	service      *services.BacktestService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(service *services.BacktestService, logger *slog.Logger) *BacktestHandler {
	return &BacktestHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "backtest")),
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
}

// RegisterRoutes registers the backtest routes
func (h *BacktestHandler) RegisterRoutes(r chi.Router) {
	r.Route("/backtest", func(r chi.Router) {
		r.Get("/run", h.Run)
		r.Get("/scenarios", h.Scenarios)
		r.Get("/scenarios/{name}", h.Scenario)
	})
}

// Run handles GET /api/backtest/run
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.logger.InfoContext(ctx, "running scenario library",
		slog.String("library_version", h.service.LibraryVersion()))

	render.JSON(w, r, h.service.Run(ctx))
}

// Scenarios handles GET /api/backtest/scenarios
func (h *BacktestHandler) Scenarios(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"library_version": h.service.LibraryVersion(),
		"scenarios":       h.service.ScenarioNames(),
	})
}

// Scenario handles GET /api/backtest/scenarios/{name}
func (h *BacktestHandler) Scenario(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	scenario, err := h.service.Scenario(name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, scenario)
}
