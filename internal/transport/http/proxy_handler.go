package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "macpulse/internal/errors"
	"macpulse/internal/middleware"
	"macpulse/internal/services"
)

// maxSpreadPercent bounds the spread query parameter; sovereign spreads
// beyond this are data errors, not market states
const maxSpreadPercent = 100.0

// CalibrateProxyRequest carries paired overlap observations for the fit
type CalibrateProxyRequest struct {
	Spreads   []float64 `json:"spreads"`
	MACScores []float64 `json:"mac_scores"`
}

// ProxyHandler handles sovereign-spread proxy requests
type ProxyHandler struct {
	service      *services.ProxyService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	queryParams  *middleware.QueryParamValidator
}

// NewProxyHandler creates a new sovereign proxy handler
func NewProxyHandler(service *services.ProxyService, logger *slog.Logger) *ProxyHandler {
	errorHandler := apierrors.NewErrorHandler(logger, false)
	return &ProxyHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "proxy")),
		errorHandler: errorHandler,
		queryParams:  middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// RegisterRoutes registers the proxy routes
func (h *ProxyHandler) RegisterRoutes(r chi.Router) {
	r.Route("/proxy", func(r chi.Router) {
		r.Post("/calibrate", h.Calibrate)
		r.Get("/estimate", h.Estimate)
		r.Get("/coefficients", h.Coefficients)
	})
}

// Calibrate handles POST /api/proxy/calibrate
func (h *ProxyHandler) Calibrate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CalibrateProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	coeffs, err := h.service.Calibrate(ctx, req.Spreads, req.MACScores)
	if err != nil {
		h.logger.WarnContext(ctx, "proxy calibration rejected",
			slog.String("error", err.Error()),
			slog.Int("observations", len(req.Spreads)),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, coeffs)
}

// Estimate handles GET /api/proxy/estimate?spread=<bps>
func (h *ProxyHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Query().Get("spread") == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("spread", "spread query parameter is required"))
		return
	}
	spread, ok := h.queryParams.ValidateFloat(w, r, "spread", 0, maxSpreadPercent, 0)
	if !ok {
		return
	}

	est, err := h.service.Estimate(ctx, spread)
	if err != nil {
		if errors.Is(err, services.ErrNotCalibrated) {
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusUnprocessableEntity,
				"PROXY_NOT_CALIBRATED",
				"sovereign proxy has no fitted coefficients yet",
			))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.CalculationError(err))
		return
	}

	render.JSON(w, r, est)
}

// Coefficients handles GET /api/proxy/coefficients
func (h *ProxyHandler) Coefficients(w http.ResponseWriter, r *http.Request) {
	coeffs, ok := h.service.Coefficients()
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusUnprocessableEntity,
			"PROXY_NOT_CALIBRATED",
			"sovereign proxy has no fitted coefficients yet",
		))
		return
	}

	render.JSON(w, r, coeffs)
}
