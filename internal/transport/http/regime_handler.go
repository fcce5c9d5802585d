package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "macpulse/internal/errors"
	"macpulse/internal/middleware"
	"macpulse/internal/services"
)

// ObserveRequest appends one reading to a named indicator series
type ObserveRequest struct {
	Indicator string  `json:"indicator" validate:"required,indicator_name"`
	Value     float64 `json:"value"`
}

// ZScoreRequest standardizes a raw value against a series' trailing window
type ZScoreRequest struct {
	Indicator string  `json:"indicator" validate:"required,indicator_name"`
	Value     float64 `json:"value"`
}

// RegimeHandler feeds and queries the rolling normalizer windows
type RegimeHandler struct {
	service      *services.MACService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *middleware.ValidationMiddleware
}

// NewRegimeHandler creates a new regime normalizer handler
func NewRegimeHandler(service *services.MACService, logger *slog.Logger) *RegimeHandler {
	errorHandler := apierrors.NewErrorHandler(logger, false)
	return &RegimeHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "regime")),
		errorHandler: errorHandler,
		validation:   middleware.NewValidationMiddleware(logger, errorHandler),
	}
}

// RegisterRoutes registers the regime routes
func (h *RegimeHandler) RegisterRoutes(r chi.Router) {
	r.Route("/regime", func(r chi.Router) {
		r.Post("/observe", h.Observe)
		r.Post("/zscore", h.ZScore)
	})
}

// Observe handles POST /api/regime/observe
func (h *RegimeHandler) Observe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ObserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.service.Observe(ctx, req.Indicator, req.Value)

	render.JSON(w, r, map[string]interface{}{
		"indicator":  req.Indicator,
		"series_len": h.service.SeriesLen(req.Indicator),
	})
}

// ZScore handles POST /api/regime/zscore
func (h *RegimeHandler) ZScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ZScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	z, err := h.service.ZScore(req.Indicator, req.Value)
	if err != nil {
		h.logger.DebugContext(ctx, "z-score unavailable",
			slog.String("indicator", req.Indicator),
			slog.String("error", err.Error()),
		)
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusUnprocessableEntity,
			"INSUFFICIENT_OBSERVATIONS",
			err.Error(),
		))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"indicator": req.Indicator,
		"value":     req.Value,
		"z_score":   z,
	})
}
