package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "macpulse/internal/errors"
	"macpulse/internal/middleware"
	"macpulse/internal/services"
)

// CalculateRequest is the body of POST /api/mac/calculate
type CalculateRequest struct {
	// Indicators maps indicator names to raw observed values
	Indicators map[string]float64 `json:"indicators" validate:"required,min=1"`

	// AsOf is the observation date in 2006-01-02 form; empty means now
	AsOf string `json:"as_of,omitempty" validate:"omitempty,iso8601"`

	// Modifier is an optional external adjustment in [0,1] applied to the
	// composite after scoring
	Modifier *float64 `json:"modifier,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// MACHandler handles composite calculation requests
type MACHandler struct {
	service      *services.MACService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *middleware.ValidationMiddleware
}

// NewMACHandler creates a new MAC calculation handler
func NewMACHandler(service *services.MACService, logger *slog.Logger) *MACHandler {
	errorHandler := apierrors.NewErrorHandler(logger, false)
	return &MACHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "mac")),
		errorHandler: errorHandler,
		validation:   middleware.NewValidationMiddleware(logger, errorHandler),
	}
}

// RegisterRoutes registers the MAC calculation routes
func (h *MACHandler) RegisterRoutes(r chi.Router) {
	r.Route("/mac", func(r chi.Router) {
		r.Post("/calculate", h.Calculate)
	})
}

// Calculate handles POST /api/mac/calculate
func (h *MACHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var asOf time.Time
	if req.AsOf != "" {
		// The tag checks shape only; out-of-range components still fail here
		parsed, err := time.Parse("2006-01-02", req.AsOf)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("as_of", "date must use 2006-01-02 form"))
			return
		}
		asOf = parsed
	}

	h.logger.InfoContext(ctx, "calculating composite",
		slog.Int("indicators", len(req.Indicators)),
		slog.Bool("modifier_supplied", req.Modifier != nil),
	)

	result, err := h.service.Calculate(ctx, req.Indicators, asOf, req.Modifier)
	if err != nil {
		h.logger.ErrorContext(ctx, "calculation failed",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}
