package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "macpulse/internal/errors"
)

func newValidation(t *testing.T) *ValidationMiddleware {
	t.Helper()
	return NewValidationMiddleware(slog.Default(), apierrors.NewErrorHandler(slog.Default(), false))
}

func TestValidateRequestRejectsInvalidJSON(t *testing.T) {
	m := newValidation(t)
	handler := m.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/mac/calculate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateRequestPassesGET(t *testing.T) {
	m := newValidation(t)
	called := false
	handler := m.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/mac", nil))
	assert.True(t, called)
}

func TestValidateStruct(t *testing.T) {
	m := newValidation(t)

	type req struct {
		Modifier float64 `json:"modifier" validate:"gte=0,lte=1"`
	}

	assert.NoError(t, m.ValidateStruct(req{Modifier: 0.8}))

	err := m.ValidateStruct(req{Modifier: 1.4})
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)
}

func TestIndicatorNameValidator(t *testing.T) {
	m := newValidation(t)

	type req struct {
		Name string `json:"name" validate:"indicator_name"`
	}

	assert.NoError(t, m.ValidateStruct(req{Name: "ted_spread"}))
	assert.Error(t, m.ValidateStruct(req{Name: "TED Spread"}))
	assert.Error(t, m.ValidateStruct(req{Name: ""}))
}

func TestValidateStructHandlesRegimeRequestTags(t *testing.T) {
	m := newValidation(t)

	// Mirrors the transport-layer observe/zscore bodies; the custom tag must
	// be registered or validator.Struct panics
	type req struct {
		Indicator string  `json:"indicator" validate:"required,indicator_name"`
		Value     float64 `json:"value"`
	}

	assert.NotPanics(t, func() {
		assert.NoError(t, m.ValidateStruct(req{Indicator: "vix_level", Value: 14}))
	})

	err := m.ValidateStruct(req{Indicator: "VIX Level!", Value: 14})
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)
}

func TestContentTypeValidator(t *testing.T) {
	handler := ContentTypeValidator("application/json")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/mac/calculate", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/mac/calculate", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
