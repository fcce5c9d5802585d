package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macpulse/internal/mac"
	"macpulse/internal/regime"
	"macpulse/internal/services"
)

func newMACRouter(t *testing.T) chi.Router {
	t.Helper()
	calc := mac.NewCalculator(mac.DefaultThresholds(), regime.EraCaps{}, slog.Default())
	svc := services.NewMACService(calc, regime.NewNormalizer(0, slog.Default()), nil, slog.Default())

	r := chi.NewRouter()
	NewMACHandler(svc, slog.Default()).RegisterRoutes(r)
	NewRegimeHandler(svc, slog.Default()).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router chi.Router, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCalculateEndpoint(t *testing.T) {
	router := newMACRouter(t)

	rec := postJSON(t, router, "/mac/calculate", CalculateRequest{
		Indicators: map[string]float64{
			"ted_spread": 0.2,
			"vix_level":  14,
		},
		AsOf: "2024-06-28",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var result mac.MACResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Greater(t, result.MACScore, mac.BreachFloor)
	assert.False(t, result.RegimeBreak)
	require.NotNil(t, result.Multiplier)
}

func TestCalculateEndpointWithModifier(t *testing.T) {
	router := newMACRouter(t)

	modifier := 0.8
	rec := postJSON(t, router, "/mac/calculate", CalculateRequest{
		Indicators: map[string]float64{"vix_level": 14},
		Modifier:   &modifier,
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var result mac.MACResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotNil(t, result.AdjustedScore)
	assert.InDelta(t, result.MACScore*0.8, *result.AdjustedScore, 1e-9)
}

func TestCalculateEndpointRejectsEmptyIndicators(t *testing.T) {
	router := newMACRouter(t)

	rec := postJSON(t, router, "/mac/calculate", CalculateRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "/errors/validation")
}

func TestCalculateEndpointRejectsOutOfRangeModifier(t *testing.T) {
	router := newMACRouter(t)

	modifier := 1.5
	rec := postJSON(t, router, "/mac/calculate", CalculateRequest{
		Indicators: map[string]float64{"vix_level": 14},
		Modifier:   &modifier,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "/errors/validation")
}

func TestCalculateEndpointRejectsBadDate(t *testing.T) {
	router := newMACRouter(t)

	rec := postJSON(t, router, "/mac/calculate", CalculateRequest{
		Indicators: map[string]float64{"vix_level": 14},
		AsOf:       "October 2008",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateEndpointRejectsMalformedJSON(t *testing.T) {
	router := newMACRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/mac/calculate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestObserveAndZScoreEndpoints(t *testing.T) {
	router := newMACRouter(t)

	for i := 0; i < regime.MinObservationsForZScore; i++ {
		rec := postJSON(t, router, "/regime/observe", ObserveRequest{
			Indicator: "vix_level",
			Value:     float64(10 + i),
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := postJSON(t, router, "/regime/zscore", ZScoreRequest{
		Indicator: "vix_level",
		Value:     14.5,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 0.0, resp["z_score"].(float64), 1e-9)
}

func TestZScoreEndpointInsufficientObservations(t *testing.T) {
	router := newMACRouter(t)

	rec := postJSON(t, router, "/regime/zscore", ZScoreRequest{
		Indicator: "never_observed",
		Value:     1.0,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestObserveEndpointRequiresIndicator(t *testing.T) {
	router := newMACRouter(t)

	rec := postJSON(t, router, "/regime/observe", ObserveRequest{Value: 1.0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestObserveEndpointRejectsMalformedIndicatorName(t *testing.T) {
	router := newMACRouter(t)

	rec := postJSON(t, router, "/regime/observe", ObserveRequest{
		Indicator: "VIX Level!",
		Value:     14.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "/errors/validation")
}
