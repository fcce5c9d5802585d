package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorInterface(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	assert.Equal(t, "Invalid request format", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
}

func TestNewWithDetails(t *testing.T) {
	err := CalculationError(fmt.Errorf("pillar aggregation failed"))
	assert.Equal(t, "CALCULATION_FAILED", err.ErrorCode)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, "pillar aggregation failed", err.Details)
}

func TestErrValidationCarriesField(t *testing.T) {
	err := ErrValidation("modifier", "must be between 0 and 1")

	details, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "modifier", details.Field)
}

func TestPredefinedErrorCatalog(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, ErrProxyNotCalibrated.StatusCode)
	assert.Equal(t, "PROXY_NOT_CALIBRATED", ErrProxyNotCalibrated.ErrorCode)

	assert.Equal(t, http.StatusNotFound, ErrScenarioNotFound.StatusCode)
	assert.Equal(t, "SCENARIO_NOT_FOUND", ErrScenarioNotFound.ErrorCode)
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := NewCalculationError("composite failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "CALCULATION")
	assert.Contains(t, err.Error(), "boom")
}

func TestProblemDetailsMarshalIncludesExtensions(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeScenarioNotFound, "Not Found", "scenario gfc_2009 not found", "/api/backtest")
	pd.WithExtension("scenario", "gfc_2009")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeScenarioNotFound, decoded["type"])
	assert.Equal(t, "gfc_2009", decoded["scenario"])
}
