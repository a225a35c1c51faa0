package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"validation", ErrValidation("state", "unknown region"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"invalid request", InvalidRequestWithError(errors.New("bad json")), http.StatusBadRequest, "INVALID_REQUEST"},
		{"not found", NotFoundError("chart"), http.StatusNotFound, "NOT_FOUND"},
		{"dataset", DatasetError(errors.New("no csv files")), http.StatusInternalServerError, "DATASET_UNAVAILABLE"},
		{"multiple validation", NewValidationErrors([]ValidationError{{Field: "state", Message: "required"}}), http.StatusBadRequest, "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.Equal(t, tt.err.Message, tt.err.Error())
		})
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, ErrValidation("state", "unknown region"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.ErrorCode)
}

func TestAppError(t *testing.T) {
	cause := errors.New("missing column: district")
	err := NewSchemaError("district ranking unavailable", cause).WithContext("column", "district")

	assert.Equal(t, "[SCHEMA] district ranking unavailable: missing column: district", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "district", err.Context["column"])

	wrapped := fmt.Errorf("render: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeSchema, appErr.Type)

	assert.Equal(t, "[NOT_FOUND] chart not found", NewNotFoundError("chart").Error())
	assert.Equal(t, ErrTypeDataSource, NewDataSourceError("x", nil).Type)
	assert.Equal(t, ErrTypeConfig, NewConfigError("x", nil).Type)
	assert.Equal(t, ErrTypeParsing, NewParsingError("x", nil).Type)
	assert.Equal(t, ErrTypeValidation, NewAppValidationError("x").Type)
}

func TestProblemDetailsMarshal(t *testing.T) {
	problem := NewProblemDetails(http.StatusUnprocessableEntity, TypeMissingColumn, "Missing Column", "district", "/api/dashboard").
		WithExtension("trace_id", "abc").
		WithExtension("type", "ignored")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeMissingColumn, decoded["type"], "standard fields win over extensions")
	assert.Equal(t, float64(422), decoded["status"])
	assert.Equal(t, "abc", decoded["trace_id"])
	assert.Equal(t, "/api/dashboard", decoded["instance"])
}
