package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "enrolpulse/internal/errors"
	"enrolpulse/internal/shared/testutil"
	apiv1 "enrolpulse/pkg/contracts/api/v1"
)

func newValidation(t *testing.T) *ValidationMiddleware {
	logger, _ := testutil.NewTestLogger(t)
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

func TestValidateStruct(t *testing.T) {
	v := newValidation(t)

	tests := []struct {
		name      string
		input     interface{}
		wantField string
	}{
		{"dashboard all", apiv1.DashboardRequest{}, ""},
		{"dashboard state", apiv1.DashboardRequest{State: "Tamil Nadu", Insights: true}, ""},
		{"dashboard control char", apiv1.DashboardRequest{State: "Kerala\x00"}, "state"},
		{"dashboard slash in name", apiv1.DashboardRequest{State: "Dadra/Nagar Haveli"}, ""},
		{"dashboard too long", apiv1.DashboardRequest{State: strings.Repeat("a", maxRegionLength+1)}, "state"},
		{"chart ok", apiv1.ChartRequest{Kind: "districts", State: "Punjab"}, ""},
		{"chart unknown kind", apiv1.ChartRequest{Kind: "pie"}, "kind"},
		{"export ok", apiv1.ExportRequest{State: "Punjab", Format: "xlsx"}, ""},
		{"export without state", apiv1.ExportRequest{Format: "csv"}, "state"},
		{"export for All", apiv1.ExportRequest{State: "All", Format: "csv"}, "state"},
		{"export bad format", apiv1.ExportRequest{State: "Punjab", Format: "pdf"}, "format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.input)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			require.NotEmpty(t, details.Errors)
			assert.Equal(t, tt.wantField, details.Errors[0].Field)
			assert.NotEmpty(t, details.Errors[0].Message)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	v := newValidation(t)
	handler := v.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{"get passes", http.MethodGet, "", http.StatusNoContent},
		{"post without body", http.MethodPost, "", http.StatusNoContent},
		{"post json", http.MethodPost, `{"force":true}`, http.StatusNoContent},
		{"post bad json", http.MethodPost, `{force`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/dataset/reload", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	t.Run("too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/dataset/reload", strings.NewReader("{}"))
		req.ContentLength = v.maxBodySize + 1
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestQueryParamValidator(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	qv := NewQueryParamValidator(logger, apierrors.NewErrorHandler(logger, false))

	t.Run("bool", func(t *testing.T) {
		rec := httptest.NewRecorder()
		got, ok := qv.ValidateBool(rec, httptest.NewRequest(http.MethodGet, "/?insights=1", nil), "insights", false)
		assert.True(t, ok)
		assert.True(t, got)

		got, ok = qv.ValidateBool(rec, httptest.NewRequest(http.MethodGet, "/", nil), "insights", false)
		assert.True(t, ok)
		assert.False(t, got)

		rec = httptest.NewRecorder()
		_, ok = qv.ValidateBool(rec, httptest.NewRequest(http.MethodGet, "/?insights=maybe", nil), "insights", false)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("enum", func(t *testing.T) {
		allowed := []string{"csv", "xlsx"}
		rec := httptest.NewRecorder()
		got, ok := qv.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?format=xlsx", nil), "format", allowed, "csv")
		assert.True(t, ok)
		assert.Equal(t, "xlsx", got)

		rec = httptest.NewRecorder()
		_, ok = qv.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?format=pdf", nil), "format", allowed, "csv")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var problem map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.EqualValues(t, 400, problem["status"])
	})
}
