package errors

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"enrolpulse/internal/shared/testutil"
)

func TestErrorMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantLevel  slog.Level
	}{
		{
			name:       "success logged at info",
			handler:    func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) },
			wantStatus: http.StatusOK,
			wantLevel:  slog.LevelInfo,
		},
		{
			name:       "client error logged at warn",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadRequest) },
			wantStatus: http.StatusBadRequest,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "panic becomes problem response",
			handler:    func(w http.ResponseWriter, r *http.Request) { panic("render exploded") },
			wantStatus: http.StatusInternalServerError,
			wantLevel:  slog.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := testutil.NewTestLogger(t)
			mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

			w := httptest.NewRecorder()
			mw.Handler(tt.handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?state=X", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			testutil.AssertLogContains(t, handler, tt.wantLevel, "http request")
			testutil.AssertLogAttr(t, handler, "query", "state=X")
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	mw := RecoveryMiddleware(NewErrorHandler(logger, false))

	w := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), TypeInternal)
	testutil.AssertLogContains(t, handler, slog.LevelError, "panic recovered")
}
