package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, observer.LoggedEntry) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	h := LoggingMiddleware(zap.New(core))(routes())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	return w, entries[0]
}

func TestLoggingMiddleware_ValuationRequest(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/valuations?format=csv", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	w, entry := observed(t, req)
	fields := entry.ContextMap()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/v1/valuations", fields["path"])
	assert.Equal(t, "/api/v1/valuations", fields["route"])
	assert.EqualValues(t, 200, fields["status"])
	assert.Equal(t, "192.168.1.1:12345", fields["client_ip"])
	assert.Contains(t, fields, "duration_ms")
}

func TestLoggingMiddleware_UnknownPath(t *testing.T) {
	_, entry := observed(t, httptest.NewRequest("GET", "/api/v1/bonds", nil))
	fields := entry.ContextMap()

	assert.Equal(t, "/api/v1/bonds", fields["path"])
	assert.Equal(t, UnmatchedRoute, fields["route"])
	assert.EqualValues(t, 404, fields["status"])
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	w, entry := observed(t, httptest.NewRequest("POST", "/api/v1/profiles", nil))
	id := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, id, entry.ContextMap()["request_id"])

	req := httptest.NewRequest("POST", "/api/v1/profiles", nil)
	req.Header.Set(RequestIDHeader, "batch-42")
	w, entry = observed(t, req)
	assert.Equal(t, "batch-42", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "batch-42", entry.ContextMap()["request_id"])
}

func TestLoggingMiddleware_XForwardedFor(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.50, 10.0.0.2")
	req.RemoteAddr = "10.0.0.1:54321"

	_, entry := observed(t, req)
	assert.Equal(t, "203.0.113.50", entry.ContextMap()["client_ip"])
}
