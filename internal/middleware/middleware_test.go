package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okoa/pkg/logger"
)

func TestCorrelationID_MintsAndPropagates(t *testing.T) {
	var seen string
	handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := RequestIDFromContext(r.Context())
		require.True(t, ok)
		seen = id
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestCorrelationID_KeepsProvidedID(t *testing.T) {
	handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := RequestIDFromContext(r.Context())
		assert.Equal(t, "req-abc", id)
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "req-abc", w.Header().Get("X-Request-ID"))
}

func TestLoggingMiddleware_RecordsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("test", &buf)

	handler := CorrelationID(NewLoggingMiddleware(log).Log(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})))

	req := httptest.NewRequest("GET", "/api/v1/application", nil)
	req.Header.Set("X-Request-ID", "req-xyz")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-xyz", entry["request_id"])
	assert.Equal(t, "/api/v1/application", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
}

func TestSession_PrefersCookieOverHeader(t *testing.T) {
	handler := Session("okoa_session")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := SessionIDFromContext(r.Context())
		assert.Equal(t, "cookie-id", id)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "okoa_session", Value: "cookie-id"})
	req.Header.Set("X-Session-ID", "header-id")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "cookie-id", w.Header().Get("X-Session-ID"))
}
