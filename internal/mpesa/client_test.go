package mpesa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okoa/pkg/config"
	pkgerrors "okoa/pkg/errors"
	"okoa/pkg/logger"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.GatewayConfig{
		BaseURL:         baseURL,
		Timeout:         2 * time.Second,
		ReferencePrefix: "PROC_",
	}, logger.NewNop())
}

func TestSTKPush_Accepted(t *testing.T) {
	var received stkPushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/stk-push", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"prompt sent"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.STKPush(context.Background(), "254712345678", 200, "PROC_ABC")
	require.NoError(t, err)

	assert.Equal(t, "254712345678", received.Phone)
	assert.Equal(t, int64(200), received.Amount)
	assert.Equal(t, "PROC_ABC", received.Reference)
}

func TestSTKPush_GatewayErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Insufficient merchant float"}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).STKPush(context.Background(), "254712345678", 200, "PROC_ABC")
	require.Error(t, err)
	assert.EqualError(t, err, "Insufficient merchant float")
}

func TestSTKPush_GatewayErrorWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).STKPush(context.Background(), "254712345678", 200, "PROC_ABC")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestSTKPush_GatewayUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := newTestClient(srv.URL).STKPush(context.Background(), "254712345678", 200, "PROC_ABC")
	assert.ErrorIs(t, err, pkgerrors.ErrGatewayUnavailable)
}

func TestNewReference(t *testing.T) {
	ref := NewReference("PROC_")
	assert.Len(t, ref, len("PROC_")+16)
	assert.Equal(t, "PROC_", ref[:5])
	assert.Regexp(t, `^PROC_[0-9A-F]{16}$`, ref)

	// References are unique per call.
	assert.NotEqual(t, ref, NewReference("PROC_"))
}

func TestNormalizeMSISDN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0712345678", "254712345678"},
		{"0112345678", "254112345678"},
		{"254712345678", "254712345678"},
		{"+254712345678", "254712345678"},
		{"0712 345 678", "254712345678"},
		{"071-234-5678", "254712345678"},
		{"712345678", "254712345678"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeMSISDN(tc.in), "input %q", tc.in)
	}
}
