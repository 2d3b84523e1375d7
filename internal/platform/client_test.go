package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/models"
)

func requirePlatformCode(t *testing.T, err error, code string) {
	t.Helper()
	var pe *models.PlatformError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, code, pe.Code)
}

func TestClient_APIKeyRequiresInitialize(t *testing.T) {
	client := NewClient(time.Second, 0, arbor.NewLogger())

	_, err := client.APIKey()
	requirePlatformCode(t, err, models.PlatformCodeNotInitialized)

	result, err := HandleInitialize(client, json.RawMessage(`{"apiKey":" secret "}`))
	require.NoError(t, err)
	assert.Equal(t, "true", string(result))

	key, err := client.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "secret", key)
}

func TestHandleInitialize_RejectsBadArguments(t *testing.T) {
	client := NewClient(time.Second, 0, arbor.NewLogger())

	_, err := HandleInitialize(client, nil)
	requirePlatformCode(t, err, models.PlatformCodeInvalidArgument)

	_, err = HandleInitialize(client, json.RawMessage(`{"apiKey":"   "}`))
	requirePlatformCode(t, err, models.PlatformCodeInvalidArgument)

	_, err = HandleInitialize(client, json.RawMessage(`not json`))
	requirePlatformCode(t, err, models.PlatformCodeInvalidArgument)
}

func TestClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(time.Second, 0, arbor.NewLogger())
	req, err := http.NewRequest(http.MethodGet, server.URL+"/x", nil)
	require.NoError(t, err)

	body, status, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, status)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestClient_DoNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(time.Second, 0, arbor.NewLogger())
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)

	_, _, err = client.Do(context.Background(), req)
	requirePlatformCode(t, err, models.PlatformCodeNetwork)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := NewClient(time.Second, time.Hour, arbor.NewLogger())

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	_, _, err := client.Do(context.Background(), req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req, _ = http.NewRequest(http.MethodGet, server.URL, nil)
	_, _, err = client.Do(ctx, req)
	requirePlatformCode(t, err, models.PlatformCodeNetwork)
}

func TestCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, models.PlatformCodeInvalidArgument},
		{http.StatusUnauthorized, models.PlatformCodeRequestDenied},
		{http.StatusForbidden, models.PlatformCodeRequestDenied},
		{http.StatusNotFound, models.PlatformCodeNotFound},
		{http.StatusTooManyRequests, models.PlatformCodeQuotaExceeded},
		{http.StatusInternalServerError, models.PlatformCodeAPI},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, CodeForStatus(tt.status), "status %d", tt.status)
	}
}

func TestRedactKey(t *testing.T) {
	assert.Equal(t, "https://x/?key=***REDACTED***", RedactKey("https://x/?key=abc123", "abc123"))
	assert.Equal(t, "https://x/?key=abc", RedactKey("https://x/?key=abc", ""))
}

func TestUnknownMethod(t *testing.T) {
	requirePlatformCode(t, UnknownMethod("nope"), models.PlatformCodeUnknownMethod)
}
