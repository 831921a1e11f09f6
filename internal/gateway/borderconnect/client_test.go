package borderconnect

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"borderlink/internal/manifest/wire"
	dErrors "borderlink/pkg/domain-errors"
)

func testManifest() *wire.Manifest {
	return &wire.Manifest{
		Data:       "ACE_TRIP",
		SendID:     "send-1",
		CompanyKey: "ck-test",
		Operation:  wire.OperationCreate,
		TripNumber: "TR123",
	}
}

func TestSend(t *testing.T) {
	var gotAPIKey, gotPath string
	var gotBody wire.Manifest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("Api-Key")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"queued","tripNumber":"TR123"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "api-key-1", 5*time.Second, slog.Default())
	ack, err := c.Send(context.Background(), testManifest())
	require.NoError(t, err)

	assert.Equal(t, "api-key-1", gotAPIKey)
	assert.Equal(t, "/api/send/jones", gotPath)
	assert.Equal(t, "TR123", gotBody.TripNumber)
	assert.JSONEq(t, `{"status":"queued","tripNumber":"TR123"}`, string(ack))
}

func TestSendGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream timeout"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "api-key-1", 5*time.Second, slog.Default())
	_, err := c.Send(context.Background(), testManifest())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestSendUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "api-key-1", 500*time.Millisecond, slog.Default())
	_, err := c.Send(context.Background(), testManifest())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}
