package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil ports returns error", func(t *testing.T) {
		server, err := NewServer(nil)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingDocumentService)
	})

	t.Run("missing document service returns error", func(t *testing.T) {
		_, err := NewServer(&Ports{Ask: &mockAskService{}})
		assert.ErrorIs(t, err, ErrMissingDocumentService)
	})

	t.Run("documents only is valid", func(t *testing.T) {
		server, err := NewServer(&Ports{Documents: newCollection()})
		require.NoError(t, err)
		assert.NotNil(t, server.Handler())
	})
}

func TestServer_Health(t *testing.T) {
	server := newTestServer(t, &Ports{Documents: newCollection()})

	rec := do(t, server, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_CORS(t *testing.T) {
	server := newTestServer(t, &Ports{Documents: newCollection()})

	t.Run("preflight", func(t *testing.T) {
		rec := do(t, server, http.MethodOptions, "/api/documents/add", nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("regular response", func(t *testing.T) {
		rec := do(t, server, http.MethodGet, "/api/documents/list", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestServer_WrongMethod(t *testing.T) {
	server := newTestServer(t, &Ports{Documents: newCollection()})

	rec := do(t, server, http.MethodGet, "/api/documents/add", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_StartStop(t *testing.T) {
	server := newTestServer(t, &Ports{Documents: newCollection()})
	assert.Zero(t, server.Port())

	require.NoError(t, server.Start("127.0.0.1:0"))
	port := server.Port()
	require.NotZero(t, port)
	assert.Error(t, server.Start("127.0.0.1:0"), "second start fails")

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	require.NoError(t, server.Stop(context.Background()))
	assert.NoError(t, server.Stop(context.Background()), "stop is idempotent")
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	server := newTestServer(t, &Ports{Documents: newCollection()})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- server.Run(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-done)
}
