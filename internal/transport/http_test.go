package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mir00r/lb-http-client/internal/domain"
	"github.com/mir00r/lb-http-client/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func newTransport(t *testing.T) *HTTPTransport {
	t.Helper()
	transport, err := NewHTTPTransport(DefaultConfig(), testLogger(t))
	require.NoError(t, err)
	return transport
}

func TestHTTPTransportExecute(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/items", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "value", r.Header.Get("X-Custom"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"q":1}`, string(body))

		w.Header().Set("X-Served-By", "test-server")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))
	defer server.Close()

	transport := newTransport(t)

	request, err := domain.NewRequest("POST", server.URL+"/api/items", map[string][]string{
		"Content-Type": {"application/json"},
		"X-Custom":     {"value"},
	}, []byte(`{"q":1}`), "")
	require.NoError(t, err)

	response, err := transport.Execute(context.Background(), request, domain.DefaultOptions())
	require.NoError(t, err)
	defer response.Close()

	assert.Equal(t, http.StatusCreated, response.StatusCode())
	assert.Equal(t, []string{"test-server"}, response.Headers()["X-Served-By"])
	assert.Same(t, request, response.Request())

	body, err := io.ReadAll(response.Body())
	require.NoError(t, err)
	assert.Equal(t, "created", string(body))
}

func TestHTTPTransportConnectionError(t *testing.T) {
	t.Parallel()

	transport := newTransport(t)

	// Nothing listens here; the dial failure must surface as an error.
	request, err := domain.NewRequest("GET", "http://127.0.0.1:1/items", nil, nil, "")
	require.NoError(t, err)

	response, execErr := transport.Execute(context.Background(), request, domain.DefaultOptions())
	assert.Nil(t, response)
	assert.Error(t, execErr)
}

func TestHTTPTransportRedirectHandling(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("landed"))
	}))
	defer server.Close()

	transport := newTransport(t)

	request, err := domain.NewRequest("GET", server.URL+"/old", nil, nil, "")
	require.NoError(t, err)

	follow := domain.DefaultOptions()
	response, err := transport.Execute(context.Background(), request, follow)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode())
	_ = response.Close()

	noFollow := follow
	noFollow.FollowRedirects = false
	response, err = transport.Execute(context.Background(), request, noFollow)
	require.NoError(t, err)
	defer response.Close()
	assert.Equal(t, http.StatusFound, response.StatusCode())
}

func TestHTTPTransportContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	transport := newTransport(t)

	request, err := domain.NewRequest("GET", server.URL+"/slow", nil, nil, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, execErr := transport.Execute(ctx, request, domain.DefaultOptions())
	assert.Error(t, execErr)
}
