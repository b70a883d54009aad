package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "cpu_time_seconds", Help: "test"})
	g.Set(10)
	reg.MustRegister(g)
	return reg
}

func get(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHandler_Routes(t *testing.T) {
	s := New("127.0.0.1:0", testRegistry(t), discard())
	h := s.Handler()

	rec := get(t, h, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())

	rec = get(t, h, http.MethodGet, "/livez")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())

	rec = get(t, h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cpu_time_seconds 10")

	rec = get(t, h, http.MethodPost, "/metrics")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = get(t, h, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_ListenAndShutdown(t *testing.T) {
	s := New("127.0.0.1:0", testRegistry(t), discard())
	require.NoError(t, s.Listen())
	require.NotNil(t, s.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	url := "http://" + s.Addr().String() + "/readyz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownGrace + time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListen_AddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := New(ln.Addr().String(), testRegistry(t), discard())
	require.Error(t, s.Listen())
	assert.Nil(t, s.Addr())
}

func TestServe_WithoutListen(t *testing.T) {
	s := New("127.0.0.1:0", testRegistry(t), discard())
	require.ErrorIs(t, s.Serve(context.Background()), ErrNotListening)
}
