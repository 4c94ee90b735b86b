package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeHealth_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "probe must not carry credentials")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	require.NoError(t, ProbeHealth(context.Background(), srv.URL, time.Second))
}

func TestProbeHealth_TrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	require.NoError(t, ProbeHealth(context.Background(), srv.URL+"/", time.Second))
}

func TestProbeHealth_BadStatusField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"degraded"}`))
	}))
	defer srv.Close()

	err := ProbeHealth(context.Background(), srv.URL, time.Second)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
}

func TestProbeHealth_Refused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := ProbeHealth(context.Background(), url, time.Second)
	assert.ErrorIs(t, err, ErrConnectionRefused)
}

func TestProbeHealth_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	err := ProbeHealth(context.Background(), srv.URL, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "http://a/health", joinPath("http://a", "/health"))
	assert.Equal(t, "http://a/health", joinPath("http://a/", "/health"))
	assert.Equal(t, "http://a/health", joinPath("http://a//", "/health"))
}
