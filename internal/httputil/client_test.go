// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

func TestGetJSON_Success(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"total": 150, "name": "x"}`))
	}))
	defer ts.Close()

	c := NewClient(types.HTTPConfig{Timeout: time.Second, UserAgent: "biorxiv-digest/test"}, 0)

	var out map[string]any
	require.NoError(t, c.GetJSON(context.Background(), ts.URL, &out))

	assert.Equal(t, "biorxiv-digest/test", gotUA)
	assert.Equal(t, json.Number("150"), out["total"])
	assert.Equal(t, "x", out["name"])
}

func TestGet_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance\n"))
	}))
	defer ts.Close()

	c := NewClient(types.HTTPConfig{Timeout: time.Second}, 0)
	_, err := c.Get(context.Background(), ts.URL)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, "maintenance", se.Body)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestGet_NoRetryOn429(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClient(types.HTTPConfig{Timeout: time.Second}, 0)
	_, err := c.Get(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetJSON_DecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer ts.Close()

	c := NewClient(types.HTTPConfig{Timeout: time.Second}, 0)
	var out any
	err := c.GetJSON(context.Background(), ts.URL, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestGet_LimiterHonorsContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewClient(types.HTTPConfig{Timeout: time.Second}, 0)
	c.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	resp, err := c.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Get(ctx, ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}
