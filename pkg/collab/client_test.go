package collab

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), "test-svc", srv.URL+"/", timeout)
}

func TestDo_ForwardsAuthorizationAndBody(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	var gotBody map[string]int
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Stock updated successfully"}`))
	}, time.Second)

	var out struct {
		Message string `json:"message"`
	}
	err := c.Do(context.Background(), http.MethodPut, "/products/p1/decrease-stock", "Bearer abc", map[string]int{"quantity": 2}, &out)
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "/products/p1/decrease-stock", gotPath)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, 2, gotBody["quantity"])
	assert.Equal(t, "Stock updated successfully", out.Message)
}

func TestDo_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, apperr.ErrNotFound},
		{http.StatusConflict, apperr.ErrConflict},
		{http.StatusUnauthorized, apperr.ErrUnauthorized},
		{http.StatusForbidden, apperr.ErrForbidden},
		{http.StatusBadRequest, apperr.ErrUpstream},
		{http.StatusInternalServerError, apperr.ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}, time.Second)
			err := c.Do(context.Background(), http.MethodGet, "/orders/1", "", nil, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDo_TimeoutIsUpstream(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 50*time.Millisecond)

	err := c.Do(context.Background(), http.MethodGet, "/slow", "", nil, nil)
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}

func TestDo_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, time.Second)

	for i := 0; i < 8; i++ {
		err := c.Do(context.Background(), http.MethodGet, "/x", "", nil, nil)
		assert.ErrorIs(t, err, apperr.ErrUpstream)
	}
	assert.Equal(t, int32(5), hits.Load())
}
