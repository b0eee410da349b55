package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/marketplace-orders/internal/payment/application"
	"github.com/dmehra2102/marketplace-orders/internal/payment/domain"
	"github.com/dmehra2102/marketplace-orders/internal/payment/infrastructure/memory"
	"github.com/dmehra2102/marketplace-orders/pkg/auth"
	"github.com/dmehra2102/marketplace-orders/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

type recordingSaga struct {
	mu      sync.Mutex
	callers []auth.Principal
}

func (s *recordingSaga) PaymentSucceeded(_ context.Context, _ domain.Payment, caller auth.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callers = append(s.callers, caller)
}

func newServer(t *testing.T) (*httptest.Server, *recordingSaga) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	saga := &recordingSaga{}
	svc := application.NewService(log, memory.NewRepository(), saga, clock.NewFixed(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
	srv := httptest.NewServer(auth.Middleware(secret, log)(NewHandler(log, svc).Routes()))
	t.Cleanup(srv.Close)
	return srv, saga
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

var newPayment = map[string]any{"orderId": "665f1c2ab7e4d2a1c3f9e123", "amount": 99.9, "productId": "p1", "productQuantity": 2}

func TestPaymentLifecycle(t *testing.T) {
	srv, saga := newServer(t)
	token, err := auth.Issue(secret, "buyer-1", "buyer@example.com", time.Hour)
	require.NoError(t, err)

	status, raw := call(t, srv, http.MethodPost, "/payments", "", newPayment)
	require.Equal(t, http.StatusCreated, status, string(raw))
	var p domain.Payment
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Equal(t, "CZK", p.Currency)

	status, _ = call(t, srv, http.MethodPost, "/payments", "", newPayment)
	assert.Equal(t, http.StatusConflict, status)

	status, raw = call(t, srv, http.MethodGet, "/payments/665f1c2ab7e4d2a1c3f9e123", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, 99.9, p.Amount)

	status, raw = call(t, srv, http.MethodPut, "/payments/665f1c2ab7e4d2a1c3f9e123", token, map[string]string{"status": "SUCCEEDED"})
	require.Equal(t, http.StatusAccepted, status, string(raw))
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, domain.StatusSucceeded, p.Status)

	require.Len(t, saga.callers, 1)
	assert.Equal(t, "buyer-1", saga.callers[0].UserID)
	assert.Equal(t, "buyer@example.com", saga.callers[0].Email)
	assert.Equal(t, "Bearer "+token, saga.callers[0].Token)

	status, raw = call(t, srv, http.MethodGet, "/payments/status/SUCCEEDED", "", nil)
	require.Equal(t, http.StatusOK, status)
	var list []domain.Payment
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list, 1)

	status, _ = call(t, srv, http.MethodDelete, "/payments/"+p.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = call(t, srv, http.MethodDelete, "/payments/"+p.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateStatus_WithoutCredentialStillSucceeds(t *testing.T) {
	srv, saga := newServer(t)
	status, _ := call(t, srv, http.MethodPost, "/payments", "", newPayment)
	require.Equal(t, http.StatusCreated, status)

	status, raw := call(t, srv, http.MethodPut, "/payments/665f1c2ab7e4d2a1c3f9e123", "", map[string]string{"status": "SUCCEEDED"})
	require.Equal(t, http.StatusAccepted, status, string(raw))

	require.Len(t, saga.callers, 1)
	assert.Empty(t, saga.callers[0].Token)
}

func TestUpdateStatus_Errors(t *testing.T) {
	srv, _ := newServer(t)

	status, _ := call(t, srv, http.MethodPut, "/payments/unknown-order", "", map[string]string{"status": "SUCCEEDED"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, srv, http.MethodPost, "/payments", "", newPayment)
	require.Equal(t, http.StatusCreated, status)

	status, _ = call(t, srv, http.MethodPut, "/payments/665f1c2ab7e4d2a1c3f9e123", "", map[string]string{"status": "REFUNDED"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, srv, http.MethodGet, "/payments/status/REFUNDED", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCreatePayment_Validation(t *testing.T) {
	srv, _ := newServer(t)
	status, raw := call(t, srv, http.MethodPost, "/payments", "", map[string]any{"orderId": "o1", "amount": 0})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(raw), "productQuantity")
}
