package application

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dmehra2102/marketplace-orders/internal/payment/domain"
	"github.com/dmehra2102/marketplace-orders/internal/payment/infrastructure/memory"
	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"github.com/dmehra2102/marketplace-orders/pkg/auth"
	"github.com/dmehra2102/marketplace-orders/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type sagaCall struct {
	payment domain.Payment
	caller  auth.Principal
}

type recordingSaga struct {
	calls []sagaCall
}

func (s *recordingSaga) PaymentSucceeded(_ context.Context, p domain.Payment, caller auth.Principal) {
	s.calls = append(s.calls, sagaCall{payment: p, caller: caller})
}

func newService() (*Service, *memory.Repository, *recordingSaga) {
	repo, saga := memory.NewRepository(), &recordingSaga{}
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, saga, clock.NewFixed(now)), repo, saga
}

func createOne(t *testing.T, svc *Service) domain.Payment {
	t.Helper()
	p, err := svc.CreatePayment(context.Background(), CreatePaymentInput{OrderID: "order-123456", Amount: 49.5, ProductID: "p1", ProductQuantity: 2})
	require.NoError(t, err)
	return p
}

func TestCreatePayment(t *testing.T) {
	svc, repo, _ := newService()
	p := createOne(t, svc)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Equal(t, "CZK", p.Currency)
	assert.Equal(t, now, p.CreatedAt)
	require.Len(t, repo.Events(), 1)
	assert.Equal(t, domain.EventPaymentCreated, repo.Events()[0].Type)
	assert.Equal(t, "order-123456", repo.Events()[0].AggregateID)

	_, err := svc.CreatePayment(context.Background(), CreatePaymentInput{OrderID: "order-123456", Amount: 1, ProductID: "p1", ProductQuantity: 1})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.CreatePayment(context.Background(), CreatePaymentInput{OrderID: "order-2", Amount: -5, ProductID: "p1", ProductQuantity: 1})
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok)
}

func TestTransitionStatus_SucceededStartsSaga(t *testing.T) {
	svc, repo, saga := newService()
	createOne(t, svc)
	caller := auth.Principal{UserID: "buyer-1", Email: "buyer@example.com", Token: "Bearer t"}

	p, err := svc.TransitionStatus(context.Background(), "order-123456", domain.StatusSucceeded, caller)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, p.Status)
	assert.Equal(t, now, p.UpdatedAt)

	require.Len(t, saga.calls, 1)
	assert.Equal(t, domain.StatusSucceeded, saga.calls[0].payment.Status)
	assert.Equal(t, caller, saga.calls[0].caller)

	require.Len(t, repo.Events(), 2)
	assert.Equal(t, domain.EventPaymentStatusChanged, repo.Events()[1].Type)
	assert.JSONEq(t, `{"orderId":"order-123456","status":"SUCCEEDED","changedAt":"2024-05-01T12:00:00Z"}`, string(repo.Events()[1].Payload))
}

func TestTransitionStatus_OtherStatusesDoNotStartSaga(t *testing.T) {
	svc, _, saga := newService()
	createOne(t, svc)

	for _, s := range []domain.Status{domain.StatusFailed, domain.StatusPending} {
		_, err := svc.TransitionStatus(context.Background(), "order-123456", s, auth.Principal{})
		require.NoError(t, err)
	}
	assert.Empty(t, saga.calls)
}

func TestTransitionStatus_Errors(t *testing.T) {
	svc, _, saga := newService()
	createOne(t, svc)

	_, err := svc.TransitionStatus(context.Background(), "missing", domain.StatusSucceeded, auth.Principal{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.TransitionStatus(context.Background(), "order-123456", "REFUNDED", auth.Principal{})
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok)

	assert.Empty(t, saga.calls)
}

func TestListAndDelete(t *testing.T) {
	svc, _, _ := newService()
	p := createOne(t, svc)
	ctx := context.Background()

	pending, err := svc.ListPaymentsByStatus(ctx, domain.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = svc.ListPaymentsByStatus(ctx, "unknown")
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok)

	require.NoError(t, svc.DeletePayment(ctx, p.ID))
	assert.ErrorIs(t, svc.DeletePayment(ctx, p.ID), apperr.ErrNotFound)

	all, err := svc.ListPayments(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
