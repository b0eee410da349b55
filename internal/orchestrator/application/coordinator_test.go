package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmehra2102/marketplace-orders/internal/orchestrator/domain"
	paydomain "github.com/dmehra2102/marketplace-orders/internal/payment/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"github.com/dmehra2102/marketplace-orders/pkg/auth"
	"github.com/dmehra2102/marketplace-orders/pkg/clock"
	"github.com/dmehra2102/marketplace-orders/pkg/idempotency"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrders struct {
	productIDs []string
	err        error
	tokens     []string
}

func (f *fakeOrders) GetOrderProductIDs(_ context.Context, _ string, authorization string) ([]string, error) {
	f.tokens = append(f.tokens, authorization)
	return f.productIDs, f.err
}

type decrement struct {
	productID string
	quantity  int
}

type fakeStock struct {
	mu    sync.Mutex
	calls []decrement
	fail  map[string]error
}

func (f *fakeStock) DecreaseStock(_ context.Context, productID string, quantity int, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, decrement{productID, quantity})
	return f.fail[productID]
}

func (f *fakeStock) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (f *fakeNotifier) SendEmail(_ context.Context, e Email, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, e)
	return f.err
}

type brokenGuard struct{}

func (brokenGuard) Claim(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

var (
	now    = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	caller = auth.Principal{UserID: "buyer-1", Email: "buyer@example.com", Token: "Bearer t"}
	paid   = paydomain.Payment{
		ID:              "pay-1",
		OrderID:         "665f1c2ab7e4d2a1c3f9e123",
		Amount:          1250,
		Currency:        "CZK",
		Status:          paydomain.StatusSucceeded,
		ProductID:       "p1",
		ProductQuantity: 2,
	}
)

func newGuard(t *testing.T) Guard {
	t.Helper()
	mr := miniredis.RunT(t)
	return idempotency.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0)
}

func newCoordinator(orders OrderReader, stock StockAdjuster, notifier Notifier, guard Guard) *Coordinator {
	return NewCoordinator(slog.New(slog.NewTextHandler(io.Discard, nil)), orders, stock, notifier, guard, clock.NewFixed(now))
}

func TestRun_AllStepsComplete(t *testing.T) {
	orders := &fakeOrders{productIDs: []string{"p1", "p2"}}
	stock, notifier := &fakeStock{}, &fakeNotifier{}
	c := newCoordinator(orders, stock, notifier, newGuard(t))

	saga := c.run(context.Background(), c.log, paid, caller)

	require.NotNil(t, saga)
	assert.Equal(t, domain.StateCompleted, saga.State)
	assert.Equal(t, []decrement{{"p1", 2}, {"p2", 2}}, stock.calls)
	assert.Equal(t, []string{"Bearer t"}, orders.tokens)

	require.Len(t, notifier.sent, 1)
	e := notifier.sent[0]
	assert.Equal(t, "buyer@example.com", e.To)
	assert.Equal(t, "Payment Successful - Order #f9e123", e.Subject)
	assert.Contains(t, e.Text, "1250.00 CZK")
	assert.Contains(t, e.Text, paid.OrderID)
}

func TestRun_StockFailureStillNotifies(t *testing.T) {
	stock := &fakeStock{fail: map[string]error{"p1": apperr.ErrConflict}}
	notifier := &fakeNotifier{}
	c := newCoordinator(&fakeOrders{productIDs: []string{"p1", "p2"}}, stock, notifier, newGuard(t))

	saga := c.run(context.Background(), c.log, paid, caller)

	assert.Equal(t, domain.StatePartial, saga.State)
	assert.Len(t, stock.calls, 2)
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, map[string]string{"fetch_order": "completed", "decrease_stock": "failed", "notify": "completed"}, saga.StepStatuses())
}

func TestRun_OrderUnavailable(t *testing.T) {
	stock, notifier := &fakeStock{}, &fakeNotifier{}
	c := newCoordinator(&fakeOrders{err: apperr.ErrUpstream}, stock, notifier, newGuard(t))

	saga := c.run(context.Background(), c.log, paid, caller)

	assert.Equal(t, domain.StatePartial, saga.State)
	assert.Empty(t, stock.calls)
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, "skipped", saga.StepStatuses()["decrease_stock"])
}

func TestRun_NoEmailSkipsNotify(t *testing.T) {
	notifier := &fakeNotifier{}
	c := newCoordinator(&fakeOrders{productIDs: []string{"p1"}}, &fakeStock{}, notifier, newGuard(t))

	saga := c.run(context.Background(), c.log, paid, auth.Principal{UserID: "buyer-1", Token: "Bearer t"})

	assert.Equal(t, domain.StateCompleted, saga.State)
	assert.Empty(t, notifier.sent)
	assert.Equal(t, "skipped", saga.StepStatuses()["notify"])
}

func TestRun_GuardErrorSkipsSideEffects(t *testing.T) {
	stock, notifier := &fakeStock{}, &fakeNotifier{}
	c := newCoordinator(&fakeOrders{productIDs: []string{"p1"}}, stock, notifier, brokenGuard{})

	assert.Nil(t, c.run(context.Background(), c.log, paid, caller))
	assert.Empty(t, stock.calls)
	assert.Empty(t, notifier.sent)
}

func TestPaymentSucceeded_RunsOncePerPayment(t *testing.T) {
	stock, notifier := &fakeStock{}, &fakeNotifier{}
	c := newCoordinator(&fakeOrders{productIDs: []string{"p1"}}, stock, notifier, newGuard(t))

	for i := 0; i < 3; i++ {
		c.PaymentSucceeded(context.Background(), paid, caller)
	}
	require.NoError(t, c.Wait(context.Background()))

	assert.Equal(t, 1, stock.count())
	assert.Len(t, notifier.sent, 1)
}

func TestPaymentSucceeded_OutlivesCallerContext(t *testing.T) {
	stock := &fakeStock{}
	c := newCoordinator(&fakeOrders{productIDs: []string{"p1"}}, stock, &fakeNotifier{}, newGuard(t))

	ctx, cancel := context.WithCancel(context.Background())
	c.PaymentSucceeded(ctx, paid, caller)
	cancel()
	require.NoError(t, c.Wait(context.Background()))

	assert.Equal(t, 1, stock.count())
}

func TestPaymentSucceeded_NoCredentialSkips(t *testing.T) {
	stock := &fakeStock{}
	c := newCoordinator(&fakeOrders{productIDs: []string{"p1"}}, stock, &fakeNotifier{}, newGuard(t))

	c.PaymentSucceeded(context.Background(), paid, auth.Principal{})
	require.NoError(t, c.Wait(context.Background()))

	assert.Zero(t, stock.count())
}

func TestPaymentEmail_ShortOrderID(t *testing.T) {
	p := paid
	p.OrderID = "abc"
	assert.Equal(t, "Payment Successful - Order #abc", PaymentEmail(p, "x@example.com").Subject)
}
