package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmehra2102/marketplace-orders/internal/orchestrator/domain"
	paydomain "github.com/dmehra2102/marketplace-orders/internal/payment/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/auth"
	"github.com/dmehra2102/marketplace-orders/pkg/clock"
	"github.com/dmehra2102/marketplace-orders/pkg/idempotency"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Coordinator runs the payment-completion saga: decrease stock for every
// line of the paid order, then email the buyer. Steps are best effort and
// nothing is rolled back.
type Coordinator struct {
	log      *slog.Logger
	orders   OrderReader
	stock    StockAdjuster
	notifier Notifier
	guard    Guard
	clock    clock.Clock
	tracer   trace.Tracer
	wg       sync.WaitGroup
}

func NewCoordinator(log *slog.Logger, orders OrderReader, stock StockAdjuster, notifier Notifier, guard Guard, clk clock.Clock) *Coordinator {
	return &Coordinator{
		log:      log,
		orders:   orders,
		stock:    stock,
		notifier: notifier,
		guard:    guard,
		clock:    clk,
		tracer:   otel.Tracer("orchestrator"),
	}
}

// PaymentSucceeded starts the saga in the background and returns at once.
// The saga keeps the caller's trace but not its cancellation.
func (c *Coordinator) PaymentSucceeded(ctx context.Context, p paydomain.Payment, caller auth.Principal) {
	log := c.log.With("payment_id", p.ID, "order_id", p.OrderID)
	if caller.Token == "" {
		log.Warn("payment succeeded without caller credential, skipping stock and notification")
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(context.WithoutCancel(ctx), log, p, caller)
	}()
}

// Wait blocks until every running saga has finished or ctx is done.
func (c *Coordinator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for sagas: %w", ctx.Err())
	}
}

func (c *Coordinator) run(ctx context.Context, log *slog.Logger, p paydomain.Payment, caller auth.Principal) *domain.Saga {
	ctx, span := c.tracer.Start(ctx, "PaymentSaga", trace.WithAttributes(
		attribute.String("payment.id", p.ID),
		attribute.String("order.id", p.OrderID),
	))
	defer span.End()

	claimed, err := c.guard.Claim(ctx, idempotency.SagaKey(p.ID))
	if err != nil {
		span.RecordError(err)
		log.Error("saga guard unavailable, skipping side effects", "err", err)
		return nil
	}
	if !claimed {
		log.Info("saga already ran for payment")
		return nil
	}

	saga := domain.NewSaga(p.ID, p.OrderID, c.clock.Now())

	productIDs, err := c.orders.GetOrderProductIDs(ctx, p.OrderID, caller.Token)
	if err != nil {
		saga.Fail(domain.StepFetchOrder, err)
		saga.Skip(domain.StepDecreaseStock, "order unavailable")
		log.Error("fetch order failed", "err", err)
	} else {
		saga.Complete(domain.StepFetchOrder)
		c.decreaseStock(ctx, log, saga, productIDs, p.ProductQuantity, caller.Token)
	}

	c.notify(ctx, log, saga, p, caller)

	saga.Finish(c.clock.Now())
	if saga.State == domain.StatePartial {
		span.SetStatus(codes.Error, "saga partial")
	}
	log.Info("payment saga finished",
		"state", saga.State,
		"steps", saga.StepStatuses(),
		"duration_ms", saga.EndedAt.Sub(saga.StartedAt).Milliseconds(),
	)
	return saga
}

func (c *Coordinator) decreaseStock(ctx context.Context, log *slog.Logger, saga *domain.Saga, productIDs []string, quantity int, token string) {
	var firstErr error
	for _, id := range productIDs {
		if err := c.stock.DecreaseStock(ctx, id, quantity, token); err != nil {
			log.Error("decrease stock failed", "product_id", id, "quantity", quantity, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Debug("stock decreased", "product_id", id, "quantity", quantity)
	}
	if firstErr != nil {
		saga.Fail(domain.StepDecreaseStock, firstErr)
		return
	}
	saga.Complete(domain.StepDecreaseStock)
}

func (c *Coordinator) notify(ctx context.Context, log *slog.Logger, saga *domain.Saga, p paydomain.Payment, caller auth.Principal) {
	if caller.Email == "" {
		log.Warn("caller has no email, skipping payment notification")
		saga.Skip(domain.StepNotify, "no email")
		return
	}
	if err := c.notifier.SendEmail(ctx, PaymentEmail(p, caller.Email), caller.Token); err != nil {
		log.Error("payment notification failed", "err", err)
		saga.Fail(domain.StepNotify, err)
		return
	}
	saga.Complete(domain.StepNotify)
}

// PaymentEmail builds the buyer's confirmation.
func PaymentEmail(p paydomain.Payment, to string) Email {
	return Email{
		To:      to,
		Subject: "Payment Successful - Order #" + shortID(p.OrderID),
		Text: fmt.Sprintf("Your payment of %s %s for order %s was successful. Thank you for your purchase.",
			p.FormatAmount(), p.Currency, p.OrderID),
	}
}

func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
