package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmehra2102/marketplace-orders/internal/payment/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"github.com/dmehra2102/marketplace-orders/pkg/auth"
	"github.com/dmehra2102/marketplace-orders/pkg/clock"
	"github.com/dmehra2102/marketplace-orders/pkg/outbox"
	"github.com/dmehra2102/marketplace-orders/pkg/tracing"
	"github.com/google/uuid"
)

type Service struct {
	log   *slog.Logger
	repo  PaymentRepository
	saga  SuccessHandler
	clock clock.Clock
}

func NewService(log *slog.Logger, repo PaymentRepository, saga SuccessHandler, clk clock.Clock) *Service {
	return &Service{log: log, repo: repo, saga: saga, clock: clk}
}

type CreatePaymentInput struct {
	OrderID         string
	Amount          float64
	Currency        string
	ProductID       string
	ProductQuantity int
}

func (s *Service) CreatePayment(ctx context.Context, in CreatePaymentInput) (domain.Payment, error) {
	p, err := domain.NewPayment(uuid.NewString(), in.OrderID, in.Amount, in.Currency, in.ProductID, in.ProductQuantity, s.clock.Now())
	if err != nil {
		return domain.Payment{}, err
	}

	ev, err := outbox.NewRecord(domain.AggregateType, p.OrderID, domain.EventPaymentCreated, domain.PaymentCreated{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Amount:    p.Amount,
		Currency:  p.Currency,
	}, tracing.Traceparent(ctx))
	if err != nil {
		return domain.Payment{}, err
	}

	if err := s.repo.CreateWithOutbox(ctx, p, ev); err != nil {
		return domain.Payment{}, err
	}
	s.log.Info("payment created", "payment_id", p.ID, "order_id", p.OrderID, "amount", p.FormatAmount(), "currency", p.Currency)
	return p, nil
}

func (s *Service) GetPayment(ctx context.Context, orderID string) (domain.Payment, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}

func (s *Service) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListPaymentsByStatus(ctx context.Context, status domain.Status) ([]domain.Payment, error) {
	if !status.Valid() {
		return nil, apperr.Invalid("status", fmt.Sprintf("unknown status %q", status))
	}
	return s.repo.ListByStatus(ctx, status)
}

// TransitionStatus sets the payment status of orderID. Reaching SUCCEEDED
// hands the committed payment to the saga, which runs after this returns and
// never affects its result.
func (s *Service) TransitionStatus(ctx context.Context, orderID string, status domain.Status, caller auth.Principal) (domain.Payment, error) {
	if !status.Valid() {
		return domain.Payment{}, apperr.Invalid("status", fmt.Sprintf("unknown status %q", status))
	}

	now := s.clock.Now()
	ev, err := outbox.NewRecord(domain.AggregateType, orderID, domain.EventPaymentStatusChanged, domain.PaymentStatusChanged{
		OrderID:   orderID,
		Status:    status,
		ChangedAt: now,
	}, tracing.Traceparent(ctx))
	if err != nil {
		return domain.Payment{}, err
	}

	p, err := s.repo.UpdateStatusWithOutbox(ctx, orderID, status, now, ev)
	if err != nil {
		return domain.Payment{}, err
	}
	s.log.Info("payment status changed", "payment_id", p.ID, "order_id", orderID, "status", status)

	if status == domain.StatusSucceeded {
		s.saga.PaymentSucceeded(ctx, p, caller)
	}
	return p, nil
}

func (s *Service) DeletePayment(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("payment deleted", "payment_id", id)
	return nil
}
