package http

import (
	"log/slog"
	"net/http"

	"github.com/dmehra2102/marketplace-orders/internal/payment/application"
	"github.com/dmehra2102/marketplace-orders/internal/payment/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/auth"
	"github.com/dmehra2102/marketplace-orders/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("payment-http"),
	}
}

type createPaymentReq struct {
	OrderID         string  `json:"orderId"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	ProductID       string  `json:"productId"`
	ProductQuantity int     `json:"productQuantity"`
}

type updateStatusReq struct {
	Status domain.Status `json:"status"`
}

// Routes mounts the payment API. {id} is the order id for reads and status
// updates and the payment id for deletes.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.createPayment)
		r.Get("/", h.listPayments)
		r.Get("/status/{status}", h.listByStatus)
		r.Get("/{id}", h.getPayment)
		r.Put("/{id}", h.updateStatus)
		r.Delete("/{id}", h.deletePayment)
	})
	return r
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreatePayment")
	defer span.End()

	var req createPaymentReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	p, err := h.service.CreatePayment(ctx, application.CreatePaymentInput{
		OrderID:         req.OrderID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		ProductID:       req.ProductID,
		ProductQuantity: req.ProductQuantity,
	})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	span.SetAttributes(attribute.String("payment.id", p.ID))
	httpx.RespondJSON(w, http.StatusCreated, p)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPayments(r.Context())
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, payments)
}

func (h *Handler) listByStatus(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPaymentsByStatus(r.Context(), domain.Status(chi.URLParam(r, "status")))
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, payments)
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdatePaymentStatus")
	defer span.End()

	var req updateStatusReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	span.SetAttributes(attribute.String("payment.status", string(req.Status)))

	caller, ok := auth.FromContext(ctx)
	if !ok {
		h.log.Debug("payment status update without credential", "order_id", chi.URLParam(r, "id"))
	}

	p, err := h.service.TransitionStatus(ctx, chi.URLParam(r, "id"), req.Status, caller)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusAccepted, p)
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePayment(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
