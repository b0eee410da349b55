package http

import (
	"log/slog"
	"net/http"

	"github.com/dmehra2102/marketplace-orders/internal/order/application"
	"github.com/dmehra2102/marketplace-orders/internal/order/domain"
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
		tracer:  otel.Tracer("order-http"),
	}
}

type createOrderReq struct {
	BuyerID    string                `json:"buyerId"`
	SellerID   string                `json:"sellerId"`
	Products   []domain.OrderProduct `json:"products"`
	TotalPrice float64               `json:"totalPrice"`
	Status     domain.OrderStatus    `json:"status"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/user/{id}", h.listBuyerOrders)
		r.Get("/seller/{id}", h.listSellerOrders)
		r.Post("/conversations/initiate/{productId}", h.initiateInquiry)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}", h.updateOrder)
		r.Delete("/{id}", h.deleteOrder)
	})
	return r
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	o, err := h.service.CreateOrder(ctx, domain.Order{
		BuyerID:    req.BuyerID,
		SellerID:   req.SellerID,
		Products:   req.Products,
		TotalPrice: req.TotalPrice,
		Status:     req.Status,
	})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	span.SetAttributes(attribute.String("order.id", o.ID))
	httpx.RespondJSON(w, http.StatusCreated, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.OrderFilter{})
}

func (h *Handler) listBuyerOrders(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.OrderFilter{BuyerID: chi.URLParam(r, "id")})
}

func (h *Handler) listSellerOrders(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.OrderFilter{SellerID: chi.URLParam(r, "id")})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, filter domain.OrderFilter) {
	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, o)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrder")
	defer span.End()

	var patch domain.OrderPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	o, err := h.service.UpdateOrder(ctx, chi.URLParam(r, "id"), patch)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusAccepted, o)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) initiateInquiry(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "InitiateInquiry")
	defer span.End()

	productID := chi.URLParam(r, "productId")
	span.SetAttributes(attribute.String("product.id", productID))

	buyer, _ := auth.FromContext(ctx)
	o, err := h.service.InitiateInquiry(ctx, productID, buyer)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, o)
}
