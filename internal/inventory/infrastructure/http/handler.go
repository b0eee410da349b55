package http

import (
	"log/slog"
	"net/http"

	"github.com/dmehra2102/marketplace-orders/internal/inventory/application"
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
		tracer:  otel.Tracer("inventory-http"),
	}
}

type createProductReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	StockCount  int     `json:"stockCount"`
}

// An absent quantity decrements by one.
type decreaseStockReq struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.createProduct)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}/decrease-stock", h.decreaseStock)
	})
	return r
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	var req createProductReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	owner, _ := auth.FromContext(ctx)
	p, err := h.service.CreateProduct(ctx, owner, application.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		StockCount:  req.StockCount,
	})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	span.SetAttributes(attribute.String("product.id", p.ID))
	httpx.RespondJSON(w, http.StatusCreated, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) decreaseStock(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DecreaseStock")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("product.id", id))

	var req decreaseStockReq
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, r, h.log, err)
			return
		}
	}

	if _, err := h.service.DecreaseStock(ctx, id, req.Quantity); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"message": "Stock updated successfully"})
}
