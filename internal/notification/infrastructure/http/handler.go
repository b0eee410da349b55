package http

import (
	"log/slog"
	"net/http"

	"github.com/dmehra2102/marketplace-orders/internal/notification/application"
	"github.com/dmehra2102/marketplace-orders/internal/notification/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
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
		tracer:  otel.Tracer("notification-http"),
	}
}

type sendEmailResp struct {
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/notify/email", h.sendEmail)
	return r
}

func (h *Handler) sendEmail(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SendEmail")
	defer span.End()

	var req domain.Email
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	id, err := h.service.SendEmail(ctx, req)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, sendEmailResp{Message: "Email sent successfully", MessageID: id})
}
