// Package paymentstatus реализует HTTP-обработчик запроса статуса платежа.
package paymentstatus

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-payments/internal/http/response"
	"github.com/magabrotheeeer/subscription-payments/internal/lib/sl"
	paymentservice "github.com/magabrotheeeer/subscription-payments/internal/services/payment"
)

// Service описывает интерфейс оркестратора платежей.
type Service interface {
	Status(ctx context.Context, gatewayPaymentID string) (*paymentservice.StatusResult, error)
}

// Handler обрабатывает запросы статуса платежа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статус платежа
// @Description Возвращает статус платёжной сессии от шлюза или из локального состояния.
// @Tags Payments
// @Produce  json
// @Param paymentID path string true "Идентификатор платёжной сессии"
// @Success 200 {object} map[string]any "Статус платежа"
// @Failure 404 {object} response.ErrorResponse "Платёж не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payment/status/{paymentID} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	paymentID := chi.URLParam(r, "paymentID")
	if paymentID == "" {
		log.Error("payment id is missing in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("payment id is required"))
		return
	}

	result, err := h.service.Status(r.Context(), paymentID)
	if err != nil {
		if errors.Is(err, paymentservice.ErrPaymentNotFound) {
			log.Error("payment not found", slog.String("payment_id", paymentID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
			return
		}
		log.Error("failed to get payment status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get payment status"))
		return
	}

	log.Info("payment status returned", slog.String("status_code", result.StatusCode))
	render.JSON(w, r, response.OKWithData(result))
}
