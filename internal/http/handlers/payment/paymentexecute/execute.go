// Package paymentexecute реализует HTTP-обработчик исполнения платежа.
package paymentexecute

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-payments/internal/http/response"
	"github.com/magabrotheeeer/subscription-payments/internal/lib/sl"
	paymentservice "github.com/magabrotheeeer/subscription-payments/internal/services/payment"
)

// Request — входные данные для исполнения платежа.
type Request struct {
	PaymentID string `json:"payment_id" validate:"required"`
}

// Service описывает интерфейс оркестратора платежей.
type Service interface {
	Execute(ctx context.Context, gatewayPaymentID string) (*paymentservice.ExecuteResult, error)
}

// Handler обрабатывает запросы на исполнение платежа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Исполнить платеж
// @Description Исполняет платёжную сессию по её идентификатору. При успехе выдаёт подписку.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body Request true "Идентификатор платёжной сессии"
// @Success 200 {object} map[string]any "Результат исполнения"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Платёж не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при исполнении платежа"
// @Router /payment/execute [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.execute"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.service.Execute(r.Context(), req.PaymentID)
	if err != nil {
		if errors.Is(err, paymentservice.ErrPaymentNotFound) {
			log.Error("payment not found", slog.String("payment_id", req.PaymentID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
			return
		}
		log.Error("failed to execute payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not execute payment"))
		return
	}

	log.Info("payment executed", slog.String("status", result.Status),
		slog.Bool("demo_mode", result.DemoMode))
	render.JSON(w, r, response.OKWithData(result))
}
