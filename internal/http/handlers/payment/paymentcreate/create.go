// Package paymentcreate реализует HTTP-обработчик создания платежа.
//
// Handler валидирует входные данные, проверяет тариф по каталогу и передаёт
// создание платежа оркестратору. Ответ содержит ссылку на оплату и
// идентификатор платёжной сессии; при недоступности шлюза — пометку demo-режима.
package paymentcreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-payments/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-payments/internal/http/response"
	"github.com/magabrotheeeer/subscription-payments/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-payments/internal/models"
	paymentservice "github.com/magabrotheeeer/subscription-payments/internal/services/payment"
)

// Request — входные данные для создания платежа.
type Request struct {
	PlanID int     `json:"plan_id" validate:"required,gt=0"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// Service описывает интерфейс оркестратора платежей.
type Service interface {
	Create(ctx context.Context, userUID string, planID int, amount float64) (*paymentservice.CreateResult, error)
}

// Catalog описывает проверку тарифа по каталогу.
type Catalog interface {
	FindByID(id int) (models.Plan, bool)
}

// Handler обрабатывает запросы на создание платежа.
type Handler struct {
	log      *slog.Logger
	service  Service
	catalog  Catalog
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, catalog Catalog) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		catalog:  catalog,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать платеж
// @Description Создает платёж за тариф и открывает платёжную сессию bKash.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body Request true "Тариф и сумма"
// @Success 200 {object} map[string]any "Платёж создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или неизвестный тариф"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании платежа"
// @Router /payment/create [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.create"

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
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if _, ok := h.catalog.FindByID(req.PlanID); !ok {
		log.Error("unknown plan", slog.Int("plan_id", req.PlanID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown plan"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.Create(r.Context(), userUID, req.PlanID, req.Amount)
	if err != nil {
		log.Error("failed to create payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create payment"))
		return
	}

	log.Info("payment created", slog.Int("payment_id", result.PaymentID),
		slog.Bool("demo_mode", result.DemoMode))
	render.JSON(w, r, response.OKWithData(result))
}
