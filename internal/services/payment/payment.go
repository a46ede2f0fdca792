// Package services реализует оркестрацию платежей: жизненный цикл
// create -> execute -> status с двумя ветками — живой (через шлюз bKash)
// и демонстрационной (локальная симуляция при недоступности шлюза).
//
// Политика ошибок асимметричная и намеренная: ошибки шлюза никогда не
// доходят до вызывающего кода как отказ — они поглощаются и превращаются
// в demo-режим с успешным ответом. Наружу выходят только ErrPaymentNotFound
// и ошибки валидации входных данных.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-payments/internal/bkash"
	"github.com/magabrotheeeer/subscription-payments/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-payments/internal/models"
)

// ErrPaymentNotFound возвращается, если платёж с таким идентификатором
// сессии шлюза не существует. Единственная ошибка, которая доходит до
// вызывающего кода как отказ.
var ErrPaymentNotFound = errors.New("payment not found")

// DemoPrefix — зарезервированный префикс демонстрационных идентификаторов.
const DemoPrefix = "DEMO_"

// Gateway описывает операции платёжного шлюза.
type Gateway interface {
	CreateSession(ctx context.Context, amount float64, invoiceRef, intent string) (*bkash.Session, error)
	ExecuteSession(ctx context.Context, paymentID string) (*bkash.Result, error)
	QuerySession(ctx context.Context, paymentID string) (*bkash.Result, error)
}

// PaymentRepository описывает контракт хранилища платежей и подписок.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment models.Payment) (int, error)
	SetPaymentGatewayID(ctx context.Context, paymentID int, gatewayID string) error
	FindPaymentByGatewayID(ctx context.Context, gatewayID string) (*models.Payment, error)
	// SettlePayment завершает платёж и выдаёт подписку одной транзакцией.
	SettlePayment(ctx context.Context, paymentID int, transactionID, userUID string, planID int) (int, error)
	FailPayment(ctx context.Context, paymentID int) error
}

// EventPublisher публикует события завершённых платежей.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// Cache описывает инвалидацию кеша подписок пользователя.
type Cache interface {
	Invalidate(key string) error
}

// CreateResult — ответ операции создания платежа.
type CreateResult struct {
	PaymentID      int    `json:"payment_id"`
	BkashURL       string `json:"bkash_url"`
	BkashPaymentID string `json:"bkash_payment_id"`
	DemoMode       bool   `json:"demo_mode,omitempty"`
}

// ExecuteResult — ответ операции исполнения платежа.
type ExecuteResult struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
	DemoMode      bool   `json:"demo_mode,omitempty"`
}

// StatusResult — ответ операции запроса статуса, либо от шлюза,
// либо синтезированный из локального состояния.
type StatusResult struct {
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	PaymentID     string `json:"paymentID"`
	TrxID         string `json:"trxID,omitempty"`
	DemoMode      bool   `json:"demo_mode,omitempty"`
}

// PaymentService управляет жизненным циклом платежей.
type PaymentService struct {
	repo      PaymentRepository
	gateway   Gateway
	publisher EventPublisher
	cache     Cache
	log       *slog.Logger
}

// NewPaymentService создает новый экземпляр PaymentService.
func NewPaymentService(repo PaymentRepository, gateway Gateway, publisher EventPublisher, cache Cache, log *slog.Logger) *PaymentService {
	return &PaymentService{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		cache:     cache,
		log:       log,
	}
}

// Create заводит платёж в статусе pending и открывает платёжную сессию.
//
// При любой ошибке шлюза идентификатор сессии синтезируется локально
// (DEMO_<id>_<amount>, уникален, так как включает ID записи) и ответ
// помечается demo-режимом. Статус платежа в обоих случаях остаётся pending.
func (s *PaymentService) Create(ctx context.Context, userUID string, planID int, amount float64) (*CreateResult, error) {
	const op = "services.payment.Create"
	log := s.log.With(slog.String("op", op), slog.String("user_uid", userUID))

	paymentID, err := s.repo.CreatePayment(ctx, models.Payment{
		UserUID: userUID,
		PlanID:  planID,
		Amount:  amount,
	})
	if err != nil {
		return nil, err
	}

	invoiceRef := fmt.Sprintf("INV-%d", paymentID)
	session, err := s.gateway.CreateSession(ctx, amount, invoiceRef, "sale")
	if err != nil {
		log.Warn("gateway create failed, falling back to demo mode", sl.Err(err))

		demoID := DemoPrefix + strconv.Itoa(paymentID) + "_" + strconv.FormatFloat(amount, 'f', -1, 64)
		if err := s.repo.SetPaymentGatewayID(ctx, paymentID, demoID); err != nil {
			return nil, err
		}
		return &CreateResult{
			PaymentID:      paymentID,
			BkashURL:       "https://sandbox.bka.sh/payment/" + demoID,
			BkashPaymentID: demoID,
			DemoMode:       true,
		}, nil
	}

	if err := s.repo.SetPaymentGatewayID(ctx, paymentID, session.PaymentID); err != nil {
		return nil, err
	}

	log.Info("payment session created", slog.Int("payment_id", paymentID),
		slog.String("bkash_payment_id", session.PaymentID))
	return &CreateResult{
		PaymentID:      paymentID,
		BkashURL:       session.BkashURL,
		BkashPaymentID: session.PaymentID,
	}, nil
}

// Execute исполняет платёж по идентификатору сессии шлюза.
//
// Демо-идентификатор всегда завершается успешно. Живая сессия исполняется
// через шлюз: бизнес-код "0000" — completed с выдачей подписки, любой другой
// код — failed без подписки. Транспортная ошибка шлюза поглощается и
// превращается в демо-завершение с успехом.
//
// Повторное исполнение уже завершённого платежа идемпотентно: возвращается
// сохранённый результат, вторая подписка не создаётся.
func (s *PaymentService) Execute(ctx context.Context, gatewayPaymentID string) (*ExecuteResult, error) {
	const op = "services.payment.Execute"
	log := s.log.With(slog.String("op", op), slog.String("bkash_payment_id", gatewayPaymentID))

	payment, err := s.findPayment(ctx, gatewayPaymentID)
	if err != nil {
		return nil, err
	}

	if payment.Status != models.PaymentStatusPending {
		log.Info("payment already settled, returning stored result",
			slog.String("status", payment.Status))
		return &ExecuteResult{
			Status:        payment.Status,
			TransactionID: payment.TransactionID,
			DemoMode:      strings.HasPrefix(gatewayPaymentID, DemoPrefix),
		}, nil
	}

	if strings.HasPrefix(gatewayPaymentID, DemoPrefix) {
		suffix := gatewayPaymentID
		if len(suffix) > 6 {
			suffix = suffix[len(suffix)-6:]
		}
		trxID := fmt.Sprintf("TXN_%d_%s", payment.ID, suffix)
		if err := s.settle(ctx, payment, trxID, true); err != nil {
			return nil, err
		}
		return &ExecuteResult{
			Status:        models.PaymentStatusCompleted,
			TransactionID: trxID,
			DemoMode:      true,
		}, nil
	}

	result, err := s.gateway.ExecuteSession(ctx, gatewayPaymentID)
	if err != nil {
		log.Warn("gateway execute failed, completing in demo mode", sl.Err(err))

		trxID := fmt.Sprintf("DEMO_TXN_%d", payment.ID)
		if err := s.settle(ctx, payment, trxID, true); err != nil {
			return nil, err
		}
		return &ExecuteResult{
			Status:        models.PaymentStatusCompleted,
			TransactionID: trxID,
			DemoMode:      true,
		}, nil
	}

	if result.StatusCode != bkash.StatusCodeSuccess {
		log.Info("gateway declined payment",
			slog.String("status_code", result.StatusCode),
			slog.String("status_message", result.StatusMessage))
		if err := s.repo.FailPayment(ctx, payment.ID); err != nil {
			return nil, err
		}
		return &ExecuteResult{Status: models.PaymentStatusFailed}, nil
	}

	if err := s.settle(ctx, payment, result.TrxID, false); err != nil {
		return nil, err
	}
	return &ExecuteResult{
		Status:        models.PaymentStatusCompleted,
		TransactionID: result.TrxID,
	}, nil
}

// Status возвращает состояние платёжной сессии.
//
// Для демо-идентификатора ответ синтезируется из локального статуса.
// Для живого — запрашивается шлюз; при ошибке запроса ответ синтезируется
// так же, как для демо, с пометкой demo-режима.
func (s *PaymentService) Status(ctx context.Context, gatewayPaymentID string) (*StatusResult, error) {
	const op = "services.payment.Status"
	log := s.log.With(slog.String("op", op), slog.String("bkash_payment_id", gatewayPaymentID))

	payment, err := s.findPayment(ctx, gatewayPaymentID)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(gatewayPaymentID, DemoPrefix) {
		return localStatus(payment, gatewayPaymentID), nil
	}

	result, err := s.gateway.QuerySession(ctx, gatewayPaymentID)
	if err != nil {
		log.Warn("gateway query failed, returning local status", sl.Err(err))
		return localStatus(payment, gatewayPaymentID), nil
	}

	return &StatusResult{
		StatusCode:    result.StatusCode,
		StatusMessage: result.StatusMessage,
		PaymentID:     result.PaymentID,
		TrxID:         result.TrxID,
	}, nil
}

// findPayment ищет платёж по идентификатору сессии, отличая отсутствие
// записи от прочих ошибок хранилища.
func (s *PaymentService) findPayment(ctx context.Context, gatewayPaymentID string) (*models.Payment, error) {
	payment, err := s.repo.FindPaymentByGatewayID(ctx, gatewayPaymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// settle завершает платёж и выдаёт подписку одной транзакцией хранилища,
// затем публикует событие и инвалидирует кеш подписок (оба шага best-effort).
func (s *PaymentService) settle(ctx context.Context, payment *models.Payment, trxID string, demo bool) error {
	subscriptionID, err := s.repo.SettlePayment(ctx, payment.ID, trxID, payment.UserUID, payment.PlanID)
	if err != nil {
		return err
	}
	s.log.Info("payment settled",
		slog.Int("payment_id", payment.ID),
		slog.Int("subscription_id", subscriptionID),
		slog.Bool("demo_mode", demo))

	event := models.PaymentEvent{
		EventID:       uuid.NewString(),
		PaymentID:     payment.ID,
		UserUID:       payment.UserUID,
		PlanID:        payment.PlanID,
		Amount:        payment.Amount,
		TransactionID: trxID,
		DemoMode:      demo,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.Publish("completed", event); err != nil {
		s.log.Warn("failed to publish payment event", sl.Err(err))
	}

	cacheKey := fmt.Sprintf("subscriptions:user:%s", payment.UserUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate subscriptions cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return nil
}

// localStatus синтезирует ответ статуса из локального состояния платежа.
func localStatus(payment *models.Payment, gatewayPaymentID string) *StatusResult {
	statusCode := bkash.StatusCodePending
	statusMessage := "Pending"
	if payment.Status == models.PaymentStatusCompleted {
		statusCode = bkash.StatusCodeSuccess
		statusMessage = "Successful"
	}
	return &StatusResult{
		StatusCode:    statusCode,
		StatusMessage: statusMessage,
		PaymentID:     gatewayPaymentID,
		TrxID:         payment.TransactionID,
		DemoMode:      true,
	}
}
