package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/subscription-payments/internal/models"
)

// CreatePayment сохраняет новый платёж в статусе pending и возвращает его ID.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) (int, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO payments (user_uid, plan_id, amount, status)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		payment.UserUID, payment.PlanID, payment.Amount,
		models.PaymentStatusPending).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// SetPaymentGatewayID записывает идентификатор платёжной сессии шлюза.
// Идентификатор уникален: по нему выполняются execute и status.
func (s *Storage) SetPaymentGatewayID(ctx context.Context, paymentID int, gatewayID string) error {
	const op = "storage.SetPaymentGatewayID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET bkash_payment_id = $1
			  WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, query, gatewayID, paymentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindPaymentByGatewayID возвращает платёж по идентификатору сессии шлюза.
func (s *Storage) FindPaymentByGatewayID(ctx context.Context, gatewayID string) (*models.Payment, error) {
	const op = "storage.FindPaymentByGatewayID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, plan_id, amount, status, bkash_payment_id,
			      transaction_id, created_at
			  FROM payments
			  WHERE bkash_payment_id = $1`
	p := &models.Payment{}
	row := s.DB.QueryRowContext(ctx, query, gatewayID)

	var bkashPaymentID, transactionID sql.NullString
	if err := row.Scan(&p.ID, &p.UserUID, &p.PlanID, &p.Amount, &p.Status,
		&bkashPaymentID, &transactionID, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.BkashPaymentID = bkashPaymentID.String
	p.TransactionID = transactionID.String
	return p, nil
}

// SettlePayment завершает платёж и выдаёт подписку одной транзакцией:
// платёж переводится в completed с transaction id, в user_subscriptions
// вставляется активная запись. Возвращает ID созданной подписки.
func (s *Storage) SettlePayment(ctx context.Context, paymentID int, transactionID, userUID string, planID int) (int, error) {
	const op = "storage.SettlePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE payments
			  SET status = $1,
			      transaction_id = $2
			  WHERE id = $3`
	if _, err = tx.ExecContext(ctx, query,
		models.PaymentStatusCompleted, transactionID, paymentID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var subscriptionID int
	query = `INSERT INTO user_subscriptions (user_uid, plan_id, status)
			 VALUES ($1, $2, $3)
			 RETURNING id;`
	if err = tx.QueryRowContext(ctx, query,
		userUID, planID, models.SubscriptionStatusActive).Scan(&subscriptionID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return subscriptionID, nil
}

// FailPayment переводит платёж в статус failed без выдачи подписки.
func (s *Storage) FailPayment(ctx context.Context, paymentID int) error {
	const op = "storage.FailPayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET status = $1
			  WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, query, models.PaymentStatusFailed, paymentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
