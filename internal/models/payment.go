package models

import "time"

// Статусы платежа. Переходы только pending -> completed и pending -> failed,
// терминальные статусы не изменяются.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment представляет одну попытку оплаты тарифа.
type Payment struct {
	ID             int       `json:"id"`
	UserUID        string    `json:"user_uid"`
	PlanID         int       `json:"plan_id"`
	Amount         float64   `json:"amount"`
	Status         string    `json:"status"`
	BkashPaymentID string    `json:"bkash_payment_id,omitempty"` // Идентификатор сессии шлюза, пустой до её открытия
	TransactionID  string    `json:"transaction_id,omitempty"`   // Идентификатор транзакции, пустой до завершения
	CreatedAt      time.Time `json:"created_at"`
}
