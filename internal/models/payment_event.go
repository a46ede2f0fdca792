package models

import "time"

// PaymentEvent — событие завершённого платежа, публикуемое в RabbitMQ.
type PaymentEvent struct {
	EventID       string    `json:"event_id"`
	PaymentID     int       `json:"payment_id"`
	UserUID       string    `json:"user_uid"`
	PlanID        int       `json:"plan_id"`
	Amount        float64   `json:"amount"`
	TransactionID string    `json:"transaction_id"`
	DemoMode      bool      `json:"demo_mode"`
	OccurredAt    time.Time `json:"occurred_at"`
}
