package models

import "time"

// Статусы пользовательской подписки.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"
)

// UserSubscription представляет выданное пользователю право на тариф.
// Создаётся только при переходе платежа в статус completed.
type UserSubscription struct {
	ID        int       `json:"id"`
	UserUID   string    `json:"user_uid"`
	PlanID    int       `json:"plan_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
