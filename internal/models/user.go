// Package models содержит доменные структуры сервиса оплаты подписок.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    `json:"uid"`   // Уникальный идентификатор пользователя
	Email        string    `json:"email"` // Электронная почта (уникальная)
	Name         string    `json:"name"`  // Отображаемое имя
	PasswordHash string    `json:"-"`     // Хэш пароля пользователя
	CreatedAt    time.Time `json:"created_at"`
}
