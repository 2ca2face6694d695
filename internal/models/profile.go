// Package models содержит доменные структуры сервиса облачного майнинга,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Profile представляет зарегистрированного пользователя сервиса.
type Profile struct {
	UID          string    // Уникальный идентификатор профиля
	Email        string    // Электронная почта
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Роль пользователя, admin или user
	ReferralCode string    // Реферальный код, выводится из email
	Balance      float64   // Баланс профиля в USD
	CreatedAt    time.Time // Дата создания профиля
}

// Роли профиля.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
