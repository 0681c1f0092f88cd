package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей. Значение попадает в claim "role" access-токена.
const (
	RoleUser  = 1
	RoleAdmin = 2
)

// User - модель пользователя в системе.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credentials — пара email+пароль для входа.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
