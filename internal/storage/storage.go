package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-user-api/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/ключ/запись блэклиста).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создает нового пользователя в БД.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpdateUser сохраняет изменённые поля пользователя.
	UpdateUser(ctx context.Context, user *models.User) error
	// DeleteUser удаляет пользователя по ID.
	DeleteUser(ctx context.Context, id uuid.UUID) error
	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]models.User, error)
}

// KeyStorage хранит ключевой материал подписи токенов
// в виде непрозрачных DER-блобов под фиксированными именами.
type KeyStorage interface {
	// SigningKey возвращает блоб ключа по имени.
	SigningKey(ctx context.Context, name string) ([]byte, error)
	// SaveSigningKey сохраняет блоб ключа под именем.
	SaveSigningKey(ctx context.Context, name string, der []byte) error
}

// BlacklistStorage — долговременная половина блэклиста субъектов.
// In-memory индекс восстанавливается из неё при рестарте.
type BlacklistStorage interface {
	// BlacklistEntries возвращает все записи блэклиста.
	BlacklistEntries(ctx context.Context) ([]models.BlacklistEntry, error)
	// SaveBlacklistEntry сохраняет запись; повторная запись по тому же
	// email перезаписывает отметку времени.
	SaveBlacklistEntry(ctx context.Context, email string, revokedAt time.Time) error
	// DeleteBlacklistEntry удаляет запись; отсутствие записи не ошибка.
	DeleteBlacklistEntry(ctx context.Context, email string) error
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	KeyStorage
	BlacklistStorage
	Close()
}
