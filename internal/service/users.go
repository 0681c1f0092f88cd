package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-user-api/internal/models"
	"github.com/pribylovaa/go-user-api/internal/pkg/log"
	"github.com/pribylovaa/go-user-api/internal/storage"
)

// Authenticate проверяет пару email+пароль и возвращает пользователя.
// Любая причина отказа (нет пользователя, неверный пароль) схлопывается
// в единый ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, creds models.Credentials) (*models.User, error) {
	const op = "service.users.Authenticate"

	normEmail, err := validateEmail(creds.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(creds.Password) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, creds.Password) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return user, nil
}

// RegisterUser регистрирует нового пользователя.
// Повторная регистрация ранее удалённого email снимает его блокировку:
// доступ должен восстановиться немедленно, не дожидаясь очистки блэклиста.
func (s *Service) RegisterUser(ctx context.Context, email, password string) (*models.User, error) {
	const op = "service.users.RegisterUser"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.storage.UserByEmail(ctx, normEmail)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.blacklist.Unrevoke(ctx, normEmail); err != nil {
		// Регистрация уже состоялась; in-memory индекс очищен в любом
		// случае, долговременную запись доберёт фоновая очистка.
		log.From(ctx).Warn("unrevoke_on_register_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	return user, nil
}

// UserByID находит пользователя по ID.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "service.users.UserByID"

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// ListUsers возвращает всех пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "service.users.ListUsers"

	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// UpdatePassword меняет пароль пользователя.
func (s *Service) UpdatePassword(ctx context.Context, id uuid.UUID, password string) error {
	const op = "service.users.UpdatePassword"

	if err := validatePassword(password); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user.PasswordHash = hashedPassword
	user.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteUser удаляет пользователя и немедленно отзывает его сессии.
// Блокировка субъекта — то, что делает logout-on-delete действенным,
// несмотря на stateless access-токены с ещё не истёкшим exp.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	const op = "service.users.DeleteUser"

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.blacklist.Revoke(ctx, user.Email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.users.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	const op = "service.users.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет минимальные требования к паролю.
// Политика по умолчанию: длина >= 8, хотя бы одна строчная, заглавная, цифра и спецсимвол.
func validatePassword(pw string) error {
	const op = "service.users.validatePassword"

	if len(pw) == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	if len([]rune(pw)) < 8 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !(hasLower && hasUpper && hasDigit && hasSpecial) {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
