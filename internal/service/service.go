// service содержит бизнес-логику user-api: аутентификацию по паролю,
// выпуск/проверку подписанных сессионных токенов и операции над
// пользователями с поддержкой немедленного отзыва сессий.
//
// Основные аспекты:
//   - Экземпляр Service безопасен для конкурентного использования из разных
//     горутин: ключевая пара неизменяема, блэклист потокобезопасен,
//     хранилище (storage.Storage) обязано быть потокобезопасным.
//   - Проверка access-токена не обращается ни к БД, ни к блэклисту —
//     отзыв проверяет мидлвар аутентификации, а существование пользователя
//     перепроверяется только на refresh-пути (defense in depth).
//   - Ошибки возвращаются сентинелами и далее маппятся HTTP-слоем
//     на статусы (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/pribylovaa/go-user-api/internal/cache"
	"github.com/pribylovaa/go-user-api/internal/config"
	"github.com/pribylovaa/go-user-api/internal/security"
	"github.com/pribylovaa/go-user-api/internal/storage"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// HTTP-слой: 401 без уточнения причины.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен некорректен по формату/подписи/issuer,
	// либо subject refresh-токена больше не существует. HTTP-слой: 401.
	// Наружу причина не уточняется, внутри различается логированием.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. HTTP-слой: 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrEmailTaken — e-mail уже занят другим пользователем. HTTP-слой: 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrUserNotFound — пользователь не найден. HTTP-слой: 404
	// (только на аутентифицированных CRUD-путях; refresh-путь
	// маскирует отсутствие субъекта под ErrInvalidToken).
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidEmail — e-mail имеет некорректный формат. HTTP-слой: 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политикам сложности. HTTP-слой: 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. HTTP-слой: 400.
	ErrEmptyPassword = errors.New("password is empty")
)

// Service описывает бизнес-логику user-api.
type Service struct {
	storage   storage.Storage
	keys      *security.KeyPair
	blacklist *cache.Blacklist
	cfg       config.AuthConfig
}

// New создаёт новый экземпляр Service.
// Ключевая пара создаётся один раз при старте процесса и внедряется
// сюда общим значением — подписывающая и проверяющая стороны
// разделяют один и тот же материал.
func New(storage storage.Storage, keys *security.KeyPair, blacklist *cache.Blacklist, cfg config.AuthConfig) *Service {
	return &Service{
		storage:   storage,
		keys:      keys,
		blacklist: blacklist,
		cfg:       cfg,
	}
}

// Blacklist возвращает блэклист отозванных субъектов.
// Нужен мидлвару аутентификации и фоновой очистке.
func (s *Service) Blacklist() *cache.Blacklist {
	return s.blacklist
}
