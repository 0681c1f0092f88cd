// httperr стандартизирует ответы об ошибках HTTP-слоя user-api.
// На вход он принимает ошибку (сентинел слоя service),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Все отказы аутентификации (неверные креды, битый/просроченный/отозванный
// токен, несовпадение CSRF) намеренно отвечают одинаковым 401/unauthenticated:
// разная диагностика подсказывала бы атакующему, какая именно проверка упала.
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-user-api/internal/service"
)

// APIError — единый формат ошибки для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует доменную ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - сентинелы service маппятся по таблице ниже;
//   - всё прочее — 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := mapError(err)
	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров и мидлваров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// ErrUnauthenticated — ошибка "уровня транспорта" для отказов мидлвара
// (нет cookie, несовпадение CSRF, отозванный субъект). Через таблицу
// маппится в тот же 401, что и токеновые сентинелы service.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrBadRequest — битый вход (не-JSON тело, некорректный UUID в пути).
var ErrBadRequest = errors.New("bad request")

// ErrForbidden — аутентифицирован, но не авторизован (чужой ресурс без
// админской роли).
var ErrForbidden = errors.New("forbidden")

// mapError — таблица доменная ошибка -> HTTP/FE-код/сообщение:
//   - ErrInvalidCredentials / ErrInvalidToken / ErrTokenExpired /
//     ErrUnauthenticated -> 401 (единый ответ по всем причинам);
//   - ErrForbidden -> 403;
//   - ErrUserNotFound -> 404;
//   - ErrEmailTaken -> 409;
//   - ErrInvalidEmail / ErrWeakPassword / ErrEmptyPassword / ErrBadRequest -> 400;
//   - прочее -> 500/internal.
func mapError(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "permission_denied", "permission denied"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "already_exists", "already exists"
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrEmptyPassword),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
