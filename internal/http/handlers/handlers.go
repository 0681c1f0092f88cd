// handlers содержит REST-хендлеры user-api: сессионные эндпойнты
// (login/refresh) и CRUD пользователей.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pribylovaa/go-user-api/internal/models"
	"github.com/pribylovaa/go-user-api/internal/service"
)

// Options — параметры, влияющие на выпуск cookie.
type Options struct {
	// Secure выставляет флаг Secure на всех сессионных cookie.
	// Включается тогда и только тогда, когда сервер слушает TLS.
	Secure bool

	// AccessTTL/RefreshTTL — Max-Age соответствующих cookie;
	// совпадают с TTL токенов внутри них.
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Handlers агрегирует зависимости REST-слоя.
type Handlers struct {
	svc  *service.Service
	opts Options
}

func New(svc *service.Service, opts Options) *Handlers {
	return &Handlers{svc: svc, opts: opts}
}

// userView — представление пользователя наружу: без hash-а пароля.
type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      int       `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserView(u *models.User) userView {
	return userView{
		ID:        u.ID.String(),
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
