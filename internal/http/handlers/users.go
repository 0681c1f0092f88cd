package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-user-api/internal/http/httperr"
	"github.com/pribylovaa/go-user-api/internal/http/middleware"
	"github.com/pribylovaa/go-user-api/internal/models"
)

// RegisterUser обрабатывает POST /users — публичная регистрация.
func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	user, err := h.svc.RegisterUser(r.Context(), in.Email, in.Password)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserView(user))
}

// GetUser обрабатывает GET /users/{id}: свою запись видит любой
// аутентифицированный, чужую — только админ.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	user, err := h.svc.UserByID(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	if !h.mayAccess(r, user) {
		httperr.WriteError(w, r, httperr.ErrForbidden)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(user))
}

// UpdateUser обрабатывает PUT /users/{id} — смену пароля.
// Правило доступа то же, что у GetUser.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	var in struct {
		Password string `json:"password"`
	}
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	user, err := h.svc.UserByID(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	if !h.mayAccess(r, user) {
		httperr.WriteError(w, r, httperr.ErrForbidden)
		return
	}

	if err := h.svc.UpdatePassword(r.Context(), id, in.Password); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser обрабатывает DELETE /users/{id}. Удаление немедленно
// отзывает сессии субъекта: действующие access-токены перестают
// приниматься, включая токен, которым выполнено само удаление.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	user, err := h.svc.UserByID(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	if !h.mayAccess(r, user) {
		httperr.WriteError(w, r, httperr.ErrForbidden)
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUsers обрабатывает GET /users — только для админа.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, httperr.ErrUnauthenticated)
		return
	}

	if !principal.IsAdmin() {
		httperr.WriteError(w, r, httperr.ErrForbidden)
		return
	}

	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	out := make([]userView, 0, len(users))
	for i := range users {
		out = append(out, toUserView(&users[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

// UsersOptions отвечает на CORS preflight маршрутов /users.
func (h *Handlers) UsersOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}, ", "))
	w.WriteHeader(http.StatusNoContent)
}

// mayAccess — общее правило авторизации CRUD: своя запись или админ.
func (h *Handlers) mayAccess(r *http.Request, user *models.User) bool {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return false
	}

	return principal.IsAdmin() || principal.Subject == user.Email
}

// pathID извлекает и валидирует UUID из сегмента пути {id}.
func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
