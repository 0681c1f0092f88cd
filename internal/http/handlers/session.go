package handlers

import (
	"net/http"
	"strings"

	"github.com/pribylovaa/go-user-api/internal/http/httperr"
	"github.com/pribylovaa/go-user-api/internal/http/middleware"
	"github.com/pribylovaa/go-user-api/internal/models"
	"github.com/pribylovaa/go-user-api/internal/security"
)

// Login обрабатывает POST /session: проверяет креды и открывает
// cookie-сессию. В ответе устанавливаются три cookie:
//   - jwt-access-token  (HttpOnly, Max-Age = access TTL);
//   - jwt-refresh-token (HttpOnly, Max-Age = refresh TTL);
//   - xsrf-token        (читаемая скриптом, для double-submit).
//
// Тело ответа — представление вошедшего пользователя.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	user, err := h.svc.Authenticate(r.Context(), in)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	access, err := h.svc.IssueAccessToken(r.Context(), user.Email, user.Role)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	refresh, err := h.svc.IssueRefreshToken(r.Context(), user.Email, user.Role)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	csrf, err := security.NewCSRFToken()
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.setAccessCookie(w, access)
	h.setRefreshCookie(w, refresh)
	h.setCSRFCookie(w, csrf)

	writeJSON(w, http.StatusOK, toUserView(user))
}

// Refresh обрабатывает POST /token: по живому refresh-токену из cookie
// выпускает новый access-токен и новый CSRF-токен. Refresh-cookie
// НЕ перевыпускается — абсолютный срок сессии ограничен refresh TTL
// с момента логина, неважно сколько раз её продлевали.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		httperr.WriteError(w, r, httperr.ErrUnauthenticated)
		return
	}

	user, err := h.svc.VerifyRefreshToken(r.Context(), cookie.Value)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	access, err := h.svc.IssueAccessToken(r.Context(), user.Email, user.Role)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	csrf, err := security.NewCSRFToken()
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	h.setAccessCookie(w, access)
	h.setCSRFCookie(w, csrf)

	w.WriteHeader(http.StatusOK)
}

// SessionOptions отвечает на CORS preflight сессионных эндпойнтов.
func (h *Handlers) SessionOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", strings.Join([]string{http.MethodPost, http.MethodOptions}, ", "))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) setAccessCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.opts.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.opts.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// setCSRFCookie выставляет анти-CSRF cookie. Скрипт фронта обязан
// уметь её прочитать, поэтому HttpOnly здесь не ставится.
func (h *Handlers) setCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CSRFCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.opts.AccessTTL.Seconds()),
		Secure:   h.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
