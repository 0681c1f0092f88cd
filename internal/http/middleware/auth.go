package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/go-user-api/internal/http/httperr"
	"github.com/pribylovaa/go-user-api/internal/models"
	logctx "github.com/pribylovaa/go-user-api/internal/pkg/log"
)

// Имена cookie/заголовков сессии. Cookie xsrf-token без HttpOnly —
// фронт обязан уметь прочитать её и вернуть значение одноимённым
// заголовком (double-submit).
const (
	AccessTokenCookie  = "jwt-access-token"
	RefreshTokenCookie = "jwt-refresh-token"
	CSRFCookie         = "xsrf-token"
	CSRFHeader         = "xsrf-token"
)

// TokenVerifier проверяет access-токен и возвращает субъект запроса.
type TokenVerifier interface {
	VerifyAccessToken(raw string) (*models.Principal, error)
}

// RevocationChecker отвечает, отозваны ли сессии субъекта.
type RevocationChecker interface {
	IsRevoked(email string) bool
}

// Authenticate — фильтр аутентификации защищённых маршрутов.
//
// Порядок проверок:
//  1. OPTIONS пропускается без аутентификации (CORS preflight не несёт
//     cookie-заголовков в ряде браузеров);
//  2. double-submit CSRF: cookie xsrf-token и одноимённый заголовок
//     обязаны присутствовать и совпадать (сравнение за константное время);
//  3. access-токен достаётся из cookie и проверяется верификатором;
//  4. субъект сверяется с блэклистом отозванных;
//  5. принципал кладётся в контекст запроса.
//
// Любой отказ — единый 401 без уточнения причины; различия остаются
// только в серверных логах. Принципал либо установлен целиком, либо
// запрос отклонён — частичной аутентификации не бывает.
func Authenticate(verifier TokenVerifier, revoked RevocationChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			lg := logctx.From(r.Context())

			if !csrfMatches(r) {
				lg.Warn("auth_rejected", slog.String("reason", "csrf_mismatch"))
				httperr.WriteError(w, r, httperr.ErrUnauthenticated)
				return
			}

			cookie, err := r.Cookie(AccessTokenCookie)
			if err != nil || cookie.Value == "" {
				lg.Warn("auth_rejected", slog.String("reason", "no_access_cookie"))
				httperr.WriteError(w, r, httperr.ErrUnauthenticated)
				return
			}

			principal, err := verifier.VerifyAccessToken(cookie.Value)
			if err != nil {
				lg.Warn("auth_rejected",
					slog.String("reason", "token_invalid"),
					slog.String("err", err.Error()),
				)
				httperr.WriteError(w, r, httperr.ErrUnauthenticated)
				return
			}

			if revoked.IsRevoked(principal.Subject) {
				lg.Warn("auth_rejected", slog.String("reason", "subject_revoked"))
				httperr.WriteError(w, r, httperr.ErrUnauthenticated)
				return
			}

			ctx := context.WithValue(r.Context(), ctxPrincipal, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFrom возвращает аутентифицированный принципал из контекста.
// До мидлвара Authenticate (и на публичных маршрутах) вернёт nil/false.
func PrincipalFrom(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(*models.Principal)
	return p, ok && p != nil
}

// csrfMatches проверяет равенство CSRF cookie и заголовка.
// Пустые значения не проходят: отсутствие пары — тоже отказ.
func csrfMatches(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookie)
	if err != nil || cookie.Value == "" {
		return false
	}

	header := r.Header.Get(CSRFHeader)
	if header == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) == 1
}
