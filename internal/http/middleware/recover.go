package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/go-user-api/internal/http/httperr"
	logctx "github.com/pribylovaa/go-user-api/internal/pkg/log"
)

// Recover перехватывает panic, конвертирует в 500/internal и пишет
// унифицированный ответ. Детали паники не утекают на клиент.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logctx.From(r.Context()).
						LogAttrs(r.Context(), slog.LevelError, "panic",
							slog.String("path", r.URL.Path),
							slog.Any("reason", rec),
						)
					httperr.WriteError(w, r, errors.New("internal"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
