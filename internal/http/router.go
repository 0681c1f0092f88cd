// http собирает REST-поверхность user-api: маршруты, мидлвары
// и границу между публичными и защищёнными эндпойнтами.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-user-api/internal/http/handlers"
	"github.com/pribylovaa/go-user-api/internal/http/middleware"
	"github.com/pribylovaa/go-user-api/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api/v1"; если пустой — роуты регистрируются на корне.

	// Secure и TTL прокидываются в выпуск cookie (см. handlers.Options).
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc, handlers.Options{
		Secure:     opts.Secure,
		AccessTTL:  opts.AccessTTL,
		RefreshTTL: opts.RefreshTTL,
	})

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, svc)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, svc)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, svc *service.Service) {
	// Публичные маршруты: вход в сессию, продление и регистрация.
	r.Post("/session", h.Login)
	r.Options("/session", h.SessionOptions)
	r.Post("/token", h.Refresh)
	r.Options("/token", h.SessionOptions)
	r.Post("/users", h.RegisterUser)
	r.Options("/users", h.UsersOptions)

	// Защищённые маршруты: за фильтром аутентификации.
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.Authenticate(svc, svc.Blacklist()))

		pr.Get("/users", h.ListUsers)
		pr.Get("/users/{id}", h.GetUser)
		pr.Put("/users/{id}", h.UpdateUser)
		pr.Delete("/users/{id}", h.DeleteUser)
		pr.Options("/users/{id}", h.UsersOptions)
	})
}
