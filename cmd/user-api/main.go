package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-user-api/internal/cache"
	"github.com/pribylovaa/go-user-api/internal/config"
	httpapi "github.com/pribylovaa/go-user-api/internal/http"
	"github.com/pribylovaa/go-user-api/internal/security"
	"github.com/pribylovaa/go-user-api/internal/service"
	"github.com/pribylovaa/go-user-api/internal/storage/postgres"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Подключение к БД c таймаутом.
	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	str, err := postgres.New(dbCtx, cfg.DB.DatabaseURL)
	dbCancel()
	if err != nil {
		log.Error("postgres_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("postgres_connected")

	// Ключевая пара для подписи токенов: загружается из БД или
	// генерируется при первом старте. Без неё сервис бесполезен.
	keyCtx, keyCancel := context.WithTimeout(rootCtx, 30*time.Second)
	keys, err := security.NewKeyPair(keyCtx, str, cfg.Auth.KeyBits)
	keyCancel()
	if err != nil {
		log.Error("keypair_init_failed", slog.String("err", err.Error()))
		rootCancel()
		str.Close()
		os.Exit(1)
	}
	log.Info("keypair_ready")

	// Блэклист прогревается до начала обслуживания запросов: иначе
	// окно после рестарта пропускало бы токены отозванных субъектов.
	blacklist := cache.New(str)
	loadCtx, loadCancel := context.WithTimeout(rootCtx, 30*time.Second)
	err = blacklist.Load(loadCtx)
	loadCancel()
	if err != nil {
		log.Error("blacklist_load_failed", slog.String("err", err.Error()))
		rootCancel()
		str.Close()
		os.Exit(1)
	}

	// Сервис.
	srvc := service.New(str, keys, blacklist, cfg.Auth)
	log.Info("service_initialized")

	var ready int32 // 0 — not ready; 1 — ready

	apiRouter := httpapi.NewRouter(srvc, httpapi.Options{
		Logger:     log,
		Timeout:    cfg.Timeouts.Service,
		BasePath:   "/api/v1",
		Secure:     cfg.HTTP.TLSEnabled(),
		AccessTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTTL: cfg.Auth.RefreshTokenTTL,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", apiRouter)

	addr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Фоновая очистка блэклиста: записи старше access TTL больше не
	// прикрывают ни один живой токен и могут быть удалены.
	startBlacklistJanitor(rootCtx, blacklist, log, cfg.Auth.AccessTokenTTL)

	serveErrCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.HTTP.TLSEnabled() {
			log.Info("https_listen_start", slog.String("addr", addr))
			err = httpSrv.ListenAndServeTLS(cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile)
		} else {
			log.Info("http_listen_start", slog.String("addr", addr))
			err = httpSrv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	// Graceful stop с таймаутом.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = httpSrv.Close()
	} else {
		log.Info("http_stopped")
	}

	// Явная очистка перед выходом.
	shutdownCancel()
	rootCancel()
	str.Close()

	log.Info("service_stopped")
	os.Exit(0)
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}

// startBlacklistJanitor запускает фоновую задачу, которая периодически
// удаляет из блэклиста записи старше period (равного access TTL).
func startBlacklistJanitor(ctx context.Context, blacklist *cache.Blacklist, log *slog.Logger, period time.Duration) {
	if period <= 0 {
		return
	}

	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				blacklist.EvictExpired(ctx, period)
			}
		}
	}()
}
