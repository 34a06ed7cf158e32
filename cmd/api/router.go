package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"libraryapi/internal/auth"
	"libraryapi/internal/catalog"
	"libraryapi/internal/circulation"
	"libraryapi/internal/httpx"
	"libraryapi/internal/platform/config"
	"libraryapi/internal/store"
	"libraryapi/internal/user"
)

// newRouter wires services, handlers and middleware over st. The returned
// cleanup stops background work owned by the router.
func newRouter(cfg config.Config, st store.Store, logger *slog.Logger) (http.Handler, func()) {
	userService := user.NewService(st, logger)
	authService := auth.NewService(auth.Config{
		Secret:             cfg.JWTSecret,
		AccessTokenTTL:     cfg.AccessTokenTTL,
		AdminSignupEnabled: cfg.AdminSignupEnabled,
	}, userService, logger)
	catalogService := catalog.NewService(st, logger)
	circulationService := circulation.NewService(st, logger)

	authHandler := auth.NewHTTPHandler(authService, logger)
	catalogHandler := catalog.NewHTTPHandler(catalogService, logger)
	circulationHandler := circulation.NewHTTPHandler(circulationService, logger)
	userHandler := user.NewHTTPHandler(userService, logger)

	requireAuth := httpx.AuthMiddleware(cfg.JWTSecret, userService)
	protect := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	router.HandleFunc("POST /api/auth/login", authHandler.Login)

	router.HandleFunc("GET /api/books", catalogHandler.List)
	router.HandleFunc("GET /api/books/Genre/{genre}", catalogHandler.ListByGenre)
	router.HandleFunc("GET /api/books/{id}", catalogHandler.Get)
	router.Handle("POST /api/books", protect(catalogHandler.Create))
	router.Handle("PATCH /api/books/update/{id}", protect(catalogHandler.Update))
	router.Handle("DELETE /api/books/{id}", protect(catalogHandler.Delete))

	router.Handle("PATCH /api/users/issue/{id}", protect(circulationHandler.Issue))
	router.Handle("PATCH /api/users/return/{id}", protect(circulationHandler.Return))
	router.Handle("GET /api/users/myBooks", protect(circulationHandler.MyBooks))
	router.Handle("GET /api/users/me", protect(userHandler.GetCurrentUser))
	router.Handle("DELETE /api/users/deleteMe/{id}", protect(userHandler.DeleteMe))

	trustedProxies, err := httpx.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Warn("ignoring trusted proxies", "error", err)
	}
	rateLimiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, trustedProxies)

	handler := httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
		rateLimiter.Middleware,
	)
	return handler, rateLimiter.Stop
}
