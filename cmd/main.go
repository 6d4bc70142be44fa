package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/auth"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/config"
	h "github.com/yasser-eddouche/projet-ouath2-oidc/internal/http"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/identity"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/observability"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/session"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg := config.Load()

	ctx := context.Background()
	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTLPEndpoint)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
		shutdownTracing = func(context.Context) error { return nil }
	}

	idp := identity.NewClient(
		cfg.KeycloakURL,
		cfg.KeycloakRealm,
		cfg.KeycloakClientID,
		cfg.PublicURL+"/auth/callback",
		cfg.RequestTimeout,
	)

	sessions := session.NewStore(cfg.SessionTTL)
	defer sessions.Close()

	authHandler := h.NewAuthHandler(idp, cfg.ProductServiceURL, cfg.OrderServiceURL, cfg.PublicURL, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(cfg.RequestTimeout)
	cartHandler := h.NewCartHandler(cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware(sessions))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.Login)
		r.Get("/callback", authHandler.Callback)
		r.Get("/me", authHandler.Me)
		r.Post("/logout", authHandler.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.With(h.RequireRoles("products")).Get("/", productHandler.List)
			r.With(h.RequireRoles("products")).Get("/{id}", productHandler.Get)
			r.With(h.RequireRoles("products-admin", auth.RoleAdmin)).Post("/", productHandler.Create)
			r.With(h.RequireRoles("products-admin", auth.RoleAdmin)).Put("/{id}", productHandler.Update)
			r.With(h.RequireRoles("products-admin", auth.RoleAdmin)).Delete("/{id}", productHandler.Delete)
		})

		r.With(h.RequireRoles("orders")).Get("/orders", ordersHandler.List)

		r.Route("/cart", func(r chi.Router) {
			r.Use(h.RequireRoles("order-new", auth.RoleClient))
			r.Post("/open", cartHandler.Open)
			r.Get("/", cartHandler.Get)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Post("/submit", cartHandler.Submit)
			r.Delete("/", cartHandler.Discard)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown failed", zap.Error(err))
	}

	logger.Info("server exited")
}
