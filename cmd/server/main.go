package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/mini_shop/internal/config"
	"github.com/Skotchmaster/mini_shop/internal/db"
	"github.com/Skotchmaster/mini_shop/internal/events"
	"github.com/Skotchmaster/mini_shop/internal/httpserver"
	"github.com/Skotchmaster/mini_shop/internal/logging"
	"github.com/Skotchmaster/mini_shop/internal/repo"
	"github.com/Skotchmaster/mini_shop/internal/service"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Error("db init error", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Error("db migrate error", "error", err)
		os.Exit(1)
	}

	pub, err := events.New(cfg.KafkaBrokers)
	if err != nil {
		logger.Error("kafka init error", "error", err)
		os.Exit(1)
	}

	r := repo.New(gdb)

	authService := &service.AuthService{
		Users:      r,
		Events:     pub,
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	}
	catalogService := service.NewCatalogService(r, pub)
	cartService := &service.CartService{
		Carts:    r,
		Products: r,
		Events:   pub,
	}

	e := httpserver.New(httpserver.Options{
		ServiceName: cfg.ServiceName,
		Logger:      logger,
		BodyLimit:   cfg.BodyLimit,
	})
	httpserver.Register(e, &httpserver.Deps{
		DB:       gdb,
		Verifier: authService,
		Auth:     &httpserver.AuthHTTP{Svc: authService},
		Products: &httpserver.ProductHTTP{Svc: catalogService},
		Cart:     &httpserver.CartHTTP{Svc: cartService},
	})

	go func() {
		logger.Info("listening", "addr", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := pub.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close error", "error", err)
	}

	logger.Info("shutdown complete")
}
