package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/efreitasn/miniledger/internal/config"
	"github.com/efreitasn/miniledger/internal/engine"
	"github.com/efreitasn/miniledger/internal/handler"
	"github.com/efreitasn/miniledger/internal/service"
	"github.com/efreitasn/miniledger/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration. A .env file in the working directory, if present,
	// fills in variables that are not already set.
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Instantiate stores.
	stockStore := store.NewStockStore()
	userStore := store.NewUserStore()
	tradeStore := store.NewTradeStore()
	webhookStore := store.NewWebhookStore()

	// Engine.
	trader := engine.NewTrader(stockStore, userStore, tradeStore)

	// Services.
	webhookSvc := service.NewWebhookService(webhookStore, userStore, cfg.WebhookTimeout, logger)
	stockSvc := service.NewStockService(stockStore)
	userSvc := service.NewUserService(userStore, stockStore)
	tradeSvc := service.NewTradeService(trader, userStore, tradeStore, webhookSvc, logger)

	// Seed the catalog and starting users.
	if cfg.SeedOnStart {
		data := service.DefaultSeed()
		if cfg.SeedFile != "" {
			data, err = service.LoadSeedFile(cfg.SeedFile)
			if err != nil {
				logger.Error("failed to load seed file", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}
		if err := service.NewSeeder(stockStore, userSvc, data).SeedInitialState(); err != nil {
			logger.Error("failed to seed initial state", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("initial state seeded",
			slog.Int("stocks", len(data.Stocks)),
			slog.Int("users", len(data.Users)),
		)
	}

	// Router.
	router := handler.NewRouter(stockSvc, userSvc, tradeSvc, webhookSvc, cfg.CORSOrigins, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
