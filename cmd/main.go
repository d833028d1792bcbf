package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"portfolio-tracker/config"
	"portfolio-tracker/internal/handlers"
	"portfolio-tracker/internal/logger"
	"portfolio-tracker/internal/services"
	"portfolio-tracker/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("dev").Fatalw("failed to load config", "error", err)
	}

	log := logger.New(cfg.Env)
	zap.ReplaceGlobals(log.Desugar())
	defer log.Sync()
	if !cfg.EnvFileLoaded {
		log.Debug("no .env file found, using process environment")
	}

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer db.Close(context.Background())

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, log)
	portfolioService := services.NewPortfolioService(db, log)

	router := handlers.NewAPIRouter(handlers.APIRouterConfig{
		Auth:           handlers.NewAuthHandler(authService, log),
		Portfolio:      handlers.NewPortfolioHandler(portfolioService, log),
		RateLimiter:    handlers.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log),
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Infow("portfolio API listening", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
}
