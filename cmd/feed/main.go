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
)

const shutdownTimeout = 5 * time.Second

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

	marketService := services.NewMarketDataService(services.NewPriceSimulator())
	hub := services.NewWebSocketHub(marketService, cfg.TickInterval, log)

	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	router := handlers.NewFeedRouter(
		handlers.NewMarketHandler(marketService, hub, nil, log),
		cfg.AllowedOrigins,
		log,
	)

	srv := &http.Server{Addr: ":" + cfg.FeedPort, Handler: router}
	go func() {
		log.Infow("price feed listening", "port", cfg.FeedPort, "interval", cfg.TickInterval)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	<-hubDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
}
