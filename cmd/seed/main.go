package main

import (
	"context"

	"portfolio-tracker/config"
	"portfolio-tracker/internal/logger"
	"portfolio-tracker/internal/services"
	"portfolio-tracker/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("dev").Fatalw("failed to load config", "error", err)
	}

	log := logger.New(cfg.Env)
	defer log.Sync()
	if !cfg.EnvFileLoaded {
		log.Debug("no .env file found, using process environment")
	}

	ctx := context.Background()
	db, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer db.Close(ctx)

	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, log)
	seeder := services.NewSeedService(authService, db, db, log)

	if _, _, err := seeder.SeedDemo(ctx); err != nil {
		log.Fatalw("seed failed", "error", err)
	}
}
