package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"portfolio-tracker/config"
)

// Open builds the Store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.AppConfig, log *zap.SugaredLogger) (Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		db, err := config.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Infow("connected to MongoDB", "database", cfg.DatabaseName)
		return NewMongoStore(ctx, db)

	case config.StorePostgres:
		if err := MigratePostgres(cfg.DatabaseURL, log); err != nil {
			return nil, err
		}
		pool, err := config.ConnectPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("connected to PostgreSQL")
		return NewPostgresStore(pool), nil

	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
