package repository

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/wildfire_broadcasting_system/internal/config"
	"github.com/shenikar/wildfire_broadcasting_system/internal/service"
	"github.com/shenikar/wildfire_broadcasting_system/pkg/postgres"
)

// Open создает хранилище по STORAGE_DRIVER. Для postgres перед подключением
// применяются миграции; возвращаемая функция закрывает пул.
func Open(ctx context.Context, cfg *config.Config, clock clockwork.Clock, log *logrus.Logger) (service.IncidentRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn("Using in-memory incident store, data is lost on restart")
		return NewMemoryIncidentRepository(clock), func() {}, nil

	case config.StorageDriverPostgres:
		log.Info("Running database migrations...")
		if err := postgres.Migrate(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		log.Info("Database migrations applied successfully")

		dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Successfully connected to PostgreSQL")
		return NewIncidentRepository(dbpool, clock), dbpool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
