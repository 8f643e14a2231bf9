package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cookbook/internal/storage"
	"cookbook/internal/storage/memory"
	"cookbook/pkg/domain"
	"cookbook/pkg/httpapi"
)

// backend is the set of repositories one storage driver provides.
type backend struct {
	recipes    domain.RecipeRepository
	units      domain.UnitOfMeasureRepository
	categories domain.CategoryRepository
	seed       storage.SeedTarget
	health     httpapi.HealthChecker
	close      func() error
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// openBackend opens the configured store. SQL stores are migrated on open.
func openBackend(ctx context.Context, cfg Config, logger *zap.Logger) (*backend, error) {
	if cfg.DBDriver == DriverMemory {
		store, err := memory.Open(cfg.dsn())
		if err != nil {
			return nil, fmt.Errorf("unable to open memory store: %w", err)
		}
		logger.Info("using in-memory store", zap.String("snapshot", cfg.dsn()))
		return &backend{
			recipes:    store.Recipes(),
			units:      store.Units(),
			categories: store.Categories(),
			seed: storage.SeedTarget{
				Units:      store.Units(),
				Categories: store.Categories(),
				Recipes:    store.Recipes(),
			},
		}, nil
	}

	db, err := storage.Open(ctx, cfg.DBDriver, cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	applied, err := db.Migrate(ctx)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("unable to migrate schema: %w", err), db.Close())
	}
	for _, name := range applied {
		logger.Info("applied migration", zap.String("name", name))
	}

	return &backend{
		recipes:    storage.NewRecipeRepository(db),
		units:      storage.NewUnitOfMeasureRepository(db),
		categories: storage.NewCategoryRepository(db),
		seed:       db.SeedTarget(),
		health:     db,
		close:      db.Close,
	}, nil
}
