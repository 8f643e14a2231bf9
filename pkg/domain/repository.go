package domain

import "context"

// RecipeRepository persists the recipe aggregate as a whole.
// Save inserts or updates the recipe together with its notes, ingredients and
// category links, drops ingredients no longer held by the aggregate and returns
// the aggregate as reloaded from storage, including newly assigned identifiers.
type RecipeRepository interface {
	FindAll(ctx context.Context) ([]Recipe, error)
	FindByID(ctx context.Context, id int64) (Recipe, error)
	Save(ctx context.Context, r Recipe) (Recipe, error)
	DeleteByID(ctx context.Context, id int64) error
}

// UnitOfMeasureRepository reads unit-of-measure reference data.
type UnitOfMeasureRepository interface {
	FindAll(ctx context.Context) ([]UnitOfMeasure, error)
	FindByID(ctx context.Context, id int64) (UnitOfMeasure, error)
}

// CategoryRepository reads category reference data.
type CategoryRepository interface {
	FindAll(ctx context.Context) ([]Category, error)
}

// Serializer runs aggregate mutations one at a time.
type Serializer interface {
	Do(ctx context.Context, fn func(context.Context) error) error
}
