package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookbook/internal/storage"
	"cookbook/pkg/domain"
)

func TestStore_SaveAssignsIDsAndResolvesReferences(t *testing.T) {
	ctx := context.Background()
	s := New()
	cup, err := s.Units().Create(ctx, "Cup")
	require.NoError(t, err)
	mexican, err := s.Categories().Create(ctx, "Mexican")
	require.NoError(t, err)

	r := domain.Recipe{
		Description: "Salsa",
		Notes:       &domain.Notes{RecipeNotes: "fresh"},
		Categories:  []domain.Category{{ID: mexican.ID}},
	}
	r.AddIngredient(domain.Ingredient{Description: "tomato", Amount: 2, UOM: &domain.UnitOfMeasure{ID: cup.ID}})
	saved, err := s.Recipes().Save(ctx, r)
	require.NoError(t, err)

	assert.NotZero(t, saved.ID)
	assert.Equal(t, domain.Easy, saved.Difficulty)
	assert.NotZero(t, saved.Notes.ID)
	assert.Equal(t, []domain.Category{mexican}, saved.Categories)
	require.Len(t, saved.Ingredients, 1)
	assert.Equal(t, saved.ID, saved.Ingredients[0].RecipeID)
	assert.Equal(t, &cup, saved.Ingredients[0].UOM)

	saved.Ingredients[0].Description = "mutated"
	reloaded, err := s.Recipes().FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "tomato", reloaded.Ingredients[0].Description)
}

func TestStore_SaveReplacesUnknownIngredientIDs(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := domain.Recipe{Description: "Soup"}
	r.AddIngredient(domain.Ingredient{Description: "water", Amount: 1})
	r.AddIngredient(domain.Ingredient{Description: "salt", Amount: 1})
	saved, err := s.Recipes().Save(ctx, r)
	require.NoError(t, err)
	water := saved.Ingredients[0]

	saved.Ingredients = []domain.Ingredient{water, {ID: 999, Description: "pepper", Amount: 1}}
	saved, err = s.Recipes().Save(ctx, saved)
	require.NoError(t, err)

	require.Len(t, saved.Ingredients, 2)
	assert.Equal(t, water.ID, saved.Ingredients[0].ID)
	assert.NotEqual(t, int64(999), saved.Ingredients[1].ID)
	assert.Equal(t, "pepper", saved.Ingredients[1].Description)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Recipes().FindByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
	_, err = s.Recipes().Save(ctx, domain.Recipe{ID: 1})
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
	assert.ErrorIs(t, s.Recipes().DeleteByID(ctx, 1), domain.ErrRecipeNotFound)
	_, err = s.Units().FindByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrUnitOfMeasureNotFound)

	r := domain.Recipe{Description: "x"}
	r.AddIngredient(domain.Ingredient{Description: "y", UOM: &domain.UnitOfMeasure{ID: 77}})
	_, err = s.Recipes().Save(ctx, r)
	assert.ErrorIs(t, err, domain.ErrUnitOfMeasureNotFound)
}

func TestStore_DuplicateReference(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.Units().Create(ctx, "Cup")
	require.NoError(t, err)
	_, err = s.Units().Create(ctx, "Cup")
	assert.ErrorIs(t, err, ErrDuplicateDescription)
}

func TestStore_SnapshotSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cookbook.json")

	s, err := Open(path)
	require.NoError(t, err)
	seed, err := storage.DefaultSeed()
	require.NoError(t, err)
	_, err = storage.Seed(ctx, storage.SeedTarget{Units: s.Units(), Categories: s.Categories(), Recipes: s.Recipes()}, seed)
	require.NoError(t, err)

	before, err := s.Recipes().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, before, 2)

	reopened, err := Open(path)
	require.NoError(t, err)
	after, err := reopened.Recipes().FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	created, err := reopened.Recipes().Save(ctx, domain.Recipe{Description: "new"})
	require.NoError(t, err)
	assert.Greater(t, created.ID, before[1].ID)

	units, err := reopened.Units().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, units, 8)
}

func TestStore_FindByDescription(t *testing.T) {
	ctx := context.Background()
	s := New()
	cup, err := s.Units().Create(ctx, "Cup")
	require.NoError(t, err)
	mexican, err := s.Categories().Create(ctx, "Mexican")
	require.NoError(t, err)

	u, ok, err := s.Units().FindByDescription(ctx, "Cup")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cup, u)

	_, ok, err = s.Units().FindByDescription(ctx, "Bucket")
	require.NoError(t, err)
	assert.False(t, ok)

	c, ok, err := s.Categories().FindByDescription(ctx, "Mexican")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, mexican, c)
}

func TestStore_SeedCompletesAfterPartialRun(t *testing.T) {
	ctx := context.Background()
	s := New()
	target := storage.SeedTarget{Units: s.Units(), Categories: s.Categories(), Recipes: s.Recipes()}
	_, err := s.Units().Create(ctx, "Cup")
	require.NoError(t, err)

	seed, err := storage.DefaultSeed()
	require.NoError(t, err)
	report, err := storage.Seed(ctx, target, seed)
	require.NoError(t, err)
	assert.Equal(t, storage.SeedReport{Units: 7, Categories: 4, Recipes: 2}, report)

	report, err = storage.Seed(ctx, target, seed)
	require.NoError(t, err)
	assert.True(t, report.Skipped)

	units, err := s.Units().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, units, 8)
}
