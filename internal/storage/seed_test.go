package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookbook/pkg/domain"
)

func TestDefaultSeed_Parses(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)

	assert.Len(t, seed.Units, 8)
	assert.Equal(t, []string{"American", "Italian", "Mexican", "Fast Food"}, seed.Categories)
	require.Len(t, seed.Recipes, 2)
	assert.Equal(t, "Perfect Guacamole", seed.Recipes[0].Description)
	assert.Len(t, seed.Recipes[0].Ingredients, 8)
	assert.Equal(t, "serrano chiles, stems and seeds removed, minced", seed.Recipes[0].Ingredients[4].Description)
}

func TestSeed_LoadsOnce(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seed, err := DefaultSeed()
	require.NoError(t, err)

	report, err := Seed(ctx, db.SeedTarget(), seed)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Units: 8, Categories: 4, Recipes: 2}, report)

	recipes, err := NewRecipeRepository(db).FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	guac := recipes[0]
	assert.Equal(t, "Perfect Guacamole", guac.Description)
	assert.Equal(t, domain.Easy, guac.Difficulty)
	require.NotNil(t, guac.Notes)
	assert.Len(t, guac.Ingredients, 8)
	assert.Equal(t, "Each", guac.Ingredients[0].UOM.Description)
	assert.Len(t, guac.Categories, 2)

	report, err = Seed(ctx, db.SeedTarget(), seed)
	require.NoError(t, err)
	assert.True(t, report.Skipped)

	recipes, err = NewRecipeRepository(db).FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, recipes, 2)
}

func TestSeed_UnknownUnit(t *testing.T) {
	seed, err := ParseSeed([]byte(`
units: [Cup]
recipes:
  - description: Broken
    difficulty: EASY
    ingredients:
      - {description: water, amount: 1, unit: Bucket}
`))
	require.NoError(t, err)

	_, err = Seed(context.Background(), newTestDB(t).SeedTarget(), seed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown unit "Bucket"`)
}

func TestSeed_RejectedDataWritesNothing(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	broken, err := ParseSeed([]byte(`
units: [Cup]
categories: [Mexican]
recipes:
  - description: Broken
    difficulty: EASY
    categories: [Mexican]
    ingredients:
      - {description: water, amount: 1, unit: Bucket}
`))
	require.NoError(t, err)

	_, err = Seed(ctx, db.SeedTarget(), broken)
	require.ErrorContains(t, err, `unknown unit "Bucket"`)

	units, err := NewUnitOfMeasureRepository(db).FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, units)

	seed, err := DefaultSeed()
	require.NoError(t, err)
	report, err := Seed(ctx, db.SeedTarget(), seed)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Units: 8, Categories: 4, Recipes: 2}, report)
}

func TestSeed_CompletesPartialReferenceData(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	units := NewUnitOfMeasureRepository(db)
	cup, err := units.Create(ctx, "Cup")
	require.NoError(t, err)
	_, err = NewCategoryRepository(db).Create(ctx, "Mexican")
	require.NoError(t, err)

	seed, err := DefaultSeed()
	require.NoError(t, err)
	report, err := Seed(ctx, db.SeedTarget(), seed)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Units: 7, Categories: 3, Recipes: 2}, report)

	all, err := units.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 8)

	found, ok, err := units.FindByDescription(ctx, "Cup")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cup.ID, found.ID)

	categories, err := NewCategoryRepository(db).FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 4)
}

func TestSeedData_Validate(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)
	assert.NoError(t, seed.Validate())

	seed.Recipes[0].Categories = append(seed.Recipes[0].Categories, "Klingon")
	assert.ErrorContains(t, seed.Validate(), `unknown category "Klingon"`)
}
