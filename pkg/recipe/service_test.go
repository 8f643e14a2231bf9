package recipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"cookbook/internal/serial"
	"cookbook/internal/storage/memory"
	"cookbook/pkg/command"
	"cookbook/pkg/domain"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	queue := serial.NewQueue()
	t.Cleanup(queue.Close)
	return NewService(store.Recipes(), store.Categories(), queue, zaptest.NewLogger(t)), store
}

func TestSaveRecipeCommand_New(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	mexican, err := store.Categories().Create(ctx, "Mexican")
	require.NoError(t, err)

	saved, err := svc.SaveRecipeCommand(ctx, command.RecipeCommand{
		Description: "Tacos",
		PrepTime:    20,
		Difficulty:  domain.Moderate,
		Notes:       command.NotesCommand{RecipeNotes: "spicy"},
		Categories:  []command.CategoryCommand{{ID: mexican.ID}},
	})
	require.NoError(t, err)

	assert.NotZero(t, saved.ID)
	assert.NotZero(t, saved.Notes.ID)
	assert.Equal(t, []command.CategoryCommand{{ID: mexican.ID, Description: "Mexican"}}, saved.Categories)

	found, err := svc.FindCommandByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, found)
}

func TestSaveRecipeCommand_UpdateKeepsIngredientsAndImage(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	existing := domain.Recipe{Description: "Bread", Image: []byte("png"), Notes: &domain.Notes{RecipeNotes: "old"}}
	existing.AddIngredient(domain.Ingredient{Description: "flour", Amount: 3})
	existing, err := store.Recipes().Save(ctx, existing)
	require.NoError(t, err)

	saved, err := svc.SaveRecipeCommand(ctx, command.RecipeCommand{
		ID:          existing.ID,
		Description: "Sourdough",
		Servings:    2,
		Difficulty:  domain.Hard,
		Notes:       command.NotesCommand{RecipeNotes: "new"},
	})
	require.NoError(t, err)

	assert.Equal(t, existing.ID, saved.ID)
	assert.Equal(t, "Sourdough", saved.Description)
	assert.Equal(t, domain.Hard, saved.Difficulty)
	assert.Equal(t, existing.Notes.ID, saved.Notes.ID)
	assert.Equal(t, "new", saved.Notes.RecipeNotes)
	require.Len(t, saved.Ingredients, 1)
	assert.Equal(t, existing.Ingredients[0].ID, saved.Ingredients[0].ID)
	assert.Equal(t, []byte("png"), saved.Image)
}

func TestSaveRecipeCommand_Invalid(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.SaveRecipeCommand(context.Background(), command.RecipeCommand{PrepTime: -1})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "description")
	assert.Contains(t, verr.Fields, "prepTime")

	all, err := store.Recipes().FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSaveRecipeCommand_UnknownID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.SaveRecipeCommand(context.Background(), command.RecipeCommand{ID: 5, Description: "x"})
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestFindByID_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.FindByID(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
	_, err = svc.FindCommandByID(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestFindAllAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	a, err := svc.SaveRecipeCommand(ctx, command.RecipeCommand{Description: "a"})
	require.NoError(t, err)
	_, err = svc.SaveRecipeCommand(ctx, command.RecipeCommand{Description: "b"})
	require.NoError(t, err)

	all, err := svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.DeleteByID(ctx, a.ID))
	assert.ErrorIs(t, svc.DeleteByID(ctx, a.ID), domain.ErrRecipeNotFound)

	all, err = svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListCategories(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	for _, name := range []string{"Mexican", "American"} {
		_, err := store.Categories().Create(ctx, name)
		require.NoError(t, err)
	}

	got, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "American", got[0].Description)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(command.RecipeCommand{Description: "ok", Difficulty: domain.Easy}))
	assert.NoError(t, Validate(command.RecipeCommand{Description: "ok"}))

	err := Validate(command.RecipeCommand{Description: " ", Servings: -2, CookTime: -1, Difficulty: "nope"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)
}

func TestMergeFormFields_DropsNotes(t *testing.T) {
	existing := domain.Recipe{ID: 1, Notes: &domain.Notes{ID: 2, RecipeNotes: "x"}}
	merged := mergeFormFields(existing, domain.Recipe{Description: "y"})
	assert.Nil(t, merged.Notes)
	assert.Equal(t, "y", merged.Description)
}
