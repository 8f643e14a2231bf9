package image

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cookbook/internal/serial"
	"cookbook/internal/storage/memory"
	"cookbook/pkg/domain"
)

func TestSaveImageFile(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	queue := serial.NewQueue()
	defer queue.Close()

	r := domain.Recipe{Description: "Pizza"}
	r.AddIngredient(domain.Ingredient{Description: "dough", Amount: 1})
	r, err := store.Recipes().Save(ctx, r)
	require.NoError(t, err)

	svc := NewService(store.Recipes(), queue, 0, nil)
	assert.Equal(t, DefaultMaxBytes, svc.MaxBytes())

	payload := []byte("\x89PNG\r\n\x1a\nfake")
	require.NoError(t, svc.SaveImageFile(ctx, r.ID, bytes.NewReader(payload)))

	stored, err := store.Recipes().FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, payload, stored.Image)
	assert.Len(t, stored.Ingredients, 1)
}

func TestSaveImageFile_Rejects(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	queue := serial.NewQueue()
	defer queue.Close()

	r, err := store.Recipes().Save(ctx, domain.Recipe{Description: "Pizza"})
	require.NoError(t, err)
	svc := NewService(store.Recipes(), queue, 4, nil)

	assert.ErrorIs(t, svc.SaveImageFile(ctx, r.ID, strings.NewReader("12345")), ErrImageTooLarge)
	assert.ErrorIs(t, svc.SaveImageFile(ctx, r.ID, strings.NewReader("")), ErrEmptyImage)
	assert.ErrorIs(t, svc.SaveImageFile(ctx, 99, strings.NewReader("1234")), domain.ErrRecipeNotFound)

	require.NoError(t, svc.SaveImageFile(ctx, r.ID, strings.NewReader("1234")))
}

func TestSaveImageFile_ReadErrorIsLoggedAndReturned(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	queue := serial.NewQueue()
	defer queue.Close()

	r, err := store.Recipes().Save(ctx, domain.Recipe{Description: "Pizza", Image: []byte("old")})
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	svc := NewService(store.Recipes(), queue, 0, zap.New(core))

	boom := errors.New("boom")
	err = svc.SaveImageFile(ctx, r.ID, iotest.ErrReader(boom))
	require.ErrorIs(t, err, boom)

	failures := logs.FilterMessage("reading uploaded image failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, r.ID, failures[0].ContextMap()["recipe_id"])

	stored, err := store.Recipes().FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), stored.Image)
}
