package uom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookbook/internal/storage/memory"
	"cookbook/pkg/command"
)

func TestListAllUoms(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for _, name := range []string{"Teaspoon", "Cup", "Pinch"} {
		_, err := store.Units().Create(ctx, name)
		require.NoError(t, err)
	}

	got, err := NewService(store.Units()).ListAllUoms(ctx)
	require.NoError(t, err)

	var names []string
	for _, u := range got {
		assert.NotZero(t, u.ID)
		names = append(names, u.Description)
	}
	assert.Equal(t, []string{"Cup", "Pinch", "Teaspoon"}, names)
}

func TestListAllUoms_Empty(t *testing.T) {
	got, err := NewService(memory.New().Units()).ListAllUoms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []command.UnitOfMeasureCommand{}, got)
}
