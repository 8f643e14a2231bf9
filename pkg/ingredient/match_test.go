package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookbook/pkg/command"
	"cookbook/pkg/domain"
)

func TestLocateSaved(t *testing.T) {
	teaspoon := &domain.UnitOfMeasure{ID: 1, Description: "Teaspoon"}
	cup := &domain.UnitOfMeasure{ID: 2, Description: "Cup"}

	saved := []domain.Ingredient{
		{ID: 1, Description: "salt", Amount: 1, UOM: teaspoon},
		{ID: 2, Description: "sugar", Amount: 1, UOM: cup},
		{ID: 3, Description: "salt", Amount: 1, UOM: teaspoon},
	}
	before := map[int64]struct{}{1: {}, 2: {}}

	tests := []struct {
		name    string
		cmd     command.IngredientCommand
		before  map[int64]struct{}
		wantID  int64
		wantErr error
	}{
		{
			name:   "identity match",
			cmd:    command.IngredientCommand{ID: 2, Description: "renamed"},
			before: before,
			wantID: 2,
		},
		{
			name:   "fallback ignores ingredients that existed before",
			cmd:    command.IngredientCommand{Description: "salt", Amount: 1, UOM: command.UnitOfMeasureCommand{ID: 1}},
			before: before,
			wantID: 3,
		},
		{
			name:   "stale id falls back to attributes",
			cmd:    command.IngredientCommand{ID: 99, Description: "salt", Amount: 1, UOM: command.UnitOfMeasureCommand{ID: 1}},
			before: before,
			wantID: 3,
		},
		{
			name:    "unit must match",
			cmd:     command.IngredientCommand{Description: "salt", Amount: 1, UOM: command.UnitOfMeasureCommand{ID: 2}},
			before:  before,
			wantErr: domain.ErrIngredientNotFound,
		},
		{
			name:    "amount must match",
			cmd:     command.IngredientCommand{Description: "salt", Amount: 2, UOM: command.UnitOfMeasureCommand{ID: 1}},
			before:  before,
			wantErr: domain.ErrIngredientNotFound,
		},
		{
			name:    "several candidates are ambiguous",
			cmd:     command.IngredientCommand{Description: "salt", Amount: 1, UOM: command.UnitOfMeasureCommand{ID: 1}},
			before:  map[int64]struct{}{},
			wantErr: ErrAmbiguousIngredient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := locateSaved(saved, tt.cmd, tt.before)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestLocateSaved_NoUnit(t *testing.T) {
	saved := []domain.Ingredient{{ID: 5, Description: "water", Amount: 1}}
	got, err := locateSaved(saved, command.IngredientCommand{Description: "water", Amount: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)
}
