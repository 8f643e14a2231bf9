package ingredient

import (
	"errors"
	"fmt"

	"cookbook/pkg/command"
	"cookbook/pkg/domain"
)

// ErrAmbiguousIngredient is returned when more than one freshly saved ingredient
// matches the submitted description, amount and unit.
var ErrAmbiguousIngredient = errors.New("saved ingredient is ambiguous")

// locateSaved finds the ingredient the submitted command turned into after the
// aggregate was saved. Identity wins; when the command carried no usable id the
// candidates are the ingredients whose ids did not exist before the save, matched
// on description, amount and unit id. No uniqueness is guaranteed by storage, so
// zero or several candidates are reported as errors.
func locateSaved(saved []domain.Ingredient, cmd command.IngredientCommand, before map[int64]struct{}) (domain.Ingredient, error) {
	if cmd.ID != 0 {
		for _, ingredient := range saved {
			if ingredient.ID == cmd.ID {
				return ingredient, nil
			}
		}
	}

	var matches []domain.Ingredient
	for _, ingredient := range saved {
		if _, existed := before[ingredient.ID]; existed {
			continue
		}
		if ingredient.Description == cmd.Description &&
			ingredient.Amount == cmd.Amount &&
			ingredient.UOMID() == cmd.UOM.ID {
			matches = append(matches, ingredient)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return domain.Ingredient{}, domain.IngredientNotFound(cmd.ID)
	default:
		return domain.Ingredient{}, fmt.Errorf("%w: %d candidates for %q", ErrAmbiguousIngredient, len(matches), cmd.Description)
	}
}
