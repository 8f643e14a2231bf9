// Package command holds the transport-shaped copies of the recipe aggregate that
// forms render and submit, plus the converters to and from the persisted entities.
package command

import "cookbook/pkg/domain"

// UnitOfMeasureCommand is the form/JSON view of a unit of measure.
type UnitOfMeasureCommand struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

// CategoryCommand is the form/JSON view of a category.
type CategoryCommand struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

// NotesCommand is the form/JSON view of recipe notes.
type NotesCommand struct {
	ID          int64  `json:"id"`
	RecipeNotes string `json:"recipe_notes"`
}

// IngredientCommand carries the owning recipe id because ingredient forms are nested under it.
type IngredientCommand struct {
	ID          int64                `json:"id"`
	RecipeID    int64                `json:"recipe_id"`
	Description string               `json:"description"`
	Amount      float64              `json:"amount"`
	UOM         UnitOfMeasureCommand `json:"uom"`
}

// RecipeCommand is what the recipe form and the JSON API exchange.
type RecipeCommand struct {
	ID          int64               `json:"id"`
	Description string              `json:"description"`
	PrepTime    int                 `json:"prep_time"`
	CookTime    int                 `json:"cook_time"`
	Servings    int                 `json:"servings"`
	Source      string              `json:"source"`
	URL         string              `json:"url"`
	Directions  string              `json:"directions"`
	Difficulty  domain.Difficulty   `json:"difficulty"`
	Image       []byte              `json:"-"`
	Notes       NotesCommand        `json:"notes"`
	Ingredients []IngredientCommand `json:"ingredients"`
	Categories  []CategoryCommand   `json:"categories"`
}

// HasImage is used by templates to decide between the stored image and a placeholder.
func (c RecipeCommand) HasImage() bool {
	return len(c.Image) > 0
}

// HasCategory reports whether the recipe is linked to the category; the form pre-checks those boxes.
func (c RecipeCommand) HasCategory(id int64) bool {
	for _, category := range c.Categories {
		if category.ID == id {
			return true
		}
	}
	return false
}
