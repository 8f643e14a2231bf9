package command

import (
	"net/url"
	"strconv"
	"strings"

	"cookbook/pkg/domain"
)

// FieldErrors maps a form field name to a message shown next to it.
type FieldErrors map[string]string

// fieldReader pulls typed values out of a submitted form and remembers what failed.
type fieldReader struct {
	form   url.Values
	errors FieldErrors
}

func (f *fieldReader) text(name string) string {
	return strings.TrimSpace(f.form.Get(name))
}

func (f *fieldReader) int64(name string) int64 {
	raw := f.text(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f.errors[name] = "must be a whole number"
		return 0
	}
	return v
}

func (f *fieldReader) int(name string) int {
	raw := f.text(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		f.errors[name] = "must be a whole number"
		return 0
	}
	return v
}

func (f *fieldReader) float(name string) float64 {
	raw := strings.ReplaceAll(f.text(name), ",", ".")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.errors[name] = "must be a number"
		return 0
	}
	return v
}

// ParseRecipeForm binds the recipe form. Ingredients and image are not part of it.
func ParseRecipeForm(form url.Values) (RecipeCommand, FieldErrors) {
	f := &fieldReader{form: form, errors: FieldErrors{}}
	cmd := RecipeCommand{
		ID:          f.int64("id"),
		Description: f.text("description"),
		PrepTime:    f.int("prepTime"),
		CookTime:    f.int("cookTime"),
		Servings:    f.int("servings"),
		Source:      f.text("source"),
		URL:         f.text("url"),
		Directions:  strings.TrimSpace(form.Get("directions")),
		Notes: NotesCommand{
			ID:          f.int64("notes.id"),
			RecipeNotes: strings.TrimSpace(form.Get("notes.recipeNotes")),
		},
	}
	if raw := f.text("difficulty"); raw != "" {
		difficulty, err := domain.ParseDifficulty(raw)
		if err != nil {
			f.errors["difficulty"] = "unknown difficulty"
		}
		cmd.Difficulty = difficulty
	} else {
		cmd.Difficulty = domain.Easy
	}
	for _, raw := range form["categories"] {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			f.errors["categories"] = "unknown category"
			continue
		}
		cmd.Categories = append(cmd.Categories, CategoryCommand{ID: id})
	}
	return cmd, f.errors
}

// ParseIngredientForm binds the ingredient form; the owning recipe comes from the URL.
func ParseIngredientForm(form url.Values, recipeID int64) (IngredientCommand, FieldErrors) {
	f := &fieldReader{form: form, errors: FieldErrors{}}
	cmd := IngredientCommand{
		ID:          f.int64("id"),
		RecipeID:    recipeID,
		Description: f.text("description"),
		Amount:      f.float("amount"),
		UOM:         UnitOfMeasureCommand{ID: f.int64("uom.id")},
	}
	return cmd, f.errors
}
