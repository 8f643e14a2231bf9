// Package domain holds the recipe aggregate, its reference data and the storage contracts.
package domain

import (
	"fmt"
	"strings"
)

// Difficulty grades how demanding a recipe is to cook.
type Difficulty string

const (
	Easy       Difficulty = "EASY"
	Moderate   Difficulty = "MODERATE"
	KindOfHard Difficulty = "KIND_OF_HARD"
	Hard       Difficulty = "HARD"
)

// Difficulties lists the grades in the order the recipe form offers them.
func Difficulties() []Difficulty {
	return []Difficulty{Easy, Moderate, KindOfHard, Hard}
}

// ParseDifficulty accepts the stored representation case-insensitively.
func ParseDifficulty(raw string) (Difficulty, error) {
	candidate := Difficulty(strings.ToUpper(strings.TrimSpace(raw)))
	for _, d := range Difficulties() {
		if d == candidate {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", raw)
}

// UnitOfMeasure is reference data selected by ingredients.
type UnitOfMeasure struct {
	ID          int64
	Description string
}

// Category groups recipes; a recipe may belong to several.
type Category struct {
	ID          int64
	Description string
}

// Notes holds free-form remarks attached to exactly one recipe.
type Notes struct {
	ID          int64
	RecipeNotes string
}

// Ingredient belongs to a single recipe and has no lifecycle of its own.
type Ingredient struct {
	ID          int64
	RecipeID    int64
	Description string
	Amount      float64
	UOM         *UnitOfMeasure
}

// UOMID returns the selected unit identifier or zero when none is set.
func (i Ingredient) UOMID() int64 {
	if i.UOM == nil {
		return 0
	}
	return i.UOM.ID
}

// Recipe is the aggregate root: saving it persists notes, ingredients and category links.
type Recipe struct {
	ID          int64
	Description string
	PrepTime    int
	CookTime    int
	Servings    int
	Source      string
	URL         string
	Directions  string
	Difficulty  Difficulty
	Image       []byte
	Notes       *Notes
	Ingredients []Ingredient
	Categories  []Category
}

// AddIngredient binds the ingredient to this recipe before appending it.
func (r *Recipe) AddIngredient(ingredient Ingredient) {
	ingredient.RecipeID = r.ID
	r.Ingredients = append(r.Ingredients, ingredient)
}

// FindIngredient looks an ingredient up by identity. Zero never matches.
func (r *Recipe) FindIngredient(id int64) (Ingredient, int, bool) {
	if id == 0 {
		return Ingredient{}, -1, false
	}
	for i, ingredient := range r.Ingredients {
		if ingredient.ID == id {
			return ingredient, i, true
		}
	}
	return Ingredient{}, -1, false
}

// RemoveIngredient drops the ingredient with the given id and reports whether it was present.
func (r *Recipe) RemoveIngredient(id int64) bool {
	_, idx, ok := r.FindIngredient(id)
	if !ok {
		return false
	}
	r.Ingredients = append(r.Ingredients[:idx], r.Ingredients[idx+1:]...)
	return true
}

// IngredientIDs collects the identifiers currently held by the aggregate.
func (r *Recipe) IngredientIDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(r.Ingredients))
	for _, ingredient := range r.Ingredients {
		if ingredient.ID != 0 {
			ids[ingredient.ID] = struct{}{}
		}
	}
	return ids
}
