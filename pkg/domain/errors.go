package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRecipeNotFound is returned when a recipe is missing so HTTP handlers can respond with 404.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrIngredientNotFound is returned when a recipe does not hold the requested ingredient.
	ErrIngredientNotFound = errors.New("ingredient not found")
	// ErrUnitOfMeasureNotFound is returned when an ingredient selects an unknown unit.
	ErrUnitOfMeasureNotFound = errors.New("unit of measure not found")
)

// NotFoundError names the missing entity and matches its sentinel with errors.Is.
type NotFoundError struct {
	Kind string
	ID   int64
	err  error
}

// RecipeNotFound builds the error returned for an unknown recipe id.
func RecipeNotFound(id int64) NotFoundError {
	return NotFoundError{Kind: "Recipe", ID: id, err: ErrRecipeNotFound}
}

// IngredientNotFound builds the error returned for an unknown ingredient id.
func IngredientNotFound(id int64) NotFoundError {
	return NotFoundError{Kind: "Ingredient", ID: id, err: ErrIngredientNotFound}
}

// UnitOfMeasureNotFound builds the error returned for an unknown unit id.
func UnitOfMeasureNotFound(id int64) NotFoundError {
	return NotFoundError{Kind: "Unit of measure", ID: id, err: ErrUnitOfMeasureNotFound}
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s Not Found. For ID value: %d", e.Kind, e.ID)
}

func (e NotFoundError) Unwrap() error { return e.err }

// IsNotFound reports whether err names any missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecipeNotFound) ||
		errors.Is(err, ErrIngredientNotFound) ||
		errors.Is(err, ErrUnitOfMeasureNotFound)
}

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form is invalid: %d field(s) rejected", len(e.Fields))
}

// IsValidation helps callers distinguish between form and infrastructure failures.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
