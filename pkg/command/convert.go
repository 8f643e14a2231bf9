package command

import "cookbook/pkg/domain"

// FromUnitOfMeasure copies a unit into its form model. A nil unit yields the zero command.
func FromUnitOfMeasure(uom *domain.UnitOfMeasure) UnitOfMeasureCommand {
	if uom == nil {
		return UnitOfMeasureCommand{}
	}
	return UnitOfMeasureCommand{ID: uom.ID, Description: uom.Description}
}

// ToUnitOfMeasure yields nil for an empty selection so the ingredient stays unit-less.
func (c UnitOfMeasureCommand) ToUnitOfMeasure() *domain.UnitOfMeasure {
	if c.ID == 0 && c.Description == "" {
		return nil
	}
	return &domain.UnitOfMeasure{ID: c.ID, Description: c.Description}
}

// FromCategory copies a category into its form model.
func FromCategory(category domain.Category) CategoryCommand {
	return CategoryCommand{ID: category.ID, Description: category.Description}
}

// ToCategory builds the domain category from the form values.
func (c CategoryCommand) ToCategory() domain.Category {
	return domain.Category{ID: c.ID, Description: c.Description}
}

// FromNotes copies notes into their form model. Nil notes yield the zero command.
func FromNotes(notes *domain.Notes) NotesCommand {
	if notes == nil {
		return NotesCommand{}
	}
	return NotesCommand{ID: notes.ID, RecipeNotes: notes.RecipeNotes}
}

// ToNotes builds the domain notes from the form values.
func (c NotesCommand) ToNotes() *domain.Notes {
	if c.ID == 0 && c.RecipeNotes == "" {
		return nil
	}
	return &domain.Notes{ID: c.ID, RecipeNotes: c.RecipeNotes}
}

// FromIngredient copies an ingredient and its unit into the form model.
func FromIngredient(ingredient domain.Ingredient) IngredientCommand {
	return IngredientCommand{
		ID:          ingredient.ID,
		RecipeID:    ingredient.RecipeID,
		Description: ingredient.Description,
		Amount:      ingredient.Amount,
		UOM:         FromUnitOfMeasure(ingredient.UOM),
	}
}

// ToIngredient builds the domain ingredient from the form values.
func (c IngredientCommand) ToIngredient() domain.Ingredient {
	return domain.Ingredient{
		ID:          c.ID,
		RecipeID:    c.RecipeID,
		Description: c.Description,
		Amount:      c.Amount,
		UOM:         c.UOM.ToUnitOfMeasure(),
	}
}

// FromRecipe copies a recipe with its notes, ingredients and categories into the form model.
func FromRecipe(r domain.Recipe) RecipeCommand {
	cmd := RecipeCommand{
		ID:          r.ID,
		Description: r.Description,
		PrepTime:    r.PrepTime,
		CookTime:    r.CookTime,
		Servings:    r.Servings,
		Source:      r.Source,
		URL:         r.URL,
		Directions:  r.Directions,
		Difficulty:  r.Difficulty,
		Image:       r.Image,
		Notes:       FromNotes(r.Notes),
	}
	for _, ingredient := range r.Ingredients {
		cmd.Ingredients = append(cmd.Ingredients, FromIngredient(ingredient))
	}
	for _, category := range r.Categories {
		cmd.Categories = append(cmd.Categories, FromCategory(category))
	}
	return cmd
}

// ToRecipe builds the domain recipe from the form values.
func (c RecipeCommand) ToRecipe() domain.Recipe {
	r := domain.Recipe{
		ID:          c.ID,
		Description: c.Description,
		PrepTime:    c.PrepTime,
		CookTime:    c.CookTime,
		Servings:    c.Servings,
		Source:      c.Source,
		URL:         c.URL,
		Directions:  c.Directions,
		Difficulty:  c.Difficulty,
		Image:       c.Image,
		Notes:       c.Notes.ToNotes(),
	}
	for _, ingredient := range c.Ingredients {
		r.AddIngredient(ingredient.ToIngredient())
	}
	for _, category := range c.Categories {
		r.Categories = append(r.Categories, category.ToCategory())
	}
	return r
}
