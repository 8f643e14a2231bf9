// Package ingredient implements the ingredient pages nested under a recipe.
package ingredient

import (
	"context"

	"go.uber.org/zap"

	"cookbook/pkg/command"
	"cookbook/pkg/domain"
)

// Service edits ingredients through their owning recipe aggregate.
type Service struct {
	recipes domain.RecipeRepository
	uoms    domain.UnitOfMeasureRepository
	queue   domain.Serializer
	logger  *zap.Logger
}

// NewService returns a Service. A nil logger discards output.
func NewService(recipes domain.RecipeRepository, uoms domain.UnitOfMeasureRepository, queue domain.Serializer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{recipes: recipes, uoms: uoms, queue: queue, logger: logger}
}

// FindByRecipeIDAndIngredientID returns the ingredient enriched with its recipe id.
func (s *Service) FindByRecipeIDAndIngredientID(ctx context.Context, recipeID, ingredientID int64) (command.IngredientCommand, error) {
	r, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		s.logger.Error("recipe id not found", zap.Int64("recipe_id", recipeID), zap.Error(err))
		return command.IngredientCommand{}, err
	}

	found, _, ok := r.FindIngredient(ingredientID)
	if !ok {
		s.logger.Error("ingredient id not found", zap.Int64("recipe_id", recipeID), zap.Int64("ingredient_id", ingredientID))
		return command.IngredientCommand{}, domain.IngredientNotFound(ingredientID)
	}

	cmd := command.FromIngredient(found)
	cmd.RecipeID = r.ID
	return cmd, nil
}

// SaveIngredientCommand updates the matching ingredient or adds a new one, saves
// the recipe and returns the ingredient as stored.
func (s *Service) SaveIngredientCommand(ctx context.Context, cmd command.IngredientCommand) (command.IngredientCommand, error) {
	var out command.IngredientCommand
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		r, err := s.recipes.FindByID(ctx, cmd.RecipeID)
		if err != nil {
			s.logger.Error("recipe id not found", zap.Int64("recipe_id", cmd.RecipeID), zap.Error(err))
			return err
		}

		uom, err := s.resolveUnit(ctx, cmd.UOM.ID)
		if err != nil {
			return err
		}

		before := r.IngredientIDs()
		if existing, idx, ok := r.FindIngredient(cmd.ID); ok {
			existing.Description = cmd.Description
			existing.Amount = cmd.Amount
			existing.UOM = uom
			r.Ingredients[idx] = existing
		} else {
			added := cmd.ToIngredient()
			added.ID = 0
			added.UOM = uom
			r.AddIngredient(added)
		}

		saved, err := s.recipes.Save(ctx, r)
		if err != nil {
			return err
		}

		match, err := locateSaved(saved.Ingredients, cmd, before)
		if err != nil {
			s.logger.Error("saved ingredient could not be located",
				zap.Int64("recipe_id", saved.ID),
				zap.Int64("ingredient_id", cmd.ID),
				zap.String("description", cmd.Description),
				zap.Error(err))
			return err
		}

		out = command.FromIngredient(match)
		out.RecipeID = saved.ID
		return nil
	})
	if err != nil {
		return command.IngredientCommand{}, err
	}
	s.logger.Info("ingredient saved", zap.Int64("recipe_id", out.RecipeID), zap.Int64("ingredient_id", out.ID))
	return out, nil
}

// DeleteByID removes the ingredient from its recipe; storage drops the orphan on save.
func (s *Service) DeleteByID(ctx context.Context, recipeID, ingredientID int64) error {
	return s.queue.Do(ctx, func(ctx context.Context) error {
		r, err := s.recipes.FindByID(ctx, recipeID)
		if err != nil {
			s.logger.Error("recipe id not found", zap.Int64("recipe_id", recipeID), zap.Error(err))
			return err
		}
		s.logger.Debug("recipe found", zap.Int64("recipe_id", recipeID))

		if !r.RemoveIngredient(ingredientID) {
			s.logger.Error("ingredient not found", zap.Int64("recipe_id", recipeID), zap.Int64("ingredient_id", ingredientID))
			return domain.IngredientNotFound(ingredientID)
		}
		if _, err := s.recipes.Save(ctx, r); err != nil {
			return err
		}
		s.logger.Info("ingredient deleted", zap.Int64("recipe_id", recipeID), zap.Int64("ingredient_id", ingredientID))
		return nil
	})
}

// resolveUnit looks the selected unit up; zero means no unit was chosen.
func (s *Service) resolveUnit(ctx context.Context, id int64) (*domain.UnitOfMeasure, error) {
	if id == 0 {
		return nil, nil
	}
	uom, err := s.uoms.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("unit of measure lookup failed", zap.Int64("uom_id", id), zap.Error(err))
		return nil, err
	}
	return &uom, nil
}
