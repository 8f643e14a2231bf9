// Package recipe implements the recipe use cases behind the recipe pages.
package recipe

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cookbook/pkg/command"
	"cookbook/pkg/domain"
)

// Service orchestrates recipe reads and serialized recipe mutations.
type Service struct {
	repo       domain.RecipeRepository
	categories domain.CategoryRepository
	queue      domain.Serializer
	logger     *zap.Logger
}

// NewService wires the repositories and the mutation queue.
func NewService(repo domain.RecipeRepository, categories domain.CategoryRepository, queue domain.Serializer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, categories: categories, queue: queue, logger: logger}
}

// FindAll returns every recipe for the index page.
func (s *Service) FindAll(ctx context.Context) ([]domain.Recipe, error) {
	s.logger.Debug("listing recipes")
	return s.repo.FindAll(ctx)
}

// FindByID returns domain.ErrRecipeNotFound when the id is unknown.
func (s *Service) FindByID(ctx context.Context, id int64) (domain.Recipe, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("recipe lookup failed", zap.Int64("recipe_id", id), zap.Error(err))
		return domain.Recipe{}, err
	}
	return r, nil
}

// FindCommandByID is FindByID converted for forms.
func (s *Service) FindCommandByID(ctx context.Context, id int64) (command.RecipeCommand, error) {
	r, err := s.FindByID(ctx, id)
	if err != nil {
		return command.RecipeCommand{}, err
	}
	return command.FromRecipe(r), nil
}

// ListCategories feeds the category checkboxes on the recipe form.
func (s *Service) ListCategories(ctx context.Context) ([]command.CategoryCommand, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]command.CategoryCommand, 0, len(categories))
	for _, c := range categories {
		out = append(out, command.FromCategory(c))
	}
	return out, nil
}

// SaveRecipeCommand stores a recipe submitted through the recipe form. For an
// existing recipe the scalar fields, notes and categories are replaced while
// ingredients and the image are kept as stored; the form does not carry them.
func (s *Service) SaveRecipeCommand(ctx context.Context, cmd command.RecipeCommand) (command.RecipeCommand, error) {
	if err := Validate(cmd); err != nil {
		return command.RecipeCommand{}, err
	}

	var saved domain.Recipe
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		target := cmd.ToRecipe()
		if cmd.ID != 0 {
			existing, err := s.repo.FindByID(ctx, cmd.ID)
			if err != nil {
				return err
			}
			target = mergeFormFields(existing, target)
		}
		stored, err := s.repo.Save(ctx, target)
		if err != nil {
			return fmt.Errorf("save recipe: %w", err)
		}
		saved = stored
		return nil
	})
	if err != nil {
		s.logger.Error("recipe save failed", zap.Int64("recipe_id", cmd.ID), zap.Error(err))
		return command.RecipeCommand{}, err
	}
	s.logger.Info("recipe saved", zap.Int64("recipe_id", saved.ID), zap.String("description", saved.Description))
	return command.FromRecipe(saved), nil
}

// DeleteByID removes the recipe and everything it owns.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		return s.repo.DeleteByID(ctx, id)
	})
	if err != nil {
		s.logger.Error("recipe delete failed", zap.Int64("recipe_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("recipe deleted", zap.Int64("recipe_id", id))
	return nil
}

func mergeFormFields(existing, submitted domain.Recipe) domain.Recipe {
	existing.Description = submitted.Description
	existing.PrepTime = submitted.PrepTime
	existing.CookTime = submitted.CookTime
	existing.Servings = submitted.Servings
	existing.Source = submitted.Source
	existing.URL = submitted.URL
	existing.Directions = submitted.Directions
	existing.Difficulty = submitted.Difficulty
	existing.Categories = submitted.Categories
	switch {
	case submitted.Notes == nil:
		existing.Notes = nil
	case existing.Notes != nil:
		existing.Notes = &domain.Notes{ID: existing.Notes.ID, RecipeNotes: submitted.Notes.RecipeNotes}
	default:
		existing.Notes = &domain.Notes{RecipeNotes: submitted.Notes.RecipeNotes}
	}
	return existing
}

// Validate applies the basic shape checks of the recipe form.
func Validate(cmd command.RecipeCommand) error {
	fields := map[string]string{}
	if strings.TrimSpace(cmd.Description) == "" {
		fields["description"] = "description is required"
	}
	if cmd.PrepTime < 0 {
		fields["prepTime"] = "prep time cannot be negative"
	}
	if cmd.CookTime < 0 {
		fields["cookTime"] = "cook time cannot be negative"
	}
	if cmd.Servings < 0 {
		fields["servings"] = "servings cannot be negative"
	}
	if cmd.Difficulty != "" {
		if _, err := domain.ParseDifficulty(string(cmd.Difficulty)); err != nil {
			fields["difficulty"] = "unknown difficulty"
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
