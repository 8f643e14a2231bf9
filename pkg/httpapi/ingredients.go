package httpapi

import (
	"fmt"
	"net/http"

	"cookbook/pkg/command"
)

func (s *Server) listIngredients() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recipeID, err := pathID(r, "recipeId")
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		recipe, err := s.recipes.FindCommandByID(ctx, recipeID)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		s.render(w, r, http.StatusOK, ViewIngredientList, Model{"recipe": recipe})
	})
}

func (s *Server) showIngredient() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ingredient, ok := s.loadIngredient(w, r)
		if !ok {
			return
		}
		s.render(w, r, http.StatusOK, ViewIngredientShow, Model{"ingredient": ingredient})
	})
}

func (s *Server) newIngredient() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recipeID, err := pathID(r, "recipeId")
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		// the recipe has to exist before an ingredient form is offered for it
		recipe, err := s.recipes.FindCommandByID(ctx, recipeID)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		s.renderIngredientForm(w, r, http.StatusOK, command.IngredientCommand{RecipeID: recipe.ID}, command.FieldErrors{})
	})
}

func (s *Server) updateIngredient() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ingredient, ok := s.loadIngredient(w, r)
		if !ok {
			return
		}
		s.renderIngredientForm(w, r, http.StatusOK, ingredient, command.FieldErrors{})
	})
}

func (s *Server) saveIngredient() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recipeID, err := pathID(r, "recipeId")
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		if err := r.ParseForm(); err != nil {
			s.renderError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		cmd, fieldErrs := command.ParseIngredientForm(r.PostForm, recipeID)
		if len(fieldErrs) > 0 {
			s.renderIngredientForm(w, r, http.StatusBadRequest, cmd, fieldErrs)
			return
		}

		ctx, cancel := s.requestContext(r)
		defer cancel()

		saved, err := s.ingredients.SaveIngredientCommand(ctx, cmd)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		s.redirect(w, r, fmt.Sprintf("/recipe/%d/ingredient/%d/show", saved.RecipeID, saved.ID))
	})
}

func (s *Server) deleteIngredient() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recipeID, err := pathID(r, "recipeId")
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		ingredientID, err := pathID(r, "id")
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		if err := s.ingredients.DeleteByID(ctx, recipeID, ingredientID); err != nil {
			s.renderError(w, r, err)
			return
		}
		s.redirect(w, r, fmt.Sprintf("/recipe/%d/ingredients", recipeID))
	})
}

// loadIngredient resolves both path ids; on failure the error page is already written.
func (s *Server) loadIngredient(w http.ResponseWriter, r *http.Request) (command.IngredientCommand, bool) {
	recipeID, err := pathID(r, "recipeId")
	if err != nil {
		s.renderError(w, r, err)
		return command.IngredientCommand{}, false
	}
	ingredientID, err := pathID(r, "id")
	if err != nil {
		s.renderError(w, r, err)
		return command.IngredientCommand{}, false
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	ingredient, err := s.ingredients.FindByRecipeIDAndIngredientID(ctx, recipeID, ingredientID)
	if err != nil {
		s.renderError(w, r, err)
		return command.IngredientCommand{}, false
	}
	return ingredient, true
}

func (s *Server) renderIngredientForm(w http.ResponseWriter, r *http.Request, status int, ingredient command.IngredientCommand, fieldErrs command.FieldErrors) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	uoms, err := s.uoms.ListAllUoms(ctx)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, status, ViewIngredientForm, Model{
		"ingredient": ingredient,
		"uomList":    uoms,
		"errors":     fieldErrs,
	})
}
