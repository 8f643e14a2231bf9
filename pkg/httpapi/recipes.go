package httpapi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"cookbook/pkg/command"
)

func (s *Server) listRecipes() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := s.requestContext(r)
		defer cancel()

		recipes, err := s.recipes.FindAll(ctx)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		commands := make([]command.RecipeCommand, 0, len(recipes))
		for _, recipe := range recipes {
			commands = append(commands, command.FromRecipe(recipe))
		}
		s.render(w, r, http.StatusOK, ViewIndex, Model{"recipes": commands})
	})
}

func (s *Server) showRecipe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		recipe, err := s.recipes.FindByID(ctx, id)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		s.render(w, r, http.StatusOK, ViewRecipeShow, Model{"recipe": command.FromRecipe(recipe)})
	})
}

func (s *Server) newRecipe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.renderRecipeForm(w, r, http.StatusOK, command.RecipeCommand{}, command.FieldErrors{})
	})
}

func (s *Server) updateRecipe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		cmd, err := s.recipes.FindCommandByID(ctx, id)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		s.renderRecipeForm(w, r, http.StatusOK, cmd, command.FieldErrors{})
	})
}

// saveRecipe handles both create and update; the form carries the id for updates.
func (s *Server) saveRecipe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.renderError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		cmd, fieldErrs := command.ParseRecipeForm(r.PostForm)
		if len(fieldErrs) > 0 {
			s.renderRecipeForm(w, r, http.StatusBadRequest, cmd, fieldErrs)
			return
		}

		ctx, cancel := s.requestContext(r)
		defer cancel()

		saved, err := s.recipes.SaveRecipeCommand(ctx, cmd)
		if verr := asValidation(err); verr != nil {
			s.renderRecipeForm(w, r, http.StatusBadRequest, cmd, command.FieldErrors(verr.Fields))
			return
		}
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		s.logger.Info("recipe form saved", zap.Int64("recipe_id", saved.ID))
		s.redirect(w, r, fmt.Sprintf("/recipe/%d/show", saved.ID))
	})
}

func (s *Server) deleteRecipe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		if err := s.recipes.DeleteByID(ctx, id); err != nil {
			s.renderError(w, r, err)
			return
		}
		s.redirect(w, r, "/")
	})
}

func (s *Server) renderRecipeForm(w http.ResponseWriter, r *http.Request, status int, cmd command.RecipeCommand, fieldErrs command.FieldErrors) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	categories, err := s.recipes.ListCategories(ctx)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, status, ViewRecipeForm, Model{
		"recipe":     cmd,
		"categories": categories,
		"errors":     fieldErrs,
	})
}
