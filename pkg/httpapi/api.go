package httpapi

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"cookbook/pkg/command"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (s *Server) apiListRecipes() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := s.requestContext(r)
		defer cancel()

		recipes, err := s.recipes.FindAll(ctx)
		if err != nil {
			s.respondError(w, err.Error(), statusFor(err))
			return
		}
		response := make([]command.RecipeCommand, 0, len(recipes))
		for _, recipe := range recipes {
			response = append(response, command.FromRecipe(recipe))
		}
		s.respondJSON(w, http.StatusOK, response)
	})
}

func (s *Server) apiGetRecipe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		recipe, err := s.recipes.FindCommandByID(ctx, id)
		if err != nil {
			s.respondError(w, err.Error(), statusFor(err))
			return
		}
		s.respondJSON(w, http.StatusOK, recipe)
	})
}

func (s *Server) apiListUoms() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := s.requestContext(r)
		defer cancel()

		uoms, err := s.uoms.ListAllUoms(ctx)
		if err != nil {
			s.respondError(w, err.Error(), statusFor(err))
			return
		}
		s.respondJSON(w, http.StatusOK, uoms)
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError keeps JSON formatting consistent across endpoints.
func (s *Server) respondError(w http.ResponseWriter, message string, status int) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
