package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"cookbook/pkg/image"
)

const multipartOverhead = 1 << 20

func (s *Server) imageUploadForm() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		recipe, err := s.recipes.FindCommandByID(ctx, id)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		s.render(w, r, http.StatusOK, ViewImageUploadForm, Model{"recipe": recipe})
	})
}

// uploadImage accepts the multipart field "imagefile".
func (s *Server) uploadImage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.renderError(w, r, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, s.images.MaxBytes()+multipartOverhead)
		file, _, err := r.FormFile("imagefile")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				err = image.ErrImageTooLarge
			}
			s.renderUploadFailure(w, r, id, fmt.Errorf("%w: imagefile: %v", errBadRequest, err))
			return
		}
		defer file.Close()

		ctx, cancel := s.requestContext(r)
		defer cancel()

		if err := s.images.SaveImageFile(ctx, id, file); err != nil {
			if errors.Is(err, image.ErrImageTooLarge) || errors.Is(err, image.ErrEmptyImage) {
				s.renderUploadFailure(w, r, id, fmt.Errorf("%w: %v", errBadRequest, err))
				return
			}
			s.renderError(w, r, err)
			return
		}
		s.redirect(w, r, fmt.Sprintf("/recipe/%d/show", id))
	})
}

// renderImage streams the stored bytes with a sniffed content type.
func (s *Server) renderImage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		recipe, err := s.recipes.FindCommandByID(ctx, id)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		if !recipe.HasImage() {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", http.DetectContentType(recipe.Image))
		w.Header().Set("Content-Length", strconv.Itoa(len(recipe.Image)))
		_, _ = w.Write(recipe.Image)
	})
}

func (s *Server) renderUploadFailure(w http.ResponseWriter, r *http.Request, id int64, cause error) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	recipe, err := s.recipes.FindCommandByID(ctx, id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.logger.Warn("image upload rejected", zap.Int64("recipe_id", id), zap.Error(cause))
	s.render(w, r, http.StatusBadRequest, ViewImageUploadForm, Model{"recipe": recipe, "error": cause.Error()})
}
