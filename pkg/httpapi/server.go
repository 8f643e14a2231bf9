// Package httpapi exposes the cookbook over HTTP: server-rendered pages for
// browsing and editing recipes, a small JSON read API and a health check.
package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cookbook/pkg/command"
	"cookbook/pkg/domain"
)

// RecipeService is what the recipe pages need from pkg/recipe.
type RecipeService interface {
	FindAll(ctx context.Context) ([]domain.Recipe, error)
	FindByID(ctx context.Context, id int64) (domain.Recipe, error)
	FindCommandByID(ctx context.Context, id int64) (command.RecipeCommand, error)
	ListCategories(ctx context.Context) ([]command.CategoryCommand, error)
	SaveRecipeCommand(ctx context.Context, cmd command.RecipeCommand) (command.RecipeCommand, error)
	DeleteByID(ctx context.Context, id int64) error
}

// IngredientService is what the ingredient pages need from pkg/ingredient.
type IngredientService interface {
	FindByRecipeIDAndIngredientID(ctx context.Context, recipeID, ingredientID int64) (command.IngredientCommand, error)
	SaveIngredientCommand(ctx context.Context, cmd command.IngredientCommand) (command.IngredientCommand, error)
	DeleteByID(ctx context.Context, recipeID, ingredientID int64) error
}

// UnitOfMeasureService feeds the unit select box.
type UnitOfMeasureService interface {
	ListAllUoms(ctx context.Context) ([]command.UnitOfMeasureCommand, error)
}

// ImageService stores uploaded recipe images.
type ImageService interface {
	SaveImageFile(ctx context.Context, recipeID int64, file io.Reader) error
	MaxBytes() int64
}

// HealthChecker is satisfied by the storage handle.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Services groups the use cases the handlers delegate to.
type Services struct {
	Recipes     RecipeService
	Ingredients IngredientService
	Uoms        UnitOfMeasureService
	Images      ImageService
	Health      HealthChecker
}

const defaultRequestTimeout = 5 * time.Second

// Server wires HTTP endpoints to the cookbook services.
type Server struct {
	recipes        RecipeService
	ingredients    IngredientService
	uoms           UnitOfMeasureService
	images         ImageService
	health         HealthChecker
	renderer       Renderer
	logger         *zap.Logger
	requestTimeout time.Duration
}

// Option customises a Server.
type Option func(*Server)

// WithRenderer replaces the embedded template set.
func WithRenderer(r Renderer) Option {
	return func(s *Server) { s.renderer = r }
}

// WithRequestTimeout bounds how long a handler may wait on the services.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// New parses the embedded templates once so requests only execute them.
func New(services Services, logger *zap.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		recipes:        services.Recipes,
		ingredients:    services.Ingredients,
		uoms:           services.Uoms,
		images:         services.Images,
		health:         services.Health,
		logger:         logger,
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		renderer, err := NewTemplateRenderer()
		if err != nil {
			return nil, err
		}
		s.renderer = renderer
	}
	return s, nil
}

// Handler exposes the mux wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	route(mux, "GET /{$}", s.listRecipes())
	route(mux, "GET /index", s.listRecipes())

	route(mux, "GET /recipe/new", s.newRecipe())
	route(mux, "GET /recipe/{id}/show", s.showRecipe())
	route(mux, "GET /recipe/{id}/update", s.updateRecipe())
	route(mux, "GET /recipe/{id}/delete", s.deleteRecipe())
	route(mux, "POST /recipe", s.saveRecipe())

	route(mux, "GET /recipe/{recipeId}/ingredients", s.listIngredients())
	route(mux, "GET /recipe/{recipeId}/ingredient/new", s.newIngredient())
	route(mux, "GET /recipe/{recipeId}/ingredient/{id}/show", s.showIngredient())
	route(mux, "GET /recipe/{recipeId}/ingredient/{id}/update", s.updateIngredient())
	route(mux, "GET /recipe/{recipeId}/ingredient/{id}/delete", s.deleteIngredient())
	route(mux, "POST /recipe/{recipeId}/ingredient", s.saveIngredient())

	route(mux, "GET /recipe/{id}/image", s.imageUploadForm())
	route(mux, "POST /recipe/{id}/image", s.uploadImage())
	route(mux, "GET /recipe/{id}/recipeimage", s.renderImage())

	route(mux, "GET /api/recipes", s.apiListRecipes())
	route(mux, "GET /api/recipes/{id}", s.apiGetRecipe())
	route(mux, "GET /api/uoms", s.apiListUoms())

	route(mux, "GET /healthz", s.healthz())
	route(mux, "GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS()))))

	return s.withRequestID(s.withTracing(s.withAccessLog(s.withRecovery(mux))))
}

// requestContext applies the per-request service timeout.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

// render executes the view into a buffer first so a template failure can still
// produce a clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, view string, model Model) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, view, model); err != nil {
		s.logger.Error("rendering view failed",
			zap.String("view", view),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.health != nil {
			ctx, cancel := s.requestContext(r)
			defer cancel()
			if err := s.health.Ping(ctx); err != nil {
				s.logger.Warn("health check failed", zap.Error(err))
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
}
