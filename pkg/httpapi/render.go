package httpapi

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strconv"

	"cookbook/pkg/command"
	"cookbook/pkg/domain"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var assetFS embed.FS

func staticFS() fs.FS {
	sub, err := fs.Sub(assetFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// View names handed to the Renderer.
const (
	ViewIndex           = "index"
	ViewRecipeShow      = "recipe/show"
	ViewRecipeForm      = "recipe/recipeform"
	ViewIngredientList  = "recipe/ingredient/list"
	ViewIngredientShow  = "recipe/ingredient/show"
	ViewIngredientForm  = "recipe/ingredient/ingredientform"
	ViewImageUploadForm = "recipe/imageuploadform"
	ViewBadRequest      = "400error"
	ViewNotFound        = "404error"
	ViewServerError     = "500error"
)

// Views lists every template the renderer must provide.
var Views = []string{
	ViewIndex,
	ViewRecipeShow,
	ViewRecipeForm,
	ViewIngredientList,
	ViewIngredientShow,
	ViewIngredientForm,
	ViewImageUploadForm,
	ViewBadRequest,
	ViewNotFound,
	ViewServerError,
}

// Model carries the named attributes a view reads.
type Model map[string]any

// Renderer turns a view name and its model into a page.
type Renderer interface {
	Render(w io.Writer, view string, model Model) error
}

// TemplateRenderer renders the embedded html/template views inside the shared layout.
type TemplateRenderer struct {
	views map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"difficulties": domain.Difficulties,
	"amount": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"fieldError": func(errs any, field string) string {
		switch e := errs.(type) {
		case command.FieldErrors:
			return e[field]
		case map[string]string:
			return e[field]
		default:
			return ""
		}
	},
}

// NewTemplateRenderer parses every view together with the layout.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	return newTemplateRenderer(templateFS)
}

func newTemplateRenderer(fsys fs.FS) (*TemplateRenderer, error) {
	views := make(map[string]*template.Template, len(Views))
	for _, view := range Views {
		tmpl, err := template.New(view).Funcs(templateFuncs).ParseFS(fsys,
			"templates/layout.gohtml",
			"templates/"+view+".gohtml",
		)
		if err != nil {
			return nil, fmt.Errorf("parse view %s: %w", view, err)
		}
		views[view] = tmpl
	}
	return &TemplateRenderer{views: views}, nil
}

func (t *TemplateRenderer) Render(w io.Writer, view string, model Model) error {
	tmpl, ok := t.views[view]
	if !ok {
		return fmt.Errorf("unknown view %q", view)
	}
	return tmpl.ExecuteTemplate(w, "layout", model)
}
