package storage

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"cookbook/pkg/domain"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedData is the YAML shape of the bootstrap data set.
type SeedData struct {
	Units      []string     `yaml:"units"`
	Categories []string     `yaml:"categories"`
	Recipes    []SeedRecipe `yaml:"recipes"`
}

type SeedRecipe struct {
	Description string           `yaml:"description"`
	PrepTime    int              `yaml:"prep_time"`
	CookTime    int              `yaml:"cook_time"`
	Servings    int              `yaml:"servings"`
	Difficulty  string           `yaml:"difficulty"`
	Source      string           `yaml:"source"`
	URL         string           `yaml:"url"`
	Directions  string           `yaml:"directions"`
	Notes       string           `yaml:"notes"`
	Categories  []string         `yaml:"categories"`
	Ingredients []SeedIngredient `yaml:"ingredients"`
}

type SeedIngredient struct {
	Description string  `yaml:"description"`
	Amount      float64 `yaml:"amount"`
	Unit        string  `yaml:"unit"`
}

// DefaultSeed parses the data set embedded in the binary.
func DefaultSeed() (SeedData, error) {
	return ParseSeed(defaultSeed)
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(data []byte) (SeedData, error) {
	var seed SeedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return SeedData{}, fmt.Errorf("parse seed: %w", err)
	}
	return seed, nil
}

// SeedReport tells what Seed actually inserted.
type SeedReport struct {
	Skipped    bool
	Units      int
	Categories int
	Recipes    int
}

// UnitStore is the part of a unit repository the seeder needs.
type UnitStore interface {
	FindByDescription(ctx context.Context, description string) (domain.UnitOfMeasure, bool, error)
	Create(ctx context.Context, description string) (domain.UnitOfMeasure, error)
}

// CategoryStore is the part of a category repository the seeder needs.
type CategoryStore interface {
	FindByDescription(ctx context.Context, description string) (domain.Category, bool, error)
	Create(ctx context.Context, description string) (domain.Category, error)
}

// SeedTarget groups the repositories Seed writes to. Both the SQL and the
// in-memory backends satisfy it.
type SeedTarget struct {
	Units      UnitStore
	Categories CategoryStore
	Recipes    domain.RecipeRepository
}

// SeedTarget returns the SQL repositories as a seeding destination.
func (d *DB) SeedTarget() SeedTarget {
	return SeedTarget{
		Units:      NewUnitOfMeasureRepository(d),
		Categories: NewCategoryRepository(d),
		Recipes:    NewRecipeRepository(d),
	}
}

// Validate checks that every recipe only names units and categories the data
// set declares, so a broken document is rejected before anything is written.
func (sd SeedData) Validate() error {
	units := make(map[string]domain.UnitOfMeasure, len(sd.Units))
	for _, name := range sd.Units {
		units[name] = domain.UnitOfMeasure{Description: name}
	}
	categories := make(map[string]domain.Category, len(sd.Categories))
	for _, name := range sd.Categories {
		categories[name] = domain.Category{Description: name}
	}
	for _, sr := range sd.Recipes {
		if _, err := sr.toDomain(units, categories); err != nil {
			return err
		}
	}
	return nil
}

// Seed loads the data set into a store that holds no recipes yet. Units and
// categories are looked up by description before being created, so a run that
// stopped half way is completed by the next one. A store that already holds
// recipes is left untouched.
func Seed(ctx context.Context, target SeedTarget, data SeedData) (SeedReport, error) {
	if err := data.Validate(); err != nil {
		return SeedReport{}, err
	}

	existing, err := target.Recipes.FindAll(ctx)
	if err != nil {
		return SeedReport{}, err
	}
	if len(existing) > 0 {
		return SeedReport{Skipped: true}, nil
	}

	var report SeedReport
	unitsByName := make(map[string]domain.UnitOfMeasure, len(data.Units))
	for _, name := range data.Units {
		u, found, err := target.Units.FindByDescription(ctx, name)
		if err != nil {
			return report, fmt.Errorf("seed unit %q: %w", name, err)
		}
		if !found {
			if u, err = target.Units.Create(ctx, name); err != nil {
				return report, fmt.Errorf("seed unit %q: %w", name, err)
			}
			report.Units++
		}
		unitsByName[name] = u
	}

	categoriesByName := make(map[string]domain.Category, len(data.Categories))
	for _, name := range data.Categories {
		c, found, err := target.Categories.FindByDescription(ctx, name)
		if err != nil {
			return report, fmt.Errorf("seed category %q: %w", name, err)
		}
		if !found {
			if c, err = target.Categories.Create(ctx, name); err != nil {
				return report, fmt.Errorf("seed category %q: %w", name, err)
			}
			report.Categories++
		}
		categoriesByName[name] = c
	}

	for _, sr := range data.Recipes {
		r, err := sr.toDomain(unitsByName, categoriesByName)
		if err != nil {
			return report, err
		}
		if _, err := target.Recipes.Save(ctx, r); err != nil {
			return report, fmt.Errorf("seed recipe %q: %w", sr.Description, err)
		}
		report.Recipes++
	}
	return report, nil
}

func (sr SeedRecipe) toDomain(units map[string]domain.UnitOfMeasure, categories map[string]domain.Category) (domain.Recipe, error) {
	difficulty, err := domain.ParseDifficulty(sr.Difficulty)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("seed recipe %q: %w", sr.Description, err)
	}
	r := domain.Recipe{
		Description: sr.Description,
		PrepTime:    sr.PrepTime,
		CookTime:    sr.CookTime,
		Servings:    sr.Servings,
		Source:      sr.Source,
		URL:         sr.URL,
		Directions:  strings.TrimSpace(sr.Directions),
		Difficulty:  difficulty,
	}
	if notes := strings.TrimSpace(sr.Notes); notes != "" {
		r.Notes = &domain.Notes{RecipeNotes: notes}
	}
	for _, name := range sr.Categories {
		c, ok := categories[name]
		if !ok {
			return domain.Recipe{}, fmt.Errorf("seed recipe %q: unknown category %q", sr.Description, name)
		}
		r.Categories = append(r.Categories, c)
	}
	for _, si := range sr.Ingredients {
		ingredient := domain.Ingredient{Description: si.Description, Amount: si.Amount}
		if si.Unit != "" {
			u, ok := units[si.Unit]
			if !ok {
				return domain.Recipe{}, fmt.Errorf("seed recipe %q: unknown unit %q", sr.Description, si.Unit)
			}
			ingredient.UOM = &u
		}
		r.AddIngredient(ingredient)
	}
	return r, nil
}
