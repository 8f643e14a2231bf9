// Package memory keeps the cookbook in process memory, optionally mirrored to a
// JSON snapshot file so a restart does not lose data. It honours the same
// aggregate rules as the SQL repositories.
package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"cookbook/pkg/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrDuplicateDescription is returned when a reference entry with the same
// description already exists.
var ErrDuplicateDescription = errors.New("description already exists")

// snapshot is what gets written to disk after every mutation.
type snapshot struct {
	Recipes    []domain.Recipe        `json:"recipes"`
	Units      []domain.UnitOfMeasure `json:"units"`
	Categories []domain.Category      `json:"categories"`
	Sequence   int64                  `json:"sequence"`
}

// Store holds every table behind one lock.
type Store struct {
	mu           sync.RWMutex
	recipes      map[int64]domain.Recipe
	units        map[int64]domain.UnitOfMeasure
	categories   map[int64]domain.Category
	sequence     int64
	snapshotPath string
}

// New returns an empty store that never touches the disk.
func New() *Store {
	return &Store{
		recipes:    map[int64]domain.Recipe{},
		units:      map[int64]domain.UnitOfMeasure{},
		categories: map[int64]domain.Category{},
	}
}

// Open loads the snapshot at path when it exists and keeps it updated.
func Open(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	s.snapshotPath = path

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	for _, r := range snap.Recipes {
		s.recipes[r.ID] = r
	}
	for _, u := range snap.Units {
		s.units[u.ID] = u
	}
	for _, c := range snap.Categories {
		s.categories[c.ID] = c
	}
	s.sequence = snap.Sequence
	return s, nil
}

// Recipes exposes the store as a domain.RecipeRepository.
func (s *Store) Recipes() *RecipeRepository { return &RecipeRepository{s: s} }

// Units exposes the store as a domain.UnitOfMeasureRepository.
func (s *Store) Units() *UnitOfMeasureRepository { return &UnitOfMeasureRepository{s: s} }

// Categories exposes the store as a domain.CategoryRepository.
func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s: s} }

func (s *Store) nextID() int64 {
	s.sequence++
	return s.sequence
}

// persist writes the snapshot atomically. Callers hold the write lock.
func (s *Store) persist() error {
	if s.snapshotPath == "" {
		return nil
	}
	snap := snapshot{Sequence: s.sequence}
	for _, r := range s.recipes {
		snap.Recipes = append(snap.Recipes, r)
	}
	for _, u := range s.units {
		snap.Units = append(snap.Units, u)
	}
	for _, c := range s.categories {
		snap.Categories = append(snap.Categories, c)
	}
	sort.Slice(snap.Recipes, func(i, j int) bool { return snap.Recipes[i].ID < snap.Recipes[j].ID })
	sort.Slice(snap.Units, func(i, j int) bool { return snap.Units[i].ID < snap.Units[j].ID })
	sort.Slice(snap.Categories, func(i, j int) bool { return snap.Categories[i].ID < snap.Categories[j].ID })

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.snapshotPath), ".cookbook-snapshot-*")
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), s.snapshotPath)
}

// RecipeRepository stores whole recipe aggregates.
type RecipeRepository struct {
	s *Store
}

// FindAll returns copies of every recipe ordered by id.
func (r *RecipeRepository) FindAll(ctx context.Context) ([]domain.Recipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Recipe, 0, len(r.s.recipes))
	for _, recipe := range r.s.recipes {
		out = append(out, cloneRecipe(recipe))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindByID returns a copy of the recipe, or a not-found error.
func (r *RecipeRepository) FindByID(ctx context.Context, id int64) (domain.Recipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recipe, ok := r.s.recipes[id]
	if !ok {
		return domain.Recipe{}, domain.RecipeNotFound(id)
	}
	return cloneRecipe(recipe), nil
}

// Save mirrors the SQL repository: unknown ingredient ids get fresh ones and
// ingredients missing from the aggregate disappear.
func (r *RecipeRepository) Save(ctx context.Context, recipe domain.Recipe) (domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recipe{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := cloneRecipe(recipe)
	var previous domain.Recipe
	if stored.ID == 0 {
		stored.ID = r.s.nextID()
	} else {
		existing, ok := r.s.recipes[stored.ID]
		if !ok {
			return domain.Recipe{}, domain.RecipeNotFound(stored.ID)
		}
		previous = existing
	}
	if stored.Difficulty == "" {
		stored.Difficulty = domain.Easy
	}

	if stored.Notes != nil {
		if previous.Notes != nil {
			stored.Notes.ID = previous.Notes.ID
		} else {
			stored.Notes.ID = r.s.nextID()
		}
	}

	categories, err := r.s.resolveCategories(stored.Categories)
	if err != nil {
		return domain.Recipe{}, err
	}
	stored.Categories = categories

	known := previous.IngredientIDs()
	for i := range stored.Ingredients {
		ingredient := &stored.Ingredients[i]
		if _, ok := known[ingredient.ID]; !ok {
			ingredient.ID = r.s.nextID()
		}
		delete(known, ingredient.ID)
		ingredient.RecipeID = stored.ID
		if ingredient.UOM != nil && ingredient.UOM.ID != 0 {
			unit, ok := r.s.units[ingredient.UOM.ID]
			if !ok {
				return domain.Recipe{}, domain.UnitOfMeasureNotFound(ingredient.UOM.ID)
			}
			ingredient.UOM = &unit
		} else {
			ingredient.UOM = nil
		}
	}
	sort.SliceStable(stored.Ingredients, func(i, j int) bool {
		return stored.Ingredients[i].ID < stored.Ingredients[j].ID
	})

	r.s.recipes[stored.ID] = stored
	if err := r.s.persist(); err != nil {
		return domain.Recipe{}, err
	}
	return cloneRecipe(stored), nil
}

// DeleteByID removes the recipe with its notes, ingredients and category links.
func (r *RecipeRepository) DeleteByID(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.recipes[id]; !ok {
		return domain.RecipeNotFound(id)
	}
	delete(r.s.recipes, id)
	return r.s.persist()
}

func (s *Store) resolveCategories(in []domain.Category) ([]domain.Category, error) {
	seen := make(map[int64]struct{}, len(in))
	out := make([]domain.Category, 0, len(in))
	for _, c := range in {
		if _, dup := seen[c.ID]; dup || c.ID == 0 {
			continue
		}
		stored, ok := s.categories[c.ID]
		if !ok {
			return nil, fmt.Errorf("category %d does not exist", c.ID)
		}
		seen[c.ID] = struct{}{}
		out = append(out, stored)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// UnitOfMeasureRepository serves the unit reference table.
type UnitOfMeasureRepository struct {
	s *Store
}

// FindAll returns every unit sorted by description.
func (r *UnitOfMeasureRepository) FindAll(ctx context.Context) ([]domain.UnitOfMeasure, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.UnitOfMeasure, 0, len(r.s.units))
	for _, u := range r.s.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out, nil
}

// FindByID returns the unit or a not-found error for an unknown id.
func (r *UnitOfMeasureRepository) FindByID(ctx context.Context, id int64) (domain.UnitOfMeasure, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.units[id]
	if !ok {
		return domain.UnitOfMeasure{}, domain.UnitOfMeasureNotFound(id)
	}
	return u, nil
}

// FindByDescription reports whether a unit with exactly this description exists.
func (r *UnitOfMeasureRepository) FindByDescription(ctx context.Context, description string) (domain.UnitOfMeasure, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.units {
		if u.Description == description {
			return u, true, nil
		}
	}
	return domain.UnitOfMeasure{}, false, nil
}

// Create adds a unit; descriptions are unique.
func (r *UnitOfMeasureRepository) Create(ctx context.Context, description string) (domain.UnitOfMeasure, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.units {
		if u.Description == description {
			return domain.UnitOfMeasure{}, fmt.Errorf("unit %q: %w", description, ErrDuplicateDescription)
		}
	}
	u := domain.UnitOfMeasure{ID: r.s.nextID(), Description: description}
	r.s.units[u.ID] = u
	return u, r.s.persist()
}

// CategoryRepository serves the category reference table.
type CategoryRepository struct {
	s *Store
}

// FindAll returns every category sorted by description.
func (r *CategoryRepository) FindAll(ctx context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out, nil
}

// FindByDescription reports whether a category with exactly this description exists.
func (r *CategoryRepository) FindByDescription(ctx context.Context, description string) (domain.Category, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.categories {
		if c.Description == description {
			return c, true, nil
		}
	}
	return domain.Category{}, false, nil
}

// Create adds a category; descriptions are unique.
func (r *CategoryRepository) Create(ctx context.Context, description string) (domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.categories {
		if c.Description == description {
			return domain.Category{}, fmt.Errorf("category %q: %w", description, ErrDuplicateDescription)
		}
	}
	c := domain.Category{ID: r.s.nextID(), Description: description}
	r.s.categories[c.ID] = c
	return c, r.s.persist()
}

// cloneRecipe copies every reference held by the aggregate so callers never
// share memory with the store.
func cloneRecipe(in domain.Recipe) domain.Recipe {
	out := in
	if in.Image != nil {
		out.Image = append([]byte(nil), in.Image...)
	}
	if in.Notes != nil {
		notes := *in.Notes
		out.Notes = &notes
	}
	if in.Ingredients != nil {
		out.Ingredients = make([]domain.Ingredient, len(in.Ingredients))
		for i, ingredient := range in.Ingredients {
			if ingredient.UOM != nil {
				unit := *ingredient.UOM
				ingredient.UOM = &unit
			}
			out.Ingredients[i] = ingredient
		}
	}
	if in.Categories != nil {
		out.Categories = append([]domain.Category(nil), in.Categories...)
	}
	return out
}
