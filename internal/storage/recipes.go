package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"cookbook/pkg/domain"
)

const (
	tableRecipe         = "recipe"
	tableNotes          = "notes"
	tableIngredient     = "ingredient"
	tableRecipeCategory = "recipe_category"
)

type recipeRow struct {
	ID          int64  `db:"id"`
	Description string `db:"description"`
	PrepTime    int    `db:"prep_time"`
	CookTime    int    `db:"cook_time"`
	Servings    int    `db:"servings"`
	Source      string `db:"source"`
	URL         string `db:"url"`
	Directions  string `db:"directions"`
	Difficulty  string `db:"difficulty"`
	Image       []byte `db:"image"`
}

type notesRow struct {
	ID          int64  `db:"id"`
	RecipeID    int64  `db:"recipe_id"`
	RecipeNotes string `db:"recipe_notes"`
}

type ingredientRow struct {
	ID             int64          `db:"id"`
	RecipeID       int64          `db:"recipe_id"`
	Description    string         `db:"description"`
	Amount         float64        `db:"amount"`
	UOMID          sql.NullInt64  `db:"uom_id"`
	UOMDescription sql.NullString `db:"uom_description"`
}

type recipeCategoryRow struct {
	RecipeID    int64  `db:"recipe_id"`
	ID          int64  `db:"id"`
	Description string `db:"description"`
}

var recipeColumns = []interface{}{
	"id", "description", "prep_time", "cook_time", "servings",
	"source", "url", "directions", "difficulty", "image",
}

// RecipeRepository stores the recipe aggregate across the recipe, notes,
// ingredient and recipe_category tables.
type RecipeRepository struct {
	db *DB
}

func NewRecipeRepository(db *DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// FindAll returns every recipe with its children, ordered by id.
func (r *RecipeRepository) FindAll(ctx context.Context) ([]domain.Recipe, error) {
	var rows []recipeRow
	err := r.db.selectAll(ctx, r.db.x, &rows, r.db.dialect.From(tableRecipe).Prepared(true).
		Select(recipeColumns...).
		Order(goqu.I("id").Asc()))
	if err != nil {
		return nil, err
	}

	recipes := make([]domain.Recipe, 0, len(rows))
	for _, row := range rows {
		recipes = append(recipes, row.toDomain())
	}
	if err := r.loadChildren(ctx, r.db.x, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// FindByID returns domain.RecipeNotFound when no row exists.
func (r *RecipeRepository) FindByID(ctx context.Context, id int64) (domain.Recipe, error) {
	return r.findByID(ctx, r.db.x, id)
}

func (r *RecipeRepository) findByID(ctx context.Context, q sqlx.QueryerContext, id int64) (domain.Recipe, error) {
	var row recipeRow
	err := r.db.get(ctx, q, &row, r.db.dialect.From(tableRecipe).Prepared(true).
		Select(recipeColumns...).
		Where(goqu.Ex{"id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Recipe{}, domain.RecipeNotFound(id)
	}
	if err != nil {
		return domain.Recipe{}, errors.Join(ErrQueryingFailed, err)
	}

	recipes := []domain.Recipe{row.toDomain()}
	if err := r.loadChildren(ctx, q, recipes); err != nil {
		return domain.Recipe{}, err
	}
	return recipes[0], nil
}

// Save writes the whole aggregate in one transaction and returns it reloaded.
// Ingredients without an id, or whose id is not stored for this recipe, are
// inserted and receive new ids; stored ingredients missing from the aggregate
// are deleted.
func (r *RecipeRepository) Save(ctx context.Context, recipe domain.Recipe) (domain.Recipe, error) {
	var saved domain.Recipe
	err := r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := r.upsertRecipe(ctx, tx, recipe)
		if err != nil {
			return err
		}
		if err := r.saveNotes(ctx, tx, id, recipe.Notes); err != nil {
			return err
		}
		if err := r.saveCategories(ctx, tx, id, recipe.Categories); err != nil {
			return err
		}
		if err := r.saveIngredients(ctx, tx, id, recipe.Ingredients); err != nil {
			return err
		}
		saved, err = r.findByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Recipe{}, err
	}
	return saved, nil
}

// DeleteByID removes the recipe and its children.
func (r *RecipeRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, child := range []string{tableIngredient, tableNotes, tableRecipeCategory} {
			if _, err := r.db.exec(ctx, tx, r.db.dialect.Delete(child).Prepared(true).
				Where(goqu.Ex{"recipe_id": id})); err != nil {
				return err
			}
		}
		affected, err := r.db.exec(ctx, tx, r.db.dialect.Delete(tableRecipe).Prepared(true).
			Where(goqu.Ex{"id": id}))
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.RecipeNotFound(id)
		}
		return nil
	})
}

func (r *RecipeRepository) upsertRecipe(ctx context.Context, tx *sqlx.Tx, recipe domain.Recipe) (int64, error) {
	record := goqu.Record{
		"description": recipe.Description,
		"prep_time":   recipe.PrepTime,
		"cook_time":   recipe.CookTime,
		"servings":    recipe.Servings,
		"source":      recipe.Source,
		"url":         recipe.URL,
		"directions":  recipe.Directions,
		"difficulty":  difficultyOrDefault(recipe.Difficulty),
		"image":       recipe.Image,
	}

	if recipe.ID == 0 {
		return r.db.insert(ctx, tx, r.db.dialect.Insert(tableRecipe).Prepared(true).Rows(record))
	}

	affected, err := r.db.exec(ctx, tx, r.db.dialect.Update(tableRecipe).Prepared(true).
		Set(record).
		Where(goqu.Ex{"id": recipe.ID}))
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, domain.RecipeNotFound(recipe.ID)
	}
	return recipe.ID, nil
}

func (r *RecipeRepository) saveNotes(ctx context.Context, tx *sqlx.Tx, recipeID int64, notes *domain.Notes) error {
	if notes == nil {
		_, err := r.db.exec(ctx, tx, r.db.dialect.Delete(tableNotes).Prepared(true).
			Where(goqu.Ex{"recipe_id": recipeID}))
		return err
	}

	affected, err := r.db.exec(ctx, tx, r.db.dialect.Update(tableNotes).Prepared(true).
		Set(goqu.Record{"recipe_notes": notes.RecipeNotes}).
		Where(goqu.Ex{"recipe_id": recipeID}))
	if err != nil || affected > 0 {
		return err
	}
	_, err = r.db.insert(ctx, tx, r.db.dialect.Insert(tableNotes).Prepared(true).Rows(goqu.Record{
		"recipe_id":    recipeID,
		"recipe_notes": notes.RecipeNotes,
	}))
	return err
}

func (r *RecipeRepository) saveCategories(ctx context.Context, tx *sqlx.Tx, recipeID int64, categories []domain.Category) error {
	if _, err := r.db.exec(ctx, tx, r.db.dialect.Delete(tableRecipeCategory).Prepared(true).
		Where(goqu.Ex{"recipe_id": recipeID})); err != nil {
		return err
	}

	seen := make(map[int64]struct{}, len(categories))
	rows := make([]interface{}, 0, len(categories))
	for _, c := range categories {
		if _, dup := seen[c.ID]; dup || c.ID == 0 {
			continue
		}
		seen[c.ID] = struct{}{}
		rows = append(rows, goqu.Record{"recipe_id": recipeID, "category_id": c.ID})
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := r.db.exec(ctx, tx, r.db.dialect.Insert(tableRecipeCategory).Prepared(true).Rows(rows...))
	return err
}

func (r *RecipeRepository) saveIngredients(ctx context.Context, tx *sqlx.Tx, recipeID int64, ingredients []domain.Ingredient) error {
	keep := make([]int64, 0, len(ingredients))
	for _, ingredient := range ingredients {
		record := goqu.Record{
			"recipe_id":   recipeID,
			"description": ingredient.Description,
			"amount":      ingredient.Amount,
			"uom_id":      nullableID(ingredient.UOMID()),
		}

		if ingredient.ID != 0 {
			affected, err := r.db.exec(ctx, tx, r.db.dialect.Update(tableIngredient).Prepared(true).
				Set(record).
				Where(goqu.Ex{"id": ingredient.ID, "recipe_id": recipeID}))
			if err != nil {
				return err
			}
			if affected > 0 {
				keep = append(keep, ingredient.ID)
				continue
			}
		}

		id, err := r.db.insert(ctx, tx, r.db.dialect.Insert(tableIngredient).Prepared(true).Rows(record))
		if err != nil {
			return err
		}
		keep = append(keep, id)
	}

	orphans := r.db.dialect.Delete(tableIngredient).Prepared(true).Where(goqu.Ex{"recipe_id": recipeID})
	if len(keep) > 0 {
		orphans = orphans.Where(goqu.C("id").NotIn(keep))
	}
	_, err := r.db.exec(ctx, tx, orphans)
	return err
}

// loadChildren fills notes, ingredients and categories for the given recipes in three queries.
func (r *RecipeRepository) loadChildren(ctx context.Context, q sqlx.QueryerContext, recipes []domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(recipes))
	index := make(map[int64]int, len(recipes))
	for i, recipe := range recipes {
		ids = append(ids, recipe.ID)
		index[recipe.ID] = i
	}

	var notes []notesRow
	if err := r.db.selectAll(ctx, q, &notes, r.db.dialect.From(tableNotes).Prepared(true).
		Select("id", "recipe_id", "recipe_notes").
		Where(goqu.C("recipe_id").In(ids))); err != nil {
		return err
	}
	for _, n := range notes {
		recipes[index[n.RecipeID]].Notes = &domain.Notes{ID: n.ID, RecipeNotes: n.RecipeNotes}
	}

	var ingredients []ingredientRow
	if err := r.db.selectAll(ctx, q, &ingredients, r.db.dialect.
		From(goqu.T(tableIngredient).As("i")).Prepared(true).
		LeftJoin(goqu.T(tableUnitOfMeasure).As("u"), goqu.On(goqu.I("i.uom_id").Eq(goqu.I("u.id")))).
		Select(
			goqu.I("i.id").As("id"),
			goqu.I("i.recipe_id").As("recipe_id"),
			goqu.I("i.description").As("description"),
			goqu.I("i.amount").As("amount"),
			goqu.I("i.uom_id").As("uom_id"),
			goqu.I("u.description").As("uom_description"),
		).
		Where(goqu.I("i.recipe_id").In(ids)).
		Order(goqu.I("i.id").Asc())); err != nil {
		return err
	}
	for _, row := range ingredients {
		recipe := &recipes[index[row.RecipeID]]
		recipe.Ingredients = append(recipe.Ingredients, row.toDomain())
	}

	var categories []recipeCategoryRow
	if err := r.db.selectAll(ctx, q, &categories, r.db.dialect.
		From(goqu.T(tableRecipeCategory).As("rc")).Prepared(true).
		Join(goqu.T(tableCategory).As("c"), goqu.On(goqu.I("rc.category_id").Eq(goqu.I("c.id")))).
		Select(
			goqu.I("rc.recipe_id").As("recipe_id"),
			goqu.I("c.id").As("id"),
			goqu.I("c.description").As("description"),
		).
		Where(goqu.I("rc.recipe_id").In(ids)).
		Order(goqu.I("c.description").Asc())); err != nil {
		return err
	}
	for _, row := range categories {
		recipe := &recipes[index[row.RecipeID]]
		recipe.Categories = append(recipe.Categories, domain.Category{ID: row.ID, Description: row.Description})
	}
	return nil
}

func (row recipeRow) toDomain() domain.Recipe {
	difficulty, err := domain.ParseDifficulty(row.Difficulty)
	if err != nil {
		difficulty = domain.Easy
	}
	return domain.Recipe{
		ID:          row.ID,
		Description: row.Description,
		PrepTime:    row.PrepTime,
		CookTime:    row.CookTime,
		Servings:    row.Servings,
		Source:      row.Source,
		URL:         row.URL,
		Directions:  row.Directions,
		Difficulty:  difficulty,
		Image:       row.Image,
	}
}

func (row ingredientRow) toDomain() domain.Ingredient {
	ingredient := domain.Ingredient{
		ID:          row.ID,
		RecipeID:    row.RecipeID,
		Description: row.Description,
		Amount:      row.Amount,
	}
	if row.UOMID.Valid {
		ingredient.UOM = &domain.UnitOfMeasure{ID: row.UOMID.Int64, Description: row.UOMDescription.String}
	}
	return ingredient
}

func difficultyOrDefault(d domain.Difficulty) string {
	if d == "" {
		return string(domain.Easy)
	}
	return string(d)
}

func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
