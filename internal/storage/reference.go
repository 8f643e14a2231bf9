package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"cookbook/pkg/domain"
)

const (
	tableUnitOfMeasure = "unit_of_measure"
	tableCategory      = "category"
)

type referenceRow struct {
	ID          int64  `db:"id"`
	Description string `db:"description"`
}

// UnitOfMeasureRepository reads the unit_of_measure table.
type UnitOfMeasureRepository struct {
	db *DB
}

func NewUnitOfMeasureRepository(db *DB) *UnitOfMeasureRepository {
	return &UnitOfMeasureRepository{db: db}
}

func (r *UnitOfMeasureRepository) FindAll(ctx context.Context) ([]domain.UnitOfMeasure, error) {
	rows, err := findAllReference(ctx, r.db, tableUnitOfMeasure)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UnitOfMeasure, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.UnitOfMeasure{ID: row.ID, Description: row.Description})
	}
	return out, nil
}

// FindByID returns domain.UnitOfMeasureNotFound when no row exists.
func (r *UnitOfMeasureRepository) FindByID(ctx context.Context, id int64) (domain.UnitOfMeasure, error) {
	row, err := findReference(ctx, r.db, tableUnitOfMeasure, goqu.Ex{"id": id})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UnitOfMeasure{}, domain.UnitOfMeasureNotFound(id)
	}
	if err != nil {
		return domain.UnitOfMeasure{}, err
	}
	return domain.UnitOfMeasure{ID: row.ID, Description: row.Description}, nil
}

// FindByDescription resolves a unit by its exact name; ok is false when none matches.
func (r *UnitOfMeasureRepository) FindByDescription(ctx context.Context, description string) (domain.UnitOfMeasure, bool, error) {
	row, err := findReference(ctx, r.db, tableUnitOfMeasure, goqu.Ex{"description": description})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UnitOfMeasure{}, false, nil
	}
	if err != nil {
		return domain.UnitOfMeasure{}, false, err
	}
	return domain.UnitOfMeasure{ID: row.ID, Description: row.Description}, true, nil
}

// Create inserts a unit and returns it with its id.
func (r *UnitOfMeasureRepository) Create(ctx context.Context, description string) (domain.UnitOfMeasure, error) {
	id, err := r.db.insert(ctx, r.db.x, r.db.dialect.Insert(tableUnitOfMeasure).Prepared(true).
		Rows(goqu.Record{"description": description}))
	if err != nil {
		return domain.UnitOfMeasure{}, err
	}
	return domain.UnitOfMeasure{ID: id, Description: description}, nil
}

// CategoryRepository reads the category table.
type CategoryRepository struct {
	db *DB
}

func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]domain.Category, error) {
	rows, err := findAllReference(ctx, r.db, tableCategory)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Category{ID: row.ID, Description: row.Description})
	}
	return out, nil
}

// FindByDescription resolves a category by its exact name; ok is false when none matches.
func (r *CategoryRepository) FindByDescription(ctx context.Context, description string) (domain.Category, bool, error) {
	row, err := findReference(ctx, r.db, tableCategory, goqu.Ex{"description": description})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, false, nil
	}
	if err != nil {
		return domain.Category{}, false, err
	}
	return domain.Category{ID: row.ID, Description: row.Description}, true, nil
}

// Create inserts a category and returns it with its id.
func (r *CategoryRepository) Create(ctx context.Context, description string) (domain.Category, error) {
	id, err := r.db.insert(ctx, r.db.x, r.db.dialect.Insert(tableCategory).Prepared(true).
		Rows(goqu.Record{"description": description}))
	if err != nil {
		return domain.Category{}, err
	}
	return domain.Category{ID: id, Description: description}, nil
}

func findAllReference(ctx context.Context, db *DB, table string) ([]referenceRow, error) {
	var rows []referenceRow
	err := db.selectAll(ctx, db.x, &rows, db.dialect.From(table).Prepared(true).
		Select("id", "description").
		Order(goqu.I("description").Asc()))
	return rows, err
}

func findReference(ctx context.Context, db *DB, table string, where goqu.Ex) (referenceRow, error) {
	var row referenceRow
	err := db.get(ctx, db.x, &row, db.dialect.From(table).Prepared(true).
		Select("id", "description").
		Where(where))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return referenceRow{}, errors.Join(ErrQueryingFailed, err)
	}
	return row, err
}
