package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations
var migrationFS embed.FS

const migrationTable = "schema_migrations"

// Migrate applies the embedded migrations for the driver, each file at most once.
// It returns the names of the files applied by this call.
func (d *DB) Migrate(ctx context.Context) ([]string, error) {
	root := path.Join("migrations", d.driver)
	entries, err := fs.ReadDir(migrationFS, root)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	createSQL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at BIGINT NOT NULL
)`, migrationTable)
	if _, err := d.x.ExecContext(ctx, createSQL); err != nil {
		return nil, fmt.Errorf("ensure migration table: %w", err)
	}

	var applied []string
	for _, file := range files {
		done, err := d.isApplied(ctx, file)
		if err != nil {
			return applied, fmt.Errorf("check migration %s: %w", file, err)
		}
		if done {
			continue
		}

		content, err := fs.ReadFile(migrationFS, path.Join(root, file))
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", file, err)
		}

		err = d.inTx(ctx, func(tx *sqlx.Tx) error {
			for _, stmt := range splitStatements(string(content)) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return errors.Join(ErrQueryingFailed, err)
				}
			}
			_, err := d.exec(ctx, tx, d.dialect.Insert(migrationTable).Prepared(true).Rows(goqu.Record{
				"name":       file,
				"applied_at": time.Now().UTC().Unix(),
			}))
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", file, err)
		}
		applied = append(applied, file)
	}
	return applied, nil
}

func (d *DB) isApplied(ctx context.Context, name string) (bool, error) {
	var count int
	err := d.get(ctx, d.x, &count, d.dialect.From(migrationTable).Prepared(true).
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"name": name}))
	if err != nil {
		return false, errors.Join(ErrQueryingFailed, err)
	}
	return count > 0, nil
}

// splitStatements cuts a migration file on statement terminators. The migrations
// carry no procedural code, so a plain split is enough.
func splitStatements(content string) []string {
	var out []string
	for _, part := range strings.Split(content, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
