// Package storage persists the recipe aggregate and its reference data in a
// relational database. Statements are built with goqu and executed through sqlx.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	_ "github.com/jackc/pgx/v5/stdlib"                  // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	// DriverSQLite selects the embedded pure-Go SQLite database.
	DriverSQLite = "sqlite"
	// DriverPostgres selects PostgreSQL through pgx.
	DriverPostgres = "postgres"
)

var (
	// ErrUnsupportedDriver is returned by Open for an unknown driver name.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	// ErrBuildingQueryFailed wraps goqu failures while rendering SQL.
	ErrBuildingQueryFailed = errors.New("building query failed")
	// ErrQueryingFailed wraps failures reported by the database.
	ErrQueryingFailed = errors.New("querying database failed")
)

// DB bundles the sqlx handle with the goqu dialect matching its driver.
type DB struct {
	x         *sqlx.DB
	dialect   goqu.DialectWrapper
	driver    string
	returning bool
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		return openSQLite(ctx, dsn)
	case DriverPostgres:
		return openPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

func openSQLite(ctx context.Context, dsn string) (*DB, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	x, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: SQLite serialises writers anyway, and ":memory:" is per-connection.
	x.SetMaxOpenConns(1)
	x.SetMaxIdleConns(1)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := x.ExecContext(ctx, pragma); err != nil {
			x.Close()
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}
	if err := x.PingContext(ctx); err != nil {
		x.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &DB{x: x, dialect: goqu.Dialect("sqlite3"), driver: DriverSQLite}, nil
}

func openPostgres(ctx context.Context, dsn string) (*DB, error) {
	const (
		maxOpenConnections = 20
		maxIdleConnections = 5
		maxConnLifetime    = time.Hour
		maxConnIdleTime    = 5 * time.Minute
	)

	x, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	x.SetMaxOpenConns(maxOpenConnections)
	x.SetMaxIdleConns(maxIdleConnections)
	x.SetConnMaxLifetime(maxConnLifetime)
	x.SetConnMaxIdleTime(maxConnIdleTime)

	if err := x.PingContext(ctx); err != nil {
		x.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &DB{x: x, dialect: goqu.Dialect("postgres"), driver: DriverPostgres, returning: true}, nil
}

// Driver reports which backend the handle talks to.
func (d *DB) Driver() string { return d.driver }

// Ping is used by the health endpoint.
func (d *DB) Ping(ctx context.Context) error { return d.x.PingContext(ctx) }

// Close releases the connection pool.
func (d *DB) Close() error { return d.x.Close() }

// sqlBuilder is implemented by every goqu dataset.
type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

func build(ds sqlBuilder) (string, []interface{}, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}
	return query, args, nil
}

func (d *DB) exec(ctx context.Context, q sqlx.ExecerContext, ds sqlBuilder) (int64, error) {
	query, args, err := build(ds)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Join(ErrQueryingFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Join(ErrQueryingFailed, err)
	}
	return affected, nil
}

// insert runs the statement and returns the generated id. PostgreSQL reports it
// through RETURNING, SQLite through LastInsertId.
func (d *DB) insert(ctx context.Context, q sqlx.ExtContext, ds *goqu.InsertDataset) (int64, error) {
	if d.returning {
		query, args, err := build(ds.Returning("id"))
		if err != nil {
			return 0, err
		}
		var id int64
		if err := q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, errors.Join(ErrQueryingFailed, err)
		}
		return id, nil
	}

	query, args, err := build(ds)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Join(ErrQueryingFailed, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Join(ErrQueryingFailed, err)
	}
	return id, nil
}

func (d *DB) selectAll(ctx context.Context, q sqlx.QueryerContext, dest interface{}, ds sqlBuilder) error {
	query, args, err := build(ds)
	if err != nil {
		return err
	}
	if err := sqlx.SelectContext(ctx, q, dest, query, args...); err != nil {
		return errors.Join(ErrQueryingFailed, err)
	}
	return nil
}

// get scans exactly one row; sql.ErrNoRows is passed through untouched for callers to map.
func (d *DB) get(ctx context.Context, q sqlx.QueryerContext, dest interface{}, ds sqlBuilder) error {
	query, args, err := build(ds)
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, q, dest, query, args...)
}

// inTx runs fn inside a transaction and commits when it returns nil.
func (d *DB) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.x.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Join(ErrQueryingFailed, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Join(ErrQueryingFailed, err)
	}
	return nil
}
