package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/russross/meddler"

	"github.com/goran-ethernal/StarkIndexor/pkg/config"
)

// pgxDriverName is the database/sql name the pgx stdlib adapter registers under.
const pgxDriverName = "pgx"

// DB is a connection pool bound to one SQL dialect.
// Queries are written with '?' placeholders and rebound for the underlying driver.
type DB struct {
	conn    *sqlx.DB
	dialect string
	mapper  *meddler.Database
}

// New opens the database described by cfg.
func New(cfg config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		sqlDB, err := NewSQLiteDBFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return Wrap(sqlDB, config.DriverSQLite), nil

	case config.DriverPostgres:
		sqlDB, err := NewPostgresDBFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return Wrap(sqlDB, config.DriverPostgres), nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Wrap binds an already opened pool to a dialect ("sqlite3" or "postgres").
func Wrap(sqlDB *sql.DB, dialect string) *DB {
	if dialect == config.DriverPostgres {
		return &DB{conn: sqlx.NewDb(sqlDB, pgxDriverName), dialect: dialect, mapper: meddler.PostgreSQL}
	}
	return &DB{conn: sqlx.NewDb(sqlDB, config.DriverSQLite), dialect: config.DriverSQLite, mapper: meddler.SQLite}
}

// NewSQLiteDB creates a new SQLite DB
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", fmt.Sprintf(
		"file:%s?_txlock=immediate&_foreign_keys=on&_journal_mode=WAL&_busy_timeout=30000",
		dbPath,
	))
}

// NewSQLiteDBFromConfig creates a new SQLite DB with the given configuration.
func NewSQLiteDBFromConfig(cfg config.DatabaseConfig) (*sql.DB, error) {
	foreignKeys := "off"
	if cfg.EnableForeignKeys {
		foreignKeys = "on"
	}

	connStr := fmt.Sprintf(
		"file:%s?_txlock=immediate&_foreign_keys=%s&_journal_mode=%s&_busy_timeout=%d",
		cfg.Path,
		foreignKeys,
		cfg.JournalMode,
		cfg.BusyTimeout,
	)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)

	pragmas := []string{
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.Synchronous),
		fmt.Sprintf("PRAGMA cache_size = %d", cfg.CacheSize),
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	return db, nil
}

// NewPostgresDBFromConfig opens a PostgreSQL pool through the pgx stdlib adapter.
func NewPostgresDBFromConfig(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(pgxDriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return db, nil
}

// SQL returns the underlying pool.
func (d *DB) SQL() *sql.DB {
	return d.conn.DB
}

// Dialect returns "sqlite3" or "postgres".
func (d *DB) Dialect() string {
	return d.dialect
}

// Rebind converts '?' placeholders into the driver's bind style.
func (d *DB) Rebind(query string) string {
	return d.conn.Rebind(query)
}

// In expands slice arguments of an IN (?) clause and rebinds the result.
func (d *DB) In(query string, args ...any) (string, []any, error) {
	q, expanded, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return d.Rebind(q), expanded, nil
}

// ExecContext runs a statement written with '?' placeholders.
func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.conn.ExecContext(ctx, d.Rebind(query), args...)
}

// GetContext scans a single row into a scalar or a struct with db tags.
func (d *DB) GetContext(ctx context.Context, dst any, query string, args ...any) error {
	return d.conn.GetContext(ctx, dst, d.Rebind(query), args...)
}

// QueryAll scans every row into dst, a pointer to a slice of meddler-tagged structs.
func (d *DB) QueryAll(dst any, query string, args ...any) error {
	return d.mapper.QueryAll(d.conn, dst, d.Rebind(query), args...)
}

// QueryRow scans the first row into a meddler-tagged struct.
// It returns sql.ErrNoRows when the query yields nothing.
func (d *DB) QueryRow(dst any, query string, args ...any) error {
	return d.mapper.QueryRow(d.conn, dst, d.Rebind(query), args...)
}

func (d *DB) PingContext(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.conn.Close()
}
