// Package migrations holds the relational schema shared by every indexer.
// The DDL is portable between SQLite and PostgreSQL.
package migrations

import (
	_ "embed"

	"github.com/goran-ethernal/StarkIndexor/internal/db"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
)

//go:embed 001_indexer_progress.sql
var mig001 string

//go:embed 002_announcements.sql
var mig002 string

//go:embed 003_meta_addresses_registry.sql
var mig003 string

// All returns the schema migrations in application order.
func All() []db.Migration {
	return []db.Migration{
		{ID: "001_indexer_progress.sql", SQL: mig001},
		{ID: "002_announcements.sql", SQL: mig002},
		{ID: "003_meta_addresses_registry.sql", SQL: mig003},
	}
}

// RunMigrations brings the schema of database up to date.
func RunMigrations(log *logger.Logger, database *db.DB) error {
	return db.RunMigrations(log, database, All())
}
