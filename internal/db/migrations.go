package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	migrate "github.com/rubenv/sql-migrate"
)

const (
	UpDownSeparator     = "-- +migrate Up"
	downMarker          = "-- +migrate Down"
	NoLimitMigrations   = 0 // indicate that there is no limit on the number of migrations to run
	migrationDirections = 2
)

// Migration is a single schema change. SQL holds the Down section followed by
// the Up section, separated by "-- +migrate Up".
type Migration struct {
	ID  string
	SQL string
}

// RunMigrations brings the schema of db up to date.
func RunMigrations(log *logger.Logger, db *DB, migrations []Migration) error {
	return RunMigrationsDBExtended(log, db.SQL(), db.Dialect(), migrations, migrate.Up, NoLimitMigrations)
}

// RunMigrationsDBExtended applies migrations in the given direction.
// dialect is a sql-migrate dialect name ("sqlite3" or "postgres").
// maxMigrations: Will apply at most `max` migrations. Pass 0 for no limit.
func RunMigrationsDBExtended(log *logger.Logger,
	db *sql.DB,
	dialect string,
	migrations []Migration,
	dir migrate.MigrationDirection,
	maxMigrations int) error {
	source, err := memorySource(migrations)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(source.Migrations))
	for _, m := range source.Migrations {
		ids = append(ids, m.Id)
	}
	list := strings.Join(ids, ", ")

	log.Debugf("running %s migrations (max %d/%d): %s", dialect, maxMigrations, len(source.Migrations), list)

	applied, err := migrate.ExecMax(db, dialect, source, dir, maxMigrations)
	if err != nil {
		return fmt.Errorf("error executing migrations (max %d/%d) %s: %w",
			maxMigrations, len(source.Migrations), list, err)
	}

	log.Infof("successfully ran %d migrations from: %s", applied, list)
	return nil
}

func memorySource(migrations []Migration) (*migrate.MemoryMigrationSource, error) {
	source := &migrate.MemoryMigrationSource{Migrations: make([]*migrate.Migration, 0, len(migrations))}

	for _, m := range migrations {
		parts := strings.Split(m.SQL, UpDownSeparator)
		if len(parts) < migrationDirections {
			return nil, fmt.Errorf("migration %s missing '%s' separator", m.ID, UpDownSeparator)
		}

		down := parts[0]
		if idx := strings.Index(down, downMarker); idx != -1 {
			down = down[idx+len(downMarker):]
		}

		source.Migrations = append(source.Migrations, &migrate.Migration{
			Id:   m.ID,
			Up:   splitStatements(parts[1]),
			Down: splitStatements(down),
		})
	}

	return source, nil
}

// splitStatements breaks a section into single statements.
func splitStatements(section string) []string {
	var stmts []string
	for _, stmt := range strings.Split(section, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt+";")
		}
	}
	return stmts
}
