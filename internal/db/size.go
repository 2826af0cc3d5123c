package db

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// sqliteSidecars are the files SQLite keeps next to the main database in WAL mode.
var sqliteSidecars = []string{"", "-wal", "-shm"}

// DBTotalSize returns the combined size of a SQLite database and its WAL/SHM files.
// Missing files count as zero.
func DBTotalSize(dbPath string) (int64, error) {
	var total int64
	for _, suffix := range sqliteSidecars {
		info, err := os.Stat(dbPath + suffix)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to stat %s: %w", dbPath+suffix, err)
		}
		total += info.Size()
	}
	return total, nil
}

// Vacuum rebuilds the database file, releasing free pages.
func Vacuum(db *sql.DB) error {
	if _, err := db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("vacuum failed: %w", err)
	}
	VacuumRunsInc()
	return nil
}
