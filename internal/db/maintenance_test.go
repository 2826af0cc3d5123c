package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goran-ethernal/StarkIndexor/internal/common"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/pkg/config"
	"github.com/stretchr/testify/require"
)

func setupMaintenanceTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "maintenance.db")
	dbConfig := config.DatabaseConfig{Path: dbPath, JournalMode: "WAL"}
	dbConfig.ApplyDefaults()

	db, err := NewSQLiteDBFromConfig(dbConfig)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS indexer_progress_test (block INTEGER PRIMARY KEY, data TEXT)`)
	require.NoError(t, err)

	return db, dbPath
}

func insertRows(t *testing.T, db *sql.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := db.Exec("INSERT INTO indexer_progress_test (data) VALUES (?)", "announcement payload")
		require.NoError(t, err)
	}
}

func TestNewMaintenance(t *testing.T) {
	sqlDB, dbPath := setupMaintenanceTestDB(t)
	log := logger.NewNopLogger()

	cfg := config.DatabaseConfig{Path: dbPath}
	require.IsType(t, &NoOpMaintenance{}, NewMaintenance(Wrap(sqlDB, config.DriverSQLite), cfg, log))

	cfg.Maintenance = &config.MaintenanceConfig{Enabled: true, WALCheckpointMode: "PASSIVE"}
	require.IsType(t, &MaintenanceCoordinator{}, NewMaintenance(Wrap(sqlDB, config.DriverSQLite), cfg, log))

	// postgres never gets sqlite maintenance
	require.IsType(t, &NoOpMaintenance{}, NewMaintenance(Wrap(sqlDB, config.DriverPostgres), cfg, log))
}

func TestMaintenanceCoordinator_RunMaintenance(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)
	insertRows(t, db, 1000)

	coordinator := newMaintenanceCoordinator(dbPath, db,
		config.MaintenanceConfig{WALCheckpointMode: "TRUNCATE"}, logger.NewNopLogger())

	require.NoError(t, coordinator.RunMaintenance(context.Background()))

	metrics := coordinator.GetMetrics()
	require.Equal(t, uint64(1), metrics.MaintenanceCount)
	require.False(t, metrics.LastMaintenanceTime.IsZero())
	require.NoError(t, metrics.LastMaintenanceError)
}

func TestMaintenanceCoordinator_ContextCancellation(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)

	coordinator := newMaintenanceCoordinator(dbPath, db,
		config.MaintenanceConfig{WALCheckpointMode: "TRUNCATE"}, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, coordinator.RunMaintenance(ctx), context.Canceled)
}

func TestMaintenanceCoordinator_WaitsForOperations(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)

	coordinator := newMaintenanceCoordinator(dbPath, db,
		config.MaintenanceConfig{WALCheckpointMode: "PASSIVE"}, logger.NewNopLogger())

	unlock := coordinator.AcquireOperationLock()

	var finished atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(t, coordinator.RunMaintenance(context.Background()))
		finished.Store(true)
	}()

	time.Sleep(50 * time.Millisecond)
	require.False(t, finished.Load(), "maintenance must wait for the in-flight operation")

	unlock()
	<-done
	require.True(t, finished.Load())
}

func TestMaintenanceCoordinator_ConcurrentWrites(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)

	coordinator := newMaintenanceCoordinator(dbPath, db,
		config.MaintenanceConfig{WALCheckpointMode: "PASSIVE"}, logger.NewNopLogger())

	const writers, writesEach = 20, 5
	var (
		wg      sync.WaitGroup
		success atomic.Int32
	)

	for range writers {
		wg.Go(func() {
			for range writesEach {
				unlock := coordinator.AcquireOperationLock()
				_, err := db.Exec("INSERT INTO indexer_progress_test (data) VALUES (?)", "x")
				unlock()
				if err == nil {
					success.Add(1)
				}
			}
		})
	}

	wg.Go(func() {
		for range 2 {
			require.NoError(t, coordinator.RunMaintenance(context.Background()))
		}
	})

	wg.Wait()

	require.Equal(t, int32(writers*writesEach), success.Load())
	require.Equal(t, uint64(2), coordinator.GetMetrics().MaintenanceCount)
}

func TestMaintenanceCoordinator_BackgroundMaintenance(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)

	coordinator := newMaintenanceCoordinator(dbPath, db, config.MaintenanceConfig{
		Enabled:           true,
		CheckInterval:     common.NewDuration(50 * time.Millisecond),
		WALCheckpointMode: "PASSIVE",
	}, logger.NewNopLogger())

	require.NoError(t, coordinator.Start(t.Context()))
	insertRows(t, db, 50)

	require.Eventually(t, func() bool {
		return coordinator.GetMetrics().MaintenanceCount > 0
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, coordinator.Stop())
}

func TestMaintenanceCoordinator_StartupMaintenance(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)
	insertRows(t, db, 100)

	coordinator := newMaintenanceCoordinator(dbPath, db, config.MaintenanceConfig{
		Enabled:           true,
		CheckInterval:     common.NewDuration(time.Hour),
		VacuumOnStartup:   true,
		WALCheckpointMode: "TRUNCATE",
	}, logger.NewNopLogger())

	require.NoError(t, coordinator.Start(t.Context()))
	defer func() { require.NoError(t, coordinator.Stop()) }()

	require.Equal(t, uint64(1), coordinator.GetMetrics().MaintenanceCount)
}

func TestMaintenanceCoordinator_Disabled(t *testing.T) {
	db, dbPath := setupMaintenanceTestDB(t)

	coordinator := newMaintenanceCoordinator(dbPath, db, config.MaintenanceConfig{
		CheckInterval:     common.NewDuration(20 * time.Millisecond),
		WALCheckpointMode: "TRUNCATE",
	}, logger.NewNopLogger())

	require.NoError(t, coordinator.Start(t.Context()))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, coordinator.Stop())

	require.Zero(t, coordinator.GetMetrics().MaintenanceCount)
}
