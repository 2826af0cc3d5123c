package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/StarkIndexor/internal/db"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/internal/migrations"
	"github.com/goran-ethernal/StarkIndexor/pkg/config"
	"github.com/goran-ethernal/StarkIndexor/pkg/indexer"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newSQLiteDB(t *testing.T) *db.DB {
	t.Helper()

	cfg := config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "store.db")}
	cfg.ApplyDefaults()

	database, err := db.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.RunMigrations(logger.NewNopLogger(), database))
	return database
}

// newPostgresDB starts a PostgreSQL container and migrates it.
func newPostgresDB(t *testing.T) *db.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("starkindexor_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{Driver: config.DriverPostgres, DSN: dsn}
	cfg.ApplyDefaults()

	database, err := db.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.RunMigrations(logger.NewNopLogger(), database))
	return database
}

func newAnnouncement(stealthAccount string, block uint64, valid bool) *indexer.Announcement {
	return &indexer.Announcement{
		Sender:                  common.HexToHash("0x5e4d"),
		StealthAddress:          common.HexToHash(stealthAccount),
		Amount:                  "1.5 ETH",
		EphemeralPublicKey:      "1.2",
		ViewTag:                 "ab",
		StealthAccountPublicKey: "3.4",
		StealthAccountAddress:   common.HexToHash(stealthAccount),
		BlockNumber:             block,
		Hash:                    common.HexToHash("0xfeed"),
		AllDataIsValid:          valid,
	}
}

func newMetaEntry(metaID string, block uint64, spending string) *indexer.MetaAddressEntry {
	return &indexer.MetaAddressEntry{
		MetaID:            metaID,
		StarknetAddress:   common.HexToHash("0xa11ce"),
		SpendingPublicKey: spending,
		ViewingPublicKey:  "9.9",
		BlockNumber:       block,
		Hash:              common.HexToHash("0xbeef"),
		AllDataIsValid:    true,
	}
}

func TestStore_SQLite(t *testing.T) {
	runStoreSuite(t, newSQLiteDB)
}

func TestStore_Postgres(t *testing.T) {
	runStoreSuite(t, newPostgresDB)
}

func runStoreSuite(t *testing.T, newDB func(t *testing.T) *db.DB) {
	t.Helper()

	database := newDB(t)
	log := logger.NewNopLogger()
	var counter int

	// each subtest gets its own network so rows never leak between them
	newStore := func() *Store {
		counter++
		return New(database, "starknet", "net"+string(rune('a'+counter)), nil, log)
	}

	t.Run("announcement upsert is idempotent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore()

		a := newAnnouncement("0x111", 10, true)
		require.NoError(t, s.UpsertAnnouncement(ctx, a))
		require.NoError(t, s.UpsertAnnouncement(ctx, a))

		count, err := s.GetInfoCount(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(1), count)

		rows, err := s.GetInfo(ctx, indexer.NewPage(0, 10, 100))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		createdAt := rows[0].CreatedAt

		updated := newAnnouncement("0x111", 12, true)
		updated.Amount = "3 STRK"
		updated.Hash = common.HexToHash("0xcafe")
		require.NoError(t, s.UpsertAnnouncement(ctx, updated))

		rows, err = s.GetInfo(ctx, indexer.NewPage(0, 10, 100))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, "3 STRK", rows[0].Amount)
		require.Equal(t, uint64(12), rows[0].BlockNumber)
		require.Equal(t, common.HexToHash("0xcafe"), rows[0].Hash)
		require.Equal(t, common.HexToHash("0x111"), rows[0].StealthAccountAddress)
		require.True(t, createdAt.Equal(rows[0].CreatedAt))
		require.Equal(t, s.Chain(), rows[0].Chain)
		require.Equal(t, s.Network(), rows[0].Network)
	})

	t.Run("invalid announcements are hidden from reads", func(t *testing.T) {
		ctx := context.Background()
		s := newStore()

		require.NoError(t, s.UpsertAnnouncement(ctx, newAnnouncement("0x222", 1, false)))
		require.NoError(t, s.UpsertAnnouncement(ctx, newAnnouncement("0x333", 2, true)))

		count, err := s.GetInfoCount(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(1), count)

		transfers, err := s.GetTransfers(ctx, []common.Hash{common.HexToHash("0x222"), common.HexToHash("0x333")})
		require.NoError(t, err)
		require.Len(t, transfers, 1)
		require.Equal(t, common.HexToHash("0x333"), transfers[0].StealthAddress)
	})

	t.Run("info is ordered by block and paginated", func(t *testing.T) {
		ctx := context.Background()
		s := newStore()

		for i, addr := range []string{"0x401", "0x402", "0x403", "0x404", "0x405"} {
			require.NoError(t, s.UpsertAnnouncement(ctx, newAnnouncement(addr, uint64(i+1), true)))
		}

		first, err := s.GetInfo(ctx, indexer.Page{Offset: 0, Limit: 2})
		require.NoError(t, err)
		require.Len(t, first, 2)
		require.Equal(t, uint64(5), first[0].BlockNumber)
		require.Equal(t, uint64(4), first[1].BlockNumber)

		last, err := s.GetInfo(ctx, indexer.Page{Offset: 4, Limit: 2})
		require.NoError(t, err)
		require.Len(t, last, 1)
		require.Equal(t, uint64(1), last[0].BlockNumber)

		none, err := s.GetTransfers(ctx, nil)
		require.NoError(t, err)
		require.Empty(t, none)
	})

	t.Run("direct write never overwrites", func(t *testing.T) {
		ctx := context.Background()
		s := newStore()

		a := newAnnouncement("0x501", 20, true)
		info := indexer.StealthInfo{
			EphemeralPublicKey:      a.EphemeralPublicKey,
			ViewTag:                 a.ViewTag,
			StealthAccountPublicKey: a.StealthAccountPublicKey,
			StealthAccountAddress:   a.StealthAccountAddress,
		}

		// pre-confirmation row carries sentinels
		require.NoError(t, s.InsertStealthInfo(ctx, info))
		rows, err := s.GetInfo(ctx, indexer.NewPage(0, 10, 100))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, DirectWriteAmount, rows[0].Amount)
		require.Equal(t, common.Hash{}, rows[0].Sender)
		require.Equal(t, common.Hash{}, rows[0].Hash)
		require.Zero(t, rows[0].BlockNumber)
		require.True(t, rows[0].AllDataIsValid)

		// the on-chain event fills them in
		require.NoError(t, s.UpsertAnnouncement(ctx, a))

		// a late direct write is a no-op
		require.NoError(t, s.InsertStealthInfo(ctx, info))

		rows, err = s.GetInfo(ctx, indexer.NewPage(0, 10, 100))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, a.Amount, rows[0].Amount)
		require.Equal(t, a.Sender, rows[0].Sender)
		require.Equal(t, uint64(20), rows[0].BlockNumber)
	})

	t.Run("meta registry keeps the latest block", func(t *testing.T) {
		ctx := context.Background()
		s := newStore()

		require.NoError(t, s.UpsertMetaAddress(ctx, newMetaEntry("alice", 5, "5.5")))
		require.NoError(t, s.UpsertMetaAddress(ctx, newMetaEntry("alice", 7, "7.7")))

		keys, err := s.CheckMetaID(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "7.7", keys.SpendingPublicKey)
		require.Equal(t, "9.9", keys.ViewingPublicKey)

		// an older event replayed later does not win
		require.NoError(t, s.UpsertMetaAddress(ctx, newMetaEntry("alice", 6, "6.6")))
		keys, err = s.CheckMetaID(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "7.7", keys.SpendingPublicKey)

		entry, err := s.GetMetaAddress(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, uint64(7), entry.BlockNumber)

		metaID, err := s.ResolveMetaID(ctx, common.HexToHash("0xa11ce"))
		require.NoError(t, err)
		require.Equal(t, "alice", metaID)
	})

	t.Run("meta lookups report not found", func(t *testing.T) {
		ctx := context.Background()
		s := newStore()

		invalid := newMetaEntry("mallory", 1, "1.1")
		invalid.StarknetAddress = common.HexToHash("0xbad")
		invalid.AllDataIsValid = false
		require.NoError(t, s.UpsertMetaAddress(ctx, invalid))

		_, err := s.CheckMetaID(ctx, "mallory")
		require.ErrorIs(t, err, ErrNotFound)

		_, err = s.ResolveMetaID(ctx, common.HexToHash("0xbad"))
		require.ErrorIs(t, err, ErrNotFound)

		_, err = s.CheckMetaID(ctx, "nobody")
		require.ErrorIs(t, err, ErrNotFound)

		_, err = s.GetMetaAddress(ctx, "nobody")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("reads are scoped to chain and network", func(t *testing.T) {
		ctx := context.Background()
		a, b := newStore(), newStore()

		require.NoError(t, a.UpsertAnnouncement(ctx, newAnnouncement("0x601", 1, true)))
		require.NoError(t, a.UpsertMetaAddress(ctx, newMetaEntry("bob", 1, "1.1")))

		count, err := b.GetInfoCount(ctx)
		require.NoError(t, err)
		require.Zero(t, count)

		_, err = b.CheckMetaID(ctx, "bob")
		require.ErrorIs(t, err, ErrNotFound)
	})
}
