package indexer

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/goran-ethernal/StarkIndexor/internal/calldata"
	"github.com/goran-ethernal/StarkIndexor/internal/db"
	"github.com/goran-ethernal/StarkIndexor/internal/felt"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/internal/migrations"
	"github.com/goran-ethernal/StarkIndexor/internal/poller"
	"github.com/goran-ethernal/StarkIndexor/internal/progress"
	"github.com/goran-ethernal/StarkIndexor/internal/store"
	"github.com/goran-ethernal/StarkIndexor/internal/validation"
	"github.com/goran-ethernal/StarkIndexor/pkg/config"
	"github.com/goran-ethernal/StarkIndexor/pkg/indexer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	// bn254Generator is the generator of BN254 G1.
	bn254Generator = "1.2"
	secpGenerator  = "55066263022277343669578718895168534326250603453777594175500187360389116729240." +
		"32670510020758816978083085130507043184471273380659243275938904335757337482424"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	cfg := config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "indexer.db")}
	cfg.ApplyDefaults()

	database, err := db.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.RunMigrations(logger.NewNopLogger(), database))
	return database
}

func randomSecpPoint(t *testing.T) string {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key.PublicKey.X.String() + "." + key.PublicKey.Y.String()
}

func defaultSchemas(t *testing.T) (announcer, meta calldata.Schema) {
	t.Helper()

	cfg := config.IndexerConfig{}
	cfg.ApplyDefaults()

	announcer, err := cfg.Announcer.Schema()
	require.NoError(t, err)
	meta, err = cfg.MetaRegistry.Schema()
	require.NoError(t, err)
	return announcer, meta
}

// announcerCalldata serializes the arguments of an announce call.
func announcerCalldata(eph, viewTag, stealthPub, account string) []string {
	var out []string
	out = append(out, calldata.EncodeByteArray(eph)...)
	out = append(out, calldata.EncodeByteArray(viewTag)...)
	out = append(out, calldata.EncodeByteArray(stealthPub)...)
	return append(out, account)
}

// metaCalldata serializes the arguments of a meta address registration.
func metaCalldata(t *testing.T, metaID, metaAddress string) []string {
	t.Helper()

	id, err := felt.EncodeShortString(metaID)
	require.NoError(t, err)
	return append([]string{felt.ToHex(id)}, calldata.EncodeByteArray(metaAddress)...)
}

func decoded(t *testing.T, schema calldata.Schema, felts []string) calldata.Record {
	t.Helper()

	rec, err := calldata.Decode(schema, felts)
	require.NoError(t, err)
	return rec
}

type handlerFixture struct {
	db       *db.DB
	store    *store.Store
	progress *progress.Store
	schemaA  calldata.Schema
	schemaM  calldata.Schema
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	database := newTestDB(t)
	schemaA, schemaM := defaultSchemas(t)
	return &handlerFixture{
		db:       database,
		store:    store.New(database, "starknet", "sepolia", nil, logger.NewNopLogger()),
		progress: progress.NewStore(database, "starknet", "sepolia", nil, logger.NewNopLogger()),
		schemaA:  schemaA,
		schemaM:  schemaM,
	}
}

func (f *handlerFixture) announcer() *AnnouncerHandler {
	return NewAnnouncerHandler("starknet-sepolia", common.HexToHash("0xa11"), f.store, f.progress,
		validation.NewValidator(), logger.NewNopLogger())
}

func (f *handlerFixture) meta() *MetaRegistryHandler {
	return NewMetaRegistryHandler("starknet-sepolia", common.HexToHash("0xb22"), f.store, f.progress,
		validation.NewValidator(), logger.NewNopLogger())
}

func (f *handlerFixture) rowCount(t *testing.T, table string) int {
	t.Helper()

	var n int
	require.NoError(t, f.db.GetContext(context.Background(), &n, "SELECT COUNT(*) FROM "+table))
	return n
}

func TestAnnouncerHandler_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFixture(t)
	h := f.announcer()

	recipient := common.HexToHash("0x5ea1")
	ev := poller.EventData{
		BlockNumber:     12,
		TransactionHash: common.HexToHash("0xfeed"),
		Sender:          common.HexToHash("0xacc1"),
		Params:          decoded(t, f.schemaA, announcerCalldata(bn254Generator, "ab", secpGenerator, "0x777")),
		Transfers: []calldata.TokenTransfer{{
			Token:     "ETH",
			Recipient: recipient,
			RawAmount: big.NewInt(1),
			Amount:    decimal.RequireFromString("1.5"),
			Decimals:  18,
		}},
	}

	require.NoError(t, h.OnEvent(ctx, ev))
	require.NoError(t, h.OnEvent(ctx, ev))

	require.Equal(t, 1, f.rowCount(t, "announcements"))

	rows, err := f.store.GetInfo(ctx, indexer.NewPage(0, 10, 100))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := rows[0]
	require.True(t, got.AllDataIsValid)
	require.Equal(t, "1.5 ETH", got.Amount)
	require.Equal(t, recipient, got.StealthAddress)
	require.Equal(t, common.HexToHash("0x777"), got.StealthAccountAddress)
	require.Equal(t, common.HexToHash("0xacc1"), got.Sender)
	require.Equal(t, bn254Generator, got.EphemeralPublicKey)
	require.Equal(t, "ab", got.ViewTag)
	require.Equal(t, secpGenerator, got.StealthAccountPublicKey)
	require.Equal(t, uint64(12), got.BlockNumber)
	require.Equal(t, common.HexToHash("0xfeed"), got.Hash)
}

func TestAnnouncerHandler_WithoutTransfer(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFixture(t)

	require.NoError(t, f.announcer().OnEvent(ctx, poller.EventData{
		BlockNumber: 3,
		Params:      decoded(t, f.schemaA, announcerCalldata(bn254Generator, "ff", secpGenerator, "0x888")),
	}))

	rows, err := f.store.GetTransfers(ctx, []common.Hash{common.HexToHash("0x888")})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, store.DirectWriteAmount, rows[0].Amount)
	require.True(t, rows[0].AllDataIsValid)
}

func TestAnnouncerHandler_Validity(t *testing.T) {
	tests := []struct {
		name       string
		eph        string
		viewTag    string
		stealthPub string
		valid      bool
	}{
		{"valid", bn254Generator, "ff", secpGenerator, true},
		{"single digit view tag", bn254Generator, "1", secpGenerator, false},
		{"non hex view tag", bn254Generator, "zz", secpGenerator, false},
		{"ephemeral key not on bn254", secpGenerator, "ff", secpGenerator, false},
		{"stealth key not on secp256k1", bn254Generator, "ff", bn254Generator, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newHandlerFixture(t)

			require.NoError(t, f.announcer().OnEvent(ctx, poller.EventData{
				BlockNumber: 1,
				Params:      decoded(t, f.schemaA, announcerCalldata(tt.eph, tt.viewTag, tt.stealthPub, "0x999")),
			}))

			// invalid rows are kept but hidden from reads
			require.Equal(t, 1, f.rowCount(t, "announcements"))

			count, err := f.store.GetInfoCount(ctx)
			require.NoError(t, err)
			if tt.valid {
				require.Equal(t, uint64(1), count)
			} else {
				require.Zero(t, count)
			}
		})
	}
}

func TestMetaRegistryHandler_LatestBlockWins(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFixture(t)
	h := f.meta()

	viewing := bn254Generator
	spending5, spending7 := randomSecpPoint(t), randomSecpPoint(t)
	account := common.HexToHash("0xacc1")

	event := func(block uint64, spending string) poller.EventData {
		return poller.EventData{
			BlockNumber:     block,
			TransactionHash: common.BigToHash(new(big.Int).SetUint64(block)),
			Sender:          account,
			Params:          decoded(t, f.schemaM, metaCalldata(t, "alice", spending+validation.MetaAddressSeparator+viewing)),
		}
	}

	require.NoError(t, h.OnEvent(ctx, event(5, spending5)))
	require.NoError(t, h.OnEvent(ctx, event(7, spending7)))

	keys, err := f.store.CheckMetaID(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, spending7, keys.SpendingPublicKey)
	require.Equal(t, viewing, keys.ViewingPublicKey)

	// a late delivery of an older registration does not roll back
	require.NoError(t, h.OnEvent(ctx, event(6, spending5)))
	keys, err = f.store.CheckMetaID(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, spending7, keys.SpendingPublicKey)

	metaID, err := f.store.ResolveMetaID(ctx, account)
	require.NoError(t, err)
	require.Equal(t, "alice", metaID)
	require.Equal(t, 1, f.rowCount(t, "meta_addresses_registry"))
}

func TestMetaRegistryHandler_InvalidKeysStoredAsInvalid(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFixture(t)

	require.NoError(t, f.meta().OnEvent(ctx, poller.EventData{
		BlockNumber: 1,
		Sender:      common.HexToHash("0xacc2"),
		Params:      decoded(t, f.schemaM, metaCalldata(t, "bob", "1.2:::1.2")),
	}))

	require.Equal(t, 1, f.rowCount(t, "meta_addresses_registry"))
	_, err := f.store.CheckMetaID(ctx, "bob")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMetaRegistryHandler_DropsMalformedMetaAddress(t *testing.T) {
	for _, metaAddress := range []string{"onlyonehalf", ":::" + bn254Generator, secpGenerator + ":::"} {
		t.Run(metaAddress, func(t *testing.T) {
			f := newHandlerFixture(t)

			err := f.meta().OnEvent(context.Background(), poller.EventData{
				BlockNumber: 1,
				Params:      decoded(t, f.schemaM, metaCalldata(t, "carol", metaAddress)),
			})
			require.NoError(t, err)
			require.Zero(t, f.rowCount(t, "meta_addresses_registry"))
		})
	}
}

func TestHandler_OnProgress(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFixture(t)
	h := f.announcer()

	require.NoError(t, h.OnProgress(ctx, 42))
	require.NoError(t, h.OnProgress(ctx, 40))

	latest, err := f.progress.Get(ctx, common.HexToHash("0xa11"))
	require.NoError(t, err)
	require.Equal(t, uint64(42), latest)

	h.OnError(ctx, context.DeadlineExceeded)
}
