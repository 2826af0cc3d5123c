package indexer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	icommon "github.com/goran-ethernal/StarkIndexor/internal/common"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/internal/metrics"
	"github.com/goran-ethernal/StarkIndexor/internal/poller"
	"github.com/goran-ethernal/StarkIndexor/internal/progress"
	"github.com/goran-ethernal/StarkIndexor/internal/store"
	"github.com/goran-ethernal/StarkIndexor/internal/validation"
	"github.com/goran-ethernal/StarkIndexor/pkg/config"
	"github.com/goran-ethernal/StarkIndexor/pkg/indexer"
)

const (
	RoleAnnouncer    = "announcer"
	RoleMetaRegistry = "meta_registry"
)

var (
	_ poller.Handler = (*AnnouncerHandler)(nil)
	_ poller.Handler = (*MetaRegistryHandler)(nil)
)

// progressTracker persists the scan position of one contract and reports poll failures.
type progressTracker struct {
	key      string
	role     string
	contract common.Hash
	progress *progress.Store
	log      *logger.Logger
}

func (t *progressTracker) OnProgress(ctx context.Context, block uint64) error {
	if err := t.progress.Save(ctx, t.contract, block); err != nil {
		return err
	}
	metrics.ComponentHealthSet(icommon.ComponentIndexer, true)
	return nil
}

func (t *progressTracker) OnError(_ context.Context, err error) {
	metrics.ComponentHealthSet(icommon.ComponentIndexer, false)
	t.log.Debugw("poller error",
		"indexer", t.key,
		"role", t.role,
		"contract", t.contract.Hex(),
		"error", err,
	)
}

func (t *progressTracker) record(outcome string) {
	metrics.EventProcessedInc(t.key, t.role, outcome)
}

// AnnouncerHandler turns announcer events into announcement rows.
type AnnouncerHandler struct {
	progressTracker
	store     *store.Store
	validator validation.CurveValidator
}

// NewAnnouncerHandler creates the handler of the announcer contract.
func NewAnnouncerHandler(key string, contract common.Hash, st *store.Store, ps *progress.Store,
	validator validation.CurveValidator, log *logger.Logger) *AnnouncerHandler {
	return &AnnouncerHandler{
		progressTracker: progressTracker{
			key:      key,
			role:     RoleAnnouncer,
			contract: contract,
			progress: ps,
			log:      log,
		},
		store:     st,
		validator: validator,
	}
}

// OnEvent upserts the announcement carried by ev. The first token transfer of the
// multicall provides the amount and the stealth address. Without one the amount is
// store.DirectWriteAmount and the stealth account address stands in.
func (h *AnnouncerHandler) OnEvent(ctx context.Context, ev poller.EventData) error {
	stealthAccount, err := ev.Params.Address(config.ParamStealthAccountAddress)
	if err != nil {
		return fmt.Errorf("invalid stealth account address: %w", err)
	}

	a := &indexer.Announcement{
		Sender:                  ev.Sender,
		StealthAddress:          stealthAccount,
		Amount:                  store.DirectWriteAmount,
		EphemeralPublicKey:      ev.Params.String(config.ParamEphemeralPublicKey),
		ViewTag:                 ev.Params.String(config.ParamViewTag),
		StealthAccountPublicKey: ev.Params.String(config.ParamStealthAccountPublicKey),
		StealthAccountAddress:   stealthAccount,
		BlockNumber:             ev.BlockNumber,
		Hash:                    ev.TransactionHash,
	}
	if len(ev.Transfers) > 0 {
		a.Amount = ev.Transfers[0].Text()
		a.StealthAddress = ev.Transfers[0].Recipient
	}
	a.AllDataIsValid = validation.ValidAnnouncement(h.validator,
		a.EphemeralPublicKey, a.ViewTag, a.StealthAccountPublicKey)

	if err := h.store.UpsertAnnouncement(ctx, a); err != nil {
		return err
	}

	outcome := metrics.OutcomeStored
	if !a.AllDataIsValid {
		outcome = metrics.OutcomeInvalid
	}
	h.record(outcome)

	h.log.Debugw("announcement indexed",
		"indexer", h.key,
		"stealth_account", a.StealthAccountAddress.Hex(),
		"block", a.BlockNumber,
		"tx_hash", a.Hash.Hex(),
		"valid", a.AllDataIsValid,
	)

	return nil
}

// MetaRegistryHandler turns meta registry events into registry entries.
type MetaRegistryHandler struct {
	progressTracker
	store     *store.Store
	validator validation.CurveValidator
}

// NewMetaRegistryHandler creates the handler of the meta registry contract.
func NewMetaRegistryHandler(key string, contract common.Hash, st *store.Store, ps *progress.Store,
	validator validation.CurveValidator, log *logger.Logger) *MetaRegistryHandler {
	return &MetaRegistryHandler{
		progressTracker: progressTracker{
			key:      key,
			role:     RoleMetaRegistry,
			contract: contract,
			progress: ps,
			log:      log,
		},
		store:     st,
		validator: validator,
	}
}

// OnEvent upserts the registration carried by ev. Registrations without a meta id
// or whose meta address lacks either key are dropped.
func (h *MetaRegistryHandler) OnEvent(ctx context.Context, ev poller.EventData) error {
	metaID := ev.Params.String(config.ParamMetaID)
	spending, viewing, ok := validation.SplitMetaAddress(ev.Params.String(config.ParamMetaAddress))
	if metaID == "" || !ok {
		h.record(metrics.OutcomeSkipped)
		h.log.Debugw("dropping malformed meta address registration",
			"indexer", h.key,
			"meta_id", metaID,
			"tx_hash", ev.TransactionHash.Hex(),
		)
		return nil
	}

	e := &indexer.MetaAddressEntry{
		MetaID:            metaID,
		StarknetAddress:   ev.Sender,
		SpendingPublicKey: spending,
		ViewingPublicKey:  viewing,
		BlockNumber:       ev.BlockNumber,
		Hash:              ev.TransactionHash,
		AllDataIsValid:    validation.ValidMetaAddress(h.validator, spending, viewing),
	}

	if err := h.store.UpsertMetaAddress(ctx, e); err != nil {
		return err
	}

	outcome := metrics.OutcomeStored
	if !e.AllDataIsValid {
		outcome = metrics.OutcomeInvalid
	}
	h.record(outcome)

	h.log.Debugw("meta address indexed",
		"indexer", h.key,
		"meta_id", e.MetaID,
		"address", e.StarknetAddress.Hex(),
		"block", e.BlockNumber,
		"valid", e.AllDataIsValid,
	)

	return nil
}
