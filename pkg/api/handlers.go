package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/StarkIndexor/internal/felt"
	"github.com/goran-ethernal/StarkIndexor/internal/logger"
	"github.com/goran-ethernal/StarkIndexor/internal/validation"
	"github.com/goran-ethernal/StarkIndexor/pkg/indexer"
)

const maxRequestBody = 1 << 20

const msgInternalError = "internal server error"

// IndexerProvider gives access to the indexers by "{chain}-{network}" key.
type IndexerProvider interface {
	Get(key string) (indexer.ChainIndexer, error)
	Keys() []string
}

// Handler handles HTTP requests for the API.
type Handler struct {
	indexers     IndexerProvider
	validator    validation.CurveValidator
	maxPageSize  uint64
	maxAddresses int
	log          *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(indexers IndexerProvider, validator validation.CurveValidator, maxPageSize, maxAddresses int,
	log *logger.Logger) *Handler {
	if validator == nil {
		validator = validation.NewValidator()
	}

	return &Handler{
		indexers:     indexers,
		validator:    validator,
		maxPageSize:  uint64(max(maxPageSize, 1)), //nolint:gosec
		maxAddresses: max(maxAddresses, 1),
		log:          log,
	}
}

// indexer resolves the {indexer} path value, answering 404 when it is unknown.
func (h *Handler) indexer(w http.ResponseWriter, r *http.Request) (indexer.ChainIndexer, bool) {
	key := r.PathValue("indexer")
	idx, err := h.indexers.Get(key)
	if err != nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("indexer '%s' not found", key))
		return nil, false
	}
	return idx, true
}

// ListIndexers returns the keys of all indexers.
func (h *Handler) ListIndexers(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.indexers.Keys())
}

// ResolveMetaID returns the meta id registered by the {address} account.
func (h *Handler) ResolveMetaID(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.indexer(w, r)
	if !ok {
		return
	}

	address, err := felt.ParseAddress(r.PathValue("address"))
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid address: %v", err))
		return
	}

	metaID, err := idx.ResolveMetaID(r.Context(), address)
	switch {
	case errors.Is(err, indexer.ErrNotFound):
		respondData(w, http.StatusOK, nil)
	case err != nil:
		h.log.Errorf("failed to resolve meta id of %s: %v", address.Hex(), err)
		respondError(w, http.StatusInternalServerError, msgInternalError)
	default:
		respondData(w, http.StatusOK, MetaIDResponse{MetaID: metaID})
	}
}

// CheckMetaID returns the public keys registered under {metaId}.
func (h *Handler) CheckMetaID(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.indexer(w, r)
	if !ok {
		return
	}

	metaID := r.PathValue("metaId")
	if metaID == "" {
		respondError(w, http.StatusBadRequest, "meta id is required")
		return
	}

	keys, err := idx.CheckMetaID(r.Context(), metaID)
	switch {
	case errors.Is(err, indexer.ErrNotFound):
		respondData(w, http.StatusOK, nil)
	case err != nil:
		h.log.Errorf("failed to check meta id %q: %v", metaID, err)
		respondError(w, http.StatusInternalServerError, msgInternalError)
	default:
		respondData(w, http.StatusOK, keys)
	}
}

// GetInfo returns valid announcements, most recent first, paged by offset and size.
func (h *Handler) GetInfo(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.indexer(w, r)
	if !ok {
		return
	}

	offset, err := parseUintParam(r, "offset")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	size, err := parseUintParam(r, "size")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page := indexer.NewPage(offset, size, h.maxPageSize)
	rows, err := idx.GetInfo(r.Context(), page)
	if err != nil {
		h.log.Errorf("failed to get announcements of %s: %v", idx.Key(), err)
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if rows == nil {
		rows = []*indexer.Announcement{}
	}

	respondData(w, http.StatusOK, InfoResponse{Announcements: rows, Offset: page.Offset, Size: page.Limit})
}

// GetInfoCount returns the number of valid announcements.
func (h *Handler) GetInfoCount(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.indexer(w, r)
	if !ok {
		return
	}

	count, err := idx.GetInfoCount(r.Context())
	if err != nil {
		h.log.Errorf("failed to count announcements of %s: %v", idx.Key(), err)
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	respondData(w, http.StatusOK, CountResponse{Count: count})
}

// GetTransfers returns valid announcements sent to any of the requested stealth addresses.
func (h *Handler) GetTransfers(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.indexer(w, r)
	if !ok {
		return
	}

	var req TransfersRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Addresses) == 0 {
		respondError(w, http.StatusBadRequest, "addresses are required")
		return
	}
	if len(req.Addresses) > h.maxAddresses {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("at most %d addresses per request", h.maxAddresses))
		return
	}

	addresses := make([]common.Hash, 0, len(req.Addresses))
	for _, a := range req.Addresses {
		address, err := felt.ParseAddress(a)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid address %q: %v", a, err))
			return
		}
		addresses = append(addresses, address)
	}

	rows, err := idx.GetTransfers(r.Context(), addresses)
	if err != nil {
		h.log.Errorf("failed to get transfers of %s: %v", idx.Key(), err)
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if rows == nil {
		rows = []*indexer.Announcement{}
	}

	respondData(w, http.StatusOK, rows)
}

// SaveStealthInfo records an announcement ahead of its on-chain event.
// The keys must be valid since the row is stored as valid.
func (h *Handler) SaveStealthInfo(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.indexer(w, r)
	if !ok {
		return
	}

	var req StealthInfoRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	address, err := felt.ParseAddress(req.StealthAccountAddress)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid stealth account address: %v", err))
		return
	}
	if !validation.ValidAnnouncement(h.validator, req.EphemeralPublicKey, req.ViewTag, req.StealthAccountPublicKey) {
		respondError(w, http.StatusBadRequest, "invalid ephemeral public key, view tag or stealth account public key")
		return
	}

	info := indexer.StealthInfo{
		EphemeralPublicKey:      req.EphemeralPublicKey,
		ViewTag:                 req.ViewTag,
		StealthAccountPublicKey: req.StealthAccountPublicKey,
		StealthAccountAddress:   address,
	}
	if err := idx.SaveAnnouncementInfo(r.Context(), info); err != nil {
		h.log.Errorf("failed to save stealth info of %s: %v", address.Hex(), err)
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	respondData(w, http.StatusCreated, info)
}

// GetProgress returns the scan position of every contract of the indexer.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	idx, ok := h.indexer(w, r)
	if !ok {
		return
	}

	progress, err := idx.Progress(r.Context())
	if err != nil {
		h.log.Errorf("failed to get progress of %s: %v", idx.Key(), err)
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	respondData(w, http.StatusOK, progress)
}

// Health reports whether every indexer can read its progress.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	statuses := make([]IndexerStatus, 0)

	for _, key := range h.indexers.Keys() {
		st := IndexerStatus{Key: key}

		idx, err := h.indexers.Get(key)
		if err == nil {
			st.Contracts, err = idx.Progress(r.Context())
		}
		st.Healthy = err == nil
		if !st.Healthy {
			status = "degraded"
			h.log.Warnw("indexer unhealthy", "indexer", key, "error", err)
		}

		statuses = append(statuses, st)
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Indexers:  statuses,
	})
}

func parseUintParam(r *http.Request, name string) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a non-negative integer", name)
	}
	return v, nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")

	// Encode JSON first to catch any errors before writing status
	encoded, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(encoded)
}

// respondData sends data wrapped in the response envelope.
func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, Response{Data: data})
}

// respondError sends an error wrapped in the response envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Response{Error: &message})
}
