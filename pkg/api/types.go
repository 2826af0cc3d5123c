package api

import (
	"time"

	"github.com/goran-ethernal/StarkIndexor/pkg/indexer"
)

// Response is the envelope of every API answer. Exactly one of Data and Error is set,
// except for lookups that found nothing, which carry neither.
type Response struct {
	Data  any     `json:"data"`
	Error *string `json:"error"`
}

// MetaIDResponse is the answer of a resolve lookup.
type MetaIDResponse struct {
	MetaID string `json:"meta_id"`
}

// CountResponse is the answer of a count query.
type CountResponse struct {
	Count uint64 `json:"count"`
}

// InfoResponse is one page of announcements.
type InfoResponse struct {
	Announcements []*indexer.Announcement `json:"announcements"`
	Offset        uint64                  `json:"offset"`
	Size          uint64                  `json:"size"`
}

// TransfersRequest selects announcements by stealth address.
type TransfersRequest struct {
	Addresses []string `json:"addresses"`
}

// StealthInfoRequest records an announcement before its on-chain event is indexed.
type StealthInfoRequest struct {
	EphemeralPublicKey      string `json:"ephemeral_public_key"`
	ViewTag                 string `json:"view_tag"`
	StealthAccountPublicKey string `json:"stealth_account_public_key"`
	StealthAccountAddress   string `json:"stealth_account_address"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Indexers  []IndexerStatus `json:"indexers"`
}

// IndexerStatus represents the status of a single indexer.
type IndexerStatus struct {
	Key       string                     `json:"key"`
	Healthy   bool                       `json:"healthy"`
	Contracts []indexer.ContractProgress `json:"contracts,omitempty"`
}
