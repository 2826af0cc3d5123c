package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event outcomes reported by EventProcessedInc.
const (
	OutcomeStored  = "stored"
	OutcomeSkipped = "skipped"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

var (
	// Database metrics
	dbQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starkindexor_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"table", "operation"},
	)

	dbQueryTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starkindexor_db_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table", "operation"},
	)

	dbErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starkindexor_db_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"table", "operation"},
	)

	// Indexing metrics
	LastIndexedBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "starkindexor_last_indexed_block",
			Help: "The last block number scanned per contract",
		},
		[]string{"indexer", "contract"},
	)

	ChainHead = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "starkindexor_chain_head_block",
			Help: "The latest block number reported by the RPC node",
		},
		[]string{"indexer"},
	)

	BlocksScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starkindexor_blocks_scanned_total",
			Help: "Total number of blocks scanned for events",
		},
		[]string{"indexer", "contract"},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starkindexor_events_processed_total",
			Help: "Total number of contract events processed by outcome",
		},
		[]string{"indexer", "contract", "outcome"},
	)

	PollCycleTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starkindexor_poll_cycle_duration_seconds",
			Help:    "Time taken by one poll cycle",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"indexer", "contract"},
	)

	PollsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starkindexor_polls_skipped_total",
			Help: "Total number of ticks skipped because a poll cycle was still running",
		},
		[]string{"indexer", "contract"},
	)

	// System metrics
	Uptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "starkindexor_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)

	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starkindexor_errors_total",
			Help: "Total number of errors by component and severity",
		},
		[]string{"component", "severity"},
	)

	ComponentHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "starkindexor_component_health",
			Help: "Component health status (1=healthy, 0=unhealthy)",
		},
		[]string{"component"},
	)

	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "starkindexor_goroutines",
			Help: "Number of active goroutines",
		},
	)

	MemoryUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "starkindexor_memory_usage_bytes",
			Help: "Memory usage statistics",
		},
		[]string{"type"},
	)

	startTime = time.Now()
)

// ObserveDBQuery records one query against table. err may be nil.
func ObserveDBQuery(table, operation string, start time.Time, err error) {
	dbQueries.WithLabelValues(table, operation).Inc()
	dbQueryTime.WithLabelValues(table, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		dbErrors.WithLabelValues(table, operation).Inc()
	}
}

func LastIndexedBlockSet(indexer, contract string, blockNum uint64) {
	LastIndexedBlock.WithLabelValues(indexer, contract).Set(float64(blockNum))
}

func ChainHeadSet(indexer string, blockNum uint64) {
	ChainHead.WithLabelValues(indexer).Set(float64(blockNum))
}

func BlocksScannedInc(indexer, contract string, count uint64) {
	BlocksScanned.WithLabelValues(indexer, contract).Add(float64(count))
}

func EventProcessedInc(indexer, contract, outcome string) {
	EventsProcessed.WithLabelValues(indexer, contract, outcome).Inc()
}

func PollCycleTimeLog(indexer, contract string, duration time.Duration) {
	PollCycleTime.WithLabelValues(indexer, contract).Observe(duration.Seconds())
}

func PollSkippedInc(indexer, contract string) {
	PollsSkipped.WithLabelValues(indexer, contract).Inc()
}

func ErrorInc(component, severity string) {
	Errors.WithLabelValues(component, severity).Inc()
}

func ComponentHealthSet(component string, healthy bool) {
	boolAsFloat := float64(1)
	if !healthy {
		boolAsFloat = 0
	}

	ComponentHealth.WithLabelValues(component).Set(boolAsFloat)
}

// UpdateSystemMetrics updates runtime system metrics.
// This should be called periodically (e.g., every 15 seconds).
func UpdateSystemMetrics() {
	Uptime.Set(time.Since(startTime).Seconds())
	Goroutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	MemoryUsage.WithLabelValues("alloc").Set(float64(m.Alloc))
	MemoryUsage.WithLabelValues("total_alloc").Set(float64(m.TotalAlloc))
	MemoryUsage.WithLabelValues("sys").Set(float64(m.Sys))
	MemoryUsage.WithLabelValues("heap_inuse").Set(float64(m.HeapInuse))
}
