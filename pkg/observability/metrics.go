package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FilesParsed tracks parsed statement files by kind and outcome.
	FilesParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vatledger_files_parsed_total",
			Help: "Total number of statement files handed to the engine",
		},
		[]string{"kind", "status"},
	)

	// RowsProcessed tracks data rows by parse outcome.
	RowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vatledger_rows_total",
			Help: "Total number of statement rows processed",
		},
		[]string{"outcome"},
	)

	// ParseDuration tracks how long a single statement pass takes.
	ParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vatledger_parse_duration_seconds",
			Help:    "Duration of a full statement parse pass in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Row outcomes reported to RowsProcessed.
const (
	RowOutcomeValid   = "valid"
	RowOutcomeFlagged = "flagged"
	RowOutcomeSkipped = "skipped"
)
