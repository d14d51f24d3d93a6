package audit

import (
	"github.com/bissquit/journal-templates/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	entriesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "audit",
			Name:      "entries_ingested_total",
			Help:      "Audit entries written by batch ingest",
		},
	)

	historyQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "audit",
			Name:      "history_queries_total",
			Help:      "History queries by result",
		},
		[]string{"result"},
	)
)
