package subscriptions

import (
	"github.com/bissquit/journal-templates/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconciledKeywords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "subscriptions",
			Name:      "reconciled_keywords_total",
			Help:      "Subscription rows written by reconcile, by outcome",
		},
		[]string{"outcome"},
	)

	removedSubscriptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "subscriptions",
			Name:      "removed_total",
			Help:      "Subscriptions removed, by whether the owner is notified",
		},
		[]string{"notified"},
	)
)

func recordReconciled(created bool) {
	outcome := "merged"
	if created {
		outcome = "created"
	}
	reconciledKeywords.WithLabelValues(outcome).Inc()
}

func recordRemoved(notified bool) {
	label := "false"
	if notified {
		label = "true"
	}
	removedSubscriptions.WithLabelValues(label).Inc()
}
