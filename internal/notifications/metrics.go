package notifications

import (
	"github.com/bissquit/journal-templates/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsCreated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "notifications",
		Name:      "created_total",
		Help:      "Notifications stored for users, by type",
	},
	[]string{"type"},
)

func recordCreated(notificationType string, count int) {
	notificationsCreated.WithLabelValues(notificationType).Add(float64(count))
}
