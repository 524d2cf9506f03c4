package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	NotificationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "In-app notifications created, by type.",
		},
		[]string{"type"},
	)

	EmailsQueued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_queued_total",
			Help: "Email deliveries placed on the queue.",
		},
	)

	PushQueued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "push_queued_total",
			Help: "Push deliveries placed on the queue.",
		},
	)

	QueueDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_deliveries_total",
			Help: "Queue delivery attempts, by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)

	GigsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gigs_expired_total",
			Help: "Gigs closed by the deadline sweep.",
		},
	)
)

// Register adds all collectors to the default registry.
func Register() {
	prometheus.MustRegister(
		NotificationsCreated,
		EmailsQueued,
		PushQueued,
		QueueDeliveries,
		GigsExpired,
	)
}
