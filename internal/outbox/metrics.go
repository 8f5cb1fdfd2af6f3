package outbox

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gym_service"

var (
	publishedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "events_published_total",
		Help:      "Outbox events written to Kafka.",
	}, []string{"topic", "event_type"})

	deadLetteredEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "events_dead_lettered_total",
		Help:      "Outbox events moved to outbox_dlq after a failed delivery.",
	}, []string{"topic", "event_type"})

	dispatchSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "dispatch_batch_seconds",
		Help:      "Wall time of one non-empty dispatch batch.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	dlqOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dlq",
		Name:      "entries_handled_total",
		Help:      "DLQ entries handled by the manager, by outcome.",
	}, []string{"topic", "event_type", "outcome"})

	dlqBacklog = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "dlq",
		Name:      "backlog_entries",
		Help:      "Entries in outbox_dlq that are not quarantined.",
	})
)

func init() {
	prometheus.MustRegister(publishedEvents, deadLetteredEvents, dispatchSeconds, dlqOutcomes, dlqBacklog)
}

func recordPublished(messages []Message) {
	for _, msg := range messages {
		publishedEvents.WithLabelValues(msg.Topic, msg.EventType).Inc()
	}
}

func recordDeadLettered(msg Message) {
	deadLetteredEvents.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordDLQOutcome(entry dlqEntry, outcome entryOutcome) {
	dlqOutcomes.WithLabelValues(entry.Topic, entry.EventType, outcome.String()).Inc()
}

// refreshBacklog is best effort; a failed count leaves the previous value.
func refreshBacklog(ctx context.Context, pool *pgxpool.Pool) {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_dlq WHERE quarantined_at IS NULL`).Scan(&count); err != nil {
		return
	}
	dlqBacklog.Set(float64(count))
}
