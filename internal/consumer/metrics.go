package consumer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stages at which a message can fail.
const (
	stageDecode = "decode"
	stageHandle = "handle"
	stageCommit = "commit"
)

var (
	consumedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gym_service",
		Subsystem: "consumer",
		Name:      "events_consumed_total",
		Help:      "Events handled and committed.",
	}, []string{"topic", "event_type"})

	consumeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gym_service",
		Subsystem: "consumer",
		Name:      "failures_total",
		Help:      "Messages that failed at the decode, handle or commit stage.",
	}, []string{"topic", "stage"})

	handleSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gym_service",
		Subsystem: "consumer",
		Name:      "handle_seconds",
		Help:      "Handler latency per event type.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})

	lastCommitted = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gym_service",
		Subsystem: "consumer",
		Name:      "last_committed_timestamp_seconds",
		Help:      "Record timestamp of the latest committed event per topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(consumedEvents, consumeFailures, handleSeconds, lastCommitted)
}

func observeHandle(msg Message, elapsed time.Duration) {
	handleSeconds.WithLabelValues(msg.EventType).Observe(elapsed.Seconds())
}

func recordConsumed(msg Message) {
	consumedEvents.WithLabelValues(msg.Topic, msg.EventType).Inc()
	if !msg.Timestamp.IsZero() {
		lastCommitted.WithLabelValues(msg.Topic).Set(float64(msg.Timestamp.Unix()))
	}
}

func recordFailure(topic, stage string) {
	consumeFailures.WithLabelValues(topic, stage).Inc()
}
