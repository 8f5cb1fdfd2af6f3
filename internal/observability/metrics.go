package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gym_service",
		Subsystem: "records",
		Name:      "created_total",
		Help:      "Number of records written, labeled by kind.",
	}, []string{"kind"})

	lastWriteGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gym_service",
		Subsystem: "records",
		Name:      "last_write_timestamp_seconds",
		Help:      "Unix timestamp of the most recent record written to the store.",
	})

	reportDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gym_service",
		Subsystem: "reports",
		Name:      "duration_seconds",
		Help:      "Time spent computing derived reports.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"report"})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gym_service",
		Subsystem: "reports",
		Name:      "cache_lookups_total",
		Help:      "Report cache lookups, labeled by report and result.",
	}, []string{"report", "result"})
)

func init() {
	prometheus.MustRegister(recordsCreated, lastWriteGauge, reportDuration, cacheLookups)
}

// RecordCreated counts a write and updates the write watermark.
func RecordCreated(kind string, ts time.Time) {
	recordsCreated.WithLabelValues(kind).Inc()
	if ts.IsZero() {
		return
	}
	lastWriteGauge.Set(float64(ts.Unix()))
}

// ObserveReport records the time elapsed since start for a report.
func ObserveReport(report string, start time.Time) {
	reportDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

// RecordCacheLookup counts a report cache hit or miss.
func RecordCacheLookup(report string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(report, result).Inc()
}
