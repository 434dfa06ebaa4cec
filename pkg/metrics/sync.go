package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records the health of the background persistence and remote
// reconciliation paths. Failures there are swallowed by design, so these
// counters are the only place they stay visible.
type SyncMetrics struct {
	persistWrites   *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	coalesced       *prometheus.CounterVec
	syncJobs        *prometheus.CounterVec
	syncDuration    *prometheus.HistogramVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	persistWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "persist_writes_total",
		Help: "Completed local store writes.",
	}, []string{"key"})
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "persist_failures_total",
		Help: "Local store writes abandoned after the retry budget.",
	}, []string{"key"})
	coalesced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "persist_coalesced_total",
		Help: "Save requests superseded inside the debounce window.",
	}, []string{"key"})
	syncJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_jobs_total",
		Help: "Remote sync jobs by kind and outcome.",
	}, []string{"kind", "outcome"})
	syncDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_job_duration_seconds",
		Help:    "Duration of remote sync jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	reg.MustRegister(persistWrites, persistFailures, coalesced, syncJobs, syncDuration)
	return &SyncMetrics{
		persistWrites:   persistWrites,
		persistFailures: persistFailures,
		coalesced:       coalesced,
		syncJobs:        syncJobs,
		syncDuration:    syncDuration,
	}
}

// IncPersistWrite counts a completed write for the given storage key.
func (m *SyncMetrics) IncPersistWrite(key string) {
	if m == nil || m.persistWrites == nil {
		return
	}
	m.persistWrites.WithLabelValues(normalizeLabel(key)).Inc()
}

// IncPersistFailure counts a write abandoned after retries.
func (m *SyncMetrics) IncPersistFailure(key string) {
	if m == nil || m.persistFailures == nil {
		return
	}
	m.persistFailures.WithLabelValues(normalizeLabel(key)).Inc()
}

// IncCoalesced counts a save request absorbed by the debounce window.
func (m *SyncMetrics) IncCoalesced(key string) {
	if m == nil || m.coalesced == nil {
		return
	}
	m.coalesced.WithLabelValues(normalizeLabel(key)).Inc()
}

// ObserveSync records the outcome and duration of a remote sync job.
func (m *SyncMetrics) ObserveSync(kind string, duration time.Duration, err error) {
	if m == nil || m.syncJobs == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.syncJobs.WithLabelValues(normalizeLabel(kind), outcome).Inc()
	m.syncDuration.WithLabelValues(normalizeLabel(kind)).Observe(duration.Seconds())
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
