package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records the outcomes of sync passes and replayed mutations.
type SyncMetrics struct {
	passDuration *prometheus.HistogramVec
	itemSuccess  *prometheus.CounterVec
	itemFailure  *prometheus.CounterVec
	pending      prometheus.Gauge
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	passDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_pass_duration_seconds",
		Help:    "Duration of queue drain passes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	itemSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_item_success",
		Help: "Pending mutations replayed successfully.",
	}, []string{"item_type"})
	itemFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_item_failure",
		Help: "Pending mutation replay failures.",
	}, []string{"item_type"})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sync_pending_mutations",
		Help: "Mutations currently awaiting replay.",
	})
	reg.MustRegister(passDuration, itemSuccess, itemFailure, pending)
	return &SyncMetrics{
		passDuration: passDuration,
		itemSuccess:  itemSuccess,
		itemFailure:  itemFailure,
		pending:      pending,
	}
}

// ObservePassDuration records the duration of one drain pass.
func (s *SyncMetrics) ObservePassDuration(trigger string, duration time.Duration) {
	if s == nil || s.passDuration == nil {
		return
	}
	s.passDuration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// IncItemSuccess increments the success counter for the given item type.
func (s *SyncMetrics) IncItemSuccess(itemType string) {
	if s == nil || s.itemSuccess == nil {
		return
	}
	s.itemSuccess.WithLabelValues(normalizeLabel(itemType)).Inc()
}

// IncItemFailure increments the failure counter for the given item type.
func (s *SyncMetrics) IncItemFailure(itemType string) {
	if s == nil || s.itemFailure == nil {
		return
	}
	s.itemFailure.WithLabelValues(normalizeLabel(itemType)).Inc()
}

// SetPending publishes the current pending queue depth.
func (s *SyncMetrics) SetPending(count int64) {
	if s == nil || s.pending == nil {
		return
	}
	s.pending.Set(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
