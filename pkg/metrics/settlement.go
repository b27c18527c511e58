package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics tracks the checkout settlement pipeline.
type SettlementMetrics struct {
	duration  *prometheus.HistogramVec
	settled   *prometheus.CounterVec
	failed    *prometheus.CounterVec
	saleTotal prometheus.Histogram
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Duration of sale settlements in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_completed",
		Help: "Successfully settled sales.",
	}, []string{"payment_method"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_failed",
		Help: "Settlement attempts aborted before commit.",
	}, []string{"reason"})
	saleTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "settlement_total_cents",
		Help:    "Distribution of settled sale totals in cents.",
		Buckets: prometheus.ExponentialBuckets(100, 4, 8),
	})
	reg.MustRegister(duration, settled, failed, saleTotal)
	return &SettlementMetrics{
		duration:  duration,
		settled:   settled,
		failed:    failed,
		saleTotal: saleTotal,
	}
}

// ObserveSettlement records a completed settlement.
func (s *SettlementMetrics) ObserveSettlement(paymentMethod string, totalCents int64, took time.Duration) {
	if s == nil || s.settled == nil {
		return
	}
	label := normalizeLabel(paymentMethod)
	s.settled.WithLabelValues(label).Inc()
	s.duration.WithLabelValues(label).Observe(took.Seconds())
	s.saleTotal.Observe(float64(totalCents))
}

// IncFailure records an aborted settlement by failure reason.
func (s *SettlementMetrics) IncFailure(reason string) {
	if s == nil || s.failed == nil {
		return
	}
	s.failed.WithLabelValues(normalizeLabel(reason)).Inc()
}
