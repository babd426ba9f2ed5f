// Package metrics collects and exposes Prometheus metrics for the
// authentication service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the interface the service layer records through.
type Recorder interface {
	RecordLogin(outcome string)
	RecordRefresh(outcome string)
	RecordVerification(outcome string)
	RecordRevocation(kind string)
	RecordVerifyLatency(d time.Duration)
}

// Collector implements Recorder over a Prometheus registry.
type Collector struct {
	logins        *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	verifications *prometheus.CounterVec
	revocations   *prometheus.CounterVec
	verifyLatency prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corebank_auth_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corebank_auth_refreshes_total",
			Help: "Token refresh attempts by outcome.",
		}, []string{"outcome"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corebank_auth_verifications_total",
			Help: "Token verifications by outcome.",
		}, []string{"outcome"}),
		revocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corebank_auth_revocations_total",
			Help: "Revocations by kind (single token or all sessions).",
		}, []string{"kind"}),
		verifyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "corebank_auth_verify_latency_seconds",
			Help:    "Token verification latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.logins,
		c.refreshes,
		c.verifications,
		c.revocations,
		c.verifyLatency,
	)

	return c
}

func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRefresh(outcome string) {
	c.refreshes.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordVerification(outcome string) {
	c.verifications.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRevocation(kind string) {
	c.revocations.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordVerifyLatency(d time.Duration) {
	c.verifyLatency.Observe(d.Seconds())
}

// Nop discards all measurements. Used in tests.
type Nop struct{}

func (Nop) RecordLogin(string)                {}
func (Nop) RecordRefresh(string)              {}
func (Nop) RecordVerification(string)         {}
func (Nop) RecordRevocation(string)           {}
func (Nop) RecordVerifyLatency(time.Duration) {}
