// Package metrics holds the Prometheus collectors for message and relay traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nano"

// Rejection reasons used as label values.
const (
	ReasonFormat    = "format"
	ReasonExpired   = "expired"
	ReasonPolicy    = "policy"
	ReasonSignature = "signature"
	ReasonDecrypt   = "decrypt"
	ReasonReplay    = "replay"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	MessagesSealed    *prometheus.CounterVec
	MessagesOpened    *prometheus.CounterVec
	MessagesRejected  *prometheus.CounterVec
	EnvelopesAdmitted *prometheus.CounterVec
	EnvelopesRejected *prometheus.CounterVec
	VerifySeconds     *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them globally.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesSealed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "messages_sealed_total",
				Help:      "Messages signed, encrypted and enveloped, by crypto mode",
			},
			[]string{"mode"},
		),
		MessagesOpened: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "messages_opened_total",
				Help:      "Messages decrypted and verified, by crypto mode",
			},
			[]string{"mode"},
		),
		MessagesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "messages_rejected_total",
				Help:      "Incoming messages rejected, by reason",
			},
			[]string{"reason"},
		),
		EnvelopesAdmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "relay",
				Name:      "envelopes_admitted_total",
				Help:      "Envelopes accepted by the relay gate, by crypto mode",
			},
			[]string{"mode"},
		),
		EnvelopesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "relay",
				Name:      "envelopes_rejected_total",
				Help:      "Envelopes refused by the relay gate, by reason",
			},
			[]string{"reason"},
		),
		VerifySeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "verify_seconds",
				Help:      "Time spent verifying payload signatures",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.05},
			},
			[]string{"mode"},
		),
	}
}

// Sealed counts an outgoing message.
func (m *Metrics) Sealed(mode string) {
	if m == nil {
		return
	}
	m.MessagesSealed.WithLabelValues(mode).Inc()
}

// Opened counts an accepted incoming message.
func (m *Metrics) Opened(mode string) {
	if m == nil {
		return
	}
	m.MessagesOpened.WithLabelValues(mode).Inc()
}

// Rejected counts a refused incoming message.
func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.MessagesRejected.WithLabelValues(reason).Inc()
}

// Admitted counts an envelope let through by the relay gate.
func (m *Metrics) Admitted(mode string) {
	if m == nil {
		return
	}
	m.EnvelopesAdmitted.WithLabelValues(mode).Inc()
}

// Refused counts an envelope stopped by the relay gate.
func (m *Metrics) Refused(reason string) {
	if m == nil {
		return
	}
	m.EnvelopesRejected.WithLabelValues(reason).Inc()
}

// ObserveVerify records a signature verification duration in seconds.
func (m *Metrics) ObserveVerify(mode string, seconds float64) {
	if m == nil {
		return
	}
	m.VerifySeconds.WithLabelValues(mode).Observe(seconds)
}
