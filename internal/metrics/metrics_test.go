package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Sealed("Hybrid")
	m.Sealed("Hybrid")
	m.Opened("Quantum")
	m.Rejected(ReasonReplay)
	m.Admitted("Classical")
	m.Refused(ReasonPolicy)
	m.ObserveVerify("Hybrid", 0.001)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesSealed.WithLabelValues("Hybrid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesOpened.WithLabelValues("Quantum")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesRejected.WithLabelValues(ReasonReplay)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnvelopesAdmitted.WithLabelValues("Classical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnvelopesRejected.WithLabelValues(ReasonPolicy)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "nano_relay_envelopes_admitted_total")
	assert.Contains(t, names, "nano_client_verify_seconds")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.Sealed("Classical")
		m.Opened("Classical")
		m.Rejected(ReasonFormat)
		m.Admitted("Classical")
		m.Refused(ReasonExpired)
		m.ObserveVerify("Classical", 1)
	})
}

func TestMetrics_DuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
