package nanomessenger

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanomessenger/client-go/internal/metrics"
	"github.com/nanomessenger/client-go/mode"
	"github.com/nanomessenger/client-go/protocol"
)

func sealedEnvelope(t *testing.T, m mode.Mode) *protocol.QuantumSafeEnvelope {
	t.Helper()
	env, err := protocol.NewQuantumSafeEnvelope(m, "inbox", []byte("opaque ciphertext"))
	require.NoError(t, err)
	return env
}

func TestRelay_Admit(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	var logs bytes.Buffer
	r, err := NewRelay(mode.HighSecurityConfig(), WithMetrics(reg), WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)

	require.NoError(t, r.Admit(sealedEnvelope(t, mode.Hybrid)))
	require.NoError(t, r.Admit(sealedEnvelope(t, mode.Quantum)))

	err = r.Admit(sealedEnvelope(t, mode.Classical))
	assert.ErrorIs(t, err, ErrModePolicyViolation)

	bad := sealedEnvelope(t, mode.Hybrid)
	bad.InboxID = ""
	assert.ErrorIs(t, r.Admit(bad), ErrEnvelopeFormat)
	assert.ErrorIs(t, r.Admit(nil), ErrEnvelopeFormat)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.EnvelopesAdmitted.WithLabelValues("Hybrid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.EnvelopesAdmitted.WithLabelValues("Quantum")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.EnvelopesRejected.WithLabelValues(metrics.ReasonPolicy)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.metrics.EnvelopesRejected.WithLabelValues(metrics.ReasonFormat)))
	assert.Contains(t, logs.String(), "envelope refused")
}

func TestRelay_Expired(t *testing.T) {
	t.Parallel()

	r, err := NewRelay(mode.DefaultConfig())
	require.NoError(t, err)

	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	env, err := protocol.NewQuantumSafeEnvelope(mode.Classical, "inbox", []byte("x"),
		protocol.WithExpiry(now.Add(time.Minute)))
	require.NoError(t, err)
	require.NoError(t, r.Admit(env))

	r.now = func() time.Time { return now.Add(time.Hour) }
	assert.ErrorIs(t, r.Admit(env), ErrExpired)
}

func TestRelay_AdmitJSON(t *testing.T) {
	t.Parallel()

	classicalOnly, err := NewRelay(mode.DefaultConfig())
	require.NoError(t, err)
	strict, err := NewRelay(mode.HighSecurityConfig())
	require.NoError(t, err)

	legacy, err := protocol.NewMessageEnvelope("inbox", []byte("x"))
	require.NoError(t, err)
	data, err := legacy.Marshal()
	require.NoError(t, err)

	env, err := classicalOnly.AdmitJSON(data)
	require.NoError(t, err)
	assert.Equal(t, mode.Classical, env.CryptoMode)

	_, err = strict.AdmitJSON(data)
	assert.ErrorIs(t, err, ErrModePolicyViolation)

	_, err = strict.AdmitJSON([]byte("not json"))
	assert.ErrorIs(t, err, ErrEnvelopeFormat)
}

func TestNewRelay_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := NewRelay(mode.Config{})
	assert.ErrorIs(t, err, ErrModePolicyViolation)
}

func TestClient_Relay(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, WithCryptoConfig(mode.HighSecurityConfig()))
	r := c.Relay()
	assert.Equal(t, mode.HighSecurityConfig(), r.Config())
	assert.ErrorIs(t, r.Admit(sealedEnvelope(t, mode.Classical)), ErrModePolicyViolation)
}
