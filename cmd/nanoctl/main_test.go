package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nanomessenger "github.com/nanomessenger/client-go"
	"github.com/nanomessenger/client-go/mode"
	"github.com/nanomessenger/client-go/protocol"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nano.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(IO{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

const quietConfig = `
crypto:
  mode: hybrid
  minimum_mode: classical
log:
  level: error
`

func TestDefaultIO(t *testing.T) {
	t.Parallel()

	streams := DefaultIO()
	assert.Equal(t, os.Stdin, streams.Stdin)
	assert.Equal(t, os.Stdout, streams.Stdout)
	assert.Equal(t, os.Stderr, streams.Stderr)
}

func TestRootCmd_Help(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "--help")
	require.NoError(t, err)
	for _, sub := range []string{"keygen", "pubkey", "seal", "open", "inspect", "downgrade", "upgrade", "config"} {
		assert.Contains(t, out, sub)
	}
}

func TestKeygen(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, quietConfig)

	out, err := execute(t, "", "-c", cfg, "keygen")
	require.NoError(t, err)
	var exported nanomessenger.ExportedIdentity
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	assert.Equal(t, mode.Hybrid, exported.Mode, "defaults to configured mode")
	assert.True(t, strings.HasPrefix(exported.PublicKey, "hybrid-pubkey:"))

	path := filepath.Join(t.TempDir(), "id.json")
	_, err = execute(t, "", "-c", cfg, "keygen", "--mode", "pq", "-o", path)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = execute(t, "", "-c", cfg, "keygen", "--mode", "rsa")
	assert.ErrorIs(t, err, nanomessenger.ErrUnknownMode)
}

func TestSealOpenFlow(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, quietConfig)
	dir := t.TempDir()
	alice := filepath.Join(dir, "alice.json")
	bob := filepath.Join(dir, "bob.json")
	bobPub := filepath.Join(dir, "bob.pub.json")

	for _, id := range []string{alice, bob} {
		_, err := execute(t, "", "-c", cfg, "keygen", "-o", id)
		require.NoError(t, err)
	}

	pub, err := execute(t, "", "-c", cfg, "pubkey", "-i", bob)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(bobPub, []byte(pub), 0o600))

	var pubOut publicKeysOutput
	require.NoError(t, json.Unmarshal([]byte(pub), &pubOut))
	assert.Equal(t, mode.Hybrid, pubOut.Mode)
	assert.Equal(t, nanomessenger.Fingerprint(pubOut.PublicKey), pubOut.Fingerprint)

	envJSON, err := execute(t, "", "-c", cfg, "seal", "-i", alice, "-t", bobPub, "-b", "hello bob", "--counter", "3", "--room", "ops")
	require.NoError(t, err)

	opened, err := execute(t, envJSON, "-c", cfg, "open", "-i", bob)
	require.NoError(t, err)
	var payload payloadOutput
	require.NoError(t, json.Unmarshal([]byte(opened), &payload))
	assert.Equal(t, "hello bob", payload.Body)
	assert.Equal(t, uint64(3), payload.Counter)
	assert.Equal(t, mode.Hybrid, payload.Mode)
	require.NotNil(t, payload.Room)
	assert.Equal(t, "ops", *payload.Room)

	_, err = execute(t, envJSON, "-c", cfg, "open", "-i", alice)
	assert.ErrorIs(t, err, nanomessenger.ErrAuthenticationFailed)

	_, err = execute(t, "", "-c", cfg, "seal", "-i", alice)
	assert.Error(t, err)
}

func TestEnvelopeCommands(t *testing.T) {
	t.Parallel()

	permissive := writeConfig(t, quietConfig)
	strict := writeConfig(t, `
crypto:
  mode: hybrid
  minimum_mode: hybrid
log:
  level: error
`)

	env, err := protocol.NewQuantumSafeEnvelope(mode.Classical, "inbox-1", []byte("ciphertext"))
	require.NoError(t, err)
	envJSON, err := env.Marshal()
	require.NoError(t, err)

	out, err := execute(t, string(envJSON), "-c", permissive, "inspect")
	require.NoError(t, err)
	var inspected inspectOutput
	require.NoError(t, json.Unmarshal([]byte(out), &inspected))
	assert.Equal(t, protocol.QuantumSafeVersion, inspected.Version)
	assert.Equal(t, len("ciphertext"), inspected.PayloadBytes)
	assert.True(t, inspected.Admitted)

	out, err = execute(t, string(envJSON), "-c", strict, "inspect")
	require.NoError(t, err)
	inspected = inspectOutput{}
	require.NoError(t, json.Unmarshal([]byte(out), &inspected))
	assert.False(t, inspected.Admitted)
	assert.Contains(t, inspected.Reason, "below minimum")

	legacyJSON, err := execute(t, string(envJSON), "-c", permissive, "downgrade")
	require.NoError(t, err)
	legacy, err := protocol.ParseMessageEnvelope([]byte(legacyJSON))
	require.NoError(t, err)
	assert.Equal(t, protocol.LegacyVersion, legacy.Version)
	assert.Equal(t, env.Payload, legacy.Payload)

	upgradedJSON, err := execute(t, legacyJSON, "-c", permissive, "upgrade")
	require.NoError(t, err)
	upgraded, err := protocol.ParseQuantumSafeEnvelope([]byte(upgradedJSON))
	require.NoError(t, err)
	assert.Equal(t, mode.Classical, upgraded.CryptoMode)
	assert.True(t, upgraded.IsLegacyCompat())

	for _, tc := range []struct {
		input   string
		version string
	}{
		{legacyJSON, protocol.LegacyVersion},
		{upgradedJSON, protocol.QuantumSafeVersion},
	} {
		out, err = execute(t, tc.input, "-c", permissive, "inspect")
		require.NoError(t, err)
		inspected = inspectOutput{}
		require.NoError(t, json.Unmarshal([]byte(out), &inspected))
		assert.Equal(t, tc.version, inspected.Version)
		assert.True(t, inspected.LegacyCompat)
		assert.Equal(t, mode.Classical, inspected.CryptoMode)
	}

	hybrid, err := protocol.NewQuantumSafeEnvelope(mode.Hybrid, "inbox-2", []byte("ciphertext"))
	require.NoError(t, err)
	hybridJSON, err := hybrid.Marshal()
	require.NoError(t, err)

	_, err = execute(t, string(hybridJSON), "-c", permissive, "downgrade")
	assert.ErrorIs(t, err, nanomessenger.ErrModePolicyViolation)
	_, err = execute(t, string(hybridJSON), "-c", permissive, "downgrade", "--force")
	assert.NoError(t, err)

	_, err = execute(t, "{", "-c", permissive, "inspect")
	assert.ErrorIs(t, err, nanomessenger.ErrEnvelopeFormat)
	_, err = execute(t, `["1.1"]`, "-c", permissive, "inspect")
	assert.ErrorIs(t, err, nanomessenger.ErrEnvelopeFormat)
}

func TestConfigCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "-c", writeConfig(t, quietConfig), "config")
	require.NoError(t, err)
	assert.Contains(t, out, `"mode": "Hybrid"`)
	assert.Contains(t, out, `"replay_window": 64`)

	bad := writeConfig(t, "crypto:\n  mode: classical\n  minimum_mode: quantum\n")
	_, err = execute(t, "", "-c", bad, "config")
	assert.ErrorIs(t, err, nanomessenger.ErrModePolicyViolation)
}
