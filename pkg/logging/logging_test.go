package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup("", false))
	SetOutput(&buf)
	t.Cleanup(Close)

	Info("loaded %d comics", 3)
	Warn("missing %s", "a.png")
	Error("boom")
	Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "INFO: loaded 3 comics")
	assert.Contains(t, out, "WARNING: missing a.png")
	assert.Contains(t, out, "ERROR: boom")
	assert.NotContains(t, out, "hidden")

	buf.Reset()
	require.NoError(t, Setup("", true))
	Debug("shown")
	assert.Contains(t, buf.String(), "DEBUG: shown")
}

func TestSetupLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comics.log")
	require.NoError(t, Setup(path, false))

	Quiet()
	Info("to the file")
	Close()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "INFO: to the file")
}

func TestSetupBadPath(t *testing.T) {
	err := Setup(filepath.Join(t.TempDir(), "missing", "x.log"), false)
	assert.Error(t, err)
}

func TestLoggerFollowsOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(Close)

	Logger().Print("http: TLS handshake error")
	assert.Contains(t, buf.String(), "http: TLS handshake error")
}
