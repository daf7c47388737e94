package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinofightergenesis/dinofighterg/internal/config"
)

func TestConfigureConsole(t *testing.T) {
	l := log.New()
	var buf bytes.Buffer
	closer, err := configure(l, config.LoggingConfig{Level: "warn", JSON: true}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	l.Info("hidden")
	l.WithField("holder", "alice").Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"holder":"alice"`)
}

func TestConfigureFile(t *testing.T) {
	l := log.New()
	path := filepath.Join(t.TempDir(), "app.log")
	var buf bytes.Buffer
	closer, err := configure(l, config.LoggingConfig{Level: "debug", File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	l.Debug("tick")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tick")
	assert.Contains(t, buf.String(), "tick")
}

func TestConfigureBadLevel(t *testing.T) {
	_, err := configure(log.New(), config.LoggingConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}
