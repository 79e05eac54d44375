package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadConfig(t *testing.T) {
	path := writeConfigFile(t, `{
		"address": "0.0.0.0:9000",
		"ws_address": ":9001",
		"max_clients": 64,
		"log_level": "debug"
	}`)

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Address)
	assert.Equal(t, ":9001", cfg.WSAddress)
	assert.Equal(t, 64, cfg.MaxClients)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1024, cfg.BufferSize, "unset keys keep their defaults")
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestReadConfigRejectsInvalidValues(t *testing.T) {
	path := writeConfigFile(t, `{"max_clients": 0}`)
	_, err := ReadConfig(path)
	assert.ErrorContains(t, err, "max_clients")
}

func TestMustReadConfigPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustReadConfig(filepath.Join(t.TempDir(), "missing.json"))
	})
}

func TestClientConfigValidate(t *testing.T) {
	cfg := DefaultClient()
	assert.NoError(t, cfg.Validate())

	cfg.Name = "x"
	assert.ErrorContains(t, cfg.Validate(), "between 2 and 20")

	cfg.Name = "alice"
	assert.NoError(t, cfg.Validate())

	cfg.Color = "mauve"
	assert.ErrorContains(t, cfg.Validate(), "invalid color")
}
