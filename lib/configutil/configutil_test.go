package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Model    string  `json:"model"`
	MinDelay float64 `json:"min_delay_seconds"`
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nope.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "trailbook.json5")

	err := os.WriteFile(base, []byte(`{
		// comments are allowed
		model: "base-model",
		min_delay_seconds: 2,
	}`), 0644)
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(dir, "trailbook.local.json5"), []byte(`{
		model: "local-model",
	}`), 0644)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](base)
	require.NoError(t, err)
	require.Equal(t, "local-model", cfg.Model)
	require.Equal(t, 2.0, cfg.MinDelay)
}
