package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eon-protocol/eondos"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)
	require.Equal(t, eondos.DATA_CACHE_DIR, cfg.CacheDir)
	require.Equal(t, 3, cfg.Steps)
	require.Equal(t, "cpu", cfg.Accelerator)
	require.False(t, cfg.Debug)
	require.Equal(t, 3, cfg.CompressionLevel)
	require.Empty(t, cfg.ProverOptions())
}

func TestOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"EONDOS_CACHE_DIR":         "/tmp/keys",
		"EONDOS_STEPS":             "10",
		"EONDOS_ACCELERATOR":       "cpu",
		"EONDOS_DEBUG":             "true",
		"EONDOS_COMPRESSION_LEVEL": "19",
	})
	require.NoError(t, err)
	require.Equal(t, Config{CacheDir: "/tmp/keys", Steps: 10, Accelerator: "cpu", Debug: true, CompressionLevel: 19}, cfg)
	require.Empty(t, cfg.ProverOptions())
}

func TestInvalid(t *testing.T) {
	for name, environ := range map[string]map[string]string{
		"steps":       {"EONDOS_STEPS": "0"},
		"steps type":  {"EONDOS_STEPS": "many"},
		"level":       {"EONDOS_COMPRESSION_LEVEL": "23"},
		"accelerator": {"EONDOS_ACCELERATOR": "tpu"},
		"icicle":      {"EONDOS_ACCELERATOR": "icicle"},
	} {
		_, err := LoadFrom(environ)
		require.Error(t, err, name)
	}
}
