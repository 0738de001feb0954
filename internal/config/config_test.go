package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ORALABLE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Oralable PPG", cfg.Device.Name)
	require.Equal(t, "sim", cfg.Device.Transport)
	require.Equal(t, "local", cfg.Auth.Provider)
	require.NotEmpty(t, cfg.Database.Path)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ORALABLE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("ORALABLE_DEVICE_NAME", "PPG Clinic Unit")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "PPG Clinic Unit", cfg.Device.Name)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("ORALABLE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Auth.Email = "pat@example.com"
	cfg.Device.Name = "Oralable PPG 2"
	require.NoError(t, Save(cfg))

	_, err = os.Stat(path)
	require.NoError(t, err)

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, "pat@example.com", got.Auth.Email)
	require.Equal(t, "Oralable PPG 2", got.Device.Name)
}
