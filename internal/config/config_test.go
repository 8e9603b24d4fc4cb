package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Run from a directory with no config file so defaults apply.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://en.wikipedia.org/wiki/List_of_MTR_stations", cfg.Source.URL)
	assert.Equal(t, 1.0, cfg.Nominatim.RequestsPerSec)
	assert.Equal(t, "MTR", cfg.Nominatim.Qualifier)
	assert.Equal(t, "Hong Kong", cfg.Nominatim.RegionHint)
	assert.Equal(t, "data/mtr_stations.xlsx", cfg.Output.StationsFile)
	assert.Equal(t, []string{"2011", "2016", "2021"}, cfg.Boundary.Vintages)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"output:\n  stations_file: out/stations.csv\nlog:\n  level: debug\n",
	), 0o644))
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "out/stations.csv", cfg.Output.StationsFile)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, "MTR", cfg.Nominatim.Qualifier)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "nominatim:")
	assert.Contains(t, string(data), "requests_per_sec: 1")

	// Second write refuses to clobber.
	assert.Error(t, WriteDefault(path))
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "shouty", Format: "json"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
