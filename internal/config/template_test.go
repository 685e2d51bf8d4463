package config

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefaultRendersValidJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	err := WriteDefault(fs, "/cfg/config.json", TemplateParams{
		Wallet:      "44wallet",
		ThreadsHint: 80,
		LogFile:     "/home/u/.minerctl/miner.log",
	})
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/cfg/config.json")
	require.NoError(t, err)
	require.True(t, json.Valid(data))

	var cfg map[string]any
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Equal(t, float64(1), cfg["donate-level"])

	// the rendered file must be patchable
	hint, err := GetThreadsHint(fs, "/cfg/config.json")
	require.NoError(t, err)
	assert.Equal(t, 80, hint)
}

func TestWriteDefaultDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteDefault(fs, "/cfg/config.json", TemplateParams{Wallet: "w"}))

	hint, err := GetThreadsHint(fs, "/cfg/config.json")
	require.NoError(t, err)
	assert.Equal(t, DefaultThreadsHint, hint)

	data, err := afero.ReadFile(fs, "/cfg/config.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), DefaultPoolURL)
}

func TestWriteDefaultClampsHint(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteDefault(fs, "/cfg/config.json", TemplateParams{ThreadsHint: 400}))

	hint, err := GetThreadsHint(fs, "/cfg/config.json")
	require.NoError(t, err)
	assert.Equal(t, 100, hint)
}

func TestSettingsRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()

	missing, err := LoadSettings(fs, "/cfg/settings.toml")
	require.NoError(t, err)
	assert.Empty(t, missing.RemoteURL)

	want := Settings{RemoteURL: "https://example.org/config.json", Wallet: "44w"}
	require.NoError(t, SaveSettings(fs, "/cfg/settings.toml", want))

	got, err := LoadSettings(fs, "/cfg/settings.toml")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
