package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// Settings is this tool's own persisted state, separate from the miner's
// config file. It only remembers user inputs between invocations.
type Settings struct {
	// RemoteURL is the last --remote= URL
	RemoteURL string `toml:"remote_url,omitempty"`
	// Wallet is the wallet address used when regenerating the config
	Wallet string `toml:"wallet,omitempty"`
}

// LoadSettings reads the settings file; a missing file yields zero
// settings rather than an error.
func LoadSettings(fs afero.Fs, path string) (Settings, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("config: reading settings: %w", err)
	}

	var s Settings
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("config: parsing settings: %w", err)
	}
	return s, nil
}

// SaveSettings writes the settings file
func SaveSettings(fs afero.Fs, path string, s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: encoding settings: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing settings: %w", err)
	}
	return nil
}
