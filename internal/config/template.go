package config

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// Defaults for the canonical template
const (
	// DefaultPoolURL is the pool used when none is configured
	DefaultPoolURL = "gulf.moneroocean.stream:10128"

	// DefaultThreadsHint is the core budget written by a fresh template
	DefaultThreadsHint = 75
)

// TemplateParams parameterizes the canonical config template
type TemplateParams struct {
	// Wallet is the pool user (wallet address)
	Wallet string
	// PoolURL is the pool endpoint
	PoolURL string
	// ThreadsHint is the core budget percentage, clamped to [1,100]
	ThreadsHint int
	// LogFile is the miner's own log destination
	LogFile string
}

// minerConfig mirrors the subset of the miner's config schema this tool
// generates. Field order matches the rendered file.
type minerConfig struct {
	Autosave    bool        `json:"autosave"`
	Background  bool        `json:"background"`
	CPU         cpuConfig   `json:"cpu"`
	DonateLevel int         `json:"donate-level"`
	LogFile     string      `json:"log-file"`
	Pools       []poolEntry `json:"pools"`
	PrintTime   int         `json:"print-time"`
	Retries     int         `json:"retries"`
	RetryPause  int         `json:"retry-pause"`
}

type cpuConfig struct {
	Enabled        bool `json:"enabled"`
	HugePages      bool `json:"huge-pages"`
	MaxThreadsHint int  `json:"max-threads-hint"`
}

type poolEntry struct {
	URL       string `json:"url"`
	User      string `json:"user"`
	Pass      string `json:"pass"`
	Keepalive bool   `json:"keepalive"`
	TLS       bool   `json:"tls"`
}

// WriteDefault renders the canonical config template to path. An
// existing file is replaced wholesale; use SetThreadsHint for value-only
// edits.
func WriteDefault(fs afero.Fs, path string, params TemplateParams) error {
	if params.PoolURL == "" {
		params.PoolURL = DefaultPoolURL
	}
	if params.ThreadsHint == 0 {
		params.ThreadsHint = DefaultThreadsHint
	}
	params.ThreadsHint = ClampPercent(params.ThreadsHint)

	cfg := minerConfig{
		Autosave: true,
		CPU: cpuConfig{
			Enabled:        true,
			HugePages:      true,
			MaxThreadsHint: params.ThreadsHint,
		},
		DonateLevel: 1,
		LogFile:     params.LogFile,
		Pools: []poolEntry{{
			URL:       params.PoolURL,
			User:      params.Wallet,
			Pass:      "x",
			Keepalive: true,
		}},
		PrintTime:  60,
		Retries:    5,
		RetryPause: 5,
	}

	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("config: rendering template: %w", err)
	}
	data = append(data, '\n')

	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}
