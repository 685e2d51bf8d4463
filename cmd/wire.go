package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/minerops/minerctl/internal/config"
	"github.com/minerops/minerctl/internal/execx"
	"github.com/minerops/minerctl/internal/fetch"
	"github.com/minerops/minerctl/internal/install"
	"github.com/minerops/minerctl/internal/paths"
	"github.com/minerops/minerctl/internal/platform"
	"github.com/minerops/minerctl/internal/supervise"
)

// app carries the wired collaborators every verb works against
type app struct {
	facts     platform.Facts
	layout    paths.Layout
	fs        afero.Fs
	run       execx.Runner
	log       zerolog.Logger
	ctrl      *supervise.Controller
	detector  *supervise.Detector
	installer *install.Installer
	dl        install.Downloader
}

// wireApp builds the production app. The platform probe runs first and
// its failure aborts everything: no collaborator may be touched on an
// unsupported platform.
func wireApp(ctx context.Context) (*app, error) {
	facts, err := platform.Detect(ctx)
	if err != nil {
		return nil, err
	}

	layout, err := paths.Resolve(facts)
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	run := execx.System{}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	return buildApp(facts, layout, fs, run, log), nil
}

// buildApp assembles the app from its collaborators; tests call this
// directly with fakes.
func buildApp(facts platform.Facts, layout paths.Layout, fs afero.Fs, run execx.Runner, log zerolog.Logger) *app {
	detector := supervise.NewDetector(facts, run, layout)
	dl := fetch.NewClient(fs)
	pkgs, pkgErr := install.DetectPkgManager(facts, run)
	if pkgErr != nil {
		pkgs = nil
	}
	installer := install.NewInstaller(fs, dl, pkgs, layout, facts, log)

	opts := []supervise.ControllerOption{supervise.WithLogger(log)}
	if pkgs != nil {
		opts = append(opts, supervise.WithScreenInstaller(func(ctx context.Context) error {
			return pkgs.Install(ctx, "screen")
		}))
	}

	return &app{
		facts:     facts,
		layout:    layout,
		fs:        fs,
		run:       run,
		log:       log,
		ctrl:      supervise.NewController(detector, opts...),
		detector:  detector,
		installer: installer,
		dl:        dl,
	}
}

// settings loads the persisted tool settings
func (a *app) settings() (config.Settings, error) {
	return config.LoadSettings(a.fs, a.layout.SettingsFile)
}

// saveSettings persists the tool settings
func (a *app) saveSettings(s config.Settings) error {
	if err := a.fs.MkdirAll(a.layout.InstallDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", a.layout.InstallDir, err)
	}
	return config.SaveSettings(a.fs, a.layout.SettingsFile, s)
}

// writeDefaultConfig renders the canonical template to the config path,
// carrying the remembered wallet over.
func (a *app) writeDefaultConfig() error {
	s, err := a.settings()
	if err != nil {
		return err
	}
	if err := a.fs.MkdirAll(a.layout.InstallDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", a.layout.InstallDir, err)
	}
	return config.WriteDefault(a.fs, a.layout.ConfigFile, config.TemplateParams{
		Wallet:  s.Wallet,
		LogFile: a.layout.LogFile,
	})
}

// restartIfActive restarts the miner only when a backend currently
// governs it; with nothing running it is a silent no-op.
func (a *app) restartIfActive(ctx context.Context) error {
	_, err := a.ctrl.Restart(ctx)
	return err
}
