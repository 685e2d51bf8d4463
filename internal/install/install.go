package install

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/minerops/minerctl/internal/config"
	"github.com/minerops/minerctl/internal/paths"
	"github.com/minerops/minerctl/internal/platform"
)

// minerVersion is the pinned miner release
const minerVersion = "6.24.0"

// Downloader fetches a URL to a filesystem path
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Installer places the miner binary and its config on disk.
type Installer struct {
	fs     afero.Fs
	dl     Downloader
	pkgs   *PkgManager
	layout paths.Layout
	facts  platform.Facts
	log    zerolog.Logger
}

// NewInstaller creates an Installer. pkgs may be nil when no package
// manager exists; dependency installation then degrades to a warning.
func NewInstaller(fs afero.Fs, dl Downloader, pkgs *PkgManager, layout paths.Layout, facts platform.Facts, log zerolog.Logger) *Installer {
	return &Installer{fs: fs, dl: dl, pkgs: pkgs, layout: layout, facts: facts, log: log}
}

// ReleaseURL returns the miner release tarball URL for the platform
func ReleaseURL(facts platform.Facts) string {
	var flavor string
	switch {
	case facts.Family == platform.FamilyDarwin && facts.Arch == platform.ArchARM64:
		flavor = "macos-arm64"
	case facts.Family == platform.FamilyDarwin:
		flavor = "macos-x64"
	case facts.Family == platform.FamilyLinux && facts.Arch == platform.ArchARM64:
		flavor = "linux-arm64"
	default:
		flavor = "linux-static-x64"
	}
	return fmt.Sprintf("https://github.com/xmrig/xmrig/releases/download/v%s/xmrig-%s-%s.tar.gz",
		minerVersion, minerVersion, flavor)
}

// dependencies are the command-line tools installed best-effort before
// the miner itself. screen is included so the fallback backend works
// without the start-time escalation.
var dependencies = []string{"screen"}

// Install downloads the miner release, unpacks the binary into the
// install dir and writes the default config when none exists yet.
// Dependency failures are warnings; a failed binary download is fatal.
func (i *Installer) Install(ctx context.Context, wallet string) error {
	if err := i.fs.MkdirAll(i.layout.InstallDir, 0o755); err != nil {
		return fmt.Errorf("install: creating %s: %w", i.layout.InstallDir, err)
	}

	i.installDependencies(ctx)

	if err := i.FetchBinary(ctx, ReleaseURL(i.facts)); err != nil {
		return err
	}

	if exists, _ := afero.Exists(i.fs, i.layout.ConfigFile); !exists {
		err := config.WriteDefault(i.fs, i.layout.ConfigFile, config.TemplateParams{
			Wallet:  wallet,
			LogFile: i.layout.LogFile,
		})
		if err != nil {
			return fmt.Errorf("install: writing default config: %w", err)
		}
	}

	return nil
}

// installDependencies is best-effort: a missing package manager or a
// failed install is reported and execution continues.
func (i *Installer) installDependencies(ctx context.Context) {
	if i.pkgs == nil {
		i.log.Warn().Msg("no package manager found; skipping dependency install")
		return
	}
	for _, dep := range dependencies {
		if i.pkgs.IsInstalled(dep) {
			continue
		}
		if err := i.pkgs.Install(ctx, dep); err != nil {
			i.log.Warn().Err(err).Str("package", dep).Msg("dependency install failed")
		}
	}
}

// FetchBinary downloads a miner tarball from url and unpacks the miner
// executable over the installed one. Used by install and by no-donate
// binary replacement.
func (i *Installer) FetchBinary(ctx context.Context, url string) error {
	archive := filepath.Join(i.layout.InstallDir, "miner.tar.gz")
	if err := i.dl.Download(ctx, url, archive); err != nil {
		return fmt.Errorf("install: downloading miner: %w", err)
	}
	defer func() { _ = i.fs.Remove(archive) }()

	if err := i.extractMiner(archive); err != nil {
		return fmt.Errorf("install: unpacking miner: %w", err)
	}
	return nil
}

// extractMiner copies the miner executable out of the tarball
func (i *Installer) extractMiner(archive string) error {
	f, err := i.fs.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg || filepath.Base(hdr.Name) != "xmrig" {
			continue
		}

		out, err := i.fs.OpenFile(i.layout.MinerBinary, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, tr); err != nil {
			_ = out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		return i.fs.Chmod(i.layout.MinerBinary, 0o755)
	}
	return fmt.Errorf("miner executable not found in %s", archive)
}

// RemoveFiles deletes the install directory and everything in it
func (i *Installer) RemoveFiles() error {
	if err := i.fs.RemoveAll(i.layout.InstallDir); err != nil {
		return fmt.Errorf("install: removing %s: %w", i.layout.InstallDir, err)
	}
	return nil
}
