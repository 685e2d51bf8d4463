// Package install puts the miner binary on disk and talks to the OS
// package manager for dependencies.
package install

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/minerops/minerctl/internal/execx"
	"github.com/minerops/minerctl/internal/platform"
)

// ErrNoPackageManager indicates no supported package manager was found
var ErrNoPackageManager = errors.New("install: no supported package manager found")

// PkgManager is the OS package-manager collaborator. Installs are
// allowed to block indefinitely, mirroring the manager's own defaults.
type PkgManager struct {
	// name is the manager binary (brew, apt-get, dnf, yum, pacman)
	name string
	run  execx.Runner
	sudo bool
}

// managerCandidates per family, in preference order
var managerCandidates = map[platform.Family][]string{
	platform.FamilyDarwin: {"brew"},
	platform.FamilyLinux:  {"apt-get", "dnf", "yum", "pacman"},
}

// DetectPkgManager finds the host's package manager
func DetectPkgManager(facts platform.Facts, run execx.Runner) (*PkgManager, error) {
	for _, name := range managerCandidates[facts.Family] {
		if _, err := run.LookPath(name); err == nil {
			return &PkgManager{
				name: name,
				run:  run,
				sudo: name != "brew" && os.Geteuid() != 0,
			}, nil
		}
	}
	return nil, ErrNoPackageManager
}

// WithSudo configures sudo usage explicitly
func (m *PkgManager) WithSudo(use bool) *PkgManager {
	m.sudo = use
	return m
}

// Name returns the manager binary name
func (m *PkgManager) Name() string { return m.name }

// Install installs the named packages
func (m *PkgManager) Install(ctx context.Context, pkgs ...string) error {
	var args []string
	switch m.name {
	case "brew":
		args = append([]string{"install"}, pkgs...)
	case "apt-get":
		args = append([]string{"install", "-y"}, pkgs...)
	case "dnf", "yum":
		args = append([]string{"install", "-y"}, pkgs...)
	case "pacman":
		args = append([]string{"-S", "--noconfirm"}, pkgs...)
	default:
		return fmt.Errorf("install: unsupported package manager %q", m.name)
	}

	name := m.name
	if m.sudo {
		args = append([]string{name}, args...)
		name = "sudo"
	}
	if _, err := m.run.Run(ctx, name, args...); err != nil {
		return fmt.Errorf("install: %s: %w", m.name, err)
	}
	return nil
}

// IsInstalled reports whether the named executable is already on PATH.
// Dependencies here are all command-line tools, so PATH presence is the
// relevant check rather than the manager's package database.
func (m *PkgManager) IsInstalled(pkg string) bool {
	_, err := m.run.LookPath(pkg)
	return err == nil
}
