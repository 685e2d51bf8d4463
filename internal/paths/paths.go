// Package paths defines the well-known artifact locations each backend
// owns. These are fixed constants of the installation, not generated
// identifiers; every invocation derives the same layout from the home
// directory.
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/minerops/minerctl/internal/platform"
)

const (
	// SessionName is the reserved screen session name
	SessionName = "minerctl"

	// LaunchdLabel is the launchd agent label on macOS
	LaunchdLabel = "com.minerops.minerctl"

	// UnitName is the systemd unit name on Linux, without suffix
	UnitName = "minerctl"

	// installDirName is the per-user installation directory
	installDirName = ".minerctl"

	// minerBinaryName is the supervised miner executable
	minerBinaryName = "xmrig"
)

// Layout is the set of fixed paths the tool reads and writes.
type Layout struct {
	// InstallDir is the per-user installation directory
	InstallDir string
	// MinerBinary is the supervised miner executable path
	MinerBinary string
	// ConfigFile is the miner's JSON configuration file
	ConfigFile string
	// SettingsFile is this tool's own TOML settings file
	SettingsFile string
	// LogFile is where every backend directs miner output
	LogFile string
	// PlistPath is the launchd agent definition (macOS only)
	PlistPath string
	// UnitPath is the systemd unit definition (Linux only)
	UnitPath string
}

// Resolve builds the Layout for the current user and platform.
func Resolve(facts platform.Facts) (Layout, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Layout{}, fmt.Errorf("resolving home directory: %w", err)
	}
	return resolve(home, facts), nil
}

func resolve(home string, facts platform.Facts) Layout {
	installDir := filepath.Join(home, installDirName)

	l := Layout{
		InstallDir:   installDir,
		MinerBinary:  filepath.Join(installDir, minerBinaryName),
		ConfigFile:   filepath.Join(installDir, "config.json"),
		SettingsFile: filepath.Join(installDir, "settings.toml"),
		LogFile:      filepath.Join(installDir, "miner.log"),
	}

	switch facts.Family {
	case platform.FamilyDarwin:
		l.PlistPath = filepath.Join(home, "Library", "LaunchAgents", LaunchdLabel+".plist")
	case platform.FamilyLinux:
		l.UnitPath = filepath.Join("/etc/systemd/system", UnitName+".service")
	}

	return l
}
