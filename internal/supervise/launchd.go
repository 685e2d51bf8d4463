package supervise

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/renameio/v2"

	"github.com/minerops/minerctl/internal/execx"
	"github.com/minerops/minerctl/internal/paths"
)

// LaunchdDriver supervises the miner as a launchd user agent on macOS.
// KeepAlive in the agent definition provides restart-on-crash natively.
type LaunchdDriver struct {
	run    execx.Runner
	layout paths.Layout

	// uid is the numeric user ID used for kickstart targets
	uid int
}

// NewLaunchdDriver creates a LaunchdDriver for the current user
func NewLaunchdDriver(run execx.Runner, layout paths.Layout) *LaunchdDriver {
	return &LaunchdDriver{run: run, layout: layout, uid: os.Getuid()}
}

// Backend identifies the driver's backend
func (d *LaunchdDriver) Backend() Backend { return BackendLaunchd }

// Available reports whether launchctl is on PATH
func (d *LaunchdDriver) Available(_ context.Context) bool {
	_, err := d.run.LookPath("launchctl")
	return err == nil
}

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
		<string>--config=%s</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardOutPath</key>
	<string>%s</string>
	<key>StandardErrorPath</key>
	<string>%s</string>
</dict>
</plist>
`

// Materialize writes the agent plist into ~/Library/LaunchAgents
func (d *LaunchdDriver) Materialize(_ context.Context) error {
	content := fmt.Sprintf(plistTemplate,
		paths.LaunchdLabel,
		d.layout.MinerBinary, d.layout.ConfigFile,
		d.layout.LogFile, d.layout.LogFile)

	if err := os.MkdirAll(filepath.Dir(d.layout.PlistPath), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceWrite, err)
	}
	if err := renameio.WriteFile(d.layout.PlistPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceWrite, err)
	}
	return nil
}

// Activate loads the agent; loading an already-loaded agent is harmless
func (d *LaunchdDriver) Activate(ctx context.Context) error {
	if _, err := d.run.Run(ctx, "launchctl", "load", "-w", d.layout.PlistPath); err != nil {
		return &OpError{Backend: BackendLaunchd, Op: "activate", Err: err}
	}
	return nil
}

// Deactivate unloads the agent
func (d *LaunchdDriver) Deactivate(ctx context.Context) error {
	if _, err := d.run.Run(ctx, "launchctl", "unload", "-w", d.layout.PlistPath); err != nil {
		return &OpError{Backend: BackendLaunchd, Op: "deactivate", Err: err}
	}
	return nil
}

// IsActive reports whether the agent label is loaded. launchctl list
// exits non-zero for unknown labels; that is evidence of absence, not
// an error.
func (d *LaunchdDriver) IsActive(ctx context.Context) (bool, error) {
	_, err := d.run.Run(ctx, "launchctl", "list", paths.LaunchdLabel)
	if err == nil {
		return true, nil
	}
	if execx.ExitCode(err) > 0 {
		return false, nil
	}
	return false, &OpError{Backend: BackendLaunchd, Op: "is-active", Err: err}
}

// Restart kickstarts the agent in place, launchd's native restart
func (d *LaunchdDriver) Restart(ctx context.Context) error {
	target := "gui/" + strconv.Itoa(d.uid) + "/" + paths.LaunchdLabel
	if _, err := d.run.Run(ctx, "launchctl", "kickstart", "-k", target); err != nil {
		return &OpError{Backend: BackendLaunchd, Op: "restart", Err: err}
	}
	return nil
}

// Remove deletes the agent plist
func (d *LaunchdDriver) Remove(_ context.Context) error {
	if err := os.Remove(d.layout.PlistPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", d.layout.PlistPath, err)
	}
	return nil
}
