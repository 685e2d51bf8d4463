package supervise

import (
	"context"
	"fmt"
	"regexp"

	"github.com/minerops/minerctl/internal/execx"
	"github.com/minerops/minerctl/internal/paths"
)

// ScreenDriver supervises the miner inside a detached GNU screen session.
// screen itself does not restart a crashed child, so the session runs the
// miner wrapped in a shell restart loop; that gives this backend the same
// restart-on-crash behavior launchd and systemd provide natively.
type ScreenDriver struct {
	run    execx.Runner
	layout paths.Layout
}

// NewScreenDriver creates a ScreenDriver
func NewScreenDriver(run execx.Runner, layout paths.Layout) *ScreenDriver {
	return &ScreenDriver{run: run, layout: layout}
}

// Backend identifies the driver's backend
func (d *ScreenDriver) Backend() Backend { return BackendScreen }

// Available reports whether the screen binary is on PATH
func (d *ScreenDriver) Available(_ context.Context) bool {
	_, err := d.run.LookPath("screen")
	return err == nil
}

// Materialize is a no-op: the session is the only artifact and it only
// exists while active.
func (d *ScreenDriver) Materialize(_ context.Context) error { return nil }

// Activate launches the named detached session running the restart loop
func (d *ScreenDriver) Activate(ctx context.Context) error {
	loop := fmt.Sprintf("while true; do %q --config=%q >> %q 2>&1; sleep 5; done",
		d.layout.MinerBinary, d.layout.ConfigFile, d.layout.LogFile)

	if _, err := d.run.Run(ctx, "screen", "-dmS", paths.SessionName, "sh", "-c", loop); err != nil {
		return &OpError{Backend: BackendScreen, Op: "activate", Err: err}
	}
	return nil
}

// Deactivate sends quit to the named session
func (d *ScreenDriver) Deactivate(ctx context.Context) error {
	if _, err := d.run.Run(ctx, "screen", "-S", paths.SessionName, "-X", "quit"); err != nil {
		return &OpError{Backend: BackendScreen, Op: "deactivate", Err: err}
	}
	return nil
}

// sessionPattern matches a "<pid>.minerctl" entry in screen -ls output
var sessionPattern = regexp.MustCompile(`(?m)^\s+\d+\.` + regexp.QuoteMeta(paths.SessionName) + `\s`)

// IsActive reports whether the reserved session exists. screen -ls exits
// non-zero when no sockets are found, so only the output is inspected.
func (d *ScreenDriver) IsActive(ctx context.Context) (bool, error) {
	out, err := d.run.Run(ctx, "screen", "-ls")
	if sessionPattern.MatchString(out) {
		return true, nil
	}
	if err != nil && execx.ExitCode(err) < 0 {
		// screen did not run at all; anything else is just "no sessions"
		return false, &OpError{Backend: BackendScreen, Op: "is-active", Err: err}
	}
	return false, nil
}

// Restart recreates the session. screen has no native restart primitive,
// so callers must tolerate the brief gap between quit and relaunch.
func (d *ScreenDriver) Restart(ctx context.Context) error {
	if err := d.Deactivate(ctx); err != nil {
		return err
	}
	return d.Activate(ctx)
}

// Remove is a no-op: quitting the session already removed its only artifact
func (d *ScreenDriver) Remove(_ context.Context) error { return nil }
