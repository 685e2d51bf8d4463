package supervise

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/minerops/minerctl/internal/execx"
	"github.com/minerops/minerctl/internal/paths"
)

// SystemdDriver supervises the miner as a systemd unit on Linux.
// Restart=always in the unit provides restart-on-crash natively.
type SystemdDriver struct {
	run    execx.Runner
	layout paths.Layout

	// useSudo prefixes privileged commands with sudo when not root
	useSudo bool
}

// NewSystemdDriver creates a SystemdDriver
func NewSystemdDriver(run execx.Runner, layout paths.Layout) *SystemdDriver {
	return &SystemdDriver{
		run:     run,
		layout:  layout,
		useSudo: os.Geteuid() != 0,
	}
}

// WithSudo configures sudo usage explicitly
func (d *SystemdDriver) WithSudo(use bool) *SystemdDriver {
	d.useSudo = use
	return d
}

// Backend identifies the driver's backend
func (d *SystemdDriver) Backend() Backend { return BackendSystemd }

// Available reports whether systemctl is on PATH
func (d *SystemdDriver) Available(_ context.Context) bool {
	_, err := d.run.LookPath("systemctl")
	return err == nil
}

// unitName is the full unit name including suffix
func unitName() string { return paths.UnitName + ".service" }

// sudo executes a command with a sudo prefix when required
func (d *SystemdDriver) sudo(ctx context.Context, name string, args ...string) (string, error) {
	if d.useSudo {
		return d.run.Run(ctx, "sudo", append([]string{name}, args...)...)
	}
	return d.run.Run(ctx, name, args...)
}

const unitTemplate = `[Unit]
Description=minerctl supervised miner
After=network.target

[Service]
ExecStart=%s --config=%s
WorkingDirectory=%s
User=%s
Restart=always
RestartSec=5
StandardOutput=append:%s
StandardError=append:%s
Nice=10

[Install]
WantedBy=multi-user.target
`

// Materialize writes the unit file. The unit is rendered atomically into
// the install dir first, then copied into /etc/systemd/system, which may
// need sudo; a daemon-reload follows so systemd sees the new definition.
func (d *SystemdDriver) Materialize(ctx context.Context) error {
	userName := "root"
	if u, err := user.Current(); err == nil {
		userName = u.Username
	}

	content := fmt.Sprintf(unitTemplate,
		d.layout.MinerBinary, d.layout.ConfigFile,
		d.layout.InstallDir, userName,
		d.layout.LogFile, d.layout.LogFile)

	staging := filepath.Join(d.layout.InstallDir, unitName())
	if err := renameio.WriteFile(staging, []byte(content), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceWrite, err)
	}
	if _, err := d.sudo(ctx, "cp", staging, d.layout.UnitPath); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceWrite, err)
	}
	if _, err := d.sudo(ctx, "systemctl", "daemon-reload"); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceWrite, err)
	}
	return nil
}

// Activate enables and starts the unit; both are no-ops when repeated
func (d *SystemdDriver) Activate(ctx context.Context) error {
	if _, err := d.sudo(ctx, "systemctl", "enable", unitName()); err != nil {
		return &OpError{Backend: BackendSystemd, Op: "enable", Err: err}
	}
	if _, err := d.sudo(ctx, "systemctl", "start", unitName()); err != nil {
		return &OpError{Backend: BackendSystemd, Op: "activate", Err: err}
	}
	return nil
}

// Deactivate stops the unit
func (d *SystemdDriver) Deactivate(ctx context.Context) error {
	if _, err := d.sudo(ctx, "systemctl", "stop", unitName()); err != nil {
		return &OpError{Backend: BackendSystemd, Op: "deactivate", Err: err}
	}
	return nil
}

// IsActive reports whether the unit is active. systemctl is-active exits
// with code 3 when the unit is inactive; that is a status, not an error.
func (d *SystemdDriver) IsActive(ctx context.Context) (bool, error) {
	out, err := d.run.Run(ctx, "systemctl", "is-active", unitName())
	if err != nil {
		if execx.ExitCode(err) > 0 {
			return false, nil
		}
		return false, &OpError{Backend: BackendSystemd, Op: "is-active", Err: err}
	}
	return strings.TrimSpace(out) == "active", nil
}

// Restart performs systemd's native restart
func (d *SystemdDriver) Restart(ctx context.Context) error {
	if _, err := d.sudo(ctx, "systemctl", "restart", unitName()); err != nil {
		return &OpError{Backend: BackendSystemd, Op: "restart", Err: err}
	}
	return nil
}

// Health reports the manager's own view of the unit, "ActiveState/SubState"
func (d *SystemdDriver) Health(ctx context.Context) (string, error) {
	out, err := d.run.Run(ctx, "systemctl", "show", unitName(), "--no-page")
	if err != nil {
		return "", &OpError{Backend: BackendSystemd, Op: "health", Err: err}
	}

	props := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		if key, value, ok := strings.Cut(line, "="); ok {
			props[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}

	active := props["ActiveState"]
	sub := props["SubState"]
	if active == "" {
		return "unknown", nil
	}
	if sub == "" {
		return active, nil
	}
	return active + "/" + sub, nil
}

// Remove disables the unit and deletes its definition
func (d *SystemdDriver) Remove(ctx context.Context) error {
	if _, err := d.sudo(ctx, "systemctl", "disable", unitName()); err != nil && execx.ExitCode(err) < 0 {
		return &OpError{Backend: BackendSystemd, Op: "disable", Err: err}
	}
	if _, err := d.sudo(ctx, "rm", "-f", d.layout.UnitPath); err != nil {
		return &OpError{Backend: BackendSystemd, Op: "remove", Err: err}
	}
	if _, err := d.sudo(ctx, "systemctl", "daemon-reload"); err != nil {
		return &OpError{Backend: BackendSystemd, Op: "remove", Err: err}
	}
	return nil
}
