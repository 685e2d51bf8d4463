package supervise

import "context"

// Backend identifies one of the three native facilities capable of
// keeping the miner running unattended.
type Backend int

const (
	// BackendUnknown represents no recognized backend
	BackendUnknown Backend = iota
	// BackendScreen is a detached GNU screen session
	BackendScreen
	// BackendLaunchd is a launchd user agent (macOS)
	BackendLaunchd
	// BackendSystemd is a systemd unit (Linux)
	BackendSystemd
)

// String returns the string representation of Backend
func (b Backend) String() string {
	switch b {
	case BackendScreen:
		return "screen"
	case BackendLaunchd:
		return "launchd"
	case BackendSystemd:
		return "systemd"
	default:
		return "unknown"
	}
}

// Driver is the capability set every backend implements. Drivers are
// pure adapters over their native facility and share no state; the
// Controller activates at most one driver per start.
type Driver interface {
	// Backend identifies the driver's backend
	Backend() Backend

	// Available reports whether the native facility is present on the
	// host, without touching any state.
	Available(ctx context.Context) bool

	// Materialize writes the backend's service-definition artifacts.
	// Failures wrap ErrServiceWrite.
	Materialize(ctx context.Context) error

	// Activate starts supervision of the miner. Activation is idempotent
	// at the facility level; a second activate is harmless.
	Activate(ctx context.Context) error

	// Deactivate issues the backend-specific termination call
	Deactivate(ctx context.Context) error

	// IsActive reports live evidence that this backend currently
	// governs the miner.
	IsActive(ctx context.Context) (bool, error)

	// Restart performs the facility's native restart. Backends without
	// a native primitive compose Deactivate and Activate.
	Restart(ctx context.Context) error

	// Remove deletes the backend's persisted artifacts after
	// deactivation; used during uninstall.
	Remove(ctx context.Context) error
}

// healthReporter is implemented by drivers whose facility reports a
// health state of its own.
type healthReporter interface {
	Health(ctx context.Context) (string, error)
}
