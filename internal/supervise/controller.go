package supervise

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
)

// Controller exposes the four idempotent, backend-agnostic operations.
// It persists no backend choice: every call re-derives which backend is
// governing the miner through its Detector, so nothing can act on stale
// evidence after a mutating call.
//
// All operations are blocking and synchronous. The miner itself, once
// launched, is daemonized by its backend; the Controller never waits on
// it except transiently while verifying a stop. Concurrent invocations
// from separate processes are not locked against; the design relies on
// the idempotence of each facility's native activation, which makes
// double-activation harmless. This is a known limitation.
type Controller struct {
	detector *Detector
	log      zerolog.Logger

	// installScreen is the last-resort collaborator that installs the
	// screen utility when no backend facility exists at all. Nil
	// disables the escalation.
	installScreen func(ctx context.Context) error

	// stop verification policy
	verifyAttempts uint
	verifyDelay    time.Duration
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithLogger sets the informational channel
func WithLogger(log zerolog.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// WithScreenInstaller sets the last-resort screen install collaborator
func WithScreenInstaller(fn func(ctx context.Context) error) ControllerOption {
	return func(c *Controller) { c.installScreen = fn }
}

// WithStopVerification sets the stop verification retry policy
func WithStopVerification(attempts uint, delay time.Duration) ControllerOption {
	return func(c *Controller) {
		c.verifyAttempts = attempts
		c.verifyDelay = delay
	}
}

// NewController creates a Controller over the given Detector
func NewController(detector *Detector, opts ...ControllerOption) *Controller {
	c := &Controller{
		detector:       detector,
		log:            zerolog.Nop(),
		verifyAttempts: 3,
		verifyDelay:    300 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartResult reports the outcome of Start
type StartResult struct {
	// Backend is the backend now governing the miner
	Backend Backend
	// AlreadyRunning indicates Start was a no-op
	AlreadyRunning bool
}

// Start activates supervision under the preferred available backend.
// A backend already governing the miner makes this a no-op, reported on
// the informational channel rather than as an error. Backend preference
// is the native service manager first, screen as fallback; when even
// screen is missing, the configured installer is tried as a last resort
// before giving up with ErrBackendUnavailable.
func (c *Controller) Start(ctx context.Context) (StartResult, error) {
	if d, found, _ := c.detector.Current(ctx); found {
		c.log.Info().Stringer("backend", d.Backend()).Msg("already running")
		return StartResult{Backend: d.Backend(), AlreadyRunning: true}, nil
	}

	selected := c.selectBackend(ctx)
	if selected == nil {
		selected = c.escalateScreenInstall(ctx)
	}
	if selected == nil {
		return StartResult{}, ErrBackendUnavailable
	}

	if err := selected.Materialize(ctx); err != nil {
		return StartResult{}, err
	}
	if err := selected.Activate(ctx); err != nil {
		return StartResult{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	c.log.Info().Stringer("backend", selected.Backend()).Msg("supervision started")
	return StartResult{Backend: selected.Backend()}, nil
}

// selectBackend returns the first available driver in activation
// preference order: native service managers before screen.
func (c *Controller) selectBackend(ctx context.Context) Driver {
	drivers := c.detector.Drivers()

	// Detection order is screen-first; activation preference is the
	// reverse, so walk natives first and screen last.
	for i := len(drivers) - 1; i >= 0; i-- {
		if drivers[i].Available(ctx) {
			return drivers[i]
		}
	}
	return nil
}

// escalateScreenInstall attempts to install screen via the configured
// collaborator and returns its driver if the install took.
func (c *Controller) escalateScreenInstall(ctx context.Context) Driver {
	if c.installScreen == nil {
		return nil
	}

	c.log.Warn().Msg("no backend facility found; installing screen via the package manager")
	if err := c.installScreen(ctx); err != nil {
		c.log.Warn().Err(err).Msg("screen install failed")
		return nil
	}

	for _, d := range c.detector.Drivers() {
		if d.Backend() == BackendScreen && d.Available(ctx) {
			return d
		}
	}
	return nil
}

// StopResult reports the outcome of Stop
type StopResult struct {
	// Backend is the backend that was stopped
	Backend Backend
	// Stopped indicates a termination call was issued
	Stopped bool
}

// Stop terminates supervision under whichever backend is governing the
// miner. No governing backend makes this a no-op, reported on the
// informational channel. After the termination call the stop is verified
// by re-deriving the backend; evidence that persists through the retry
// window surfaces as ErrStopVerification, which callers treat as a
// warning rather than a failure.
func (c *Controller) Stop(ctx context.Context) (StopResult, error) {
	d, found, err := c.detector.Current(ctx)
	if !found {
		if err != nil {
			return StopResult{}, err
		}
		c.log.Info().Msg("nothing to stop")
		return StopResult{}, nil
	}

	if err := d.Deactivate(ctx); err != nil {
		return StopResult{Backend: d.Backend()}, err
	}

	verifyErr := retry.Do(
		func() error {
			if _, still, _ := c.detector.Current(ctx); still {
				return ErrStopVerification
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.verifyAttempts),
		retry.Delay(c.verifyDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if verifyErr != nil {
		c.log.Warn().Stringer("backend", d.Backend()).Msg("backend still shows evidence after stop")
		return StopResult{Backend: d.Backend(), Stopped: true},
			fmt.Errorf("%w (backend %s)", ErrStopVerification, d.Backend())
	}

	c.log.Info().Stringer("backend", d.Backend()).Msg("supervision stopped")
	return StopResult{Backend: d.Backend(), Stopped: true}, nil
}

// StatusInfo reports which backend governs the miner, if any
type StatusInfo struct {
	// Running indicates some backend shows live evidence
	Running bool
	// Backend is the governing backend when Running
	Backend Backend
	// Health is the manager-reported health state, where the facility
	// has one (systemd's ActiveState/SubState)
	Health string
}

// Status re-derives and reports the governing backend
func (c *Controller) Status(ctx context.Context) (StatusInfo, error) {
	d, found, err := c.detector.Current(ctx)
	if !found {
		if err != nil {
			return StatusInfo{}, err
		}
		return StatusInfo{}, nil
	}

	info := StatusInfo{Running: true, Backend: d.Backend()}
	if hr, ok := d.(healthReporter); ok {
		if health, err := hr.Health(ctx); err == nil {
			info.Health = health
		}
	}
	return info, nil
}

// RestartResult reports the outcome of Restart
type RestartResult struct {
	// Backend is the backend that was restarted
	Backend Backend
	// Restarted indicates a backend was active and restarted
	Restarted bool
}

// Restart restarts the miner under its current backend. It only applies
// when a backend is active. launchd and systemd restart natively in one
// call; screen has no restart primitive, so that path is a Stop followed
// by a Start and callers must tolerate the brief gap.
func (c *Controller) Restart(ctx context.Context) (RestartResult, error) {
	d, found, err := c.detector.Current(ctx)
	if !found {
		if err != nil {
			return RestartResult{}, err
		}
		c.log.Info().Msg("nothing to restart")
		return RestartResult{}, nil
	}

	if d.Backend() == BackendScreen {
		if _, err := c.Stop(ctx); err != nil && !errors.Is(err, ErrStopVerification) {
			return RestartResult{Backend: BackendScreen}, err
		}
		res, err := c.Start(ctx)
		if err != nil {
			return RestartResult{Backend: BackendScreen}, err
		}
		return RestartResult{Backend: res.Backend, Restarted: true}, nil
	}

	if err := d.Restart(ctx); err != nil {
		return RestartResult{Backend: d.Backend()}, err
	}
	c.log.Info().Stringer("backend", d.Backend()).Msg("supervision restarted")
	return RestartResult{Backend: d.Backend(), Restarted: true}, nil
}
