// Package supervise keeps the miner running unattended behind one of
// three mutually exclusive backends: a detached GNU screen session, a
// launchd user agent on macOS, or a systemd unit on Linux.
//
// The core abstraction is the Driver capability set (Materialize,
// Activate, Deactivate, IsActive), implemented once per backend as a
// pure adapter over the native facility. A Detector re-derives the
// governing backend on every inquiry by probing for live evidence (a
// named session, a loaded label, an active unit) in fixed priority
// order; nothing stores the choice, so it can never go stale.
//
//	det := supervise.NewDetector(facts, execx.System{}, layout)
//	ctrl := supervise.NewController(det)
//
//	res, err := ctrl.Start(ctx)
//	if res.AlreadyRunning {
//	    // second start is a no-op, not an error
//	}
//
// Start picks the native service manager when its facility is present
// and falls back to screen, wrapping the miner in a shell restart loop
// so every backend restarts the process after a crash. Stop verifies the
// termination by re-deriving the backend and reports lingering evidence
// as the non-fatal ErrStopVerification.
package supervise
