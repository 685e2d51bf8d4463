// Package execx abstracts external command execution so the supervision
// logic can be exercised against a fake host in tests instead of real
// service managers.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes external commands. Every call into a package manager,
// service manager or terminal multiplexer goes through this seam.
type Runner interface {
	// Run executes the command and returns its stdout. On failure the
	// returned error carries the captured stderr.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// LookPath reports the absolute path of an executable, or an error
	// if it is not present on the host.
	LookPath(name string) (string, error)
}

// System is the Runner used outside of tests. Commands inherit the
// process environment and block until completion; no timeout is imposed
// beyond the caller's context.
type System struct{}

// Run executes the command via exec.CommandContext
func (System) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.String(), fmt.Errorf("%s: %w (stderr: %s)", name, err, msg)
		}
		return stdout.String(), fmt.Errorf("%s: %w", name, err)
	}

	return stdout.String(), nil
}

// LookPath resolves the executable on PATH
func (System) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// ExitCode extracts the process exit code from a Run error, or -1 when
// the error does not carry one (including errors from commands that never
// ran). *exec.ExitError satisfies the probe; so does the Fake's ExitError.
func ExitCode(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return -1
}
