package execx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// ExitError is a canned non-zero exit status for Fake results.
type ExitError struct {
	// Code is the simulated process exit code
	Code int
}

// Error returns the same message a real exec.ExitError would
func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// ExitCode returns the simulated exit code
func (e *ExitError) ExitCode() int { return e.Code }

// FakeResult is a canned response for one command invocation.
type FakeResult struct {
	// Stdout is returned as the command output
	Stdout string
	// Err is returned as the command error
	Err error
}

// Fake is an in-memory Runner for tests. Responses are keyed by the full
// command line ("name arg1 arg2 ..."); unmatched commands fail. Every
// invocation is recorded in order.
type Fake struct {
	mu sync.Mutex

	// Results maps full command lines to canned responses
	Results map[string]FakeResult
	// Binaries is the set of executables LookPath resolves
	Binaries map[string]string

	// Calls records every Run invocation as a full command line
	Calls []string
}

// NewFake creates an empty Fake
func NewFake() *Fake {
	return &Fake{
		Results:  make(map[string]FakeResult),
		Binaries: make(map[string]string),
	}
}

// On registers a canned response for a command line
func (f *Fake) On(cmdline string, stdout string, err error) *Fake {
	f.Results[cmdline] = FakeResult{Stdout: stdout, Err: err}
	return f
}

// WithBinary marks an executable as present on the fake host
func (f *Fake) WithBinary(name string) *Fake {
	f.Binaries[name] = "/usr/bin/" + name
	return f
}

// Run replays the canned response for the command line
func (f *Fake) Run(_ context.Context, name string, args ...string) (string, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	f.Calls = append(f.Calls, cmdline)
	f.mu.Unlock()

	if res, ok := f.Results[cmdline]; ok {
		return res.Stdout, res.Err
	}
	return "", fmt.Errorf("fake runner: no result registered for %q", cmdline)
}

// LookPath resolves executables registered via WithBinary
func (f *Fake) LookPath(name string) (string, error) {
	if path, ok := f.Binaries[name]; ok {
		return path, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// CallLines returns a copy of the recorded command lines
func (f *Fake) CallLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	copy(out, f.Calls)
	return out
}
