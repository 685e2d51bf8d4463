// Package config owns the miner's JSON configuration file: rendering the
// canonical template, patching the single tunable field, and this tool's
// own small settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/spf13/afero"
)

// Errors returned by the patcher
var (
	// ErrFieldNotFound indicates the threads-hint field is absent; the
	// caller should regenerate the file from the canonical template and
	// retry.
	ErrFieldNotFound = errors.New("config: max-threads-hint field not found")

	// ErrWriteFailed indicates the patched file could not be written or
	// did not verify.
	ErrWriteFailed = errors.New("config: write failed")
)

// threadsHintPattern matches the value of the max-threads-hint field,
// keeping everything around the number untouched.
var threadsHintPattern = regexp.MustCompile(`("max-threads-hint"\s*:\s*)(\d+)`)

// ClampPercent clamps a core budget into [1,100]
func ClampPercent(pct int) int {
	if pct < 1 {
		return 1
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// SetThreadsHint rewrites the max-threads-hint value in the config file
// to the clamped percentage and returns the value written. Only the
// numeric value changes; every other byte is preserved. The substitution
// goes to a scratch file first and replaces the original only after the
// new value verifies there, so a failure can never leave the file
// partially written.
func SetThreadsHint(fs afero.Fs, path string, pct int) (int, error) {
	pct = ClampPercent(pct)

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			// an absent file is the field being absent: the caller
			// regenerates from the template either way
			return 0, ErrFieldNotFound
		}
		return 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if !threadsHintPattern.Match(data) {
		return 0, ErrFieldNotFound
	}

	patched := threadsHintPattern.ReplaceAll(data, []byte("${1}"+strconv.Itoa(pct)))

	scratch := path + ".patch"
	if err := afero.WriteFile(fs, scratch, patched, 0o644); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	// Confirm the new value is present in the scratch copy before the
	// original is replaced.
	check, err := afero.ReadFile(fs, scratch)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	m := threadsHintPattern.FindSubmatch(check)
	if m == nil || string(m[2]) != strconv.Itoa(pct) {
		_ = fs.Remove(scratch)
		return 0, fmt.Errorf("%w: scratch copy did not verify", ErrWriteFailed)
	}

	if err := fs.Rename(scratch, path); err != nil {
		_ = fs.Remove(scratch)
		return 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return pct, nil
}

// GetThreadsHint reads the current max-threads-hint value
func GetThreadsHint(fs afero.Fs, path string) (int, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0, fmt.Errorf("config: reading %s: %w", path, err)
	}
	m := threadsHintPattern.FindSubmatch(data)
	if m == nil {
		return 0, ErrFieldNotFound
	}
	return strconv.Atoi(string(m[2]))
}
