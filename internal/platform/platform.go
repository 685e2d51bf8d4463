// Package platform probes the host once at startup and exposes the
// read-only facts every other component consumes: OS family, CPU
// architecture and core topology.
package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
)

// ErrUnsupportedPlatform indicates the host OS family or CPU architecture
// is outside the two recognized families / two recognized architectures.
// Nothing downstream may run after this is returned.
var ErrUnsupportedPlatform = errors.New("platform: unsupported OS or architecture")

// Family identifies the host OS family.
type Family int

const (
	// FamilyUnknown represents an unrecognized OS family
	FamilyUnknown Family = iota
	// FamilyDarwin represents macOS
	FamilyDarwin
	// FamilyLinux represents Linux
	FamilyLinux
)

// String returns the string representation of Family
func (f Family) String() string {
	switch f {
	case FamilyDarwin:
		return "macos"
	case FamilyLinux:
		return "linux"
	default:
		return "unknown"
	}
}

// Arch identifies the host CPU architecture.
type Arch int

const (
	// ArchUnknown represents an unrecognized architecture
	ArchUnknown Arch = iota
	// ArchAMD64 represents x86_64
	ArchAMD64
	// ArchARM64 represents aarch64
	ArchARM64
)

// String returns the string representation of Arch
func (a Arch) String() string {
	switch a {
	case ArchAMD64:
		return "x86_64"
	case ArchARM64:
		return "arm64"
	default:
		return "unknown"
	}
}

// Facts holds the immutable host facts computed once per invocation.
// Facts are never persisted.
type Facts struct {
	// Family is the OS family
	Family Family
	// Arch is the CPU architecture
	Arch Arch
	// LogicalCores is the number of logical CPUs
	LogicalCores int
	// PhysicalCores is the number of physical cores
	PhysicalCores int
}

// Detect probes the host and returns its Facts. It fails with
// ErrUnsupportedPlatform when the OS family or architecture is not
// recognized, before any core counting happens. No side effects.
func Detect(ctx context.Context) (Facts, error) {
	return detect(ctx, runtime.GOOS, runtime.GOARCH)
}

func detect(ctx context.Context, goos, goarch string) (Facts, error) {
	family, err := parseFamily(goos)
	if err != nil {
		return Facts{}, err
	}
	arch, err := parseArch(goarch)
	if err != nil {
		return Facts{}, err
	}

	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return Facts{}, fmt.Errorf("counting logical cores: %w", err)
	}
	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil || physical < 1 {
		// Some containers hide the physical topology. The logical count
		// is always a safe upper bound for the threads hint.
		physical = logical
	}

	return Facts{
		Family:        family,
		Arch:          arch,
		LogicalCores:  logical,
		PhysicalCores: physical,
	}, nil
}

func parseFamily(goos string) (Family, error) {
	switch goos {
	case "darwin":
		return FamilyDarwin, nil
	case "linux":
		return FamilyLinux, nil
	default:
		return FamilyUnknown, fmt.Errorf("%w: OS %q", ErrUnsupportedPlatform, goos)
	}
}

func parseArch(goarch string) (Arch, error) {
	switch goarch {
	case "amd64":
		return ArchAMD64, nil
	case "arm64":
		return ArchARM64, nil
	default:
		return ArchUnknown, fmt.Errorf("%w: architecture %q", ErrUnsupportedPlatform, goarch)
	}
}
