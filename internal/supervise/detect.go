package supervise

import (
	"context"

	"github.com/minerops/minerctl/internal/execx"
	"github.com/minerops/minerctl/internal/paths"
	"github.com/minerops/minerctl/internal/platform"
)

// Detector re-derives which backend currently governs the miner by
// probing the host for live evidence. No backend choice is ever stored;
// a stale record cannot survive an out-of-band change because there is
// no record.
type Detector struct {
	// drivers in detection priority order
	drivers []Driver
}

// NewDetector builds a Detector for the platform. The screen session
// check runs first: a host can carry stale artifacts for more than one
// backend (a leftover unit after a run was converted to screen mode),
// and the live session must win over those.
func NewDetector(facts platform.Facts, run execx.Runner, layout paths.Layout) *Detector {
	drivers := []Driver{NewScreenDriver(run, layout)}
	switch facts.Family {
	case platform.FamilyDarwin:
		drivers = append(drivers, NewLaunchdDriver(run, layout))
	case platform.FamilyLinux:
		drivers = append(drivers, NewSystemdDriver(run, layout))
	}
	return &Detector{drivers: drivers}
}

// newDetectorWithDrivers is the injection point for tests
func newDetectorWithDrivers(drivers ...Driver) *Detector {
	return &Detector{drivers: drivers}
}

// Current returns the first driver showing live evidence, or found=false
// when none does. A facility that is not installed cannot be governing
// the miner, so unavailable drivers are never probed. Probe errors on
// one backend do not mask evidence from a later one; the first probe
// error is reported only when nothing is found at all.
func (det *Detector) Current(ctx context.Context) (Driver, bool, error) {
	var firstErr error
	for _, d := range det.drivers {
		if !d.Available(ctx) {
			continue
		}
		active, err := d.IsActive(ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if active {
			return d, true, nil
		}
	}
	return nil, false, firstErr
}

// Drivers returns the detection-ordered driver set
func (det *Detector) Drivers() []Driver {
	return det.drivers
}
