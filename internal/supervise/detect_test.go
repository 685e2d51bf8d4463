package supervise

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minerops/minerctl/internal/execx"
	"github.com/minerops/minerctl/internal/platform"
)

func TestDetectorPriorityScreenWins(t *testing.T) {
	// Stale unit artifacts and a live session can coexist; the session
	// check must win so status never reports the wrong backend.
	fake := execx.NewFake().
		WithBinary("screen").
		WithBinary("systemctl").
		On("screen -ls", screenLsActive, nil).
		On("systemctl is-active minerctl.service", "active\n", nil)

	det := NewDetector(platform.Facts{Family: platform.FamilyLinux}, fake, testLayout())

	d, found, err := det.Current(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, BackendScreen, d.Backend())
}

func TestDetectorFallsThroughToNative(t *testing.T) {
	fake := execx.NewFake().
		WithBinary("screen").
		WithBinary("systemctl").
		On("screen -ls", screenLsEmpty, &execx.ExitError{Code: 1}).
		On("systemctl is-active minerctl.service", "active\n", nil)

	det := NewDetector(platform.Facts{Family: platform.FamilyLinux}, fake, testLayout())

	d, found, err := det.Current(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, BackendSystemd, d.Backend())
}

func TestDetectorNoneFound(t *testing.T) {
	fake := execx.NewFake().
		WithBinary("screen").
		WithBinary("systemctl").
		On("screen -ls", screenLsEmpty, &execx.ExitError{Code: 1}).
		On("systemctl is-active minerctl.service", "inactive\n", &execx.ExitError{Code: 3})

	det := NewDetector(platform.Facts{Family: platform.FamilyLinux}, fake, testLayout())

	_, found, err := det.Current(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDetectorIdempotent(t *testing.T) {
	fake := execx.NewFake().
		WithBinary("screen").
		WithBinary("systemctl").
		On("screen -ls", screenLsEmpty, &execx.ExitError{Code: 1}).
		On("systemctl is-active minerctl.service", "active\n", nil)

	det := NewDetector(platform.Facts{Family: platform.FamilyLinux}, fake, testLayout())

	d1, found1, err := det.Current(context.Background())
	require.NoError(t, err)
	d2, found2, err := det.Current(context.Background())
	require.NoError(t, err)

	assert.Equal(t, found1, found2)
	assert.Equal(t, d1.Backend(), d2.Backend())
}

func TestDetectorProbeErrorDoesNotMaskEvidence(t *testing.T) {
	probeErr := errors.New("screen exploded")
	screen := &stubDriver{backend: BackendScreen, available: true, activeErr: probeErr}
	systemd := &stubDriver{backend: BackendSystemd, available: true, active: true}

	det := newDetectorWithDrivers(screen, systemd)

	d, found, err := det.Current(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, BackendSystemd, d.Backend())
}

func TestDetectorReportsErrorWhenNothingFound(t *testing.T) {
	probeErr := errors.New("screen exploded")
	screen := &stubDriver{backend: BackendScreen, available: true, activeErr: probeErr}
	systemd := &stubDriver{backend: BackendSystemd, available: true}

	det := newDetectorWithDrivers(screen, systemd)

	_, found, err := det.Current(context.Background())
	assert.False(t, found)
	require.ErrorIs(t, err, probeErr)
}

func TestDetectorSkipsUnavailableFacility(t *testing.T) {
	// a facility that is not installed cannot be governing the miner,
	// so its probe must never run (it would fail with exec errors)
	fake := execx.NewFake().
		WithBinary("systemctl").
		On("systemctl is-active minerctl.service", "inactive\n", &execx.ExitError{Code: 3})

	det := NewDetector(platform.Facts{Family: platform.FamilyLinux}, fake, testLayout())

	_, found, err := det.Current(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.NotContains(t, fake.CallLines(), "screen -ls")
}

func TestDetectorPerPlatformDrivers(t *testing.T) {
	fake := execx.NewFake()

	linux := NewDetector(platform.Facts{Family: platform.FamilyLinux}, fake, testLayout())
	require.Len(t, linux.Drivers(), 2)
	assert.Equal(t, BackendScreen, linux.Drivers()[0].Backend())
	assert.Equal(t, BackendSystemd, linux.Drivers()[1].Backend())

	darwin := NewDetector(platform.Facts{Family: platform.FamilyDarwin}, fake, testLayout())
	require.Len(t, darwin.Drivers(), 2)
	assert.Equal(t, BackendScreen, darwin.Drivers()[0].Backend())
	assert.Equal(t, BackendLaunchd, darwin.Drivers()[1].Backend())
}
