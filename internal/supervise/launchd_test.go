package supervise

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minerops/minerctl/internal/execx"
	"github.com/minerops/minerctl/internal/paths"
)

func TestLaunchdMaterializeWritesPlist(t *testing.T) {
	dir := t.TempDir()
	layout := testLayout()
	layout.PlistPath = filepath.Join(dir, "LaunchAgents", "com.minerops.minerctl.plist")

	d := NewLaunchdDriver(execx.NewFake(), layout)
	require.NoError(t, d.Materialize(context.Background()))

	content, err := os.ReadFile(layout.PlistPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<string>"+paths.LaunchdLabel+"</string>")
	assert.Contains(t, string(content), "<string>/home/u/.minerctl/xmrig</string>")
	assert.Contains(t, string(content), "<key>KeepAlive</key>")
	assert.Contains(t, string(content), "<string>/home/u/.minerctl/miner.log</string>")
}

func TestLaunchdMaterializeIdempotent(t *testing.T) {
	dir := t.TempDir()
	layout := testLayout()
	layout.PlistPath = filepath.Join(dir, "agent.plist")

	d := NewLaunchdDriver(execx.NewFake(), layout)
	require.NoError(t, d.Materialize(context.Background()))
	first, err := os.ReadFile(layout.PlistPath)
	require.NoError(t, err)

	require.NoError(t, d.Materialize(context.Background()))
	second, err := os.ReadFile(layout.PlistPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLaunchdActivateDeactivate(t *testing.T) {
	layout := testLayout()
	fake := execx.NewFake().
		On("launchctl load -w "+layout.PlistPath, "", nil).
		On("launchctl unload -w "+layout.PlistPath, "", nil)

	d := NewLaunchdDriver(fake, layout)
	require.NoError(t, d.Activate(context.Background()))
	require.NoError(t, d.Deactivate(context.Background()))

	assert.Equal(t, []string{
		"launchctl load -w " + layout.PlistPath,
		"launchctl unload -w " + layout.PlistPath,
	}, fake.CallLines())
}

func TestLaunchdIsActive(t *testing.T) {
	ctx := context.Background()

	t.Run("label loaded", func(t *testing.T) {
		fake := execx.NewFake().On("launchctl list "+paths.LaunchdLabel, `{"PID" = 4242;}`, nil)
		d := NewLaunchdDriver(fake, testLayout())

		active, err := d.IsActive(ctx)
		require.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("label not loaded", func(t *testing.T) {
		fake := execx.NewFake().
			On("launchctl list "+paths.LaunchdLabel, "", &execx.ExitError{Code: 113})
		d := NewLaunchdDriver(fake, testLayout())

		active, err := d.IsActive(ctx)
		require.NoError(t, err)
		assert.False(t, active)
	})
}

func TestLaunchdRestartKickstarts(t *testing.T) {
	fake := execx.NewFake().
		On("launchctl kickstart -k gui/501/"+paths.LaunchdLabel, "", nil)

	d := NewLaunchdDriver(fake, testLayout())
	d.uid = 501

	require.NoError(t, d.Restart(context.Background()))
	assert.Equal(t, []string{"launchctl kickstart -k gui/501/" + paths.LaunchdLabel}, fake.CallLines())
}

func TestLaunchdRemove(t *testing.T) {
	dir := t.TempDir()
	layout := testLayout()
	layout.PlistPath = filepath.Join(dir, "agent.plist")
	require.NoError(t, os.WriteFile(layout.PlistPath, []byte("x"), 0o644))

	d := NewLaunchdDriver(execx.NewFake(), layout)
	require.NoError(t, d.Remove(context.Background()))
	assert.NoFileExists(t, layout.PlistPath)

	// removing again is not an error
	require.NoError(t, d.Remove(context.Background()))
}
