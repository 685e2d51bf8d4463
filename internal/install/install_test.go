package install

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minerops/minerctl/internal/config"
	"github.com/minerops/minerctl/internal/execx"
	"github.com/minerops/minerctl/internal/paths"
	"github.com/minerops/minerctl/internal/platform"
)

func testLayout() paths.Layout {
	return paths.Layout{
		InstallDir:  "/home/u/.minerctl",
		MinerBinary: "/home/u/.minerctl/xmrig",
		ConfigFile:  "/home/u/.minerctl/config.json",
		LogFile:     "/home/u/.minerctl/miner.log",
	}
}

// tarballDownloader writes a canned tar.gz to the destination path
type tarballDownloader struct {
	fs      afero.Fs
	entries map[string]string
}

func (d *tarballDownloader) Download(_ context.Context, _ string, dest string) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, body := range d.entries {
		_ = tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o755,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		})
		_, _ = tw.Write([]byte(body))
	}
	_ = tw.Close()
	_ = gz.Close()
	return afero.WriteFile(d.fs, dest, buf.Bytes(), 0o644)
}

func TestDetectPkgManager(t *testing.T) {
	tests := []struct {
		name     string
		family   platform.Family
		binaries []string
		want     string
		wantErr  bool
	}{
		{name: "darwin brew", family: platform.FamilyDarwin, binaries: []string{"brew"}, want: "brew"},
		{name: "linux apt preferred", family: platform.FamilyLinux, binaries: []string{"pacman", "apt-get"}, want: "apt-get"},
		{name: "linux dnf", family: platform.FamilyLinux, binaries: []string{"dnf"}, want: "dnf"},
		{name: "none found", family: platform.FamilyLinux, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := execx.NewFake()
			for _, b := range tt.binaries {
				fake.WithBinary(b)
			}

			m, err := DetectPkgManager(platform.Facts{Family: tt.family}, fake)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoPackageManager)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Name())
		})
	}
}

func TestPkgManagerInstallCommands(t *testing.T) {
	t.Run("brew never uses sudo", func(t *testing.T) {
		fake := execx.NewFake().WithBinary("brew").On("brew install screen", "", nil)
		m, err := DetectPkgManager(platform.Facts{Family: platform.FamilyDarwin}, fake)
		require.NoError(t, err)

		require.NoError(t, m.Install(context.Background(), "screen"))
		assert.Equal(t, []string{"brew install screen"}, fake.CallLines())
	})

	t.Run("apt-get with sudo", func(t *testing.T) {
		fake := execx.NewFake().WithBinary("apt-get").
			On("sudo apt-get install -y screen", "", nil)
		m, err := DetectPkgManager(platform.Facts{Family: platform.FamilyLinux}, fake)
		require.NoError(t, err)
		m.WithSudo(true)

		require.NoError(t, m.Install(context.Background(), "screen"))
		assert.Equal(t, []string{"sudo apt-get install -y screen"}, fake.CallLines())
	})

	t.Run("pacman noconfirm", func(t *testing.T) {
		fake := execx.NewFake().WithBinary("pacman").
			On("pacman -S --noconfirm screen", "", nil)
		m, err := DetectPkgManager(platform.Facts{Family: platform.FamilyLinux}, fake)
		require.NoError(t, err)
		m.WithSudo(false)

		require.NoError(t, m.Install(context.Background(), "screen"))
	})
}

func TestInstallUnpacksBinaryAndWritesConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	dl := &tarballDownloader{fs: fs, entries: map[string]string{
		"xmrig-6.24.0/xmrig":       "ELF...",
		"xmrig-6.24.0/config.json": "{}",
	}}

	inst := NewInstaller(fs, dl, nil, testLayout(),
		platform.Facts{Family: platform.FamilyLinux, Arch: platform.ArchAMD64}, zerolog.Nop())

	require.NoError(t, inst.Install(context.Background(), "44wallet"))

	bin, err := afero.ReadFile(fs, "/home/u/.minerctl/xmrig")
	require.NoError(t, err)
	assert.Equal(t, "ELF...", string(bin))

	// archive cleaned up
	exists, _ := afero.Exists(fs, "/home/u/.minerctl/miner.tar.gz")
	assert.False(t, exists)

	// default config rendered with the wallet
	hint, err := config.GetThreadsHint(fs, "/home/u/.minerctl/config.json")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultThreadsHint, hint)

	cfg, err := afero.ReadFile(fs, "/home/u/.minerctl/config.json")
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "44wallet")
}

func TestInstallKeepsExistingConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	existing := `{"cpu": {"max-threads-hint": 42}}`
	require.NoError(t, afero.WriteFile(fs, "/home/u/.minerctl/config.json", []byte(existing), 0o644))

	dl := &tarballDownloader{fs: fs, entries: map[string]string{"xmrig": "bin"}}
	inst := NewInstaller(fs, dl, nil, testLayout(),
		platform.Facts{Family: platform.FamilyLinux}, zerolog.Nop())

	require.NoError(t, inst.Install(context.Background(), "w"))

	cfg, err := afero.ReadFile(fs, "/home/u/.minerctl/config.json")
	require.NoError(t, err)
	assert.Equal(t, existing, string(cfg))
}

func TestFetchBinaryMissingExecutable(t *testing.T) {
	fs := afero.NewMemMapFs()
	dl := &tarballDownloader{fs: fs, entries: map[string]string{"README.md": "docs"}}
	inst := NewInstaller(fs, dl, nil, testLayout(),
		platform.Facts{Family: platform.FamilyLinux}, zerolog.Nop())

	err := inst.FetchBinary(context.Background(), "https://example.org/miner.tar.gz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReleaseURL(t *testing.T) {
	tests := []struct {
		facts platform.Facts
		want  string
	}{
		{platform.Facts{Family: platform.FamilyLinux, Arch: platform.ArchAMD64}, "linux-static-x64"},
		{platform.Facts{Family: platform.FamilyLinux, Arch: platform.ArchARM64}, "linux-arm64"},
		{platform.Facts{Family: platform.FamilyDarwin, Arch: platform.ArchAMD64}, "macos-x64"},
		{platform.Facts{Family: platform.FamilyDarwin, Arch: platform.ArchARM64}, "macos-arm64"},
	}
	for _, tt := range tests {
		assert.Contains(t, ReleaseURL(tt.facts), tt.want)
	}
}

func TestRemoveFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/u/.minerctl/xmrig", []byte("bin"), 0o755))

	inst := NewInstaller(fs, nil, nil, testLayout(), platform.Facts{}, zerolog.Nop())
	require.NoError(t, inst.RemoveFiles())

	exists, _ := afero.Exists(fs, "/home/u/.minerctl/xmrig")
	assert.False(t, exists)
}
