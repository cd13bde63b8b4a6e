package appdirs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheDirIsCreatedUnderXDGCacheHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir, err := CacheDir()
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

// TestConfigDirHonorsXDGConfigHomeOnlyWhenAbsolute covers spec testable
// scenario S7: an absolute XDG_CONFIG_HOME wins, a relative one is
// rejected and falls back to $HOME/.config, and an unset one also falls
// back (original_source/tests/fs/xdg.cpp "XDG user config dir").
func TestConfigDirHonorsXDGConfigHomeOnlyWhenAbsolute(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Setenv("XDG_CONFIG_HOME", "")
	dir, err := ConfigDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config"), dir)

	t.Setenv("XDG_CONFIG_HOME", "abc/def")
	dir, err = ConfigDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config"), dir, "a relative XDG_CONFIG_HOME must be rejected")

	abs := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", abs)
	dir, err = ConfigDir()
	require.NoError(t, err)
	require.Equal(t, abs, dir)
}

// TestSystemConfigDirsSplitsAndFiltersAbsolutePaths covers spec testable
// scenario S7's XDG_CONFIG_DIRS cases (original_source/tests/fs/xdg.cpp
// "XDG system config dirs").
func TestSystemConfigDirsSplitsAndFiltersAbsolutePaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_DIRS", "")
	require.Equal(t, []string{"/etc/xdg"}, SystemConfigDirs())

	t.Setenv("XDG_CONFIG_DIRS", "/etc/abc")
	require.Equal(t, []string{"/etc/abc"}, SystemConfigDirs())

	t.Setenv("XDG_CONFIG_DIRS", "/etc/abc:/def")
	require.Equal(t, []string{"/etc/abc", "/def"}, SystemConfigDirs())

	// Relative entries are dropped, not just reordered.
	t.Setenv("XDG_CONFIG_DIRS", "/etc/abc:de/f")
	require.Equal(t, []string{"/etc/abc"}, SystemConfigDirs())
}

func TestFindConfigItemPrefersUserDirOverSystemDirs(t *testing.T) {
	userDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", userDir)
	sysDir := t.TempDir()
	t.Setenv("XDG_CONFIG_DIRS", sysDir)

	require.NoError(t, os.WriteFile(filepath.Join(sysDir, "cradle.json"), []byte("{}"), 0o644))

	path, ok, err := FindConfigItem("cradle.json")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, filepath.Join(sysDir, "cradle.json"), path)

	require.NoError(t, os.WriteFile(filepath.Join(userDir, "cradle.json"), []byte("{}"), 0o644))
	path, ok, err = FindConfigItem("cradle.json")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, filepath.Join(userDir, "cradle.json"), path)
}

func TestFindConfigItemMissingEverywhereReportsNotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())

	_, ok, err := FindConfigItem("does-not-exist.json")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDefaultConfigFileFallsBackWhenNotFoundOnSearchPath(t *testing.T) {
	userDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", userDir)
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())

	path, err := DefaultConfigFile()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(userDir, "cradle.json"), path)
}
