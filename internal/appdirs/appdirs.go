// Package appdirs resolves the per-user cache and config directories
// the engine uses for its on-disk footprint (spec §6), following the
// exact XDG Base Directory algorithm of the original implementation
// (original_source/src/cradle/fs/xdg.cpp get_user_config_dir /
// get_system_config_dirs / find_config_item): XDG_CONFIG_HOME wins only
// if it holds an absolute path, otherwise $HOME/.config; XDG_CONFIG_DIRS
// is split on ':' and filtered down to its absolute entries, defaulting
// to /etc/xdg when unset or empty; a config item is searched for in the
// user dir first, then each system dir in order.
package appdirs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/urlofmar/cradle-sub001/internal/cerr"
)

const appName = "cradle"
const configFileName = "cradle.json"

// ConfigDir returns the user config directory per the XDG algorithm:
// XDG_CONFIG_HOME if it is set to an absolute path, else $HOME/.config
// (spec testable scenario S7's "XDG_CONFIG_HOME=abc/def (relative), fall
// back to /home/.config" and "XDG_CONFIG_HOME unset" cases). The home
// directory comes from os.UserHomeDir; if that fails (on Unix, when HOME
// is unset or empty) ConfigDir returns an error.
func ConfigDir() (string, error) {
	if v, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && v != "" && filepath.IsAbs(v) {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", cerr.Wrap(cerr.DirectoryCreation, err, "resolving user home directory for XDG_CONFIG_HOME fallback")
	}
	return filepath.Join(home, ".config"), nil
}

// SystemConfigDirs returns the XDG system config search path:
// XDG_CONFIG_DIRS split on ':', keeping only absolute entries, or
// ["/etc/xdg"] if the variable is unset or empty (spec testable scenario
// S7's "XDG_CONFIG_DIRS=/etc/abc:de/f, system dirs = [/etc/abc]").
func SystemConfigDirs() []string {
	raw, ok := os.LookupEnv("XDG_CONFIG_DIRS")
	if !ok || raw == "" {
		return []string{"/etc/xdg"}
	}
	var dirs []string
	for _, d := range strings.Split(raw, ":") {
		if filepath.IsAbs(d) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// FindConfigItem scans the user config dir, then each system config dir
// in XDG precedence order, and returns the first path at which relPath
// exists (original_source's find_config_item). ok is false if relPath
// exists nowhere on the search path.
func FindConfigItem(relPath string) (path string, ok bool, err error) {
	userDir, err := ConfigDir()
	if err != nil {
		return "", false, err
	}
	if candidate := filepath.Join(userDir, relPath); fileExists(candidate) {
		return candidate, true, nil
	}
	for _, dir := range SystemConfigDirs() {
		if candidate := filepath.Join(dir, relPath); fileExists(candidate) {
			return candidate, true, nil
		}
	}
	return "", false, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DefaultConfigFile returns the conventional config file path via
// FindConfigItem's XDG search order, falling back to <ConfigDir>/cradle.json
// (not yet existing) when the file isn't found anywhere on the path.
func DefaultConfigFile() (string, error) {
	if path, ok, err := FindConfigItem(configFileName); err != nil {
		return "", err
	} else if ok {
		return path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// CacheDir returns the directory the disk-cache proxy and any local
// blob spill files should use, creating it if absent. The XDG spec
// defines no dedicated cache-directory algorithm the way it does for
// config (original_source/src/cradle/fs/xdg.cpp has no cache-dir
// counterpart to get_user_config_dir), so this stays on
// os.UserCacheDir's per-platform convention.
func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", cerr.Wrap(cerr.DirectoryCreation, err, "resolving user cache directory")
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", cerr.Wrap(cerr.DirectoryCreation, err, "creating cache directory").With("dir", dir)
	}
	return dir, nil
}
