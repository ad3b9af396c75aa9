// Package paths resolves where formstore keeps its configuration and data.
// Two directories matter: the config dir (config.yaml) and the data dir
// (live database, snapshots, files). Each follows a precedence chain with
// explicit flags at the top and a platform default at the bottom.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appDir is the per-application directory name under platform base dirs.
const appDir = "formstore"

// CWD-relative directory names used when no override is active.
const (
	DefaultConfigDirName = ".formstore"
	DefaultDataDirName   = ".formstore-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "FORMSTORE_CONFIG_DIR"
	EnvDataDir   = "FORMSTORE_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir resolves a Linux XDG base directory: the env variable when set,
// otherwise the conventional fallback path under the home directory.
func xdgDir(envVar string, fallback ...string) (string, error) {
	if base := os.Getenv(envVar); base != "" {
		return filepath.Join(base, appDir), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, appDir)...), nil
}

// userDir is the non-Linux default. os.UserConfigDir maps to
// ~/Library/Application Support on macOS and %APPDATA% on Windows; both
// platforms keep config and data in the same place.
func userDir() (string, error) {
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir), nil
}

// DefaultConfigDir returns the platform default configuration directory:
// $XDG_CONFIG_HOME/formstore (fallback ~/.config/formstore) on Linux, the
// user config dir elsewhere.
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	return userDir()
}

// DefaultDataDir returns the platform default data directory:
// $XDG_DATA_HOME/formstore (fallback ~/.local/share/formstore) on Linux,
// the user config dir elsewhere.
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", ".local", "share")
	}
	return userDir()
}

// ResolveConfigDir picks the configuration directory from, in order: the
// flag value, FORMSTORE_CONFIG_DIR, the platform default. Explicit overrides
// are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstNonEmpty(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the data directory from, in order: the flag value,
// the config.yaml value, FORMSTORE_DATA_DIR, and finally a CWD-relative
// .formstore-db so a portal checkout carries its local state with it.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir := firstNonEmpty(flag, configValue, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
