package config

import (
	"os"
	"path/filepath"
)

// AppDirName is the per-user directory everything lives under,
// e.g. ~/.config/LEDMatrixLib on Linux.
const AppDirName = "LEDMatrixLib"

// AppDir returns the OS-dependent application config directory.
func AppDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppDirName)
}

// DefaultPath returns the OS-dependent path of the main config file.
func DefaultPath() string {
	return filepath.Join(AppDir(), "config.json")
}

// DefaultPatternsDir returns the default directory for Lua pattern scripts.
func DefaultPatternsDir() string {
	return filepath.Join(AppDir(), "patterns")
}

// DefaultPresetsDir returns the default directory for JSON animation presets.
func DefaultPresetsDir() string {
	return filepath.Join(AppDir(), "presets")
}

// DefaultSchedulesFile returns the default path of the schedules store.
func DefaultSchedulesFile() string {
	return filepath.Join(AppDir(), "schedules.json")
}

// EnsureAppDir creates the application directory if it does not exist yet.
func EnsureAppDir() error {
	return os.MkdirAll(AppDir(), 0755)
}
