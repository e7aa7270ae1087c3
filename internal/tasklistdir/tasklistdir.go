// Package tasklistdir provides constants and utilities for the .tasklist directory structure.
package tasklistdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// Dir is the name of the tasklist state directory (inside the home directory).
	Dir = ".tasklist"

	// DataDir holds the store files (inside Dir).
	DataDir = "data"

	// LogDir holds the session logs (inside Dir).
	LogDir = "logs"

	// DefaultUserFile is the default user store file name (inside DataDir).
	DefaultUserFile = "users.csv"

	// DefaultTaskFile is the default task store file name (inside DataDir).
	DefaultTaskFile = "tasks.csv"

	// DefaultImportFile is the default bulk import source (inside DataDir).
	DefaultImportFile = "task_upload.csv"

	// DefaultConfigFile is the default config file name (inside Dir).
	DefaultConfigFile = "tasklist.toml"
)

// DataPath returns the data directory below base, a ~-relative path when
// base is "~".
func DataPath(base string) string {
	return joinPath(base, DataDir)
}

// LogPath returns the log directory below base.
func LogPath(base string) string {
	return joinPath(base, LogDir)
}

// ConfigPath returns the config file path below base.
func ConfigPath(base string) string {
	return joinPath(base, DefaultConfigFile)
}

// DirPath returns the full path to the .tasklist directory within base.
func DirPath(base string) string {
	if base == "." || base == "" {
		return Dir
	}
	return base + string(filepath.Separator) + Dir
}

// Ensure creates dir (and parents) if it does not exist and checks that it
// is a directory.
func Ensure(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func joinPath(base, name string) string {
	if base == "." || base == "" {
		return Dir + string(filepath.Separator) + name
	}
	return base + string(filepath.Separator) + Dir + string(filepath.Separator) + name
}
