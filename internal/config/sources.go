package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/Dicantnik/tasklist/internal/tasklistdir"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{tasklistdir.DefaultConfigFile, "." + tasklistdir.DefaultConfigFile}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.tasklist/tasklist.toml first, then falls back to OS-specific
// config directories if ~/.tasklist doesn't exist.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := tasklistdir.ConfigPath(home)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, "tasklist", tasklistdir.DefaultConfigFile)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataDir = DefaultDataDir
	cfg.UserFile = DefaultUserFile
	cfg.TaskFile = DefaultTaskFile
	cfg.ImportFile = DefaultImportFile
	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.PasswordHash = DefaultPasswordHash
	cfg.MinPasswordLength = DefaultMinPasswordLength
}

// GetConfigFile returns the active config file path (project or user).
func (cws *ConfigWithSources) GetConfigFile() string {
	if cws.projectFile != "" {
		return cws.projectFile
	}
	return cws.userFile
}

// Value returns the effective value of a tracked field, formatted for display.
func (cws *ConfigWithSources) Value(field string) any {
	c := cws.Config
	switch field {
	case "data_dir":
		return c.DataDir
	case "user_file":
		return c.UserPath()
	case "task_file":
		return c.TaskPath()
	case "import_file":
		return c.ImportPath()
	case "log_dir":
		return c.LogDir
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return c.LogTimestamps
	case "log_caller":
		return c.LogCaller
	case "password_hash":
		return c.PasswordHash
	case "min_password_length":
		return c.MinPasswordLength
	}
	return nil
}

// Fields returns the tracked field names in display order.
func Fields() []string {
	return configFields()
}
