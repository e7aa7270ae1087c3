package config

import (
	"path/filepath"

	"github.com/Dicantnik/tasklist/internal/tasklistdir"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceDotEnv   ConfigSource = ".env file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	userFile    string
	projectFile string
}

// Default values.
const (
	DefaultDataDir           = "~/" + tasklistdir.Dir + "/" + tasklistdir.DataDir
	DefaultUserFile          = tasklistdir.DefaultUserFile
	DefaultTaskFile          = tasklistdir.DefaultTaskFile
	DefaultImportFile        = tasklistdir.DefaultImportFile
	DefaultLogDir            = "~/" + tasklistdir.Dir + "/" + tasklistdir.LogDir
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultPasswordHash      = "plain"
	DefaultMinPasswordLength = 8
)

// Config holds the full configuration for tasklist.
type Config struct {
	// Store files. Relative file names are resolved inside DataDir.
	DataDir    string `toml:"data_dir"`
	UserFile   string `toml:"user_file"`
	TaskFile   string `toml:"task_file"`
	ImportFile string `toml:"import_file"`

	// Logging configuration
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Accounts
	PasswordHash      string `toml:"password_hash"`
	MinPasswordLength int    `toml:"min_password_length"`

	// Credentials for non-interactive commands (never read from config files)
	Username string `toml:"-"`
	Password string `toml:"-"`
}

// UserPath returns the resolved user store path.
func (c *Config) UserPath() string {
	return c.resolve(c.UserFile)
}

// TaskPath returns the resolved task store path.
func (c *Config) TaskPath() string {
	return c.resolve(c.TaskFile)
}

// ImportPath returns the resolved bulk import source path.
func (c *Config) ImportPath() string {
	return c.resolve(c.ImportFile)
}

func (c *Config) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}
