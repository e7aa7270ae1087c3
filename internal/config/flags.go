package config

import (
	"flag"
)

// parseFlags defines the global flags on fs, parses args and applies the
// flags that were set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasklist", flag.ContinueOnError)
	}

	// Parse into copies so that unset flags never clobber file or env values.
	v := *cfg

	// Paths
	fs.StringVar(&v.DataDir, "data-dir", cfg.DataDir, "Directory holding the store files")
	fs.StringVar(&v.UserFile, "user-file", cfg.UserFile, "User store file (relative to data dir)")
	fs.StringVar(&v.TaskFile, "task-file", cfg.TaskFile, "Task store file (relative to data dir)")
	fs.StringVar(&v.ImportFile, "import-file", cfg.ImportFile, "Bulk import source (relative to data dir)")

	// Logging
	fs.StringVar(&v.LogDir, "log-dir", cfg.LogDir, "Session log directory")
	fs.StringVar(&v.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&v.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&v.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&v.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	// Accounts
	fs.StringVar(&v.PasswordHash, "password-hash", cfg.PasswordHash, "Password storage for new accounts (plain, bcrypt)")
	fs.IntVar(&v.MinPasswordLength, "min-password-length", cfg.MinPasswordLength, "Minimum password length")
	fs.StringVar(&v.Username, "user", cfg.Username, "Username for non-interactive commands")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Map flag names to source field names
	flagToSource := map[string]string{
		"data-dir":            "data_dir",
		"user-file":           "user_file",
		"task-file":           "task_file",
		"import-file":         "import_file",
		"log-dir":             "log_dir",
		"log-level":           "log_level",
		"log-format":          "log_format",
		"log-timestamps":      "log_timestamps",
		"log-caller":          "log_caller",
		"password-hash":       "password_hash",
		"min-password-length": "min_password_length",
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-dir":
			cfg.DataDir = v.DataDir
		case "user-file":
			cfg.UserFile = v.UserFile
		case "task-file":
			cfg.TaskFile = v.TaskFile
		case "import-file":
			cfg.ImportFile = v.ImportFile
		case "log-dir":
			cfg.LogDir = v.LogDir
		case "log-level":
			cfg.LogLevel = v.LogLevel
		case "log-format":
			cfg.LogFormat = v.LogFormat
		case "log-timestamps":
			cfg.LogTimestamps = v.LogTimestamps
		case "log-caller":
			cfg.LogCaller = v.LogCaller
		case "password-hash":
			cfg.PasswordHash = v.PasswordHash
		case "min-password-length":
			cfg.MinPasswordLength = v.MinPasswordLength
		case "user":
			cfg.Username = v.Username
		}
		if field, ok := flagToSource[f.Name]; ok && sources != nil {
			sources[field] = SourceFlag
		}
	})

	return nil
}
