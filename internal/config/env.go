package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// dotEnvFile is read from the working directory.
const dotEnvFile = ".env"

// loadDotEnv exports the variables of path that are not set yet and returns
// their names. A missing file is not an error.
func loadDotEnv(path string) (map[string]bool, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	keys := make(map[string]bool)
	for k, v := range values {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return nil, err
		}
		keys[k] = true
	}
	return keys, nil
}

// loadFromEnv overrides config from TASKLIST_* environment variables.
// Variables exported from the .env file are tracked as SourceDotEnv.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource, dotenvKeys map[string]bool) {
	lookup := func(key string) (string, ConfigSource, bool) {
		v := os.Getenv(key)
		if v == "" {
			return "", "", false
		}
		if dotenvKeys[key] {
			return v, SourceDotEnv, true
		}
		return v, SourceEnv, true
	}

	str := func(key, field string, target *string) {
		if v, src, ok := lookup(key); ok {
			setSource(target, v, sources, field, src)
		}
	}
	boolean := func(key, field string, target *bool) {
		if v, src, ok := lookup(key); ok {
			setSource(target, boolFromString(v), sources, field, src)
		}
	}

	str("TASKLIST_DATA_DIR", "data_dir", &cfg.DataDir)
	str("TASKLIST_USER_FILE", "user_file", &cfg.UserFile)
	str("TASKLIST_TASK_FILE", "task_file", &cfg.TaskFile)
	str("TASKLIST_IMPORT_FILE", "import_file", &cfg.ImportFile)

	// Logging configuration
	str("TASKLIST_LOG_DIR", "log_dir", &cfg.LogDir)
	str("TASKLIST_LOG_LEVEL", "log_level", &cfg.LogLevel)
	str("TASKLIST_LOG_FORMAT", "log_format", &cfg.LogFormat)
	boolean("TASKLIST_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	boolean("TASKLIST_LOG_CALLER", "log_caller", &cfg.LogCaller)

	str("TASKLIST_PASSWORD_HASH", "password_hash", &cfg.PasswordHash)
	if v, src, ok := lookup("TASKLIST_MIN_PASSWORD_LENGTH"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			setSource(&cfg.MinPasswordLength, n, sources, "min_password_length", src)
		}
	}

	// Credentials are not tracked.
	if v := os.Getenv("TASKLIST_USER"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("TASKLIST_PASSWORD"); v != "" {
		cfg.Password = v
	}
}
