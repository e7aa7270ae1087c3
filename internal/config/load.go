package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.tasklist/tasklist.toml or OS-specific config dir)
// 3. Project config file (tasklist.toml or .tasklist.toml in current directory)
// 4. .env file in the current directory (never overrides set variables)
// 5. Environment variables
// 6. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	cfg := &Config{}

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	userConfigFile := findUserConfigFile()
	if userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	projectConfigFile := findProjectConfigFile()
	if projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Export .env values that are not already set
	dotenvKeys, err := loadDotEnv(dotEnvFile)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dotEnvFile, err)
	}

	// 5. Override from environment
	loadFromEnv(cfg, sources, dotenvKeys)

	// 6. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 7. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{
		Config:      cfg,
		Sources:     sources,
		userFile:    userConfigFile,
		projectFile: projectConfigFile,
	}, nil
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"data_dir",
		"user_file",
		"task_file",
		"import_file",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"password_hash",
		"min_password_length",
	}
}

// loadConfigFile decodes a TOML file over cfg and marks every key present in
// the file as coming from source.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if sources == nil {
		return nil
	}
	for _, field := range configFields() {
		if md.IsDefined(field) {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig expands paths and checks values that have a fixed set of
// choices.
func finalizeConfig(cfg *Config) error {
	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.LogDir = expandPath(cfg.LogDir)
	cfg.UserFile = expandPath(cfg.UserFile)
	cfg.TaskFile = expandPath(cfg.TaskFile)
	cfg.ImportFile = expandPath(cfg.ImportFile)

	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	for name, v := range map[string]string{"user_file": cfg.UserFile, "task_file": cfg.TaskFile, "import_file": cfg.ImportFile} {
		if v == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}

	cfg.PasswordHash = strings.ToLower(strings.TrimSpace(cfg.PasswordHash))
	switch cfg.PasswordHash {
	case "plain", "bcrypt":
	default:
		return fmt.Errorf("invalid password_hash %q (expected plain|bcrypt)", cfg.PasswordHash)
	}
	if cfg.MinPasswordLength < 1 {
		return fmt.Errorf("min_password_length must be at least 1, got %d", cfg.MinPasswordLength)
	}
	return nil
}

// setSource assigns value to field and records where it came from.
func setSource[T any](field *T, value T, sources map[string]ConfigSource, name string, source ConfigSource) {
	*field = value
	if sources != nil {
		sources[name] = source
	}
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
