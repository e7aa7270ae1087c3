package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasklist configuration file
# Values can be overridden by TASKLIST_* environment variables or CLI flags

# Directory holding the store files (supports ~ expansion and %VAR% on Windows)
data_dir = "~/.tasklist/data"

# Store file names, resolved inside data_dir unless absolute
user_file = "users.csv"
task_file = "tasks.csv"

# Source read by "Load from file" in the shell
import_file = "task_upload.csv"

# Session log directory
log_dir = "~/.tasklist/logs"

# Logging: debug, info, warn, error
log_level = "info"
# text, json or logfmt
log_format = "text"
log_timestamps = false
log_caller = false

# How passwords of new accounts are stored: plain or bcrypt.
# Logins check whichever form was stored.
password_hash = "plain"

# Minimum password length for registration
min_password_length = 8
`
}
