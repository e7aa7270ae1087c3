package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Dicantnik/tasklist/internal/config"
	"github.com/Dicantnik/tasklist/internal/logging"
	"github.com/Dicantnik/tasklist/internal/tasklistdir"
	"github.com/Dicantnik/tasklist/internal/todo"
	"github.com/Dicantnik/tasklist/internal/users"
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

// app holds the stores and logger shared by the store-backed commands.
type app struct {
	cfg        *config.Config
	logger     *log.Logger
	sessionLog *logging.SessionLog
	users      *users.Directory
	tasks      *todo.Repository
	in         *bufio.Reader
}

// openApp opens both stores. With sessionLog set, diagnostics go to a new
// file in the log directory; otherwise, or when that file cannot be
// created, they go to stderr.
func openApp(cfg *config.Config, sessionLog bool) (*app, error) {
	opts := logging.OptionsFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
	a := &app{
		cfg:    cfg,
		logger: logging.New(stderr, opts),
		in:     bufio.NewReader(stdin),
	}

	if sessionLog {
		runID := uuid.NewString()
		sl, err := logging.NewSessionLog(cfg.LogDir, runID)
		if err != nil {
			a.logger.Warn("session log disabled", "err", err)
		} else {
			a.sessionLog = sl
			// The session file always carries timestamps.
			fileOpts := opts
			fileOpts.ReportTimestamp = true
			a.logger = logging.New(sl.Writer(), fileOpts).With("run", logging.ShortID(runID))
		}
	}

	if err := tasklistdir.Ensure(cfg.DataDir); err != nil {
		a.Close()
		return nil, fmt.Errorf("data dir: %w", err)
	}

	hasher, err := users.NewHasher(cfg.PasswordHash)
	if err != nil {
		a.Close()
		return nil, err
	}
	dir, err := users.Open(cfg.UserPath(),
		users.WithHasher(hasher),
		users.WithMinPasswordLength(cfg.MinPasswordLength),
		users.WithLogger(a.logger),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	repo, err := todo.Open(cfg.TaskPath(), todo.WithLogger(a.logger))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.users = dir
	a.tasks = repo
	a.logger.Debug("stores opened", "users", cfg.UserPath(), "tasks", cfg.TaskPath())
	return a, nil
}

// Close releases the session log.
func (a *app) Close() error {
	return a.sessionLog.Close()
}

// login authenticates the user named by -user or TASKLIST_USER, prompting
// for whatever is missing.
func (a *app) login(ctx context.Context) (users.User, error) {
	username := a.cfg.Username
	if username == "" {
		var err error
		if username, err = a.ask(ctx, "Username: "); err != nil {
			return users.User{}, err
		}
	}
	password := a.cfg.Password
	if password == "" {
		var err error
		if password, err = a.ask(ctx, "Password: "); err != nil {
			return users.User{}, err
		}
	}
	return a.users.Authenticate(username, password)
}

func (a *app) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(stdout, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(prompt), ": "), err)
	}
	return strings.TrimSpace(line), nil
}
