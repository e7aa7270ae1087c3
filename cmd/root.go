// Package cmd implements the CLI command structure for tasklist.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Dicantnik/tasklist/internal/config"
	"github.com/Dicantnik/tasklist/internal/export"
	"github.com/Dicantnik/tasklist/internal/logging"
	"github.com/Dicantnik/tasklist/internal/session"
	"github.com/Dicantnik/tasklist/internal/todo"
	"github.com/Dicantnik/tasklist/internal/ui"
	"github.com/Dicantnik/tasklist/internal/utils"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Standard streams, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the tasklist CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasklist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Determine the subcommand
	// If no args or first arg is a flag, use "shell" as default
	subcommand := "shell"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		if !strings.HasPrefix(remainingArgs[0], "-") {
			subcommand = remainingArgs[0]
			remainingArgs = remainingArgs[1:]
		}
	}

	switch subcommand {
	case "shell":
		return shellCommand(ctx, cfg, remainingArgs)
	case "ls":
		return lsCommand(ctx, cfg, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "export":
		return exportCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(cfg, remainingArgs)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// shellCommand runs the interactive session.
func shellCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist shell", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	a, err := openApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	sh := session.New(a.users, a.tasks,
		session.WithIO(stdin, stdout),
		session.WithLogger(a.logger),
		session.WithImportPath(cfg.ImportPath()),
	)
	return sh.Run(ctx)
}

// lsCommand lists a user's tasks, optionally filtered by status.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	statusFilter := fs.String("status", "", "Filter by status (comma-separated: in progress, completed)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if *statusFilter == "" && len(remaining) > 0 {
		// Allow "ls in progress" without quoting.
		*statusFilter = strings.Join(remaining, " ")
		remaining = nil
	}
	if len(remaining) > 0 {
		return fmt.Errorf("unexpected arguments: %v", remaining)
	}

	var statuses []todo.Status
	for _, s := range utils.SplitAndTrim(*statusFilter, ",") {
		status, err := todo.ParseStatus(s)
		if err != nil {
			return err
		}
		statuses = append(statuses, status)
	}

	a, err := openApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.login(ctx)
	if err != nil {
		return err
	}
	tasks, err := a.tasks.ListAll(u.ID)
	if err != nil {
		return err
	}

	if len(statuses) == 0 {
		statuses = []todo.Status{todo.StatusInProgress, todo.StatusCompleted}
	}
	for _, status := range statuses {
		printTasksByStatus(string(status), tasks, status)
	}
	return nil
}

// tuiCommand launches the terminal viewer for a user's tasks.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	interval := fs.Duration("refresh", 0, "Refresh interval (default 1s)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	a, err := openApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.login(ctx)
	if err != nil {
		return err
	}
	return ui.RunTUI(ctx, a.tasks, u.ID, u.Username, ui.WithRefreshInterval(*interval))
}

// exportCommand writes a user's tasks as JSON or YAML.
func exportCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	formatFlag := fs.String("format", string(export.FormatJSON), "Output format (json, yaml)")
	output := fs.String("o", "", "Write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		return err
	}

	a, err := openApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.login(ctx)
	if err != nil {
		return err
	}
	tasks, err := a.tasks.ListAll(u.ID)
	if err != nil {
		return err
	}
	doc := export.NewDocument(u.Username, u.ID, tasks, nowFunc())

	if *output == "" {
		return export.Write(stdout, format, doc)
	}
	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := export.Write(f, format, doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.logger.Info("tasks exported", "user_id", u.ID, "count", len(tasks), "file", *output)
	return nil
}

// tailCommand tails the latest session log.
func tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist tail", flag.ContinueOnError)
	fs.SetOutput(stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logPath, err := logging.FindLatestLog(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(stdout, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(stdout)

	err = logging.TailLog(ctx, stdout, logPath, *n, *follow)
	if *follow && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// configCommand prints the effective configuration and where each value
// came from.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("tasklist config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}

	if file := cws.GetConfigFile(); file != "" {
		fmt.Fprintf(stdout, "Config file: %s\n\n", file)
	} else {
		fmt.Fprintln(stdout, "Config file: (none)")
		fmt.Fprintln(stdout)
	}
	for _, field := range config.Fields() {
		source := cws.Sources[field]
		if source == "" {
			source = config.SourceDefault
		}
		fmt.Fprintf(stdout, "  %-20s %-40v (%s)\n", field, cws.Value(field), source)
	}
	return nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "tasklist version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasklist - A terminal todo list with per-user accounts")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasklist [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  shell         Interactive session (default command)")
	fmt.Fprintln(w, "  ls [status]   List a user's tasks")
	fmt.Fprintln(w, "  tui           Launch terminal UI")
	fmt.Fprintln(w, "  export        Export a user's tasks (json, yaml)")
	fmt.Fprintln(w, "  doctor        Check data files and directories")
	fmt.Fprintln(w, "  tail          Tail the latest session log")
	fmt.Fprintln(w, "  config        Show effective configuration")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Non-interactive commands (ls, tui, export) read the password from")
	fmt.Fprintln(w, "TASKLIST_PASSWORD or prompt for it.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -status string")
	fmt.Fprintln(w, "        Filter by status (in progress, completed)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export Options:")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        Output format (json, yaml) (default \"json\")")
	fmt.Fprintln(w, "  -o string")
	fmt.Fprintln(w, "        Write to file instead of stdout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config Options:")
	fmt.Fprintln(w, "  -example")
	fmt.Fprintln(w, "        Print an example config file")
}

// printTasksByStatus prints the tasks of one status under a heading.
func printTasksByStatus(label string, tasks []todo.Task, status todo.Status) {
	var matching []todo.Task
	for _, t := range tasks {
		if t.Status == status {
			matching = append(matching, t)
		}
	}
	fmt.Fprintf(stdout, "%s (%d):\n", label, len(matching))
	for _, t := range matching {
		printTask(t)
	}
	fmt.Fprintln(stdout)
}

func printTask(t todo.Task) {
	statusIcon := "📝"
	if t.Status == todo.StatusCompleted {
		statusIcon = "✅"
	}
	fmt.Fprintf(stdout, "  %s [%d] %s %s\n", statusIcon, t.ID, t.Date, t.Content)
}
