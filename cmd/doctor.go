package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/Dicantnik/tasklist/internal/config"
	"github.com/Dicantnik/tasklist/internal/logging"
	"github.com/Dicantnik/tasklist/internal/store"
	"github.com/Dicantnik/tasklist/internal/todo"
	"github.com/Dicantnik/tasklist/internal/users"
)

// doctorCommand checks directories, store files and task rows. It never
// creates or modifies store files.
func doctorCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	fmt.Fprintln(stdout, "Tasklist Doctor")
	fmt.Fprintln(stdout, "===============")
	fmt.Fprintln(stdout)

	allOK := true

	fmt.Fprintln(stdout, "Config:")
	fmt.Fprintf(stdout, "  ✅ Password hash: %s\n", cfg.PasswordHash)
	fmt.Fprintf(stdout, "  ✅ Min password length: %d\n", cfg.MinPasswordLength)
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "Data directory: %s\n", cfg.DataDir)
	if !checkDir(cfg.DataDir, "created on first use") {
		allOK = false
	}
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "User file: %s\n", cfg.UserPath())
	if !checkUserStore(cfg.UserPath(), *verbose) {
		allOK = false
	}
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "Task file: %s\n", cfg.TaskPath())
	if !checkTaskStore(cfg.TaskPath(), *verbose) {
		allOK = false
	}
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "Import file: %s\n", cfg.ImportPath())
	if info, err := os.Stat(cfg.ImportPath()); err != nil {
		fmt.Fprintln(stdout, "  ⚠️  Not found (Load Tasks from File will report it)")
	} else if info.IsDir() {
		fmt.Fprintln(stdout, "  ❌ Error: path is a directory")
		allOK = false
	} else {
		fmt.Fprintln(stdout, "  ✅ OK")
	}
	fmt.Fprintln(stdout)

	fmt.Fprintf(stdout, "Log directory: %s\n", cfg.LogDir)
	if !checkDir(cfg.LogDir, "created on first session") {
		allOK = false
	} else if sessions, err := logging.ListSessions(cfg.LogDir); err != nil {
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		allOK = false
	} else if len(sessions) > 0 {
		fmt.Fprintf(stdout, "  Sessions: %d (latest %s)\n", len(sessions), sessions[0].Name)
	}
	fmt.Fprintln(stdout)

	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed. Tasklist may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkDir reports a directory. A missing one is only a warning.
func checkDir(dir, missingNote string) bool {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		fmt.Fprintf(stdout, "  ⚠️  Not found (%s)\n", missingNote)
		return true
	case err != nil:
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		return false
	case !info.IsDir():
		fmt.Fprintln(stdout, "  ❌ Error: path is not a directory")
		return false
	}
	fmt.Fprintln(stdout, "  ✅ OK")
	return true
}

// storeExists reports a store file that is about to be read. ok is false
// only for a real problem.
func storeExists(path string) (exists, ok bool) {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		fmt.Fprintln(stdout, "  ⚠️  Not found (created on first use)")
		return false, true
	case err != nil:
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		return false, false
	case info.IsDir():
		fmt.Fprintln(stdout, "  ❌ Error: path is a directory")
		return false, false
	}
	return true, true
}

func checkUserStore(path string, verbose bool) bool {
	exists, ok := storeExists(path)
	if !exists {
		return ok
	}

	var malformed []todo.RowIssue
	file, err := store.Open[users.User](path, users.Codec{}, store.WithSkipFunc(func(_ string, line int, text string, err error) {
		malformed = append(malformed, todo.RowIssue{Line: line, Text: text, Err: err})
	}))
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		return false
	}
	all, err := file.ReadAll()
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Load error: %v\n", err)
		return false
	}

	ok = true
	seen := make(map[string]bool)
	for _, u := range all {
		if seen[u.Username] {
			fmt.Fprintf(stdout, "  ⚠️  Duplicate username %q (only the first account can log in with a given password)\n", u.Username)
		}
		seen[u.Username] = true
	}
	for _, issue := range malformed {
		fmt.Fprintf(stdout, "  ❌ Malformed %s\n", issue)
		ok = false
	}
	if ok {
		fmt.Fprintln(stdout, "  ✅ OK")
	}
	if verbose {
		fmt.Fprintf(stdout, "  Users: %d\n", len(all))
	}
	return ok
}

func checkTaskStore(path string, verbose bool) bool {
	exists, ok := storeExists(path)
	if !exists {
		return ok
	}

	report, err := todo.ValidateStore(path)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Load error: %v\n", err)
		return false
	}
	if report.Valid() {
		fmt.Fprintln(stdout, "  ✅ Valid")
	} else {
		fmt.Fprintln(stdout, "  ❌ Validation failed:")
		for _, issue := range report.Malformed {
			fmt.Fprintf(stdout, "     - malformed %s\n", issue)
		}
		for _, e := range report.Invalid {
			fmt.Fprintf(stdout, "     - %v\n", e)
		}
		for _, id := range report.DuplicateIDs {
			fmt.Fprintf(stdout, "     - duplicate task id %d\n", id)
		}
	}
	if verbose {
		fmt.Fprintf(stdout, "  Tasks: %d\n", report.Tasks)
	}
	return report.Valid()
}
