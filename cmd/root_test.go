// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Dicantnik/tasklist/internal/export"
	"github.com/Dicantnik/tasklist/internal/logging"
	"github.com/Dicantnik/tasklist/internal/todo"
	"github.com/Dicantnik/tasklist/internal/users"
)

// cli isolates config lookup in a temp home and captures the standard
// streams.
type cli struct {
	home    string
	dataDir string
	logDir  string
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, key := range []string{
		"TASKLIST_DATA_DIR", "TASKLIST_USER_FILE", "TASKLIST_TASK_FILE", "TASKLIST_IMPORT_FILE",
		"TASKLIST_LOG_DIR", "TASKLIST_LOG_LEVEL", "TASKLIST_LOG_FORMAT", "TASKLIST_LOG_TIMESTAMPS",
		"TASKLIST_LOG_CALLER", "TASKLIST_PASSWORD_HASH", "TASKLIST_MIN_PASSWORD_LENGTH",
		"TASKLIST_USER", "TASKLIST_PASSWORD",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(home)

	c := &cli{
		home:    home,
		dataDir: filepath.Join(home, ".tasklist", "data"),
		logDir:  filepath.Join(home, ".tasklist", "logs"),
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
	}
	oldIn, oldOut, oldErr := stdin, stdout, stderr
	stdin, stdout, stderr = strings.NewReader(""), c.out, c.errOut
	t.Cleanup(func() {
		stdin, stdout, stderr = oldIn, oldOut, oldErr
	})
	return c
}

func (c *cli) run(t *testing.T, input string, args ...string) error {
	t.Helper()
	stdin = strings.NewReader(input)
	c.out.Reset()
	c.errOut.Reset()
	return Run(context.Background(), args)
}

// seed registers alice and gives her one open and one completed task.
func (c *cli) seed(t *testing.T) users.User {
	t.Helper()
	dir, err := users.Open(filepath.Join(c.dataDir, "users.csv"))
	if err != nil {
		t.Fatal(err)
	}
	u, err := dir.Register("alice", "secret123", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	repo, err := todo.Open(filepath.Join(c.dataDir, "tasks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(u.ID, "2024-12-06", "buy milk"); err != nil {
		t.Fatal(err)
	}
	done, err := repo.Create(u.ID, "2024-12-07", "walk dog")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkCompleted(u.ID, done.ID); err != nil {
		t.Fatal(err)
	}
	return u
}

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{name: "help flag", args: []string{"--help"}, want: "Commands:"},
		{name: "short help flag", args: []string{"-h"}, want: "Usage:"},
		{name: "help command", args: []string{"help"}, want: "Global Options:"},
		{name: "version flag", args: []string{"-v"}, want: "tasklist version dev"},
		{name: "version command", args: []string{"version"}, want: "tasklist version dev"},
		{name: "unknown command", args: []string{"frobnicate"}, wantErr: "unknown command"},
		{name: "bad global value", args: []string{"-password-hash", "md5", "version"}, wantErr: "loading config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCLI(t)
			err := c.run(t, "", tt.args...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Run(%v) error: got %v, want %q", tt.args, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run(%v) error = %v", tt.args, err)
			}
			if !strings.Contains(c.out.String(), tt.want) {
				t.Errorf("output missing %q\n%s", tt.want, c.out.String())
			}
		})
	}
}

func TestShellCommand(t *testing.T) {
	c := newCLI(t)

	script := strings.Join([]string{
		"1", "alice", "secret123", "secret123",
		"2", "alice", "secret123",
		"1", "2024-12-06", "buy milk",
		"6", "3",
	}, "\n") + "\n"
	if err := c.run(t, script); err != nil {
		t.Fatalf("shell error = %v\n%s", err, c.out.String())
	}
	for _, want := range []string{
		"Registration successful!",
		"Login successful! Welcome, alice.",
		"Task created successfully!",
		"Exiting... Goodbye!",
	} {
		if !strings.Contains(c.out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}

	data, err := os.ReadFile(filepath.Join(c.dataDir, "tasks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "1,2024-12-06,buy milk,1,in progress\n"; string(data) != want {
		t.Errorf("task store: got %q, want %q", data, want)
	}

	latest, err := logging.FindLatestLog(c.logDir)
	if err != nil || latest == "" {
		t.Fatalf("FindLatestLog() = %q, %v; want a session log", latest, err)
	}
	logData, _ := os.ReadFile(latest)
	if !strings.Contains(string(logData), "task created") {
		t.Errorf("session log missing task event:\n%s", logData)
	}
}

func TestLsCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "all",
			args: []string{"ls"},
			want: []string{"in progress (1):", "[1] 2024-12-06 buy milk", "completed (1):", "[2] 2024-12-07 walk dog"},
		},
		{
			name:    "positional status",
			args:    []string{"ls", "in", "progress"},
			want:    []string{"buy milk"},
			notWant: []string{"walk dog"},
		},
		{
			name:    "status flag",
			args:    []string{"ls", "-status", "completed"},
			want:    []string{"walk dog"},
			notWant: []string{"buy milk"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCLI(t)
			c.seed(t)
			t.Setenv("TASKLIST_PASSWORD", "secret123")

			args := append([]string{"-user", "alice"}, tt.args...)
			if err := c.run(t, "", args...); err != nil {
				t.Fatalf("Run(%v) error = %v", args, err)
			}
			for _, w := range tt.want {
				if !strings.Contains(c.out.String(), w) {
					t.Errorf("output missing %q\n%s", w, c.out.String())
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(c.out.String(), w) {
					t.Errorf("output contains %q\n%s", w, c.out.String())
				}
			}
		})
	}
}

func TestLsPromptsForCredentials(t *testing.T) {
	c := newCLI(t)
	c.seed(t)

	if err := c.run(t, "alice\nsecret123\n", "ls"); err != nil {
		t.Fatalf("ls error = %v", err)
	}
	if !strings.Contains(c.out.String(), "Username: Password: ") {
		t.Errorf("prompts missing\n%s", c.out.String())
	}

	err := c.run(t, "alice\nwrong\n", "ls")
	if !errors.Is(err, users.ErrInvalidCredentials) {
		t.Errorf("ls with bad password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestLsRejectsUnknownStatus(t *testing.T) {
	c := newCLI(t)
	err := c.run(t, "", "ls", "-status", "blocked")
	var ve *todo.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("ls -status blocked: got %v, want *todo.ValidationError", err)
	}
}

func TestExportCommand(t *testing.T) {
	c := newCLI(t)
	c.seed(t)
	t.Setenv("TASKLIST_USER", "alice")
	t.Setenv("TASKLIST_PASSWORD", "secret123")

	fixed := time.Date(2024, 12, 6, 10, 0, 0, 0, time.UTC)
	oldNow := nowFunc
	nowFunc = func() time.Time { return fixed }
	t.Cleanup(func() { nowFunc = oldNow })

	if err := c.run(t, "", "export"); err != nil {
		t.Fatalf("export error = %v", err)
	}
	var doc export.Document
	if err := json.Unmarshal(c.out.Bytes(), &doc); err != nil {
		t.Fatalf("export output is not JSON: %v\n%s", err, c.out.String())
	}
	if doc.User != "alice" || doc.Counts.Total != 2 || doc.Counts.Completed != 1 {
		t.Errorf("document: got %+v", doc)
	}
	if !doc.ExportedAt.Equal(fixed) {
		t.Errorf("ExportedAt: got %v, want %v", doc.ExportedAt, fixed)
	}

	path := filepath.Join(c.home, "tasks.yaml")
	if err := c.run(t, "", "export", "-format", "yaml", "-o", path); err != nil {
		t.Fatalf("export yaml error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "user: alice") {
		t.Errorf("yaml export:\n%s", data)
	}

	if err := c.run(t, "", "export", "-format", "xml"); !errors.Is(err, export.ErrUnknownFormat) {
		t.Errorf("export -format xml: got %v, want ErrUnknownFormat", err)
	}
}

func TestDoctorCommand(t *testing.T) {
	t.Run("fresh install", func(t *testing.T) {
		c := newCLI(t)
		if err := c.run(t, "", "doctor"); err != nil {
			t.Fatalf("doctor error = %v\n%s", err, c.out.String())
		}
		if !strings.Contains(c.out.String(), "All checks passed") {
			t.Errorf("output:\n%s", c.out.String())
		}
		if _, err := os.Stat(c.dataDir); !os.IsNotExist(err) {
			t.Errorf("doctor created the data dir: %v", err)
		}
	})

	t.Run("seeded stores", func(t *testing.T) {
		c := newCLI(t)
		c.seed(t)
		if err := c.run(t, "", "doctor", "-v"); err != nil {
			t.Fatalf("doctor error = %v\n%s", err, c.out.String())
		}
		for _, want := range []string{"✅ Valid", "Tasks: 2", "Users: 1"} {
			if !strings.Contains(c.out.String(), want) {
				t.Errorf("output missing %q\n%s", want, c.out.String())
			}
		}
	})

	t.Run("bad task rows", func(t *testing.T) {
		c := newCLI(t)
		c.seed(t)
		f, err := os.OpenFile(filepath.Join(c.dataDir, "tasks.csv"), os.O_APPEND|os.O_WRONLY, 0)
		if err != nil {
			t.Fatal(err)
		}
		f.WriteString("garbage\n3,2024-02-30,x,1,in progress\n")
		f.Close()

		err = c.run(t, "", "doctor")
		if err == nil || !strings.Contains(err.Error(), "doctor checks failed") {
			t.Fatalf("doctor error: got %v, want failure", err)
		}
		for _, want := range []string{"Validation failed", "malformed line 3", "line 4.date"} {
			if !strings.Contains(c.out.String(), want) {
				t.Errorf("output missing %q\n%s", want, c.out.String())
			}
		}
	})
}

func TestTailCommand(t *testing.T) {
	c := newCLI(t)
	if err := c.run(t, "", "tail"); err != nil {
		t.Fatalf("tail error = %v", err)
	}
	if !strings.Contains(c.out.String(), "No log files found.") {
		t.Errorf("output:\n%s", c.out.String())
	}

	if err := c.run(t, "3\n"); err != nil {
		t.Fatal(err)
	}
	if err := c.run(t, "", "-log-level", "debug", "tail", "-n", "5"); err != nil {
		t.Fatalf("tail error = %v", err)
	}
	if !strings.Contains(c.out.String(), "Tailing: "+c.logDir) {
		t.Errorf("output:\n%s", c.out.String())
	}
}

func TestConfigCommand(t *testing.T) {
	c := newCLI(t)
	t.Setenv("TASKLIST_LOG_LEVEL", "debug")

	if err := c.run(t, "", "-min-password-length", "12", "config"); err != nil {
		t.Fatalf("config error = %v", err)
	}
	out := c.out.String()
	for _, want := range []string{"Config file: (none)", "log_level", "(environment)", "min_password_length", "(flag)", "(default)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	if err := c.run(t, "", "config", "-example"); err != nil {
		t.Fatalf("config -example error = %v", err)
	}
	if !strings.Contains(c.out.String(), "data_dir") {
		t.Errorf("example config:\n%s", c.out.String())
	}
}
