package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Dicantnik/tasklist/internal/todo"
	"github.com/Dicantnik/tasklist/internal/users"
)

type fixture struct {
	dir   string
	users *users.Directory
	tasks *todo.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	u, err := users.Open(filepath.Join(dir, "users.csv"))
	if err != nil {
		t.Fatalf("users.Open() error = %v", err)
	}
	r, err := todo.Open(filepath.Join(dir, "tasks.csv"))
	if err != nil {
		t.Fatalf("todo.Open() error = %v", err)
	}
	return &fixture{dir: dir, users: u, tasks: r}
}

// run feeds script (one answer per line) to a fresh shell and returns the
// transcript.
func (f *fixture) run(t *testing.T, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	sh := New(f.users, f.tasks,
		WithIO(in, &out),
		WithImportPath(filepath.Join(f.dir, "import.csv")),
	)
	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v\noutput:\n%s", err, out.String())
	}
	return out.String()
}

func (f *fixture) register(t *testing.T, username, password string) users.User {
	t.Helper()
	u, err := f.users.Register(username, password, password)
	if err != nil {
		t.Fatalf("Register(%q) error = %v", username, err)
	}
	return u
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\noutput:\n%s", w, out)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	out := f.run(t,
		"1", "alice", "secret123", "secret123",
		"2", "alice", "secret123",
		"6",
		"3",
	)
	assertContains(t, out,
		"Welcome to the Todo List Console Application!",
		"Registration successful! Please login to continue.",
		"Login successful! Welcome, alice.",
		"Your incomplete tasks:",
		"Logged out successfully.",
		"Exiting... Goodbye!",
	)

	taken, err := f.users.Exists("alice")
	if err != nil || !taken {
		t.Errorf("Exists(alice): got %v, %v, want true, nil", taken, err)
	}
}

func TestRegisterRejections(t *testing.T) {
	tests := []struct {
		name   string
		script []string
		want   string
	}{
		{
			name:   "taken",
			script: []string{"1", "bob", "3"},
			want:   "Username already exists. Please enter another username.",
		},
		{
			name:   "short",
			script: []string{"1", "carol", "short", "3"},
			want:   "Password must be at least 8 characters long. Please try again.",
		},
		{
			name:   "mismatch",
			script: []string{"1", "carol", "secret123", "secret124", "3"},
			want:   "Passwords do not match. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.register(t, "bob", "password1")

			out := f.run(t, tt.script...)
			assertContains(t, out, tt.want)
			if strings.Contains(out, "Registration successful!") {
				t.Errorf("registration should have failed\noutput:\n%s", out)
			}
		})
	}
}

func TestLoginFailure(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "secret123")

	out := f.run(t, "2", "alice", "wrongpass", "3")
	assertContains(t, out,
		"Invalid username or password. Please try again.",
		"Returning to main menu...",
	)
	if strings.Contains(out, "Login successful!") {
		t.Errorf("login should have failed\noutput:\n%s", out)
	}
}

func TestInvalidChoice(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "9", "3")
	assertContains(t, out, "Invalid choice, please try again.")
}

func TestCreateTaskRetriesDate(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice", "secret123")

	out := f.run(t,
		"2", "alice", "secret123",
		"1", "2024-13-01", "tomorrow", "2024-12-06", "buy milk",
		"6", "3",
	)
	if got := strings.Count(out, "Invalid date format. Please enter the date in the format YYYY-MM-DD."); got != 2 {
		t.Errorf("date retries: got %d, want 2\noutput:\n%s", got, out)
	}
	assertContains(t, out,
		"Task created successfully!",
		"Task ID: 1, Date: 2024-12-06, Content: buy milk",
	)

	tasks, err := f.tasks.ListAll(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].Content != "buy milk" {
		t.Errorf("tasks: got %+v", tasks)
	}
}

func TestCreateTaskRejectsComma(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice", "secret123")

	out := f.run(t,
		"2", "alice", "secret123",
		"1", "2024-12-06", "milk, eggs",
		"6", "3",
	)
	assertContains(t, out, "Invalid content")

	tasks, _ := f.tasks.ListAll(u.ID)
	if len(tasks) != 0 {
		t.Errorf("tasks: got %d, want 0", len(tasks))
	}
}

func TestMarkCompleted(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice", "secret123")
	other := f.register(t, "bob", "secret123")
	if _, err := f.tasks.Create(u.ID, "2024-12-06", "buy milk"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tasks.Create(other.ID, "2024-12-07", "bob's task"); err != nil {
		t.Fatal(err)
	}

	out := f.run(t,
		"2", "alice", "secret123",
		"5", "2",
		"5", "abc",
		"5", "1",
		"5",
		"6", "3",
	)
	assertContains(t, out,
		"Task ID not found or already completed. Returning to menu...",
		"Invalid Task ID. Returning to menu...",
		"Task marked as completed!",
		"No incomplete tasks found. Returning to menu...",
	)
	if strings.Contains(out, "bob's task") {
		t.Errorf("another user's task was shown\noutput:\n%s", out)
	}

	got, err := f.tasks.Get(u.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != todo.StatusCompleted {
		t.Errorf("Status: got %q, want %q", got.Status, todo.StatusCompleted)
	}
	theirs, _ := f.tasks.Get(other.ID, 2)
	if theirs.Status != todo.StatusInProgress {
		t.Errorf("other user's Status: got %q, want %q", theirs.Status, todo.StatusInProgress)
	}
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice", "secret123")
	if _, err := f.tasks.Create(u.ID, "2024-12-06", "buy milk"); err != nil {
		t.Fatal(err)
	}

	out := f.run(t,
		"2", "alice", "secret123",
		"2", "x",
		"2", "7",
		"2", "1", "2",
		"2", "1", "1",
		"2",
		"6", "3",
	)
	assertContains(t, out,
		"Your tasks:",
		"Task ID: 1, Date: 2024-12-06, Content: buy milk, Status: in progress",
		"Invalid Task ID.",
		"Task ID not found. Returning to menu...",
		"Are you sure you want to delete Task ID 1? (1 for Yes, 2 for No): ",
		"Task deletion cancelled.",
		"Task deleted successfully!",
		"You have no tasks. Returning to menu...",
	)

	if _, err := f.tasks.Get(u.ID, 1); !errors.Is(err, todo.ErrTaskNotFound) {
		t.Errorf("Get() after delete: got %v, want ErrTaskNotFound", err)
	}
}

func TestUpdateTask(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice", "secret123")
	if _, err := f.tasks.Create(u.ID, "2024-12-06", "buy milk"); err != nil {
		t.Fatal(err)
	}

	out := f.run(t,
		"2", "alice", "secret123",
		"4", "1", "1", "bad", "2025-01-02",
		"4", "1", "2", "buy oat milk",
		"4", "1", "3",
		"6", "3",
	)
	assertContains(t, out,
		"What would you like to update? (1 for Date, 2 for Content): ",
		"Invalid date format.",
		"Task date updated successfully!",
		"Task content updated successfully!",
		"Invalid choice. Returning to menu...",
	)

	got, err := f.tasks.Get(u.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Date != "2025-01-02" || got.Content != "buy oat milk" {
		t.Errorf("task: got %+v", got)
	}
}

func TestLoadTasks(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice", "secret123")
		out := f.run(t, "2", "alice", "secret123", "3", "6", "3")
		assertContains(t, out, "Could not open the specified file. Returning to menu...")
	})

	t.Run("imports rows", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t, "alice", "secret123")
		src := "2024-12-06, buy milk\n2024-12-07,walk dog,completed\n"
		if err := os.WriteFile(filepath.Join(f.dir, "import.csv"), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}

		out := f.run(t, "2", "alice", "secret123", "3", "6", "3")
		assertContains(t, out, "Tasks loaded successfully! 2 task(s) imported.")

		tasks, _ := f.tasks.ListAll(u.ID)
		if len(tasks) != 2 {
			t.Fatalf("tasks: got %d, want 2", len(tasks))
		}
		if tasks[1].Status != todo.StatusCompleted {
			t.Errorf("second Status: got %q, want %q", tasks[1].Status, todo.StatusCompleted)
		}
	})

	t.Run("rejects invalid rows", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t, "alice", "secret123")
		src := "2024-12-06,buy milk\nnot-a-date,walk dog\n"
		if err := os.WriteFile(filepath.Join(f.dir, "import.csv"), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}

		out := f.run(t, "2", "alice", "secret123", "3", "6", "3")
		assertContains(t, out, "No tasks were loaded.", "line 2:")

		tasks, _ := f.tasks.ListAll(u.ID)
		if len(tasks) != 0 {
			t.Errorf("tasks: got %d, want 0", len(tasks))
		}
	})
}

func TestListAllTasks(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice", "secret123")
	for _, content := range []string{"one", "two"} {
		if _, err := f.tasks.Create(u.ID, "2024-12-06", content); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.tasks.MarkCompleted(u.ID, 2); err != nil {
		t.Fatal(err)
	}

	out := f.run(t, "2", "alice", "secret123", "7", "6", "3")
	assertContains(t, out,
		"Task ID: 1, Date: 2024-12-06, Content: one, Status: in progress",
		"Task ID: 2, Date: 2024-12-06, Content: two, Status: completed",
	)
	if strings.Contains(out, "Task ID: 2, Date: 2024-12-06, Content: two\n") {
		t.Errorf("completed task in the incomplete listing\noutput:\n%s", out)
	}
}

func TestRunEndsOnEOF(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "secret123")

	var out bytes.Buffer
	sh := New(f.users, f.tasks, WithIO(strings.NewReader("2\nalice\nsecret123\n"), &out))
	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sh.Current() != nil {
		t.Errorf("Current() after EOF: got %+v, want nil", sh.Current())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sh := New(f.users, f.tasks, WithIO(pr, io.Discard))

	done := make(chan error, 1)
	go func() { done <- sh.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error: got %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestNewContext(t *testing.T) {
	u := users.User{ID: 4, Username: "dana"}
	a, b := NewContext(u), NewContext(u)
	if a.UserID() != 4 {
		t.Errorf("UserID(): got %d, want 4", a.UserID())
	}
	if a.SessionID == "" || a.SessionID == b.SessionID {
		t.Errorf("SessionID: got %q and %q, want distinct non-empty ids", a.SessionID, b.SessionID)
	}
}
