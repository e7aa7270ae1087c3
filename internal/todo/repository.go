package todo

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/Dicantnik/tasklist/internal/store"
)

// Repository runs user-scoped task operations against a task store file.
type Repository struct {
	file   *store.File[Task]
	logger *log.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// Open opens (or creates) the task store at path.
func Open(path string, opts ...Option) (*Repository, error) {
	r := &Repository{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(r)
	}
	file, err := store.Open[Task](path, Codec{}, store.WithSkipFunc(r.logSkip))
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}
	r.file = file
	return r, nil
}

// Path returns the task store path.
func (r *Repository) Path() string {
	return r.file.Path()
}

// ListAll returns the user's tasks in file order.
func (r *Repository) ListAll(userID uint32) ([]Task, error) {
	return r.list(userID, func(Task) bool { return true })
}

// ListInProgress returns the user's unfinished tasks in file order.
func (r *Repository) ListInProgress(userID uint32) ([]Task, error) {
	return r.ListByStatus(userID, StatusInProgress)
}

// ListByStatus returns the user's tasks with the given status.
func (r *Repository) ListByStatus(userID uint32, status Status) ([]Task, error) {
	return r.list(userID, func(t Task) bool { return t.Status == status })
}

func (r *Repository) list(userID uint32, keep func(Task) bool) ([]Task, error) {
	all, err := r.readAll()
	if err != nil {
		return nil, err
	}
	var tasks []Task
	for _, t := range all {
		if t.UserID == userID && keep(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// Get returns one of the user's tasks.
func (r *Repository) Get(userID, taskID uint32) (Task, error) {
	all, err := r.readAll()
	if err != nil {
		return Task{}, err
	}
	if i := findTask(all, userID, taskID); i >= 0 {
		return all[i], nil
	}
	return Task{}, fmt.Errorf("%w: id %d", ErrTaskNotFound, taskID)
}

// Create validates and appends a new in-progress task.
func (r *Repository) Create(userID uint32, date, content string) (Task, error) {
	if err := ValidateDate(date); err != nil {
		return Task{}, err
	}
	if err := ValidateContent(content); err != nil {
		return Task{}, err
	}
	id, err := r.file.NextID()
	if err != nil {
		return Task{}, err
	}
	t := Task{
		ID:      id,
		Date:    date,
		Content: content,
		UserID:  userID,
		Status:  StatusInProgress,
	}
	if err := r.file.Append(t); err != nil {
		return Task{}, fmt.Errorf("save task: %w", err)
	}
	r.logger.Info("task created", "task_id", t.ID, "user_id", userID)
	return t, nil
}

// Update changes the date or content of one of the user's tasks.
func (r *Repository) Update(userID, taskID uint32, field Field, value string) error {
	switch field {
	case FieldDate:
		if err := ValidateDate(value); err != nil {
			return err
		}
	case FieldContent:
		if err := ValidateContent(value); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	return r.mutate(userID, taskID, nil, func(t *Task) {
		if field == FieldDate {
			t.Date = value
		} else {
			t.Content = value
		}
	}, "task updated", "field", string(field))
}

// MarkCompleted moves one of the user's in-progress tasks to completed.
// Completed and foreign tasks are reported as ErrTaskNotFound alike.
func (r *Repository) MarkCompleted(userID, taskID uint32) error {
	inProgress := func(t Task) bool { return t.Status == StatusInProgress }
	return r.mutate(userID, taskID, inProgress, func(t *Task) {
		t.Status = StatusCompleted
	}, "task completed")
}

// Delete removes one of the user's tasks. With confirmed false it only
// checks that the task exists and leaves the store untouched.
func (r *Repository) Delete(userID, taskID uint32, confirmed bool) error {
	all, err := r.readAll()
	if err != nil {
		return err
	}
	i := findTask(all, userID, taskID)
	if i < 0 {
		return fmt.Errorf("%w: id %d", ErrTaskNotFound, taskID)
	}
	if !confirmed {
		r.logger.Debug("task deletion cancelled", "task_id", taskID, "user_id", userID)
		return nil
	}
	kept := append(all[:i:i], all[i+1:]...)
	if err := r.file.Rewrite(kept); err != nil {
		return err
	}
	r.logger.Info("task deleted", "task_id", taskID, "user_id", userID)
	return nil
}

// mutate applies change to the user's task taskID (if match accepts it)
// and rewrites the store.
func (r *Repository) mutate(userID, taskID uint32, match func(Task) bool, change func(*Task), msg string, kv ...any) error {
	all, err := r.readAll()
	if err != nil {
		return err
	}
	i := findTask(all, userID, taskID)
	if i < 0 || (match != nil && !match(all[i])) {
		return fmt.Errorf("%w: id %d", ErrTaskNotFound, taskID)
	}
	change(&all[i])
	if err := r.file.Rewrite(all); err != nil {
		return err
	}
	r.logger.Info(msg, append([]any{"task_id", taskID, "user_id", userID}, kv...)...)
	return nil
}

func (r *Repository) readAll() ([]Task, error) {
	all, err := r.file.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read task store: %w", err)
	}
	return all, nil
}

func (r *Repository) logSkip(path string, line int, _ string, err error) {
	r.logger.Warn("skipping malformed task row", "file", path, "line", line, "err", err)
}

func findTask(tasks []Task, userID, taskID uint32) int {
	for i := range tasks {
		if tasks[i].ID == taskID && tasks[i].UserID == userID {
			return i
		}
	}
	return -1
}
