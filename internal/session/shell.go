package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/Dicantnik/tasklist/internal/logging"
	"github.com/Dicantnik/tasklist/internal/store"
	"github.com/Dicantnik/tasklist/internal/todo"
	"github.com/Dicantnik/tasklist/internal/users"
)

// Shell is the interactive menu loop.
type Shell struct {
	users      *users.Directory
	tasks      *todo.Repository
	importPath string

	in     *input
	out    io.Writer
	base   *log.Logger
	logger *log.Logger // base tagged with the current session

	current *Context
}

// Option configures a Shell.
type Option func(*Shell)

// WithIO sets the input and output streams (default stdin and stdout).
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Shell) {
		if in != nil {
			s.in = newInput(in)
		}
		if out != nil {
			s.out = out
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithImportPath sets the source read by "Load Tasks from File".
func WithImportPath(path string) Option {
	return func(s *Shell) {
		s.importPath = path
	}
}

// New creates a shell over the given stores.
func New(dir *users.Directory, repo *todo.Repository, opts ...Option) *Shell {
	s := &Shell{
		users:  dir,
		tasks:  repo,
		in:     newInput(os.Stdin),
		out:    os.Stdout,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.base = s.logger
	return s
}

// Current returns the authenticated session, or nil.
func (s *Shell) Current() *Context {
	return s.current
}

// Run drives the menus until the user exits or input ends. Exhausted input
// ends the loop without error; cancellation returns ctx.Err().
func (s *Shell) Run(ctx context.Context) error {
	for {
		var (
			exit bool
			err  error
		)
		if s.current == nil {
			exit, err = s.anonymousMenu(ctx)
		} else {
			err = s.authenticatedMenu(ctx)
		}
		switch {
		case errors.Is(err, io.EOF):
			s.logger.Debug("input closed, ending session")
			s.logout()
			return nil
		case err != nil:
			s.logout()
			return err
		case exit:
			return nil
		}
	}
}

func (s *Shell) anonymousMenu(ctx context.Context) (bool, error) {
	fmt.Fprintln(s.out, "Welcome to the Todo List Console Application!")
	fmt.Fprintln(s.out, "1. Register")
	fmt.Fprintln(s.out, "2. Login")
	fmt.Fprintln(s.out, "3. Exit")
	choice, err := s.prompt(ctx, "Enter your choice: ")
	if err != nil {
		return false, err
	}

	switch choice {
	case "1":
		return false, s.register(ctx)
	case "2":
		return false, s.login(ctx)
	case "3":
		fmt.Fprintln(s.out, "Exiting... Goodbye!")
		return true, nil
	default:
		fmt.Fprintln(s.out, "Invalid choice, please try again.")
		return false, nil
	}
}

func (s *Shell) authenticatedMenu(ctx context.Context) error {
	if err := s.showInProgress(); err != nil {
		s.reportError("list tasks", err)
	}

	fmt.Fprintln(s.out, "Menu:")
	fmt.Fprintln(s.out, "1. Create Task")
	fmt.Fprintln(s.out, "2. Delete Task")
	fmt.Fprintln(s.out, "3. Load Tasks from File")
	fmt.Fprintln(s.out, "4. Update Task")
	fmt.Fprintln(s.out, "5. Mark Task as Completed")
	fmt.Fprintln(s.out, "6. Logout")
	fmt.Fprintln(s.out, "7. List All Tasks")
	choice, err := s.prompt(ctx, "Enter your choice: ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		return s.createTask(ctx)
	case "2":
		return s.deleteTask(ctx)
	case "3":
		s.loadTasks()
	case "4":
		return s.updateTask(ctx)
	case "5":
		return s.completeTask(ctx)
	case "6":
		s.logout()
		fmt.Fprintln(s.out, "Logged out successfully.")
	case "7":
		s.listAll()
	default:
		fmt.Fprintln(s.out, "Invalid choice, please try again.")
	}
	return nil
}

func (s *Shell) register(ctx context.Context) error {
	username, err := s.prompt(ctx, "Please enter your desired username: ")
	if err != nil {
		return err
	}
	taken, err := s.users.Exists(username)
	if err != nil {
		s.reportError("check username", err)
		return nil
	}
	if taken {
		fmt.Fprintln(s.out, "Username already exists. Please enter another username.")
		return nil
	}

	minLength := s.users.MinPasswordLength()
	password, err := s.prompt(ctx, fmt.Sprintf("Please enter your password (min %d characters): ", minLength))
	if err != nil {
		return err
	}
	if errors.Is(users.ValidatePassword(password, password, minLength), users.ErrPasswordTooShort) {
		fmt.Fprintf(s.out, "Password must be at least %d characters long. Please try again.\n", minLength)
		return nil
	}

	confirm, err := s.prompt(ctx, "Please confirm your password: ")
	if err != nil {
		return err
	}

	_, err = s.users.Register(username, password, confirm)
	switch {
	case err == nil:
		fmt.Fprintln(s.out, "Registration successful! Please login to continue.")
	case errors.Is(err, users.ErrPasswordMismatch):
		fmt.Fprintln(s.out, "Passwords do not match. Please try again.")
	case errors.Is(err, users.ErrUsernameTaken):
		fmt.Fprintln(s.out, "Username already exists. Please enter another username.")
	case errors.Is(err, users.ErrPasswordTooShort):
		fmt.Fprintf(s.out, "Password must be at least %d characters long. Please try again.\n", minLength)
	case errors.Is(err, users.ErrInvalidUsername), errors.Is(err, store.ErrDelimiterInField):
		fmt.Fprintf(s.out, "Registration failed: %v. Please try again.\n", err)
	default:
		s.reportError("register", err)
	}
	return nil
}

func (s *Shell) login(ctx context.Context) error {
	username, err := s.prompt(ctx, "Please enter your username: ")
	if err != nil {
		return err
	}
	password, err := s.prompt(ctx, "Please enter your password: ")
	if err != nil {
		return err
	}

	u, err := s.users.Authenticate(username, password)
	if err != nil {
		if !errors.Is(err, users.ErrInvalidCredentials) {
			s.reportError("login", err)
		}
		fmt.Fprintln(s.out, "Invalid username or password. Please try again.")
		fmt.Fprintln(s.out, "Returning to main menu...")
		return nil
	}

	s.current = NewContext(u)
	s.logger = s.base.With("session", logging.ShortID(s.current.SessionID))
	s.logger.Info("session started", "user_id", u.ID)
	fmt.Fprintf(s.out, "Login successful! Welcome, %s.\n", u.Username)
	return nil
}

func (s *Shell) logout() {
	if s.current == nil {
		return
	}
	s.logger.Info("session ended", "user_id", s.current.UserID())
	s.current = nil
	s.logger = s.base
}

func (s *Shell) createTask(ctx context.Context) error {
	date, err := s.promptDate(ctx, "Enter the task date (e.g., 2024-12-06): ")
	if err != nil {
		return err
	}
	content, err := s.prompt(ctx, "Enter the task content: ")
	if err != nil {
		return err
	}

	_, err = s.tasks.Create(s.current.UserID(), date, content)
	var ve *todo.ValidationError
	switch {
	case err == nil:
		fmt.Fprintln(s.out, "Task created successfully!")
	case errors.As(err, &ve):
		fmt.Fprintf(s.out, "Invalid %s: must not contain commas or line breaks. Returning to menu...\n", ve.Field)
	default:
		s.reportError("create task", err)
	}
	return nil
}

func (s *Shell) deleteTask(ctx context.Context) error {
	if ok := s.showAll(); !ok {
		return nil
	}
	id, err := s.promptID(ctx, "Enter the Task ID to delete: ")
	if errors.Is(err, errInvalidID) {
		fmt.Fprintln(s.out, "Invalid Task ID.")
		return nil
	}
	if err != nil {
		return err
	}
	if !s.ownsTask(id) {
		return nil
	}

	answer, err := s.prompt(ctx, fmt.Sprintf("Are you sure you want to delete Task ID %d? (1 for Yes, 2 for No): ", id))
	if err != nil {
		return err
	}
	confirmed := answer == "1"
	if err := s.tasks.Delete(s.current.UserID(), id, confirmed); err != nil {
		s.reportTaskError("delete task", err)
		return nil
	}
	if confirmed {
		fmt.Fprintln(s.out, "Task deleted successfully!")
	} else {
		fmt.Fprintln(s.out, "Task deletion cancelled.")
	}
	return nil
}

func (s *Shell) updateTask(ctx context.Context) error {
	if ok := s.showAll(); !ok {
		return nil
	}
	id, err := s.promptID(ctx, "Enter the Task ID to update: ")
	if errors.Is(err, errInvalidID) {
		fmt.Fprintln(s.out, "Invalid Task ID.")
		return nil
	}
	if err != nil {
		return err
	}
	if !s.ownsTask(id) {
		return nil
	}

	choice, err := s.prompt(ctx, "What would you like to update? (1 for Date, 2 for Content): ")
	if err != nil {
		return err
	}
	var (
		field todo.Field
		value string
	)
	switch choice {
	case "1":
		field = todo.FieldDate
		value, err = s.promptDate(ctx, "Enter the new date (e.g., 2024-12-06): ")
	case "2":
		field = todo.FieldContent
		value, err = s.prompt(ctx, "Enter the new content: ")
	default:
		fmt.Fprintln(s.out, "Invalid choice. Returning to menu...")
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.tasks.Update(s.current.UserID(), id, field, value); err != nil {
		s.reportTaskError("update task", err)
		return nil
	}
	if field == todo.FieldDate {
		fmt.Fprintln(s.out, "Task date updated successfully!")
	} else {
		fmt.Fprintln(s.out, "Task content updated successfully!")
	}
	return nil
}

func (s *Shell) completeTask(ctx context.Context) error {
	tasks, err := s.tasks.ListInProgress(s.current.UserID())
	if err != nil {
		s.reportError("list tasks", err)
		return nil
	}
	if len(tasks) == 0 {
		fmt.Fprintln(s.out, "No incomplete tasks found. Returning to menu...")
		return nil
	}
	fmt.Fprintln(s.out, "Your incomplete tasks:")
	for _, t := range tasks {
		fmt.Fprintln(s.out, formatShort(t))
	}

	id, err := s.promptID(ctx, "Enter the Task ID to mark as completed: ")
	if errors.Is(err, errInvalidID) {
		fmt.Fprintln(s.out, "Invalid Task ID. Returning to menu...")
		return nil
	}
	if err != nil {
		return err
	}

	err = s.tasks.MarkCompleted(s.current.UserID(), id)
	switch {
	case err == nil:
		fmt.Fprintln(s.out, "Task marked as completed!")
	case errors.Is(err, todo.ErrTaskNotFound):
		fmt.Fprintln(s.out, "Task ID not found or already completed. Returning to menu...")
	default:
		s.reportError("complete task", err)
	}
	return nil
}

func (s *Shell) loadTasks() {
	imported, err := s.tasks.ImportFile(s.current.UserID(), s.importPath)
	var ie *todo.ImportError
	switch {
	case err == nil:
		fmt.Fprintf(s.out, "Tasks loaded successfully! %d task(s) imported.\n", len(imported))
	case errors.Is(err, todo.ErrImportSourceMissing):
		fmt.Fprintln(s.out, "Could not open the specified file. Returning to menu...")
	case errors.As(err, &ie):
		fmt.Fprintln(s.out, "No tasks were loaded. Fix these rows and try again:")
		for _, issue := range ie.Issues {
			fmt.Fprintf(s.out, "  %s\n", issue)
		}
	default:
		s.reportError("load tasks", err)
	}
}

func (s *Shell) listAll() {
	s.showAll()
}

// showInProgress prints the user's in-progress tasks.
func (s *Shell) showInProgress() error {
	tasks, err := s.tasks.ListInProgress(s.current.UserID())
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Your incomplete tasks:")
	for _, t := range tasks {
		fmt.Fprintln(s.out, formatShort(t))
	}
	return nil
}

// showAll prints every task of the user and reports whether there was any.
func (s *Shell) showAll() bool {
	tasks, err := s.tasks.ListAll(s.current.UserID())
	if err != nil {
		s.reportError("list tasks", err)
		return false
	}
	if len(tasks) == 0 {
		fmt.Fprintln(s.out, "You have no tasks. Returning to menu...")
		return false
	}
	fmt.Fprintln(s.out, "Your tasks:")
	for _, t := range tasks {
		fmt.Fprintln(s.out, formatLong(t))
	}
	return true
}

// ownsTask reports whether id names one of the user's tasks and prints the
// not-found message otherwise.
func (s *Shell) ownsTask(id uint32) bool {
	_, err := s.tasks.Get(s.current.UserID(), id)
	if err == nil {
		return true
	}
	s.reportTaskError("find task", err)
	return false
}

func (s *Shell) reportTaskError(op string, err error) {
	var ve *todo.ValidationError
	switch {
	case errors.Is(err, todo.ErrTaskNotFound):
		fmt.Fprintln(s.out, "Task ID not found. Returning to menu...")
	case errors.As(err, &ve):
		fmt.Fprintf(s.out, "Invalid %s: must not contain commas or line breaks. Returning to menu...\n", ve.Field)
	default:
		s.reportError(op, err)
	}
}

// reportError logs an unexpected failure and tells the user the operation
// did not complete.
func (s *Shell) reportError(op string, err error) {
	s.logger.Error(op+" failed", "err", err)
	fmt.Fprintf(s.out, "Error: could not %s: %v\n", op, err)
}

func formatShort(t todo.Task) string {
	return fmt.Sprintf("Task ID: %d, Date: %s, Content: %s", t.ID, t.Date, t.Content)
}

func formatLong(t todo.Task) string {
	return fmt.Sprintf("Task ID: %d, Date: %s, Content: %s, Status: %s", t.ID, t.Date, t.Content, t.Status)
}
