package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dicantnik/tasklist/internal/store"
)

// DateLayout is the task date format.
const DateLayout = "2006-01-02"

// Status represents a task status.
type Status string

const (
	StatusInProgress Status = "in progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus accepts the two stored status values. Surrounding whitespace
// is ignored and an empty value means StatusInProgress.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(s)) {
	case "", StatusInProgress:
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", &ValidationError{
			Field: "status",
			Err:   fmt.Errorf("invalid status %q, must be one of: in progress, completed", s),
		}
	}
}

// Field names a task attribute that Update may change.
type Field string

const (
	FieldDate    Field = "date"
	FieldContent Field = "content"
)

var (
	// ErrTaskNotFound is returned when no matching task belongs to the user.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUnknownField is returned by Update for fields other than date and content.
	ErrUnknownField = errors.New("unknown task field")
	// ErrImportSourceMissing is returned when the import file does not exist.
	ErrImportSourceMissing = errors.New("import source not found")
)

// Task represents a single task in the store.
type Task struct {
	ID      uint32 `json:"id" yaml:"id"`
	Date    string `json:"date" yaml:"date"`
	Content string `json:"content" yaml:"content"`
	UserID  uint32 `json:"user_id" yaml:"user_id"`
	Status  Status `json:"status" yaml:"status"`
}

// IsZero returns true if the task is empty (has no ID).
func (t *Task) IsZero() bool {
	return t.ID == 0
}

// ValidationError represents a rejected task value.
type ValidationError struct {
	Field string // Task attribute that failed validation
	Err   error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateDate checks that s is a real calendar date in YYYY-MM-DD form.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return &ValidationError{
			Field: "date",
			Err:   fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s),
		}
	}
	return nil
}

// ValidateContent checks that content can be stored without escaping.
func ValidateContent(s string) error {
	if err := store.CheckField("content", s); err != nil {
		return &ValidationError{Field: "content", Err: store.ErrDelimiterInField}
	}
	return nil
}

// Codec encodes tasks as "id,date,content,user_id,status".
type Codec struct{}

// Encode implements store.Codec.
func (Codec) Encode(t Task) string {
	return store.JoinRow(store.FormatID(t.ID), t.Date, t.Content, store.FormatID(t.UserID), string(t.Status))
}

// Decode implements store.Codec. The status column is kept verbatim so
// that a round trip never alters a row; ValidateStore flags unknown values.
func (Codec) Decode(line string) (Task, error) {
	fields, err := store.SplitRow(line, 5)
	if err != nil {
		return Task{}, err
	}
	id, err := store.ParseID(fields[0])
	if err != nil {
		return Task{}, err
	}
	userID, err := store.ParseID(fields[3])
	if err != nil {
		return Task{}, err
	}
	return Task{
		ID:      id,
		Date:    fields[1],
		Content: fields[2],
		UserID:  userID,
		Status:  Status(fields[4]),
	}, nil
}

// ID implements store.Codec.
func (Codec) ID(t Task) uint32 {
	return t.ID
}
