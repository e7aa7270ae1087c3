// Package export writes a user's tasks as JSON or YAML documents.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Dicantnik/tasklist/internal/todo"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned by ParseFormat and Write for unsupported formats.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts json, yaml and yml (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w %q (expected json|yaml)", ErrUnknownFormat, s)
	}
}

// Document is the exported view of one user's tasks.
type Document struct {
	User       string      `json:"user" yaml:"user"`
	UserID     uint32      `json:"user_id" yaml:"user_id"`
	ExportedAt time.Time   `json:"exported_at" yaml:"exported_at"`
	Counts     Counts      `json:"counts" yaml:"counts"`
	Tasks      []todo.Task `json:"tasks" yaml:"tasks"`
}

// Counts summarizes tasks by status.
type Counts struct {
	Total      int `json:"total" yaml:"total"`
	InProgress int `json:"in_progress" yaml:"in_progress"`
	Completed  int `json:"completed" yaml:"completed"`
}

// NewDocument builds a Document for tasks. A nil slice is exported as an
// empty list.
func NewDocument(username string, userID uint32, tasks []todo.Task, now time.Time) Document {
	if tasks == nil {
		tasks = []todo.Task{}
	}
	doc := Document{
		User:       username,
		UserID:     userID,
		ExportedAt: now.UTC().Truncate(time.Second),
		Tasks:      tasks,
	}
	doc.Counts.Total = len(tasks)
	for _, t := range tasks {
		switch t.Status {
		case todo.StatusInProgress:
			doc.Counts.InProgress++
		case todo.StatusCompleted:
			doc.Counts.Completed++
		}
	}
	return doc
}

// Write encodes doc to w.
func Write(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}
