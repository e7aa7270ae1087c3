package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Dicantnik/tasklist/internal/todo"
)

var sample = []todo.Task{
	{ID: 1, Date: "2024-12-06", Content: "buy milk", UserID: 3, Status: todo.StatusInProgress},
	{ID: 4, Date: "2024-12-07", Content: "call mom", UserID: 3, Status: todo.StatusCompleted},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("error should wrap ErrUnknownFormat, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewDocumentCounts(t *testing.T) {
	doc := NewDocument("alice", 3, sample, time.Date(2024, 12, 8, 10, 0, 0, 500, time.UTC))
	if doc.Counts != (Counts{Total: 2, InProgress: 1, Completed: 1}) {
		t.Errorf("Counts: got %+v", doc.Counts)
	}
	if doc.ExportedAt.Nanosecond() != 0 {
		t.Errorf("ExportedAt not truncated: %v", doc.ExportedAt)
	}

	empty := NewDocument("bob", 4, nil, time.Now())
	if empty.Tasks == nil || len(empty.Tasks) != 0 {
		t.Errorf("Tasks: got %#v, want empty slice", empty.Tasks)
	}
}

func TestWriteJSON(t *testing.T) {
	doc := NewDocument("alice", 3, sample, time.Date(2024, 12, 8, 10, 0, 0, 0, time.UTC))
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, doc); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var got struct {
		User  string           `json:"user"`
		Tasks []map[string]any `json:"tasks"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if got.User != "alice" || len(got.Tasks) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Tasks[1]["status"] != "completed" || got.Tasks[1]["user_id"] != float64(3) {
		t.Errorf("task fields: got %v", got.Tasks[1])
	}
}

func TestWriteYAML(t *testing.T) {
	doc := NewDocument("alice", 3, sample, time.Date(2024, 12, 8, 10, 0, 0, 0, time.UTC))
	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, doc); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "content: buy milk") {
		t.Errorf("YAML output missing task content:\n%s", buf.String())
	}

	var got Document
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(got.Tasks) != 2 || got.Tasks[0] != sample[0] {
		t.Errorf("tasks: got %+v", got.Tasks)
	}
	if got.Counts.Completed != 1 {
		t.Errorf("Counts.Completed: got %d, want 1", got.Counts.Completed)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("xml"), Document{})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("got %v, want ErrUnknownFormat", err)
	}
}
