package todo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Dicantnik/tasklist/internal/store"
)

// ImportRow is one parsed row of an import source.
type ImportRow struct {
	Line    int
	Date    string
	Content string
	Status  string // optional; empty means in progress
}

// RowIssue describes a rejected line in a store or import file.
type RowIssue struct {
	Line int
	Text string
	Err  error
}

func (i RowIssue) String() string {
	return fmt.Sprintf("line %d: %v", i.Line, i.Err)
}

// ImportError lists the rows that made a bulk import fail.
type ImportError struct {
	Issues []RowIssue
}

func (e *ImportError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("import rejected, %d invalid row(s): %s", len(e.Issues), strings.Join(parts, "; "))
}

// ParseImport reads "date,content[,status]" rows. Lines with fewer than two
// fields are returned as issues and left out of rows.
func ParseImport(r io.Reader) ([]ImportRow, []RowIssue, error) {
	var rows []ImportRow
	var skipped []RowIssue
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields, err := store.SplitRow(text, 2)
		if err != nil {
			skipped = append(skipped, RowIssue{Line: lineNo, Text: text, Err: err})
			continue
		}
		row := ImportRow{
			Line:    lineNo,
			Date:    strings.TrimSpace(fields[0]),
			Content: strings.TrimSpace(fields[1]),
		}
		if len(fields) > 2 {
			row.Status = strings.TrimSpace(fields[2])
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read import source: %w", err)
	}
	return rows, skipped, nil
}

// BulkImport validates rows and appends them as the user's tasks. Either
// every row is written or none is.
func (r *Repository) BulkImport(userID uint32, rows []ImportRow) ([]Task, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	tasks := make([]Task, 0, len(rows))
	var issues []RowIssue
	for _, row := range rows {
		status, err := ParseStatus(row.Status)
		if err == nil {
			err = ValidateDate(row.Date)
		}
		if err != nil {
			issues = append(issues, RowIssue{Line: row.Line, Text: row.Date + store.Delimiter + row.Content, Err: err})
			continue
		}
		tasks = append(tasks, Task{
			Date:    row.Date,
			Content: row.Content,
			UserID:  userID,
			Status:  status,
		})
	}
	if len(issues) > 0 {
		return nil, &ImportError{Issues: issues}
	}

	first, err := r.file.Reserve(len(tasks))
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].ID = first + uint32(i)
	}
	if err := r.file.AppendAll(tasks); err != nil {
		return nil, fmt.Errorf("save imported tasks: %w", err)
	}
	r.logger.Info("tasks imported", "count", len(tasks), "first_id", first, "user_id", userID)
	return tasks, nil
}

// ImportFile parses the import source at path and imports its rows.
// Short rows are logged and skipped.
func (r *Repository) ImportFile(userID uint32, path string) ([]Task, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrImportSourceMissing, path)
		}
		return nil, fmt.Errorf("open import source: %w", err)
	}
	defer f.Close()

	rows, skipped, err := ParseImport(f)
	if err != nil {
		return nil, err
	}
	for _, issue := range skipped {
		r.logger.Warn("skipping short import row", "file", path, "line", issue.Line)
	}
	return r.BulkImport(userID, rows)
}
