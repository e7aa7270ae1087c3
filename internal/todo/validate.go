package todo

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Dicantnik/tasklist/internal/utils"
)

// SchemaURL identifies the embedded task row schema.
const SchemaURL = "https://github.com/Dicantnik/tasklist/task.schema.json"

//go:embed task.schema.json
var taskSchema string

// StoreReport is the outcome of ValidateStore.
type StoreReport struct {
	Path         string
	Tasks        int        // decoded rows
	Malformed    []RowIssue // rows the codec could not decode
	Invalid      []error    // decoded rows that violate the schema
	DuplicateIDs []uint32
}

// Valid reports whether no problem was found.
func (r *StoreReport) Valid() bool {
	return len(r.Malformed) == 0 && len(r.Invalid) == 0 && len(r.DuplicateIDs) == 0
}

// CompileSchema compiles the embedded task row schema.
func CompileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(SchemaURL, strings.NewReader(taskSchema)); err != nil {
		return nil, fmt.Errorf("load task schema: %w", err)
	}
	schema, err := compiler.Compile(SchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile task schema: %w", err)
	}
	return schema, nil
}

// ValidateStore checks the task store at path without modifying it.
func ValidateStore(path string) (*StoreReport, error) {
	schema, err := CompileSchema()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}
	defer f.Close()

	report := &StoreReport{Path: path}
	seen := make(map[uint32]bool)
	dup := make(map[uint32]bool)
	codec := Codec{}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		t, err := codec.Decode(text)
		if err != nil {
			report.Malformed = append(report.Malformed, RowIssue{Line: lineNo, Text: text, Err: err})
			continue
		}
		report.Tasks++
		if seen[t.ID] && !dup[t.ID] {
			dup[t.ID] = true
			report.DuplicateIDs = append(report.DuplicateIDs, t.ID)
		}
		seen[t.ID] = true
		report.Invalid = append(report.Invalid, validateTask(schema, t, fmt.Sprintf("line %d", lineNo))...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read task store: %w", err)
	}
	return report, nil
}

// validateTask validates one task against schema. Errors carry a path of
// the form "line 3.date".
func validateTask(schema *jsonschema.Schema, t Task, prefix string) []error {
	data, err := json.Marshal(t)
	if err != nil {
		return []error{&ValidationError{Field: prefix, Err: fmt.Errorf("failed to marshal task for validation: %w", err)}}
	}
	var obj interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return []error{&ValidationError{Field: prefix, Err: fmt.Errorf("failed to unmarshal task for validation: %w", err)}}
	}
	if err := schema.Validate(obj); err != nil {
		var errs []error
		appendSchemaErrors(&errs, err, prefix)
		return errs
	}
	return nil
}

func appendSchemaErrors(errs *[]error, err error, prefix string) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		*errs = append(*errs, &ValidationError{Field: prefix, Err: err})
		return
	}
	collectSchemaErrors(errs, ve, prefix)
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError, prefix string) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		field := utils.FieldPath(prefix, err.InstanceLocation)
		*errs = append(*errs, &ValidationError{Field: field, Err: errors.New(err.Message)})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause, prefix)
	}
}
