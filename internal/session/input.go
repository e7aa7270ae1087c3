package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Dicantnik/tasklist/internal/todo"
)

// errInvalidID is returned by promptID for input that is not a task id.
var errInvalidID = errors.New("invalid task id")

type lineResult struct {
	line string
	err  error
}

// input reads trimmed lines and gives up when ctx is done. At most one read
// is in flight at a time.
type input struct {
	r       *bufio.Reader
	pending chan lineResult
}

func newInput(r io.Reader) *input {
	return &input{r: bufio.NewReader(r)}
}

// readLine returns the next line without surrounding whitespace. It returns
// io.EOF once input is exhausted and ctx.Err() when ctx is cancelled first.
func (in *input) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if in.pending == nil {
		in.pending = make(chan lineResult, 1)
		go func(ch chan<- lineResult) {
			line, err := in.r.ReadString('\n')
			if err == io.EOF && line != "" {
				err = nil
			}
			ch <- lineResult{line: line, err: err}
		}(in.pending)
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-in.pending:
		in.pending = nil
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}

// prompt prints text and reads the answer.
func (s *Shell) prompt(ctx context.Context, text string) (string, error) {
	fmt.Fprintln(s.out, text)
	return s.in.readLine(ctx)
}

// promptDate asks until the answer is a valid task date.
func (s *Shell) promptDate(ctx context.Context, text string) (string, error) {
	for {
		answer, err := s.prompt(ctx, text)
		if err != nil {
			return "", err
		}
		if todo.ValidateDate(answer) == nil {
			return answer, nil
		}
		fmt.Fprintln(s.out, "Invalid date format. Please enter the date in the format YYYY-MM-DD.")
	}
}

// promptID asks for a task id. Non-numeric answers yield errInvalidID.
func (s *Shell) promptID(ctx context.Context, text string) (uint32, error) {
	answer, err := s.prompt(ctx, text)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(answer, 10, 32)
	if err != nil {
		return 0, errInvalidID
	}
	return uint32(id), nil
}
