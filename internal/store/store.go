package store

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

const (
	filePerm = 0644
	dirPerm  = 0755

	// maxLineSize bounds a single row. Rows are short; this only guards
	// against reading a binary file by mistake.
	maxLineSize = 1 << 20
)

// SkipFunc is called for every line dropped during ReadAll.
// line is 1-based.
type SkipFunc func(path string, line int, text string, err error)

// Option configures a File.
type Option func(*options)

type options struct {
	onSkip SkipFunc
}

// WithSkipFunc registers a callback for malformed lines.
func WithSkipFunc(fn SkipFunc) Option {
	return func(o *options) {
		o.onSkip = fn
	}
}

// File is a store file holding records of type R.
type File[R any] struct {
	path   string
	codec  Codec[R]
	seq    sequence
	onSkip SkipFunc
}

// OpenOrCreate opens path for reading, creating an empty file (and its
// parent directory) when it does not exist yet.
func OpenOrCreate(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open store file: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	created, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, filePerm)
	if err != nil {
		return nil, fmt.Errorf("create store file: %w", err)
	}
	return created, nil
}

// Open returns a File for path, creating the file when absent.
func Open[R any](path string, codec Codec[R], opts ...Option) (*File[R], error) {
	if path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	f, err := OpenOrCreate(path)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close store file: %w", err)
	}
	return &File[R]{
		path:   path,
		codec:  codec,
		seq:    sequence{path: path + SequenceSuffix},
		onSkip: o.onSkip,
	}, nil
}

// Path returns the store file path.
func (s *File[R]) Path() string {
	return s.path
}

// ReadAll decodes every usable line in file order.
func (s *File[R]) ReadAll() ([]R, error) {
	f, err := OpenOrCreate(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []R
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		r, err := s.codec.Decode(text)
		if err != nil {
			if s.onSkip != nil {
				s.onSkip(s.path, lineNo, text, err)
			}
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read store file %s: %w", s.path, err)
	}
	return records, nil
}

// NextID assigns and returns the next identifier.
func (s *File[R]) NextID() (uint32, error) {
	return s.Reserve(1)
}

// Reserve assigns n consecutive identifiers and returns the first one.
func (s *File[R]) Reserve(n int) (uint32, error) {
	records, err := s.ReadAll()
	if err != nil {
		return 0, err
	}
	var highest uint32
	for _, r := range records {
		if id := s.codec.ID(r); id > highest {
			highest = id
		}
	}
	first, err := s.seq.reserve(highest, n)
	if err != nil {
		return 0, fmt.Errorf("assign id in %s: %w", s.path, err)
	}
	return first, nil
}

// Append writes one record at the end of the file.
func (s *File[R]) Append(r R) error {
	return s.AppendAll([]R{r})
}

// AppendAll writes records at the end of the file in a single write.
func (s *File[R]) AppendAll(records []R) error {
	if len(records) == 0 {
		return nil
	}
	data := s.encode(records)
	terminated, err := endsWithNewline(s.path)
	if err != nil {
		return err
	}
	if !terminated {
		data = append([]byte{'\n'}, data...)
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, filePerm)
	if err != nil {
		return fmt.Errorf("open store file for append: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("append to store file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close store file: %w", err)
	}
	return nil
}

// Rewrite replaces the file content with records, in order.
func (s *File[R]) Rewrite(records []R) error {
	if err := atomic.WriteFile(s.path, bytes.NewReader(s.encode(records))); err != nil {
		return fmt.Errorf("rewrite store file: %w", err)
	}
	if err := os.Chmod(s.path, filePerm); err != nil {
		return fmt.Errorf("set store file permissions: %w", err)
	}
	return nil
}

// endsWithNewline reports whether path is empty, absent, or ends with '\n'.
func endsWithNewline(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat store file: %w", err)
	}
	if info.Size() == 0 {
		return true, nil
	}
	var last [1]byte
	if _, err := f.ReadAt(last[:], info.Size()-1); err != nil {
		return false, fmt.Errorf("read store file tail: %w", err)
	}
	return last[0] == '\n', nil
}

func (s *File[R]) encode(records []R) []byte {
	var buf bytes.Buffer
	for _, r := range records {
		buf.WriteString(s.codec.Encode(r))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
