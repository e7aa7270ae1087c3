package store

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
)

// SequenceSuffix is appended to a store path to name its id counter file.
const SequenceSuffix = ".seq"

// ErrIDSpaceExhausted is returned when no more 32-bit ids are available.
var ErrIDSpaceExhausted = errors.New("id space exhausted")

// sequence is the persisted high-water mark of assigned ids.
type sequence struct {
	path string
}

// load returns the last assigned id, or 0 when the counter file is absent or
// unreadable as a number. The max-id scan covers the unreadable case.
func (s sequence) load() (uint32, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read id sequence: %w", err)
	}
	last, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return 0, nil
	}
	return uint32(last), nil
}

func (s sequence) store(last uint32) error {
	content := strconv.FormatUint(uint64(last), 10) + "\n"
	if err := atomic.WriteFile(s.path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write id sequence: %w", err)
	}
	if err := os.Chmod(s.path, filePerm); err != nil {
		return fmt.Errorf("set id sequence permissions: %w", err)
	}
	return nil
}

// reserve hands out n consecutive ids following max(counter, highest).
func (s sequence) reserve(highest uint32, n int) (uint32, error) {
	if n <= 0 {
		return 0, fmt.Errorf("reserve %d ids: count must be positive", n)
	}
	last, err := s.load()
	if err != nil {
		return 0, err
	}
	if highest > last {
		last = highest
	}
	if uint64(last)+uint64(n) > math.MaxUint32 {
		return 0, ErrIDSpaceExhausted
	}
	first := last + 1
	if err := s.store(last + uint32(n)); err != nil {
		return 0, err
	}
	return first, nil
}
