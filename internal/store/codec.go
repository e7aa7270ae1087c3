package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Delimiter separates fields within a row.
const Delimiter = ","

var (
	// ErrMalformedRow is returned by codecs for lines that cannot be decoded.
	ErrMalformedRow = errors.New("malformed row")
	// ErrDelimiterInField is returned when a value would break the row layout.
	ErrDelimiterInField = errors.New("field contains a delimiter or line break")
)

// Codec converts between a record type and its single-line representation.
type Codec[R any] interface {
	// Encode returns the row for r, without a trailing newline.
	Encode(r R) string
	// Decode parses one row. It returns an error wrapping ErrMalformedRow
	// when the row is unusable.
	Decode(line string) (R, error)
	// ID returns the record identifier.
	ID(r R) uint32
}

// SplitRow splits line into fields and checks that at least minFields are
// present. Fields beyond minFields are returned as-is; callers ignore them.
func SplitRow(line string, minFields int) ([]string, error) {
	fields := strings.Split(line, Delimiter)
	if len(fields) < minFields {
		return nil, fmt.Errorf("%w: got %d fields, want at least %d", ErrMalformedRow, len(fields), minFields)
	}
	return fields, nil
}

// JoinRow joins fields with the delimiter.
func JoinRow(fields ...string) string {
	return strings.Join(fields, Delimiter)
}

// ParseID parses an unsigned 32-bit identifier field.
func ParseID(field string) (uint32, error) {
	id, err := strconv.ParseUint(field, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", ErrMalformedRow, field)
	}
	return uint32(id), nil
}

// FormatID formats an identifier field.
func FormatID(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

// CheckField rejects values that cannot be stored without escaping.
func CheckField(name, value string) error {
	if strings.ContainsAny(value, Delimiter+"\r\n") {
		return fmt.Errorf("%s: %w", name, ErrDelimiterInField)
	}
	return nil
}
