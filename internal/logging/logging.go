// Package logging configures diagnostics logging, writes per-session log
// files and tails them.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogSuffix is the extension of session log files.
const LogSuffix = ".log"

// SessionLog manages the log file of one program run.
type SessionLog struct {
	Dir       string
	SessionID string
	LogPath   string
	file      *os.File
}

// NewSessionLog creates baseDir if needed and opens a new log file named
// after the current time and sessionID.
func NewSessionLog(baseDir, sessionID string) (*SessionLog, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("log base dir is empty")
	}
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	name := logName(time.Now(), sessionID)
	logPath := filepath.Join(baseDir, name+LogSuffix)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &SessionLog{
		Dir:       baseDir,
		SessionID: sessionID,
		LogPath:   logPath,
		file:      file,
	}, nil
}

// Writer returns the underlying log file writer.
func (s *SessionLog) Writer() io.Writer {
	return s.file
}

// Close closes the log file.
func (s *SessionLog) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// ShortID returns the first eight characters of a session id.
func ShortID(sessionID string) string {
	id := sanitizeLabel(strings.ReplaceAll(sessionID, "-", ""))
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func logName(now time.Time, sessionID string) string {
	return fmt.Sprintf("%s-%s", now.UTC().Format("20060102-150405"), ShortID(sessionID))
}

func sanitizeLabel(input string) string {
	if strings.TrimSpace(input) == "" {
		return "session"
	}

	var b strings.Builder
	for i := 0; i < len(input); i++ {
		c := input[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '_' || c == '-'
		if !valid {
			b.WriteByte('_')
			continue
		}
		b.WriteByte(c)
	}

	label := strings.Trim(b.String(), "_")
	if label == "" {
		return "session"
	}
	return label
}

// SessionFile describes one session log file.
type SessionFile struct {
	Name    string // file name without LogSuffix
	Path    string
	ModTime time.Time
	Size    int64
}

// ListSessions returns the session logs in logDir, newest first.
// A missing directory yields no sessions.
func ListSessions(logDir string) ([]SessionFile, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log dir: %w", err)
	}

	var sessions []SessionFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), LogSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		sessions = append(sessions, SessionFile{
			Name:    strings.TrimSuffix(entry.Name(), LogSuffix),
			Path:    filepath.Join(logDir, entry.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].ModTime.Equal(sessions[j].ModTime) {
			return sessions[i].ModTime.After(sessions[j].ModTime)
		}
		return sessions[i].Name > sessions[j].Name
	})
	return sessions, nil
}

// FindLatestLog finds the latest session log file in a directory.
func FindLatestLog(logDir string) (string, error) {
	sessions, err := ListSessions(logDir)
	if err != nil {
		return "", err
	}
	if len(sessions) == 0 {
		return "", nil
	}
	return sessions[0].Path, nil
}

// TailLog tails a log file to a writer, optionally following until ctx is
// done.
func TailLog(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	// If n > 0, seek to show only last n lines
	if n > 0 {
		if err := tailSeek(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}

	if follow {
		return tailFollow(ctx, w, file)
	}

	_, err = io.Copy(w, file)
	return err
}

// tailSeek positions file at the start of its last n lines.
func tailSeek(file *os.File, n int) error {
	const chunk = 4096

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()

	// Ignore a trailing newline so it does not count as an empty line.
	end := size
	if end > 0 {
		last := make([]byte, 1)
		if _, err := file.ReadAt(last, end-1); err != nil {
			return err
		}
		if last[0] == '\n' {
			end--
		}
	}

	buf := make([]byte, chunk)
	found := 0
	pos := end
	for pos > 0 {
		readSize := int64(chunk)
		if pos < readSize {
			readSize = pos
		}
		pos -= readSize
		if _, err := file.ReadAt(buf[:readSize], pos); err != nil && err != io.EOF {
			return err
		}
		for i := readSize - 1; i >= 0; i-- {
			if buf[i] != '\n' {
				continue
			}
			found++
			if found == n {
				_, err := file.Seek(pos+i+1, io.SeekStart)
				return err
			}
		}
	}

	_, err = file.Seek(0, io.SeekStart)
	return err
}

// tailFollow copies file to w and keeps polling for appended data.
func tailFollow(ctx context.Context, w io.Writer, file *os.File) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if _, err := io.Copy(w, file); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
