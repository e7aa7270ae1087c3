// Package ui provides a read-only terminal dashboard over a user's tasks.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicantnik/tasklist/internal/todo"
)

// TaskSource is the subset of the task repository the dashboard reads.
type TaskSource interface {
	ListAll(userID uint32) ([]todo.Task, error)
	Path() string
}

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiModel)

// WithRefreshInterval sets how often the store is re-read.
func WithRefreshInterval(d time.Duration) TUIOption {
	return func(m *tuiModel) {
		if d > 0 {
			m.tickInterval = d
		}
	}
}

// RunTUI shows the user's tasks until the user quits or ctx is done.
func RunTUI(ctx context.Context, tasks TaskSource, userID uint32, username string, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(tasks, userID, username, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type tuiModel struct {
	tasks        TaskSource
	userID       uint32
	username     string
	loadErr      error
	data         *tuiData
	tickInterval time.Duration
	filter       todo.Status
	showHelp     bool
}

type tuiData struct {
	counts map[todo.Status]int
	tasks  []todo.Task
}

type tickMsg time.Time

func newTUIModel(tasks TaskSource, userID uint32, username string, opts ...TUIOption) *tuiModel {
	m := &tuiModel{
		tasks:        tasks,
		userID:       userID,
		username:     username,
		tickInterval: time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
		case "h", "?":
			m.showHelp = !m.showHelp
		case "1":
			m.filter = todo.StatusInProgress
		case "2":
			m.filter = todo.StatusCompleted
		case "0":
			m.filter = ""
		}
		return m, nil
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.username)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.filter != "" {
		fmt.Fprintf(&b, "Filter: %s (0 to clear)\n\n", m.filter)
	}

	if m.loadErr != nil {
		b.WriteString("Error loading task store:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}
	if m.data == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	writeOverview(&b, m.data)
	writeTasks(&b, m.data, m.filter)
	fmt.Fprintf(&b, "Task File: %s\n\n", m.tasks.Path())
	writeFooter(&b, m.tickInterval)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) refresh() {
	tasks, err := m.tasks.ListAll(m.userID)
	if err != nil {
		m.loadErr = err
		m.data = nil
		return
	}
	m.loadErr = nil
	m.data = buildTUIData(tasks)
}

func buildTUIData(tasks []todo.Task) *tuiData {
	data := &tuiData{
		counts: map[todo.Status]int{
			todo.StatusInProgress: 0,
			todo.StatusCompleted:  0,
		},
		tasks: tasks,
	}
	for _, t := range tasks {
		data.counts[t.Status]++
	}
	return data
}

func writeTitle(b *strings.Builder, username string) {
	title := "Tasks for " + username
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeOverview(b *strings.Builder, data *tuiData) {
	b.WriteString("Task Overview\n\n")
	fmt.Fprintf(b, "  In progress: %d  Completed: %d\n\n",
		data.counts[todo.StatusInProgress],
		data.counts[todo.StatusCompleted],
	)
}

func writeTasks(b *strings.Builder, data *tuiData, filter todo.Status) {
	shown := 0
	for _, t := range data.tasks {
		if filter != "" && t.Status != filter {
			continue
		}
		b.WriteString(formatTask(t))
		b.WriteString("\n")
		shown++
	}
	if shown == 0 {
		b.WriteString("  No tasks.\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Refresh data\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            Filter by in progress\n")
	b.WriteString("  2            Filter by completed\n")
	b.WriteString("  0            Clear filter\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	fmt.Fprintf(b, "Press h for help | q to quit | Refreshing every %s\n", interval)
}

func formatTask(t todo.Task) string {
	icon := " "
	if t.Status == todo.StatusCompleted {
		icon = "x"
	}
	content := t.Content
	if len(content) > 60 {
		content = content[:57] + "..."
	}
	return fmt.Sprintf("  %s [%d] %s  %s", icon, t.ID, t.Date, content)
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
