// Package tui renders run progress on the terminal.
package tui

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Run starts the TUI on w and blocks until the event channel is closed or a
// DoneEvent arrives.
func Run(events <-chan Event, w io.Writer, opts ...ModelOption) error {
	model := NewModel(events, opts...)
	// render inline, not on the alt screen
	p := tea.NewProgram(model, tea.WithOutput(w), tea.WithInput(nil))
	_, err := p.Run()
	return err
}

// ciVars are set by common CI systems.
var ciVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"JENKINS_URL",
	"TRAVIS",
	"CIRCLECI",
	"GITLAB_CI",
	"BUILDKITE",
}

// ShouldUseTUI returns true if stderr is a terminal and no CI environment
// is detected.
func ShouldUseTUI() bool {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return false
	}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return false
		}
	}
	return true
}

// SendEvent sends an event to the channel in a non-blocking manner.
func SendEvent(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- e:
	default:
		// drop the event if the channel is full
	}
}

// SendTaskEvent is a convenience function for sending task events.
func SendTaskEvent(ch chan<- Event, task TaskID, status TaskStatus, opts ...TaskEventOption) {
	e := TaskEvent{
		Task:   task,
		Status: status,
	}
	for _, opt := range opts {
		opt(&e)
	}
	SendEvent(ch, e)
}

// TaskEventOption is a functional option for TaskEvent.
type TaskEventOption func(*TaskEvent)

// WithMessage sets the message on a TaskEvent.
func WithMessage(msg string) TaskEventOption {
	return func(e *TaskEvent) {
		e.Message = msg
	}
}

// WithCount sets the count on a TaskEvent.
func WithCount(count int) TaskEventOption {
	return func(e *TaskEvent) {
		e.Count = count
	}
}

// WithProgress sets the progress on a TaskEvent.
func WithProgress(progress float64) TaskEventOption {
	return func(e *TaskEvent) {
		e.Progress = progress
	}
}

// WithError sets the error on a TaskEvent.
func WithError(err error) TaskEventOption {
	return func(e *TaskEvent) {
		e.Error = err
	}
}
