// pattern: Functional Core

package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// StatusLevel classifies the message shown in the status bar.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusError
	StatusLoading
)

func (l StatusLevel) String() string {
	switch l {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusLoading:
		return "loading"
	default:
		return "info"
	}
}

// statusClearDelay is how long success and info messages stay visible.
const statusClearDelay = 3 * time.Second

// errorClearDelay is how long an error stays up unless dismissed with esc.
const errorClearDelay = 10 * time.Second

// clearStatusMsg clears the status bar if it still shows message seq.
type clearStatusMsg struct {
	seq int
}

// setStatus replaces the status message and schedules its removal. Errors
// stay up longer than other messages; loading lasts until replaced.
func (m *Model) setStatus(level StatusLevel, message string) tea.Cmd {
	m.statusSeq++
	m.statusLevel = level
	m.statusMessage = message
	if level != StatusError {
		m.err = nil
	}

	delay := statusClearDelay
	switch level {
	case StatusLoading:
		return m.spinner.Tick
	case StatusError:
		delay = errorClearDelay
	}
	seq := m.statusSeq
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m *Model) setError(message string, err error) tea.Cmd {
	cmd := m.setStatus(StatusError, message)
	m.err = err
	return cmd
}

func (m *Model) clearStatus() {
	m.statusSeq++
	m.statusLevel = StatusInfo
	m.statusMessage = ""
	m.err = nil
}
