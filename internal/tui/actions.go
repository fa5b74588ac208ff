// pattern: Imperative Shell

package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"projpal/internal/actions"
	"projpal/internal/discovery"
)

// ActionKind identifies one of the per-project actions.
type ActionKind int

const (
	ActionOpen ActionKind = iota
	ActionCopy
	ActionEditor
)

func (k ActionKind) String() string {
	switch k {
	case ActionOpen:
		return "open"
	case ActionCopy:
		return "copy"
	case ActionEditor:
		return "editor"
	default:
		return "unknown"
	}
}

// MenuAction is an entry in the action menu.
type MenuAction struct {
	Kind  ActionKind
	Label string
	Key   string // Shortcut, also usable from the list
}

// ProjectActions returns the action menu entries in display order.
func ProjectActions(editorName string) []MenuAction {
	return []MenuAction{
		{Kind: ActionOpen, Label: "Open in file manager", Key: "o"},
		{Kind: ActionCopy, Label: "Copy path", Key: "y"},
		{Kind: ActionEditor, Label: "Open with " + editorName, Key: "e"},
	}
}

// actionForKey maps a shortcut key to its action.
func actionForKey(key string) (ActionKind, bool) {
	switch key {
	case "o":
		return ActionOpen, true
	case "y", "c":
		return ActionCopy, true
	case "e":
		return ActionEditor, true
	}
	return 0, false
}

// actionResultMsg reports the outcome of a project action.
type actionResultMsg struct {
	action  ActionKind
	project discovery.Project
	method  actions.Method
	err     error
}

func (m Model) editorName() string {
	if m.editor == nil {
		return "editor"
	}
	return m.editor.Name()
}

// runAction starts the action for p and returns the command that performs it.
func (m *Model) runAction(kind ActionKind, p discovery.Project) tea.Cmd {
	m.logger.Debug("running action", "action", kind.String(), "project", p.Name, "path", p.Path)

	switch kind {
	case ActionOpen:
		opener := m.opener
		return func() tea.Msg {
			return actionResultMsg{action: kind, project: p, err: opener.Open(p.Path)}
		}

	case ActionCopy:
		clip := m.clipboard
		return func() tea.Msg {
			method, err := clip.Copy(p.Path)
			return actionResultMsg{action: kind, project: p, method: method, err: err}
		}

	case ActionEditor:
		editor := m.editor
		if editor == nil {
			return func() tea.Msg {
				return actionResultMsg{action: kind, project: p, err: fmt.Errorf("no editor configured")}
			}
		}
		spin := m.setStatus(StatusLoading, fmt.Sprintf("Opening %s with %s...", p.Name, editor.Name()))
		return tea.Batch(spin, func() tea.Msg {
			return actionResultMsg{action: kind, project: p, err: editor.Launch(context.Background(), p.Path)}
		})
	}
	return nil
}

// handleActionResult turns an action outcome into a status notification.
func (m Model) handleActionResult(msg actionResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error("action failed", "action", msg.action.String(), "path", msg.project.Path, "error", msg.err)
		return m, m.setError(m.failureMessage(msg.action), msg.err)
	}

	m.logger.Info("action completed", "action", msg.action.String(), "path", msg.project.Path)

	switch msg.action {
	case ActionOpen:
		return m, m.setStatus(StatusSuccess, "Opened in file manager")
	case ActionCopy:
		text := "Path copied to clipboard"
		if msg.method == actions.MethodOSC52 {
			text += " (OSC52)"
		}
		return m, m.setStatus(StatusSuccess, text)
	case ActionEditor:
		if m.editor != nil && m.editor.CloseOnLaunch() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.setStatus(StatusSuccess, "Opened with "+m.editorName())
	}
	return m, nil
}

func (m Model) failureMessage(kind ActionKind) string {
	switch kind {
	case ActionOpen:
		return "Failed to open in file manager"
	case ActionCopy:
		return "Failed to copy path"
	default:
		return "Failed to open with " + m.editorName()
	}
}
