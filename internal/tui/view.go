// pattern: Imperative Shell

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"projpal/internal/config"
	"projpal/internal/logging"
)

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.menuOpen {
		return m.renderActionMenu()
	}

	layout := ComputeLayout(m.width, m.height, m.logPanelOpen)

	parts := []string{m.renderHeader(layout), m.renderContent(layout)}

	if m.logPanelOpen {
		parts = append(parts,
			m.styles.SeparatorStyle().Render(strings.Repeat("─", layout.Separator.Width)),
			m.renderLogPanel(layout),
		)
	}

	var errorLine string
	if m.err != nil {
		errorLine = m.styles.ErrorStyle().Render(ansi.Truncate("Error: "+m.err.Error(), layout.StatusBar.Width, "…"))
	}
	parts = append(parts, errorLine, m.renderStatusBar(layout.StatusBar.Width))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader(layout Layout) string {
	title := m.styles.TitleStyle().Render("projpal")
	root := m.root
	if root == "" {
		root = "no projects path"
	}
	if layout.Header.Width > 0 {
		root = ansi.Truncate(root, layout.Header.Width, "…")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, m.styles.SubtitleStyle().Render(root))
}

func (m Model) renderContent(layout Layout) string {
	box := lipgloss.NewStyle().Height(layout.Content.Height).PaddingLeft(1)

	switch {
	case m.loading && len(m.projectList.Items()) == 0:
		return box.Render(m.spinner.View() + " " + m.styles.InfoStyle().Render("Scanning "+m.root+"..."))

	case m.root == "":
		hint := fmt.Sprintf("Set projects_path in %s or %s to list projects.", m.configPathHint(), config.ProjectsPathEnv)
		return box.Render(m.styles.InfoStyle().Render(hint))

	case len(m.projectList.Items()) == 0:
		return box.Render(m.styles.InfoStyle().Render("No projects found in " + m.root))
	}

	return box.Render(m.projectList.View())
}

func (m Model) configPathHint() string {
	if m.configPath == "" {
		return "the config file"
	}
	return m.configPath
}

// renderActionMenu renders the action menu for the chosen project as a centered modal.
func (m Model) renderActionMenu() string {
	title := m.styles.TitleStyle().Render(m.menuProject.Name)
	subtitle := m.styles.SubtitleStyle().Render(m.menuProject.Path)

	var lines []string
	for i, action := range ProjectActions(m.editorName()) {
		label := fmt.Sprintf("%s  %s", action.Key, action.Label)
		if i == m.menuCursor {
			lines = append(lines, m.styles.SelectedStyle().Render("▸ "+label))
		} else {
			lines = append(lines, m.styles.InfoStyle().Render("  "+label))
		}
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitle,
		"",
		lipgloss.JoinVertical(lipgloss.Left, lines...),
		"",
		m.styles.HelpStyle().Render("↑/↓: select • enter: run • esc: close"),
	)
	boxed := m.styles.BoxStyle().Render(view)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxed)
	}
	return boxed
}

// renderStatusBar renders the status message on the left and key help on the right.
func (m Model) renderStatusBar(width int) string {
	var statusText string
	switch m.statusLevel {
	case StatusLoading:
		statusText = m.spinner.View() + " " + m.styles.InfoStatusStyle().Render(m.statusMessage)
	case StatusSuccess:
		statusText = m.styles.SuccessStyle().Render("✓ " + m.statusMessage)
	case StatusError:
		statusText = m.styles.ErrorStyle().Render("✗ "+m.statusMessage) + m.styles.HelpStyle().Render(" (esc to clear)")
	default:
		if m.statusMessage != "" {
			statusText = m.styles.InfoStatusStyle().Render(m.statusMessage)
		}
	}

	help := m.styles.HelpStyle().Render(m.contextualHelp())

	spacerWidth := width - lipgloss.Width(statusText) - lipgloss.Width(help) - 2
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, statusText, strings.Repeat(" ", spacerWidth), help)
}

func (m Model) contextualHelp() string {
	switch {
	case m.projectList.SettingFilter():
		return "enter: apply filter • esc: cancel"
	case len(m.projectList.Items()) == 0:
		return "r: rescan • l: logs • q: quit"
	case listIsFiltered(m.projectList):
		return "enter: actions • o/y/e: open/copy/" + m.editorName() + " • esc: clear filter • q: quit"
	case m.logPanelOpen:
		return "enter: actions • [/]: scroll logs • v: debug logs • l: hide logs • q: quit"
	default:
		return "enter: actions • o/y/e: open/copy/" + m.editorName() + " • /: filter • r: rescan • l: logs • q: quit"
	}
}

// renderLogEntry formats a single log entry for display.
func (m Model) renderLogEntry(entry logging.LogEntry) string {
	ts := m.styles.SubtitleStyle().Render(entry.Timestamp.Format("15:04:05"))
	level := m.styles.LogLevelStyle(entry.Level).Render(fmt.Sprintf("%-5s", entry.Level))
	scope := m.styles.AccentStyle().Render("[" + entry.Scope + "]")

	line := fmt.Sprintf("%s %s %s %s", ts, level, scope, entry.Message)
	if err, ok := entry.Fields["error"]; ok {
		line += m.styles.ErrorStyle().Render(fmt.Sprintf(" error=%v", err))
	}
	return line
}

func (m Model) renderLogPanel(layout Layout) string {
	visible := len(m.visibleLogEntries())
	header := m.styles.AccentStyle().Render(fmt.Sprintf(" Logs (%d, %s and above)", visible, m.logMinLevel))
	if visible == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			lipgloss.NewStyle().Height(layout.Logs.Height-1).Render(m.styles.InfoStyle().Render("No log entries")),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.logViewport.View())
}
