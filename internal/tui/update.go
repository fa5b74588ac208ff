// pattern: Imperative Shell

package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"projpal/internal/config"
	"projpal/internal/discovery"
	"projpal/internal/events"
	"projpal/internal/logging"
)

// doubleCtrlCWindow is the maximum time between two ctrl+c presses to trigger quit.
const doubleCtrlCWindow = 500 * time.Millisecond

const quitHint = "ctrl+c ctrl+c to quit"

const (
	maxLogBatch   = 50
	maxLogEntries = 200
)

// projectsLoadedMsg carries the result of scanning root.
type projectsLoadedMsg struct {
	root     string
	projects []discovery.Project
	err      error
}

// logEntriesMsg delivers log entries from the logging channel.
type logEntriesMsg struct {
	entries []logging.LogEntry
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.loading && m.statusLevel != StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case projectsLoadedMsg:
		return m.handleProjectsLoaded(msg)

	case events.ConfigChangedMsg:
		return m.applyConfig(msg.Config)

	case actionResultMsg:
		return m.handleActionResult(msg)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.clearStatus()
		}
		return m, nil

	case logEntriesMsg:
		m.appendLogEntries(msg.entries)
		return m, consumeLogEntries(m.logSource)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.projectList, cmd = m.projectList.Update(msg)
	return m, cmd
}

func (m *Model) resize() {
	layout := ComputeLayout(m.width, m.height, m.logPanelOpen)
	m.projectList.SetSize(layout.ListSize())
	m.logViewport.Width, m.logViewport.Height = layout.LogViewportSize()
	m.refreshLogViewport()
}

func (m Model) handleProjectsLoaded(msg projectsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.root != m.root {
		m.logger.Debug("dropping stale scan result", "root", msg.root, "current", m.root)
		return m, nil
	}
	m.loading = false

	if msg.err != nil {
		m.logger.Error("error loading projects", "root", msg.root, "error", msg.err)
		return m, m.projectList.SetItems(nil)
	}

	m.logger.Info("projects loaded", "root", msg.root, "count", len(msg.projects))
	return m, m.projectList.SetItems(toListItems(msg.projects))
}

// applyConfig installs a reloaded configuration. A different projects root
// clears the list and starts a fresh scan.
func (m Model) applyConfig(cfg config.Config) (tea.Model, tea.Cmd) {
	m.styles = NewStyles(cfg.Theme)
	m.projectList.SetDelegate(newProjectDelegate(m.styles))
	m.spinner.Style = m.styles.AccentStyle()
	if m.editorFor != nil {
		m.editor = m.editorFor(cfg.Editor)
	}

	root := cfg.ResolveProjectsPath()
	if root == m.root {
		m.logger.Debug("config reloaded", "projects_path", root)
		return m, nil
	}

	m.logger.Info("projects path changed", "from", m.root, "to", root)
	m.root = root
	m.menuOpen = false
	m.projectList.ResetFilter()
	cmd := m.projectList.SetItems(nil)
	if root == "" {
		m.loading = false
		return m, cmd
	}
	return m, tea.Batch(cmd, m.startScan())
}

func (m *Model) startScan() tea.Cmd {
	m.loading = true
	return tea.Batch(m.scanProjects(m.root), m.spinner.Tick)
}

func (m *Model) appendLogEntries(entries []logging.LogEntry) {
	m.logEntries = append(m.logEntries, entries...)
	if over := len(m.logEntries) - maxLogEntries; over > 0 {
		m.logEntries = append([]logging.LogEntry(nil), m.logEntries[over:]...)
	}
	m.refreshLogViewport()
}

func (m *Model) refreshLogViewport() {
	atBottom := m.logViewport.AtBottom()
	var lines []string
	for _, entry := range m.visibleLogEntries() {
		lines = append(lines, m.renderLogEntry(entry))
	}
	m.logViewport.SetContent(strings.Join(lines, "\n"))
	if atBottom {
		m.logViewport.GotoBottom()
	}
}

// visibleLogEntries returns the buffered entries at or above logMinLevel.
func (m Model) visibleLogEntries() []logging.LogEntry {
	visible := make([]logging.LogEntry, 0, len(m.logEntries))
	for _, entry := range m.logEntries {
		if entry.AtLeast(m.logMinLevel) {
			visible = append(visible, entry)
		}
	}
	return visible
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug("key pressed", "key", msg.String(), "menuOpen", m.menuOpen, "filtering", m.projectList.SettingFilter())

	if msg.Type == tea.KeyCtrlD {
		m.logger.Debug("quit via ctrl+d")
		m.quitting = true
		return m, tea.Quit
	}
	if msg.Type == tea.KeyCtrlC {
		now := time.Now()
		if !m.lastCtrlCTime.IsZero() && now.Sub(m.lastCtrlCTime) <= doubleCtrlCWindow {
			m.logger.Debug("quit via double ctrl+c")
			m.quitting = true
			return m, tea.Quit
		}
		m.lastCtrlCTime = now
		return m, m.setStatus(StatusInfo, quitHint)
	}

	if m.menuOpen {
		return m.handleMenuKey(msg)
	}

	// While the filter input has focus every key is text.
	if m.projectList.SettingFilter() {
		return m.forwardToList(msg)
	}

	if msg.Type == tea.KeyEscape && m.statusLevel == StatusError {
		m.clearStatus()
		return m, nil
	}

	switch key := msg.String(); key {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		p, ok := selectedProject(m.projectList)
		if !ok {
			return m, nil
		}
		m.menuOpen = true
		m.menuCursor = 0
		m.menuProject = p
		return m, nil

	case "o", "y", "c", "e":
		p, ok := selectedProject(m.projectList)
		if !ok {
			return m, nil
		}
		kind, _ := actionForKey(key)
		return m, m.runAction(kind, p)

	case "r":
		if m.root == "" {
			return m, m.setStatus(StatusInfo, "No projects path configured")
		}
		m.logger.Info("rescanning projects", "root", m.root)
		return m, m.startScan()

	case "l":
		m.logPanelOpen = !m.logPanelOpen
		m.resize()
		if m.logPanelOpen {
			m.logViewport.GotoBottom()
		}
		return m, nil

	case "v":
		if !m.logPanelOpen {
			return m, nil
		}
		if m.logMinLevel == "DEBUG" {
			m.logMinLevel = "INFO"
		} else {
			m.logMinLevel = "DEBUG"
		}
		m.refreshLogViewport()
		m.logViewport.GotoBottom()
		return m, nil

	case "[", "]":
		if m.logPanelOpen {
			if key == "[" {
				m.logViewport.ScrollUp(1)
			} else {
				m.logViewport.ScrollDown(1)
			}
		}
		return m, nil
	}

	return m.forwardToList(msg)
}

func (m Model) forwardToList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.projectList, cmd = m.projectList.Update(msg)
	return m, cmd
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := ProjectActions(m.editorName())

	switch key := msg.String(); key {
	case "esc", "q":
		m.menuOpen = false
		return m, nil

	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
		return m, nil

	case "down", "j":
		if m.menuCursor < len(entries)-1 {
			m.menuCursor++
		}
		return m, nil

	case "enter":
		m.menuOpen = false
		return m, m.runAction(entries[m.menuCursor].Kind, m.menuProject)

	default:
		if kind, ok := actionForKey(key); ok {
			m.menuOpen = false
			return m, m.runAction(kind, m.menuProject)
		}
	}
	return m, nil
}

// listIsFiltered reports whether a filter is narrowing the list.
func listIsFiltered(l list.Model) bool {
	return l.FilterState() == list.FilterApplied
}
