package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"projpal/internal/actions"
	"projpal/internal/config"
	"projpal/internal/discovery"
	"projpal/internal/logging"
)

// scanTimeout bounds a single directory scan.
const scanTimeout = 10 * time.Second

// ProjectScanner lists projects under a root directory.
type ProjectScanner interface {
	Scan(ctx context.Context, root string) ([]discovery.Project, error)
}

// PathOpener reveals a path in the OS file manager.
type PathOpener interface {
	Open(path string) error
}

// ClipboardWriter places text on the clipboard.
type ClipboardWriter interface {
	Copy(text string) (actions.Method, error)
}

// EditorLauncher opens a project in an external editor.
type EditorLauncher interface {
	Name() string
	CloseOnLaunch() bool
	Launch(ctx context.Context, path string) error
}

// Deps are the side-effecting collaborators of the TUI.
type Deps struct {
	Scanner    ProjectScanner
	Opener     PathOpener
	Clipboard  ClipboardWriter
	EditorFor  func(config.EditorConfig) EditorLauncher
	Logs       logging.LoggerProvider
	LogEntries <-chan logging.LogEntry // Optional feed for the log panel
	ConfigPath string                  // Shown in the "no root configured" hint
}

// Model represents the TUI application state.
type Model struct {
	width  int
	height int
	styles *Styles

	root       string
	configPath string

	scanner   ProjectScanner
	opener    PathOpener
	clipboard ClipboardWriter
	editor    EditorLauncher
	editorFor func(config.EditorConfig) EditorLauncher

	logger    *logging.ScopedLogger
	logSource <-chan logging.LogEntry

	projectList list.Model
	spinner     spinner.Model
	loading     bool

	menuOpen    bool
	menuCursor  int
	menuProject discovery.Project

	statusLevel   StatusLevel
	statusMessage string
	statusSeq     int
	err           error

	logPanelOpen bool
	logEntries   []logging.LogEntry
	logMinLevel  string // Entries below this level are hidden from the panel
	logViewport  viewport.Model

	lastCtrlCTime time.Time
	quitting      bool
}

// NewModel creates a TUI model for cfg. The projects root is resolved from
// cfg; an empty root leaves the list empty and skips scanning.
func NewModel(cfg config.Config, deps Deps) Model {
	styles := NewStyles(cfg.Theme)

	projectList := list.New([]list.Item{}, newProjectDelegate(styles), 0, 0)
	projectList.SetShowTitle(false)
	projectList.SetShowStatusBar(false)
	projectList.SetShowHelp(false)
	projectList.SetFilteringEnabled(true)
	projectList.DisableQuitKeybindings()

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = styles.AccentStyle()

	logs := deps.Logs
	var logger *logging.ScopedLogger
	if logs != nil {
		logger = logs.For("tui")
	} else {
		logger = logging.NopLogger()
	}

	root := cfg.ResolveProjectsPath()

	m := Model{
		styles:      styles,
		root:        root,
		configPath:  deps.ConfigPath,
		scanner:     deps.Scanner,
		opener:      deps.Opener,
		clipboard:   deps.Clipboard,
		editorFor:   deps.EditorFor,
		logger:      logger,
		logSource:   deps.LogEntries,
		projectList: projectList,
		spinner:     sp,
		loading:     root != "",
		logMinLevel: "INFO",
		logViewport: viewport.New(0, 0),
	}
	if m.editorFor != nil {
		m.editor = m.editorFor(cfg.Editor)
	}

	m.logger.Info("tui initialized", "projects_path", root)
	return m
}

// Init starts the initial scan (when a root is configured) and the log feed.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.logSource != nil {
		cmds = append(cmds, consumeLogEntries(m.logSource))
	}
	if m.loading {
		cmds = append(cmds, m.scanProjects(m.root), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Root returns the projects root the model is currently showing.
func (m Model) Root() string {
	return m.root
}

// Projects returns the projects currently in the list, in display order.
func (m Model) Projects() []discovery.Project {
	items := m.projectList.Items()
	projects := make([]discovery.Project, 0, len(items))
	for _, item := range items {
		if pi, ok := item.(projectItem); ok {
			projects = append(projects, pi.project)
		}
	}
	return projects
}

// Loading reports whether a scan is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// scanProjects returns a command that scans root off the UI goroutine.
func (m Model) scanProjects(root string) tea.Cmd {
	scanner := m.scanner
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()

		projects, err := scanner.Scan(ctx, root)
		return projectsLoadedMsg{root: root, projects: projects, err: err}
	}
}

// consumeLogEntries waits for the next log entry and returns it together
// with anything else already buffered.
func consumeLogEntries(ch <-chan logging.LogEntry) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		entries := []logging.LogEntry{entry}
		for len(entries) < maxLogBatch {
			select {
			case e, ok := <-ch:
				if !ok {
					return logEntriesMsg{entries: entries}
				}
				entries = append(entries, e)
			default:
				return logEntriesMsg{entries: entries}
			}
		}
		return logEntriesMsg{entries: entries}
	}
}
