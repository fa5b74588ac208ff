// pattern: Imperative Shell

package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"projpal/internal/discovery"
)

// projectItem wraps a project for display in a list.
type projectItem struct {
	project discovery.Project
}

func (i projectItem) Title() string {
	return i.project.Name
}

func (i projectItem) Description() string {
	return i.project.Path
}

// FilterValue matches on name and branch. The path is left out since every
// project shares the root prefix.
func (i projectItem) FilterValue() string {
	if i.project.Branch == "" {
		return i.project.Name
	}
	return i.project.Name + " " + i.project.Branch
}

// projectDelegate renders a project as a title line with an optional branch
// tag and a dimmed path line.
type projectDelegate struct {
	styles *Styles
}

func newProjectDelegate(styles *Styles) projectDelegate {
	return projectDelegate{styles: styles}
}

func (d projectDelegate) Height() int {
	return 2
}

func (d projectDelegate) Spacing() int {
	return 1
}

func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(projectItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	titleStyle := d.styles.InfoStyle()
	descStyle := d.styles.SubtitleStyle()
	indicator := "  "
	if isSelected {
		titleStyle = d.styles.SelectedStyle()
		descStyle = d.styles.HelpStyle()
		indicator = d.styles.SelectedStyle().Render("▸ ")
	}

	title := titleStyle.Render(pi.project.Name)
	if pi.project.Branch != "" {
		title += " " + d.styles.BranchTagStyle().Render(pi.project.Branch)
	}

	// Leave room for the indent so long paths do not wrap
	pathWidth := m.Width() - 4
	path := pi.project.Path
	if pathWidth > 0 {
		path = ansi.Truncate(path, pathWidth, "…")
	}

	_, _ = fmt.Fprintf(w, "%s%s\n%s%s", indicator, title, "  ", descStyle.Render(path))
}

// toListItems converts projects to list items, keeping discovery order.
func toListItems(projects []discovery.Project) []list.Item {
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		items[i] = projectItem{project: p}
	}
	return items
}

// selectedProject returns the highlighted project, if any.
func selectedProject(l list.Model) (discovery.Project, bool) {
	pi, ok := l.SelectedItem().(projectItem)
	if !ok {
		return discovery.Project{}, false
	}
	return pi.project, true
}

var _ list.ItemDelegate = projectDelegate{}
