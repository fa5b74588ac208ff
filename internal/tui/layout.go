// pattern: Functional Core

package tui

// Region defines a rectangular area within the terminal.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Layout holds computed regions for all UI components.
type Layout struct {
	Header    Region // Title + projects root
	Content   Region // Project list
	Separator Region // Rule above the log panel, zero when closed
	Logs      Region // Log panel, zero when closed
	StatusBar Region
}

const (
	headerHeight    = 2
	statusBarHeight = 1
	errorLineHeight = 1 // Reserved so an error line never pushes the status bar off screen
	separatorHeight = 1
	minContent      = 3
)

// ComputeLayout calculates regions based on terminal dimensions. With the
// log panel open the space below the header splits 60/40 (list/logs).
func ComputeLayout(width, height int, logPanelOpen bool) Layout {
	available := height - headerHeight - statusBarHeight - errorLineHeight
	if available < minContent {
		available = minContent
	}

	contentHeight := available
	logsHeight := 0
	if logPanelOpen {
		logsHeight = available * 2 / 5
		if logsHeight < separatorHeight+1 {
			logsHeight = separatorHeight + 1
		}
		contentHeight = available - logsHeight
		if contentHeight < 1 {
			contentHeight = 1
		}
		logsHeight -= separatorHeight
	}

	y := 0
	header := Region{Y: y, Width: width, Height: headerHeight}
	y += headerHeight

	content := Region{Y: y, Width: width, Height: contentHeight}
	y += contentHeight

	var separator, logs Region
	if logPanelOpen {
		separator = Region{Y: y, Width: width, Height: separatorHeight}
		y += separatorHeight
		logs = Region{Y: y, Width: width, Height: logsHeight}
		y += logsHeight
	}
	y += errorLineHeight

	return Layout{
		Header:    header,
		Content:   content,
		Separator: separator,
		Logs:      logs,
		StatusBar: Region{Y: y, Width: width, Height: statusBarHeight},
	}
}

// ListSize returns the width and height to give the project list.
func (l Layout) ListSize() (int, int) {
	w := l.Content.Width - 2
	if w < 1 {
		w = 1
	}
	h := l.Content.Height
	if h < 1 {
		h = 1
	}
	return w, h
}

// LogViewportSize returns the log viewport size, leaving a line for the
// panel header.
func (l Layout) LogViewportSize() (int, int) {
	h := l.Logs.Height - 1
	if h < 1 {
		h = 1
	}
	return l.Logs.Width, h
}
