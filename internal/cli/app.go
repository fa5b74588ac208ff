// pattern: Functional Core
package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// ErrUsage is returned when the arguments do not name a known command. The
// help text has already been printed.
var ErrUsage = errors.New("unknown command")

// Command represents a single CLI command with its metadata and handler.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Run     func(args []string) error
}

// Group represents a group of related commands.
type Group struct {
	Name     string
	Summary  string
	Commands map[string]*Command
}

// App represents the top-level CLI application with groups and ungrouped commands.
type App struct {
	groups   map[string]*Group
	commands map[string]*Command
	order    []string
	version  string
	stderr   io.Writer
}

// NewApp creates a new CLI application with the given version.
func NewApp(version string) *App {
	return &App{
		groups:   make(map[string]*Group),
		commands: make(map[string]*Command),
		version:  version,
		stderr:   os.Stderr,
	}
}

// SetStderr redirects help and usage output.
func (a *App) SetStderr(w io.Writer) {
	a.stderr = w
}

// AddGroup creates and registers a new command group.
func (a *App) AddGroup(name, summary string) *Group {
	g := &Group{
		Name:     name,
		Summary:  summary,
		Commands: make(map[string]*Command),
	}
	a.groups[name] = g
	return g
}

// AddCommand registers an ungrouped (top-level) command. Help lists
// commands in registration order.
func (a *App) AddCommand(cmd *Command) {
	if _, exists := a.commands[cmd.Name]; !exists {
		a.order = append(a.order, cmd.Name)
	}
	a.commands[cmd.Name] = cmd
}

// AddCommand registers a command in the group.
func (g *Group) AddCommand(cmd *Command) {
	g.Commands[cmd.Name] = cmd
}

// Execute dispatches the CLI arguments to the appropriate command.
// Returns true if the TUI should be launched instead.
func (a *App) Execute(args []string) (bool, error) {
	if len(args) == 0 {
		return true, nil
	}

	name := args[0]
	if name == "help" || name == "--help" || name == "-h" {
		a.PrintHelp(a.stderr)
		return false, nil
	}

	if cmd, ok := a.commands[name]; ok {
		return false, a.run(cmd, args[1:])
	}

	if group, ok := a.groups[name]; ok {
		if len(args) < 2 || args[1] == "help" || args[1] == "--help" || args[1] == "-h" {
			group.PrintHelp(a.stderr)
			return false, nil
		}
		if cmd, ok := group.Commands[args[1]]; ok {
			return false, a.run(cmd, args[2:])
		}
		group.PrintHelp(a.stderr)
		return false, fmt.Errorf("%w: %s %s", ErrUsage, name, args[1])
	}

	a.PrintHelp(a.stderr)
	return false, fmt.Errorf("%w: %s", ErrUsage, name)
}

func (a *App) run(cmd *Command, args []string) error {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			_, _ = fmt.Fprintf(a.stderr, "%s\n", cmd.Usage)
			return nil
		}
	}
	return cmd.Run(args)
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Usage: projpal [options] [command]\n\n")
	_, _ = fmt.Fprintf(w, "Commands:\n")
	_, _ = fmt.Fprintf(w, "  %-10s %s\n", "(none)", "Launch interactive TUI")

	for _, name := range a.order {
		cmd := a.commands[name]
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}

	if len(a.groups) > 0 {
		_, _ = fmt.Fprintf(w, "\nCommand Groups:\n")
		for _, name := range slices.Sorted(maps.Keys(a.groups)) {
			group := a.groups[name]
			_, _ = fmt.Fprintf(w, "  %-10s %s\n", group.Name, group.Summary)
		}
		_, _ = fmt.Fprintf(w, "\nUse \"projpal <group> help\" for group details.\n")
	}

	_, _ = fmt.Fprintf(w, "\nOptions:\n")
	_, _ = fmt.Fprintf(w, "  -c, --config-dir string   config directory (default $XDG_CONFIG_HOME/projpal)\n")
	_, _ = fmt.Fprintf(w, "  -r, --root string         projects root for this run, overrides projects_path\n")
}

// PrintHelp prints help for a specific group.
func (g *Group) PrintHelp(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Usage: projpal %s <command>\n\n", g.Name)
	_, _ = fmt.Fprintf(w, "Commands:\n")
	for _, name := range slices.Sorted(maps.Keys(g.Commands)) {
		cmd := g.Commands[name]
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	_, _ = fmt.Fprintf(w, "\nUse \"projpal %s <command> --help\" for command details.\n", g.Name)
}
