// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"projpal/internal/actions"
	"projpal/internal/config"
	"projpal/internal/discovery"
	"projpal/internal/instance"
	"projpal/internal/logging"
)

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
	Launch(ctx context.Context, path string) error
}

// Env is everything the commands need from the process.
type Env struct {
	Version      string
	ConfigDir    string
	RootOverride string
	Stdout       io.Writer
	Stderr       io.Writer
	Logs         logging.LoggerProvider
	Scanner      ProjectScanner
	Opener       PathOpener
	Clipboard    ClipboardWriter
	NewEditor    func(config.EditorConfig) EditorLauncher
}

// ResolveDataDir returns the directory holding the lock and log files.
func ResolveDataDir(configDir string) string {
	return config.Dir(configDir)
}

// LoadConfig loads the config file from configDir (or the default
// location) and applies a --root override.
func LoadConfig(configDir, rootOverride string) (config.Config, error) {
	cfg, err := config.LoadFrom(config.Path(configDir))
	if rootOverride != "" {
		cfg.ProjectsPath = rootOverride
	}
	return cfg, err
}

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(env Env) *App {
	if env.Stdout == nil {
		env.Stdout = os.Stdout
	}
	if env.Stderr == nil {
		env.Stderr = os.Stderr
	}
	r := &runner{env: env, logger: logging.NopLogger()}
	if env.Logs != nil {
		r.logger = env.Logs.For("cli")
	}

	app := NewApp(env.Version)
	app.SetStderr(env.Stderr)

	app.AddCommand(&Command{
		Name:    "list",
		Summary: "List projects with their branches",
		Usage:   "Usage: projpal list [--json]",
		Run:     r.list,
	})
	app.AddCommand(&Command{
		Name:    "path",
		Summary: "Print a project's path",
		Usage:   "Usage: projpal path <name>",
		Run:     r.path,
	})
	app.AddCommand(&Command{
		Name:    "open",
		Summary: "Open a project in the file manager",
		Usage:   "Usage: projpal open <name>",
		Run:     r.open,
	})
	app.AddCommand(&Command{
		Name:    "copy",
		Summary: "Copy a project's path to the clipboard",
		Usage:   "Usage: projpal copy <name>",
		Run:     r.copy,
	})
	app.AddCommand(&Command{
		Name:    "edit",
		Summary: "Open a project with the configured editor",
		Usage:   "Usage: projpal edit <name>",
		Run:     r.edit,
	})
	app.AddCommand(&Command{
		Name:    "cleanup",
		Summary: "Remove a stale lock left by a crashed instance",
		Usage:   "Usage: projpal cleanup",
		Run:     r.cleanup,
	})
	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: projpal version",
		Run: func([]string) error {
			_, err := fmt.Fprintln(env.Stdout, env.Version)
			return err
		},
	})

	configGroup := app.AddGroup("config", "Inspect the configuration")
	configGroup.AddCommand(&Command{
		Name:    "path",
		Summary: "Print the config file path",
		Usage:   "Usage: projpal config path",
		Run: func([]string) error {
			_, err := fmt.Fprintln(env.Stdout, config.Path(env.ConfigDir))
			return err
		},
	})
	configGroup.AddCommand(&Command{
		Name:    "show",
		Summary: "Print the effective configuration",
		Usage:   "Usage: projpal config show",
		Run:     r.showConfig,
	})

	return app
}

type runner struct {
	env    Env
	logger *logging.ScopedLogger
}

func (r *runner) config() (config.Config, error) {
	cfg, err := LoadConfig(r.env.ConfigDir, r.env.RootOverride)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (r *runner) projects(ctx context.Context) ([]discovery.Project, error) {
	cfg, err := r.config()
	if err != nil {
		return nil, err
	}
	root := cfg.ResolveProjectsPath()
	if root == "" {
		return nil, fmt.Errorf("no projects path configured: set projects_path in %s or %s", config.Path(r.env.ConfigDir), config.ProjectsPathEnv)
	}
	projects, err := r.env.Scanner.Scan(ctx, root)
	if err != nil {
		r.logger.Error("error loading projects", "root", root, "error", err)
		return nil, err
	}
	return projects, nil
}

// project resolves the single positional name argument.
func (r *runner) project(ctx context.Context, args []string, usage string) (discovery.Project, error) {
	if len(args) != 1 {
		return discovery.Project{}, fmt.Errorf("expected one project name\n%s", usage)
	}
	projects, err := r.projects(ctx)
	if err != nil {
		return discovery.Project{}, err
	}
	return discovery.Find(projects, args[0])
}

func (r *runner) list(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(r.env.Stderr)
	jsonOut := fs.Bool("json", false, "print a JSON array")
	if err := fs.Parse(args); err != nil {
		return err
	}

	projects, err := r.projects(context.Background())
	if err != nil {
		return err
	}
	if *jsonOut {
		if projects == nil {
			projects = []discovery.Project{}
		}
		return PrintJSON(r.env.Stdout, projects)
	}
	return printProjects(r.env.Stdout, projects)
}

func (r *runner) path(args []string) error {
	p, err := r.project(context.Background(), args, "Usage: projpal path <name>")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.env.Stdout, p.Path)
	return err
}

func (r *runner) open(args []string) error {
	p, err := r.project(context.Background(), args, "Usage: projpal open <name>")
	if err != nil {
		return err
	}
	if err := r.env.Opener.Open(p.Path); err != nil {
		return fmt.Errorf("failed to open in file manager: %w", err)
	}
	_, err = fmt.Fprintf(r.env.Stdout, "Opened %s in file manager\n", p.Path)
	return err
}

func (r *runner) copy(args []string) error {
	p, err := r.project(context.Background(), args, "Usage: projpal copy <name>")
	if err != nil {
		return err
	}
	method, err := r.env.Clipboard.Copy(p.Path)
	if err != nil {
		return fmt.Errorf("failed to copy path: %w", err)
	}
	_, err = fmt.Fprintf(r.env.Stdout, "Copied %s (%s)\n", p.Path, method)
	return err
}

func (r *runner) edit(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, err := r.project(ctx, args, "Usage: projpal edit <name>")
	if err != nil {
		return err
	}
	cfg, err := r.config()
	if err != nil {
		return err
	}
	editor := r.env.NewEditor(cfg.Editor)
	if err := editor.Launch(ctx, p.Path); err != nil {
		return fmt.Errorf("failed to open with %s: %w", editor.Name(), err)
	}
	_, err = fmt.Fprintf(r.env.Stdout, "Opened %s with %s\n", p.Name, editor.Name())
	return err
}

func (r *runner) cleanup([]string) error {
	removed, err := instance.RemoveStale(ResolveDataDir(r.env.ConfigDir))
	if errors.Is(err, instance.ErrAlreadyRunning) {
		return fmt.Errorf("a projpal instance appears to be running, stop it first")
	}
	if err != nil {
		return err
	}
	if removed {
		_, err = fmt.Fprintln(r.env.Stdout, "Cleaned up stale lock files.")
	} else {
		_, err = fmt.Fprintln(r.env.Stdout, "Nothing to clean up.")
	}
	return err
}

func (r *runner) showConfig([]string) error {
	cfg, err := LoadConfig(r.env.ConfigDir, r.env.RootOverride)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, _ = fmt.Fprintf(r.env.Stdout, "# %s\n", config.Path(r.env.ConfigDir))
	if root := cfg.ResolveProjectsPath(); root != "" {
		_, _ = fmt.Fprintf(r.env.Stdout, "# projects root: %s\n", root)
	}
	_, err = r.env.Stdout.Write(out)
	return err
}

// printProjects writes one aligned row per project.
func printProjects(w io.Writer, projects []discovery.Project) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range projects {
		branch := p.Branch
		if branch == "" {
			branch = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, branch, p.Path)
	}
	return tw.Flush()
}
