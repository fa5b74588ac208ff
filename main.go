// pattern: Imperative Shell
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"projpal/internal/actions"
	"projpal/internal/cli"
	"projpal/internal/config"
	"projpal/internal/discovery"
	"projpal/internal/events"
	"projpal/internal/instance"
	"projpal/internal/logging"
	"projpal/internal/tui"
)

var version = "dev"

const logFileName = "projpal.log"

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config directory (default: $XDG_CONFIG_HOME/projpal)")
	root := flag.StringP("root", "r", "", "projects root for this run, overrides projects_path")

	flag.Usage = func() {
		cli.BuildApp(cli.Env{Version: version}).PrintHelp(os.Stderr)
	}
	flag.Parse()

	os.Exit(run(*configDir, *root, flag.Args()))
}

func run(configDir, rootOverride string, args []string) int {
	cfg, cfgErr := cli.LoadConfig(configDir, rootOverride)
	dataDir := cli.ResolveDataDir(configDir)

	logManager, err := newLogManager(dataDir, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer func() { _ = logManager.Close() }()

	app := cli.BuildApp(newCLIEnv(configDir, rootOverride, logManager))
	launchTUI, err := app.Execute(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if !launchTUI {
		return 0
	}

	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", cfgErr)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return runTUI(cfg, configDir, rootOverride, dataDir, logManager)
}

func newLogManager(dataDir, level string) (*logging.Manager, error) {
	return logging.NewManager(logging.Config{
		FilePath:       filepath.Join(dataDir, logFileName),
		MaxSizeMB:      5,
		MaxBackups:     3,
		MaxAgeDays:     14,
		ChannelBufSize: 500,
		Level:          level,
	})
}

func newEditor(logs logging.LoggerProvider) func(config.EditorConfig) *actions.Editor {
	logger := logs.For("action.editor")
	return func(cfg config.EditorConfig) *actions.Editor {
		return actions.NewEditor(cfg, logger)
	}
}

func newCLIEnv(configDir, rootOverride string, logs logging.LoggerProvider) cli.Env {
	editor := newEditor(logs)
	return cli.Env{
		Version:      version,
		ConfigDir:    configDir,
		RootOverride: rootOverride,
		Logs:         logs,
		Scanner:      discovery.NewScanner(),
		Opener:       actions.NewOpener(logs.For("action.open")),
		Clipboard:    actions.NewClipboard(logs.For("action.clipboard")),
		NewEditor: func(cfg config.EditorConfig) cli.EditorLauncher {
			return editor(cfg)
		},
	}
}

func newTUIDeps(configDir string, logManager *logging.Manager) tui.Deps {
	editor := newEditor(logManager)
	return tui.Deps{
		Scanner:   discovery.NewScanner(),
		Opener:    actions.NewOpener(logManager.For("action.open")),
		Clipboard: actions.NewClipboard(logManager.For("action.clipboard")),
		EditorFor: func(cfg config.EditorConfig) tui.EditorLauncher {
			return editor(cfg)
		},
		Logs:       logManager,
		LogEntries: logManager.Entries(),
		ConfigPath: config.Path(configDir),
	}
}

// withRootOverride applies the --root flag to a reloaded config so that
// edits to the file never undo it.
func withRootOverride(cfg config.Config, rootOverride string) config.Config {
	if rootOverride != "" {
		cfg.ProjectsPath = rootOverride
	}
	return cfg
}

// runTUI launches the interactive TUI.
func runTUI(cfg config.Config, configDir, rootOverride, dataDir string, logManager *logging.Manager) int {
	fl, err := instance.Lock(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer instance.Release(dataDir, fl)

	appLogger := logManager.For("app")
	appLogger.Info("application starting", "version", version, "projects_path", cfg.ResolveProjectsPath())

	model := tui.NewModel(cfg, newTUIDeps(configDir, logManager))
	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configPath := config.Path(configDir)
	go func() {
		err := config.Watch(ctx, configPath, logManager.For("config"), func(next config.Config) {
			p.Send(events.ConfigChangedMsg{Config: withRootOverride(next, rootOverride)})
		})
		if err != nil {
			appLogger.Warn("config watcher stopped", "path", configPath, "error", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		appLogger.Error("application exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		return 1
	}

	appLogger.Info("application stopped")
	return 0
}
