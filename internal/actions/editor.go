// pattern: Imperative Shell

package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"projpal/internal/config"
	"projpal/internal/logging"
	"projpal/internal/process"
)

// Editor launches projects in the configured external editor.
type Editor struct {
	cfg    config.EditorConfig
	run    func(context.Context, process.Config, *logging.ScopedLogger) error
	logger *logging.ScopedLogger
}

// NewEditor creates an Editor for the given editor configuration.
func NewEditor(cfg config.EditorConfig, logger *logging.ScopedLogger) *Editor {
	return &Editor{
		cfg:    cfg,
		run:    process.Run,
		logger: logger,
	}
}

// Name returns the editor's display name.
func (e *Editor) Name() string {
	return e.cfg.DisplayName()
}

// CloseOnLaunch reports whether the UI should exit after a successful launch.
func (e *Editor) CloseOnLaunch() bool {
	return e.cfg.CloseOnLaunch
}

// Launch runs the editor binary with path as its only argument and waits
// for the launcher to exit.
func (e *Editor) Launch(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("path is required")
	}
	if e.cfg.Path == "" {
		return errors.New("no editor configured")
	}

	timeout := e.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	err := e.run(ctx, process.Config{
		Name:    e.Name(),
		Binary:  e.cfg.Path,
		Args:    []string{path},
		Dir:     path,
		Timeout: timeout,
	}, e.logger)
	if err != nil {
		return fmt.Errorf("open with %s: %w", e.Name(), err)
	}
	return nil
}
