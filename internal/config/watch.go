// pattern: Imperative Shell

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"projpal/internal/logging"
)

// watchDebounce coalesces the bursts of events editors produce on save.
const watchDebounce = 200 * time.Millisecond

// Watch reloads the config file whenever it changes and passes the new
// config to onChange. The parent directory is watched so that the file may
// be created, replaced or renamed over. Invalid files are logged and
// skipped; the caller keeps its previous config. Watch blocks until ctx is
// cancelled.
func Watch(ctx context.Context, configPath string, logger *logging.ScopedLogger, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(configPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	target := filepath.Clean(configPath)
	var reload <-chan time.Time
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(watchDebounce)
			reload = timer.C

		case <-reload:
			reload = nil
			cfg, err := LoadFrom(configPath)
			if err != nil {
				logger.Warn("config reload failed", "path", configPath, "error", err)
				continue
			}
			if err := cfg.Validate(); err != nil {
				logger.Warn("config reload rejected", "path", configPath, "error", err)
				continue
			}
			logger.Info("config reloaded", "path", configPath, "projects_path", cfg.ProjectsPath)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
