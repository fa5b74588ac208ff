// pattern: Imperative Shell

package actions

import (
	"errors"
	"runtime"
	"strings"

	"projpal/internal/logging"
	"projpal/internal/process"
)

// OpenCommand returns the command that opens path with the default file
// manager on goos.
func OpenCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "explorer", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}

// Opener reveals paths in the OS file manager.
type Opener struct {
	goos   string
	start  func(process.Config, *logging.ScopedLogger) error
	logger *logging.ScopedLogger
}

// NewOpener creates an Opener for the running OS.
func NewOpener(logger *logging.ScopedLogger) *Opener {
	return &Opener{
		goos:   runtime.GOOS,
		start:  process.Start,
		logger: logger,
	}
}

// Open hands path to the OS default handler. It returns once the handler
// has been started.
func (o *Opener) Open(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}

	binary, args := OpenCommand(o.goos, path)
	o.logger.Info("opening in file manager", "path", path, "command", binary)
	return o.start(process.Config{
		Name:   "file-manager",
		Binary: binary,
		Args:   args,
	}, o.logger)
}
