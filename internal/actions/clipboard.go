// pattern: Imperative Shell

package actions

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"

	"projpal/internal/logging"
)

// Method identifies how text reached the clipboard.
type Method uint8

const (
	MethodSystem Method = iota
	MethodOSC52
)

func (m Method) String() string {
	switch m {
	case MethodOSC52:
		return "osc52"
	default:
		return "system"
	}
}

// DisableOSC52Env turns off the terminal escape fallback when set to a truthy value.
const DisableOSC52Env = "PROJPAL_DISABLE_OSC52"

// Clipboard copies text to the system clipboard, falling back to an OSC52
// terminal escape when no system clipboard is reachable (SSH, headless).
type Clipboard struct {
	writeSystem func(string) error
	writeOSC52  func(string) error
	logger      *logging.ScopedLogger
}

// NewClipboard creates a Clipboard backed by the real system clipboard and /dev/tty.
func NewClipboard(logger *logging.ScopedLogger) *Clipboard {
	return &Clipboard{
		writeSystem: clipboard.WriteAll,
		writeOSC52:  writeOSC52Clipboard,
		logger:      logger,
	}
}

// Copy places text on the clipboard exactly as given.
func (c *Clipboard) Copy(text string) (Method, error) {
	sysErr := c.writeSystem(text)
	if sysErr == nil {
		c.logger.Info("copied to clipboard", "method", MethodSystem.String(), "text", text)
		return MethodSystem, nil
	}

	oscErr := c.writeOSC52(text)
	if oscErr == nil {
		c.logger.Info("copied to clipboard", "method", MethodOSC52.String(), "text", text, "system_error", sysErr)
		return MethodOSC52, nil
	}

	err := combineClipboardErrors(sysErr, oscErr)
	c.logger.Error("clipboard copy failed", "error", err)
	return MethodSystem, err
}

func writeOSC52Clipboard(text string) error {
	if !shouldAttemptOSC52() {
		return errors.New("OSC52 unavailable for this terminal")
	}
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open /dev/tty: %w", err)
	}
	defer tty.Close()
	return writeOSC52Sequence(tty, text, os.Getenv("TERM"), os.Getenv("TMUX") != "")
}

// writeOSC52Sequence writes the escape for text, wrapped for tmux or screen
// when needed. Inside tmux both plain and wrapped forms are sent since
// either may be the one that reaches the outer terminal.
func writeOSC52Sequence(w io.Writer, text, term string, inTmux bool) error {
	seq := osc52.New(text)
	if inTmux {
		if _, err := seq.WriteTo(w); err != nil {
			return err
		}
		_, err := seq.Tmux().WriteTo(w)
		return err
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(term)), "screen") {
		_, err := seq.Screen().WriteTo(w)
		return err
	}
	_, err := seq.WriteTo(w)
	return err
}

func shouldAttemptOSC52() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(DisableOSC52Env))) {
	case "1", "true", "yes", "on":
		return false
	}
	termName := strings.TrimSpace(os.Getenv("TERM"))
	return termName != "" && !strings.EqualFold(termName, "dumb")
}

func combineClipboardErrors(systemErr, oscErr error) error {
	if missingDisplay() {
		return fmt.Errorf("no GUI clipboard available (DISPLAY/WAYLAND_DISPLAY unset); OSC52 fallback failed: %w", oscErr)
	}
	return fmt.Errorf("system clipboard failed: %s; OSC52 fallback failed: %w", humanizeClipboardError(systemErr), oscErr)
}

func humanizeClipboardError(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "exit status 1" {
		return "clipboard helper exited with status 1"
	}
	return msg
}

func missingDisplay() bool {
	return strings.TrimSpace(os.Getenv("DISPLAY")) == "" && strings.TrimSpace(os.Getenv("WAYLAND_DISPLAY")) == ""
}
