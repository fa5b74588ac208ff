// pattern: Imperative Shell

package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"projpal/internal/logging"
)

const waitDelay = 2 * time.Second

// Config describes a child process to run.
type Config struct {
	Name    string        // Label used in logs and errors
	Binary  string        // Absolute path or name looked up on PATH
	Args    []string      // Arguments passed verbatim (no shell)
	Dir     string        // Working directory; empty inherits ours
	Timeout time.Duration // Zero means no timeout beyond ctx
}

// ExitError reports a process that ran but exited non-zero.
type ExitError struct {
	Name string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
}

func (cfg Config) command(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, cfg.Binary, cfg.Args...)
	cmd.Dir = cfg.Dir
	// Editor launchers often fork a long-lived app that inherits our
	// output pipes; stop waiting on them shortly after the launcher exits.
	cmd.WaitDelay = waitDelay
	return cmd
}

// Run starts the process, forwards its stdout and stderr line by line to
// logger, and waits for it to exit. It returns an *ExitError for a non-zero
// exit and a wrapped error if the binary cannot be started or the timeout
// elapses.
func Run(ctx context.Context, cfg Config, logger *logging.ScopedLogger) error {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	cmd := cfg.command(ctx)
	stdout := newLineWriter(logger, cfg.Name, "stdout")
	stderr := newLineWriter(logger, cfg.Name, "stderr")
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logger.Info("starting process", "process", cfg.Name, "binary", cfg.Binary, "args", fmt.Sprintf("%v", cfg.Args))

	if err := cmd.Start(); err != nil {
		logger.Error("failed to start process", "process", cfg.Name, "error", err)
		return fmt.Errorf("starting %s: %w", cfg.Name, err)
	}

	err := cmd.Wait()
	stdout.Flush()
	stderr.Flush()
	return exitResult(ctx, cfg.Name, err, logger)
}

// Start launches the process without waiting for it. The process is reaped
// in the background and its exit status is logged.
func Start(cfg Config, logger *logging.ScopedLogger) error {
	cmd := cfg.command(context.Background())

	if err := cmd.Start(); err != nil {
		logger.Error("failed to start process", "process", cfg.Name, "error", err)
		return fmt.Errorf("starting %s: %w", cfg.Name, err)
	}
	logger.Debug("process started", "process", cfg.Name, "pid", cmd.Process.Pid)

	go func() {
		_ = exitResult(context.Background(), cfg.Name, cmd.Wait(), logger)
	}()
	return nil
}

// lineWriter logs each complete line written to it.
type lineWriter struct {
	logger *logging.ScopedLogger
	name   string
	stream string

	mu  sync.Mutex
	buf bytes.Buffer
}

func newLineWriter(logger *logging.ScopedLogger, name, stream string) *lineWriter {
	return &lineWriter{logger: logger, name: name, stream: stream}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			return len(p), nil
		}
		line := string(w.buf.Next(i + 1))
		w.emit(strings.TrimRight(line, "\r\n"))
	}
}

// Flush logs any trailing partial line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *lineWriter) emit(line string) {
	w.logger.Debug(line, "stream", w.stream, "process", w.name)
}

func exitResult(ctx context.Context, name string, err error, logger *logging.ScopedLogger) error {
	if err == nil {
		logger.Info("process exited cleanly", "process", name)
		return nil
	}

	if errors.Is(err, exec.ErrWaitDelay) {
		logger.Debug("process exited, output still held by a child", "process", name)
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Warn("process interrupted", "process", name, "error", ctxErr)
		return fmt.Errorf("%s: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logger.Warn("process exited", "process", name, "exit_code", exitErr.ExitCode())
		return &ExitError{Name: name, Code: exitErr.ExitCode()}
	}

	logger.Warn("process failed", "process", name, "error", err)
	return fmt.Errorf("%s: %w", name, err)
}
