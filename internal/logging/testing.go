// pattern: Imperative Shell

package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NopLogger returns a logger that discards all output.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

// TestLogManager is a LoggerProvider for tests. It logs at debug level to
// a channel only, so tests can assert on what was logged.
type TestLogManager struct {
	channelSink *ChannelSink
	scopes      *scopeCache
}

// NewTestLogManager creates a channel-only log manager.
func NewTestLogManager(bufferSize int) *TestLogManager {
	channelSink := NewChannelSink(bufferSize)
	core := zapcore.NewCore(jsonEncoder(), zapcore.AddSync(channelSink), zapcore.DebugLevel)

	return &TestLogManager{
		channelSink: channelSink,
		scopes:      newScopeCache(zap.New(core), zapcore.DebugLevel),
	}
}

// For returns a scoped logger, matching the Manager API.
func (m *TestLogManager) For(scope string) *ScopedLogger {
	return m.scopes.get(scope)
}

// Channel returns the channel for receiving log entries.
func (m *TestLogManager) Channel() <-chan LogEntry {
	return m.channelSink.Entries()
}

// Drain returns every entry buffered so far without blocking.
func (m *TestLogManager) Drain() []LogEntry {
	var entries []LogEntry
	for {
		select {
		case e, ok := <-m.channelSink.Entries():
			if !ok {
				return entries
			}
			entries = append(entries, e)
		default:
			return entries
		}
	}
}

// Close closes the test log manager.
func (m *TestLogManager) Close() error {
	return m.channelSink.Close()
}
