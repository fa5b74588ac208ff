// pattern: Imperative Shell

package logging

import (
	"testing"
)

func TestNopLogger(t *testing.T) {
	logger := NopLogger()

	// Should not panic
	logger.Debug("test")
	logger.Info("test")
	logger.Warn("test")
	logger.Error("test")
	logger.With("key", "value").Info("test with fields")
}

func TestTestLogManager_Drain(t *testing.T) {
	lm := NewTestLogManager(10)
	defer func() { _ = lm.Close() }()

	lm.For("scan").Debug("first")
	lm.For("tui").Error("second")

	entries := lm.Drain()
	if len(entries) != 2 {
		t.Fatalf("Drain() returned %d entries, want 2", len(entries))
	}
	if entries[0].Scope != "scan" || entries[0].Level != "DEBUG" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Scope != "tui" || entries[1].Level != "ERROR" {
		t.Errorf("entries[1] = %+v", entries[1])
	}

	if len(lm.Drain()) != 0 {
		t.Error("second Drain() should be empty")
	}
}
