package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"projpal/internal/logging"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	t.Setenv(ProjectsPathEnv, "")
	configPath := writeConfig(t, t.TempDir(), `
projects_path: /home/user/code
theme: latte
log_level: debug
editor:
  name: VS Code
  path: /usr/local/bin/code
  close_on_launch: false
  timeout: 10s
`)

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.ProjectsPath != "/home/user/code" {
		t.Errorf("ProjectsPath: got %q, want %q", cfg.ProjectsPath, "/home/user/code")
	}
	if cfg.Theme != "latte" {
		t.Errorf("Theme: got %q, want %q", cfg.Theme, "latte")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.Editor.DisplayName() != "VS Code" {
		t.Errorf("Editor.DisplayName(): got %q, want %q", cfg.Editor.DisplayName(), "VS Code")
	}
	if cfg.Editor.Path != "/usr/local/bin/code" {
		t.Errorf("Editor.Path: got %q, want %q", cfg.Editor.Path, "/usr/local/bin/code")
	}
	if cfg.Editor.CloseOnLaunch {
		t.Error("Editor.CloseOnLaunch: got true, want false")
	}
	if cfg.Editor.Timeout != 10*time.Second {
		t.Errorf("Editor.Timeout: got %s, want 10s", cfg.Editor.Timeout)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(ProjectsPathEnv, "")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	def := DefaultConfig()
	if cfg.ProjectsPath != "" {
		t.Errorf("ProjectsPath: got %q, want empty", cfg.ProjectsPath)
	}
	if cfg.Theme != def.Theme {
		t.Errorf("Theme: got %q, want %q", cfg.Theme, def.Theme)
	}
	if cfg.Editor.Path != "windsurf" {
		t.Errorf("Editor.Path: got %q, want %q", cfg.Editor.Path, "windsurf")
	}
	if !cfg.Editor.CloseOnLaunch {
		t.Error("Editor.CloseOnLaunch should default to true")
	}
}

func TestLoadPartialEditorKeepsDefaults(t *testing.T) {
	t.Setenv(ProjectsPathEnv, "")
	configPath := writeConfig(t, t.TempDir(), `
editor:
  path: /opt/zed/bin/zed
`)

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Editor.DisplayName() != "zed" {
		t.Errorf("DisplayName: got %q, want %q", cfg.Editor.DisplayName(), "zed")
	}
	if !cfg.Editor.CloseOnLaunch {
		t.Error("CloseOnLaunch should keep its default")
	}
	if cfg.Editor.Timeout != 30*time.Second {
		t.Errorf("Timeout: got %s, want 30s", cfg.Editor.Timeout)
	}
}

func TestLoadEmptyValuesFallBackToDefaults(t *testing.T) {
	t.Setenv(ProjectsPathEnv, "")
	configPath := writeConfig(t, t.TempDir(), "theme: \"\"\nlog_level: \"\"\n")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Theme != "mocha" {
		t.Errorf("Theme: got %q, want %q", cfg.Theme, "mocha")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Setenv(ProjectsPathEnv, "")
	configPath := writeConfig(t, t.TempDir(), "projects_path: [unterminated\n")

	cfg, err := LoadFrom(configPath)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.Theme != "mocha" {
		t.Errorf("expected defaults on parse error, got theme %q", cfg.Theme)
	}
}

func TestLoadInvalidYAMLKeepsEnvOverride(t *testing.T) {
	t.Setenv(ProjectsPathEnv, "/srv/code")
	configPath := writeConfig(t, t.TempDir(), "projects_path: [unclosed\n")

	cfg, err := LoadFrom(configPath)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.ProjectsPath != "/srv/code" {
		t.Errorf("ProjectsPath: got %q, want %q", cfg.ProjectsPath, "/srv/code")
	}
	if cfg.Theme != "mocha" {
		t.Errorf("expected defaults on parse error, got theme %q", cfg.Theme)
	}
}

func TestLoadEnvOverridesProjectsPath(t *testing.T) {
	t.Setenv(ProjectsPathEnv, "/from/env")
	configPath := writeConfig(t, t.TempDir(), "projects_path: /from/file\n")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.ProjectsPath != "/from/env" {
		t.Errorf("ProjectsPath: got %q, want %q", cfg.ProjectsPath, "/from/env")
	}
}

func TestLoadFromDir(t *testing.T) {
	t.Setenv(ProjectsPathEnv, "")
	dir := t.TempDir()
	writeConfig(t, dir, "projects_path: /srv/projects\n")

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}
	if cfg.ProjectsPath != "/srv/projects" {
		t.Errorf("ProjectsPath: got %q, want %q", cfg.ProjectsPath, "/srv/projects")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"unknown theme", func(c *Config) { c.Theme = "dracula" }, "invalid theme"},
		{"zero timeout", func(c *Config) { c.Editor.Timeout = 0 }, "editor.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"~", home},
		{"~/code", filepath.Join(home, "code")},
		{"/abs/path/", "/abs/path"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ResolvePath(tt.in); got != tt.want {
				t.Errorf("ResolvePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDir(t *testing.T) {
	if got := Dir("/explicit"); got != "/explicit" {
		t.Errorf("Dir(explicit) = %q", got)
	}

	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := Dir(""); got != filepath.Join("/xdg", "projpal") {
		t.Errorf("Dir(\"\") = %q, want %q", got, filepath.Join("/xdg", "projpal"))
	}
	if got := Path(""); got != filepath.Join("/xdg", "projpal", "config.yaml") {
		t.Errorf("Path(\"\") = %q", got)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	t.Setenv(ProjectsPathEnv, "")
	dir := t.TempDir()
	configPath := writeConfig(t, dir, "projects_path: /first\n")

	lm := logging.NewTestLogManager(100)
	defer func() { _ = lm.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, configPath, lm.For("config"), func(cfg Config) { changes <- cfg })
	}()

	// Give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, dir, "projects_path: /second\n")

	select {
	case cfg := <-changes:
		if cfg.ProjectsPath != "/second" {
			t.Errorf("ProjectsPath = %q, want %q", cfg.ProjectsPath, "/second")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("config change not delivered")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_SkipsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, "projects_path: /first\n")

	lm := logging.NewTestLogManager(100)
	defer func() { _ = lm.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	go func() {
		_ = Watch(ctx, configPath, lm.For("config"), func(cfg Config) { changes <- cfg })
	}()

	time.Sleep(100 * time.Millisecond)
	writeConfig(t, dir, "theme: dracula\n")

	select {
	case cfg := <-changes:
		t.Fatalf("invalid config delivered: %+v", cfg)
	case <-time.After(600 * time.Millisecond):
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), "/nonexistent/dir/config.yaml", logging.NopLogger(), func(Config) {})
	if err == nil {
		t.Fatal("expected error watching missing directory")
	}
}
