package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ProjectsPathEnv overrides projects_path from the config file when set.
const ProjectsPathEnv = "PROJPAL_PROJECTS_PATH"

const (
	appName        = "projpal"
	configFileName = "config.yaml"
)

type Config struct {
	ProjectsPath string       `yaml:"projects_path"`
	Theme        string       `yaml:"theme"`
	LogLevel     string       `yaml:"log_level"`
	Editor       EditorConfig `yaml:"editor"`
}

// EditorConfig describes the external editor used by the "open with editor" action.
type EditorConfig struct {
	Name          string        `yaml:"name"`
	Path          string        `yaml:"path"`
	CloseOnLaunch bool          `yaml:"close_on_launch"`
	Timeout       time.Duration `yaml:"timeout"`
}

var validThemes = map[string]bool{
	"latte":     true,
	"frappe":    true,
	"macchiato": true,
	"mocha":     true,
}

func DefaultConfig() Config {
	return Config{
		Theme:    "mocha",
		LogLevel: "info",
		Editor: EditorConfig{
			Path:          "windsurf",
			CloseOnLaunch: true,
			Timeout:       30 * time.Second,
		},
	}
}

func Load() (Config, error) {
	return LoadFrom(Path(""))
}

// LoadFromDir loads config.yaml from the given directory.
func LoadFromDir(dir string) (Config, error) {
	return LoadFrom(filepath.Join(dir, configFileName))
}

func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		cfg.applyEnv()
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		def := DefaultConfig()
		def.applyEnv()
		return def, fmt.Errorf("parsing %s: %w", configPath, err)
	}

	cfg.fillDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// fillDefaults restores defaults for keys present but left empty in the file.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Theme == "" {
		c.Theme = def.Theme
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Editor.Path == "" {
		c.Editor.Path = def.Editor.Path
	}
	if c.Editor.Timeout == 0 {
		c.Editor.Timeout = def.Editor.Timeout
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(ProjectsPathEnv)); v != "" {
		c.ProjectsPath = v
	}
}

// DisplayName returns the editor's configured name, falling back to the
// binary's base name.
func (e EditorConfig) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return filepath.Base(e.Path)
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if !validThemes[c.Theme] {
		return fmt.Errorf("invalid theme %q: must be one of latte, frappe, macchiato, mocha", c.Theme)
	}
	if c.Editor.Timeout <= 0 {
		return fmt.Errorf("editor.timeout must be positive, got %s", c.Editor.Timeout)
	}
	return nil
}

// ResolveProjectsPath returns the projects root with ~ expanded and made
// absolute. Returns "" when no root is configured.
func (c *Config) ResolveProjectsPath() string {
	return ResolvePath(c.ProjectsPath)
}

// ResolvePath expands a leading ~ and makes p absolute.
func ResolvePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}

	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}

	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Dir returns the config directory: configDir when set, otherwise
// $XDG_CONFIG_HOME/projpal or ~/.config/projpal.
func Dir(configDir string) string {
	if configDir != "" {
		return configDir
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName)
	}

	return filepath.Join(home, ".config", appName)
}

// Path returns the config file path inside Dir(configDir).
func Path(configDir string) string {
	return filepath.Join(Dir(configDir), configFileName)
}
