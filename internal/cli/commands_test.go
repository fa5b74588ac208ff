package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"projpal/internal/actions"
	"projpal/internal/config"
	"projpal/internal/discovery"
	"projpal/internal/instance"
	"projpal/internal/logging"
)

type fakeScanner struct {
	projects []discovery.Project
	root     string
}

func (s *fakeScanner) Scan(_ context.Context, root string) ([]discovery.Project, error) {
	s.root = root
	return s.projects, nil
}

type fakeOpener struct{ path string }

func (o *fakeOpener) Open(path string) error {
	o.path = path
	return nil
}

type fakeClipboard struct{ text string }

func (c *fakeClipboard) Copy(text string) (actions.Method, error) {
	c.text = text
	return actions.MethodSystem, nil
}

type fakeEditor struct {
	name string
	err  error
	path string
}

func (e *fakeEditor) Name() string { return e.name }
func (e *fakeEditor) Launch(_ context.Context, path string) error {
	e.path = path
	return e.err
}

type harness struct {
	env       Env
	stdout    *bytes.Buffer
	scanner   *fakeScanner
	opener    *fakeOpener
	clipboard *fakeClipboard
	editor    *fakeEditor
	editorCfg config.EditorConfig
	logs      *logging.TestLogManager
}

func newHarness(t *testing.T, configYAML string) *harness {
	t.Helper()
	t.Setenv(config.ProjectsPathEnv, "")

	dir := t.TempDir()
	if configYAML != "" {
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	logs := logging.NewTestLogManager(50)
	t.Cleanup(func() { _ = logs.Close() })

	h := &harness{
		stdout: &bytes.Buffer{},
		scanner: &fakeScanner{projects: []discovery.Project{
			{Name: "api", Path: "/code/api", Branch: "main"},
			{Name: "web", Path: "/code/web"},
		}},
		opener:    &fakeOpener{},
		clipboard: &fakeClipboard{},
		editor:    &fakeEditor{name: "Fake"},
		logs:      logs,
	}
	h.env = Env{
		Version:   "1.2.3",
		ConfigDir: dir,
		Stdout:    h.stdout,
		Stderr:    &bytes.Buffer{},
		Logs:      logs,
		Scanner:   h.scanner,
		Opener:    h.opener,
		Clipboard: h.clipboard,
		NewEditor: func(cfg config.EditorConfig) EditorLauncher {
			h.editorCfg = cfg
			return h.editor
		},
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	_, err := BuildApp(h.env).Execute(args)
	return err
}

func TestList(t *testing.T) {
	h := newHarness(t, "projects_path: /code\n")

	if err := h.run(t, "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if h.scanner.root != "/code" {
		t.Errorf("scanned %q, want /code", h.scanner.root)
	}

	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), h.stdout.String())
	}
	if fields := strings.Fields(lines[0]); len(fields) != 3 || fields[0] != "api" || fields[1] != "main" || fields[2] != "/code/api" {
		t.Errorf("row 0 = %q", lines[0])
	}
	if fields := strings.Fields(lines[1]); len(fields) != 3 || fields[1] != "-" {
		t.Errorf("row 1 = %q, want '-' for missing branch", lines[1])
	}
}

func TestList_JSON(t *testing.T) {
	h := newHarness(t, "projects_path: /code\n")

	if err := h.run(t, "list", "--json"); err != nil {
		t.Fatalf("list --json: %v", err)
	}

	var got []discovery.Project
	if err := json.Unmarshal(h.stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", h.stdout.String(), err)
	}
	if len(got) != 2 || got[0] != h.scanner.projects[0] {
		t.Errorf("decoded %+v", got)
	}
}

func TestList_JSONEmptyIsArray(t *testing.T) {
	h := newHarness(t, "projects_path: /code\n")
	h.scanner.projects = nil

	if err := h.run(t, "list", "--json"); err != nil {
		t.Fatalf("list --json: %v", err)
	}
	if got := strings.TrimSpace(h.stdout.String()); got != "[]" {
		t.Errorf("output = %q, want []", got)
	}
}

func TestList_NoRootConfigured(t *testing.T) {
	h := newHarness(t, "")

	err := h.run(t, "list")
	if err == nil || !strings.Contains(err.Error(), "no projects path configured") {
		t.Errorf("error = %v", err)
	}
}

func TestRootOverride(t *testing.T) {
	h := newHarness(t, "projects_path: /code\n")
	h.env.RootOverride = "/elsewhere"

	if err := h.run(t, "list"); err != nil {
		t.Fatal(err)
	}
	if h.scanner.root != "/elsewhere" {
		t.Errorf("scanned %q, want /elsewhere", h.scanner.root)
	}
}

func TestPath(t *testing.T) {
	h := newHarness(t, "projects_path: /code\n")

	if err := h.run(t, "path", "API"); err != nil {
		t.Fatalf("path: %v", err)
	}
	if got := strings.TrimSpace(h.stdout.String()); got != "/code/api" {
		t.Errorf("path = %q, want /code/api", got)
	}
}

func TestPath_Errors(t *testing.T) {
	h := newHarness(t, "projects_path: /code\n")

	if err := h.run(t, "path"); err == nil {
		t.Error("path without a name succeeded")
	}
	if err := h.run(t, "path", "nope"); !errors.Is(err, discovery.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestActionsCommands(t *testing.T) {
	h := newHarness(t, "projects_path: /code\neditor:\n  name: Zed\n  path: zed\n")

	if err := h.run(t, "open", "web"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if h.opener.path != "/code/web" {
		t.Errorf("opened %q", h.opener.path)
	}

	if err := h.run(t, "copy", "api"); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if h.clipboard.text != "/code/api" {
		t.Errorf("copied %q", h.clipboard.text)
	}

	if err := h.run(t, "edit", "api"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if h.editor.path != "/code/api" {
		t.Errorf("editor got %q", h.editor.path)
	}
	if h.editorCfg.Path != "zed" || h.editorCfg.Name != "Zed" {
		t.Errorf("editor config = %+v", h.editorCfg)
	}
}

func TestEdit_Failure(t *testing.T) {
	h := newHarness(t, "projects_path: /code\n")
	h.editor.err = errors.New("exit status 1")

	err := h.run(t, "edit", "api")
	if err == nil || !strings.Contains(err.Error(), "failed to open with Fake") {
		t.Errorf("error = %v", err)
	}
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t, "projects_path: /code\ntheme: latte\n")

	if err := h.run(t, "config", "path"); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(h.stdout.String()); got != filepath.Join(h.env.ConfigDir, "config.yaml") {
		t.Errorf("config path = %q", got)
	}

	h.stdout.Reset()
	if err := h.run(t, "config", "show"); err != nil {
		t.Fatal(err)
	}
	out := h.stdout.String()
	for _, want := range []string{"theme: latte", "projects_path: /code", "timeout: 30s", "# projects root: /code"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	h := newHarness(t, "projects_path: /code\ntheme: neon\n")

	if err := h.run(t, "list"); err == nil || !strings.Contains(err.Error(), "invalid theme") {
		t.Errorf("error = %v", err)
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t, "")

	if err := h.run(t, "version"); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(h.stdout.String()); got != "1.2.3" {
		t.Errorf("version = %q", got)
	}
}

func TestCleanup(t *testing.T) {
	h := newHarness(t, "")

	if err := h.run(t, "cleanup"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.stdout.String(), "Nothing to clean up") {
		t.Errorf("output = %q", h.stdout.String())
	}

	fl, err := instance.Lock(h.env.ConfigDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.run(t, "cleanup"); err == nil {
		t.Error("cleanup succeeded while an instance holds the lock")
	}
	instance.Release(h.env.ConfigDir, fl)
}

func TestPrintJSON_CompactForPipes(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := PrintJSON(buf, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\"a\":1}\n" {
		t.Errorf("PrintJSON = %q", got)
	}
}
