package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mkdirs(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.MkdirAll(filepath.Join(root, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScan_EmptyRoot(t *testing.T) {
	projects, err := NewScanner().Scan(context.Background(), "")
	if err != nil {
		t.Fatalf("Scan(\"\") error = %v", err)
	}
	if len(projects) != 0 {
		t.Fatalf("expected 0 projects for unset root, got %d", len(projects))
	}
}

func TestScan_OneRecordPerSubdirectory(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "alpha", "beta", "gamma")

	projects, err := NewScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(projects) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(projects))
	}

	wantNames := []string{"alpha", "beta", "gamma"}
	for i, p := range projects {
		if p.Name != wantNames[i] {
			t.Errorf("projects[%d].Name = %q, want %q", i, p.Name, wantNames[i])
		}
		wantPath := filepath.Join(root, wantNames[i])
		if p.Path != wantPath {
			t.Errorf("projects[%d].Path = %q, want %q", i, p.Path, wantPath)
		}
		if !filepath.IsAbs(p.Path) {
			t.Errorf("projects[%d].Path = %q, want absolute path", i, p.Path)
		}
	}
}

func TestScan_SkipsNonDirectories(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "project")
	writeFile(t, filepath.Join(root, "notes.txt"), "hello")

	projects, err := NewScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
}

func TestScan_FollowsDirectorySymlinks(t *testing.T) {
	root := t.TempDir()
	elsewhere := t.TempDir()
	mkdirs(t, elsewhere, "real")
	if err := os.Symlink(filepath.Join(elsewhere, "real"), filepath.Join(root, "linked")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(elsewhere, "missing"), filepath.Join(root, "dangling")); err != nil {
		t.Fatal(err)
	}

	projects, err := NewScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	// Displayed path stays the configured location, not the link target
	if projects[0].Path != filepath.Join(root, "linked") {
		t.Errorf("Path = %q, want %q", projects[0].Path, filepath.Join(root, "linked"))
	}
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := NewScanner().Scan(context.Background(), "/nonexistent/projects/root")
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestScan_RelativeRootBecomesAbsolute(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "app")
	t.Chdir(root)

	projects, err := NewScanner().Scan(context.Background(), ".")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if !filepath.IsAbs(projects[0].Path) {
		t.Errorf("Path = %q, want absolute", projects[0].Path)
	}
}

func TestScan_CancelledContext(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "a", "b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner().Scan(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Scan() error = %v, want context.Canceled", err)
	}
}

func TestScan_ReportsBranch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "repo", ".git", "HEAD"), "ref: refs/heads/develop\n")
	mkdirs(t, root, "plain")

	projects, err := NewScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}

	branches := map[string]string{}
	for _, p := range projects {
		branches[p.Name] = p.Branch
	}
	if branches["repo"] != "develop" {
		t.Errorf("repo branch = %q, want %q", branches["repo"], "develop")
	}
	if branches["plain"] != "" {
		t.Errorf("plain branch = %q, want empty", branches["plain"])
	}
}
