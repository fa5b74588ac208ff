// pattern: Imperative Shell

package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Scanner lists projects under a projects root.
type Scanner struct {
	readBranch func(dir string) string
}

// NewScanner creates a new project scanner.
func NewScanner() *Scanner {
	return &Scanner{readBranch: ReadBranch}
}

// Scan lists the immediate subdirectories of root, one Project per directory,
// in the order the directory listing returns them.
// An empty root means nothing is configured and yields no projects and no error.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Project, error) {
	if root == "" {
		return nil, nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving projects root %q: %w", root, err)
	}

	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, fmt.Errorf("reading projects root: %w", err)
	}

	projects := make([]Project, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		projectPath := filepath.Join(absRoot, entry.Name())
		if !isDir(entry, projectPath) {
			continue
		}

		projects = append(projects, Project{
			Name:   entry.Name(),
			Path:   projectPath,
			Branch: s.readBranch(projectPath),
		})
	}

	return projects, nil
}

// isDir reports whether entry is a directory, following symlinks so that
// linked project directories are listed too.
func isDir(entry os.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false // Dangling link
	}
	return info.IsDir()
}
