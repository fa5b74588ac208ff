// pattern: Functional Core

package discovery

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	headRefPrefix  = "ref: "
	branchPrefix   = "refs/heads/"
	gitdirPrefix   = "gitdir: "
	shortSHALength = 7
)

// ReadBranch returns the branch label for a project directory by reading
// its git metadata. It never runs git. Returns "" when dir is not a git
// checkout or its metadata cannot be read.
func ReadBranch(dir string) string {
	gitDir, ok := resolveGitDir(dir)
	if !ok {
		return ""
	}

	data, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return ""
	}
	return ParseHead(string(data))
}

// resolveGitDir locates the git directory for dir. A .git file (used by
// worktrees and submodules) points at the real git directory.
func resolveGitDir(dir string) (string, bool) {
	dotGit := filepath.Join(dir, ".git")
	info, err := os.Stat(dotGit)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		return dotGit, true
	}

	data, err := os.ReadFile(dotGit)
	if err != nil {
		return "", false
	}
	target, ok := parseGitdirFile(string(data))
	if !ok {
		return "", false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return filepath.Clean(target), true
}

// parseGitdirFile extracts the path from a "gitdir: <path>" file.
func parseGitdirFile(content string) (string, bool) {
	line := strings.TrimSpace(firstLine(content))
	if !strings.HasPrefix(line, gitdirPrefix) {
		return "", false
	}
	path := strings.TrimSpace(strings.TrimPrefix(line, gitdirPrefix))
	return path, path != ""
}

// ParseHead turns the content of a git HEAD file into a branch label.
//
//	ref: refs/heads/feature/x  -> "feature/x"
//	ref: refs/remotes/o/main   -> "refs/remotes/o/main"
//	3f1c0e2d...                -> "3f1c0e2" (detached)
//
// Anything else yields "".
func ParseHead(content string) string {
	line := strings.TrimSpace(firstLine(content))
	if line == "" {
		return ""
	}

	if strings.HasPrefix(line, headRefPrefix) {
		ref := strings.TrimSpace(strings.TrimPrefix(line, headRefPrefix))
		return strings.TrimPrefix(ref, branchPrefix)
	}

	if isHexSHA(line) {
		return line[:shortSHALength]
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// isHexSHA reports whether s looks like a full SHA-1 or SHA-256 object name.
func isHexSHA(s string) bool {
	if len(s) != 40 && len(s) != 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
