// pattern: Functional Core

package discovery

import "errors"

// ErrNotFound is returned by Find when no project matches the query.
var ErrNotFound = errors.New("project not found")

// Project represents one directory found directly under the projects root.
// Records are built fresh on every scan and never mutated afterwards.
type Project struct {
	Name   string `json:"name"`   // Directory name (used as display name)
	Path   string `json:"path"`   // Absolute path to the project directory
	Branch string `json:"branch"` // Git branch label, empty without git metadata
}
