// pattern: Functional Core

package discovery

import (
	"fmt"
	"strings"
)

// Find looks up a project by name. An exact match wins; otherwise a single
// case-insensitive match is accepted. Ambiguous or missing names return an
// error wrapping ErrNotFound.
func Find(projects []Project, name string) (Project, error) {
	for _, p := range projects {
		if p.Name == name {
			return p, nil
		}
	}

	var matches []Project
	for _, p := range projects {
		if strings.EqualFold(p.Name, name) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Project{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	default:
		return Project{}, fmt.Errorf("%w: %q is ambiguous (%d matches)", ErrNotFound, name, len(matches))
	}
}
