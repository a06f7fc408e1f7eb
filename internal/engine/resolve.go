package engine

import (
	"fmt"

	"github.com/shearops/shear/internal/store"
)

// ResolveTargets picks the libraries a run will process.
//
// An explicit title wins: it must match exactly one library by exact,
// case-sensitive title, hidden or not, or the run fails. Otherwise all
// non-hidden libraries are taken, narrowed by filter when it is
// non-empty. Filter names that match nothing are dropped silently so a
// curated list can name libraries that only exist on some tenants.
func ResolveTargets(explicitTitle string, filter []string, all []store.Library) ([]store.Library, error) {
	if explicitTitle != "" {
		for _, lib := range all {
			if lib.Title == explicitTitle {
				return []store.Library{lib}, nil
			}
		}
		return nil, fmt.Errorf("%w: %q", ErrLibraryNotFound, explicitTitle)
	}

	wanted := make(map[string]bool, len(filter))
	for _, name := range filter {
		wanted[name] = true
	}

	var targets []store.Library
	for _, lib := range all {
		if lib.Hidden {
			continue
		}
		if len(wanted) > 0 && !wanted[lib.Title] {
			continue
		}
		targets = append(targets, lib)
	}
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	return targets, nil
}
