package engine

import (
	"time"

	"github.com/shearops/shear/internal/store"
)

// SelectDeletable returns the versions eligible for deletion: never the
// current version, and only versions created strictly before cutoff.
// A version created exactly at the cutoff instant is kept.
//
// The cutoff is computed once at run start and reused for every item,
// so a run's eligibility rule does not drift with the wall clock.
func SelectDeletable(versions []store.Version, cutoff time.Time) []store.Version {
	var deletable []store.Version
	for _, v := range versions {
		if v.IsCurrent {
			continue
		}
		if v.Created.Before(cutoff) {
			deletable = append(deletable, v)
		}
	}
	return deletable
}
