package engine

import "errors"

// Sentinel errors for the run-aborting branches. All of them stop the
// run before any store mutation and before any state write.
var (
	// ErrCooldown blocks every run mode inside the post-policy-change
	// cooldown window.
	ErrCooldown = errors.New("retention policy changed recently, runs are blocked during the cooldown")

	// ErrDeclined is returned when the operator does not type the
	// confirmation phrase for a delete run.
	ErrDeclined = errors.New("delete not confirmed")

	// ErrLibraryNotFound is returned when an explicitly named library
	// does not exist on the site.
	ErrLibraryNotFound = errors.New("library not found")

	// ErrNoTargets is returned when resolution leaves no libraries to
	// process.
	ErrNoTargets = errors.New("no target libraries")

	// ErrNoItems is returned when the target libraries contain no
	// files at all.
	ErrNoItems = errors.New("no items found in target libraries")
)
