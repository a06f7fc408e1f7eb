//go:build js && wasm

package lockfile

import "os"

// WASM has no file locking and runs single-process; the guard is moot.

func flockExclusive(f *os.File) error {
	return nil
}

func flockUnlock(f *os.File) error {
	return nil
}
