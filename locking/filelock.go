// Package locking provides a cross-process lock backed by a lock file.
package locking

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ota-checker-go/internal"

	"github.com/spf13/afero"
)

// TryAcquire creates the lock file at path on fs atomically. It returns false
// when another process holds the lock. A lock file older than staleAfter is
// treated as abandoned and removed first.
func TryAcquire(fs afero.Fs, path string, staleAfter time.Duration) bool {
	if path == "" {
		return false
	}

	if info, err := fs.Stat(path); err == nil {
		if staleAfter > 0 && time.Since(info.ModTime()) > staleAfter {
			internal.DebugPrint("Removing stale lock %s", path)
			fs.Remove(path)
		}
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		internal.DebugPrint("Failed to create lock directory: %v", err)
		return false
	}

	f, err := fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return false
	}

	// PID and timestamp, for whoever finds the lock
	fmt.Fprintf(f, "%d %s", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	f.Close()
	return true
}

// Release removes the lock file.
func Release(fs afero.Fs, path string) {
	if path == "" {
		return
	}
	fs.Remove(path)
}
