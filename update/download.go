package update

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"ota-checker-go/internal"
	"ota-checker-go/manifest"

	"github.com/spf13/afero"
)

const (
	downloadTimeout = 30 * time.Minute
	maxBuildSize    = 4 * 1024 * 1024 * 1024 // 4 GB
)

// Download streams the build described by entry into dir, validates size and
// checksum, and returns the path of the finished file. A partial or invalid
// download leaves nothing behind.
func Download(ctx context.Context, opener manifest.Opener, fs afero.Fs, entry manifest.Entry, dir string) (string, error) {
	if entry.URL == "" {
		return "", fmt.Errorf("no download URL for %s", entry.Filename)
	}
	if dir == "" {
		return "", fmt.Errorf("no download directory configured")
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	if err := fs.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	body, err := opener.Fetch(ctx, entry.URL)
	if err != nil {
		return "", fmt.Errorf("failed to download build: %w", err)
	}
	defer body.Close()

	tmpFile, err := afero.TempFile(fs, dir, ".ota-download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Download with size limit and checksum computation
	hasher := sha256.New()
	writer := io.MultiWriter(tmpFile, hasher)
	reader := io.LimitReader(body, maxBuildSize+1) // +1 to detect overflow

	n, err := io.Copy(writer, reader)
	tmpFile.Close()

	if err != nil {
		fs.Remove(tmpPath)
		return "", fmt.Errorf("failed to write build: %w", err)
	}

	if n > maxBuildSize {
		fs.Remove(tmpPath)
		return "", fmt.Errorf("build exceeds maximum size of %d bytes", int64(maxBuildSize))
	}

	// Validate size matches manifest
	if entry.SizeBytes > 0 && n != entry.SizeBytes {
		fs.Remove(tmpPath)
		return "", fmt.Errorf("download size mismatch: expected %d, got %d", entry.SizeBytes, n)
	}

	// Validate checksum
	actualChecksum := hex.EncodeToString(hasher.Sum(nil))
	if entry.SHA256 != "" && !strings.EqualFold(actualChecksum, entry.SHA256) {
		fs.Remove(tmpPath)
		return "", fmt.Errorf("checksum mismatch: expected %s, got %s", entry.SHA256, actualChecksum)
	}

	dest := filepath.Join(dir, downloadName(entry))
	if err := fs.Rename(tmpPath, dest); err != nil {
		fs.Remove(tmpPath)
		return "", fmt.Errorf("failed to move build into place: %w", err)
	}

	internal.DebugPrint("Downloaded %d bytes to %s", n, dest)
	return dest, nil
}

// downloadName is the last path element of the download URL, falling back to
// the build filename. It never contains a path separator.
func downloadName(entry manifest.Entry) string {
	if u, err := url.Parse(entry.URL); err == nil {
		name := path.Base(u.Path)
		if name != "" && name != "." && name != "/" && name != ".." {
			return filepath.Base(name)
		}
	}
	name := filepath.Base(entry.Filename)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "ota-build"
	}
	return name
}
