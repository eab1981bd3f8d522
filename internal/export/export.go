// Package export hands the committed script to the outside world: the system
// clipboard or an executable file on disk.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"

	"scriptsmith/internal/logging"
)

// DefaultFileName is the download name used when no path is given.
const DefaultFileName = "script.sh"

// ErrClipboardUnavailable is returned when the platform has no clipboard utility.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Clipboard writes text to a clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}

// System is the platform clipboard.
var System Clipboard = systemClipboard{}

// Copy places text on cb, or the system clipboard when cb is nil.
func Copy(cb Clipboard, text string) error {
	if cb == nil {
		cb = System
	}
	if err := cb.WriteAll(text); err != nil {
		logging.Get(logging.CategoryExport).Warn("Copy failed: %v", err)
		logging.Audit().Export(logging.AuditClipboardCopy, "clipboard", len(text), err.Error())
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	logging.Export("Copied %d bytes to clipboard", len(text))
	logging.Audit().Export(logging.AuditClipboardCopy, "clipboard", len(text), "")
	return nil
}

// WriteFile writes text to path as an executable script, creating parent
// directories. The file is replaced atomically.
func WriteFile(path, text string) (string, error) {
	if path == "" {
		path = DefaultFileName
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".smith-*.sh")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		cleanup()
		return "", fmt.Errorf("failed to write script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to write script: %w", err)
	}
	if err := os.Chmod(tmpName, 0755); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to chmod script: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to save script: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	logging.Export("Wrote %d bytes to %s", len(text), abs)
	logging.Audit().Export(logging.AuditFileWrite, abs, len(text), "")
	return abs, nil
}
