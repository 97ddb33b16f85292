// Package fileutil provides small filesystem helpers shared by the pipeline
// stages: staging paths for ephemeral assets and byte-size formatting for logs.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StagingPath returns a unique file path inside dir with the given prefix and
// extension, suitable for one job's ephemeral assets. The directory is created
// if missing.
func StagingPath(dir, prefix, ext string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("staging path: dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("staging path: ensure dir: %w", err)
	}
	ext = strings.TrimPrefix(ext, ".")
	name := prefix + "-" + uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	return filepath.Join(dir, name), nil
}

// FileSize returns the size of path in bytes.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// FormatBytes renders a byte count in binary units for human-facing logs.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
