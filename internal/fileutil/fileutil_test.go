package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStagingPathUnique(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")
	first, err := StagingPath(dir, "video", "mp4")
	if err != nil {
		t.Fatalf("staging path: %v", err)
	}
	second, err := StagingPath(dir, "video", ".mp4")
	if err != nil {
		t.Fatalf("staging path: %v", err)
	}
	if first == second {
		t.Fatal("expected unique paths")
	}
	if !strings.HasSuffix(first, ".mp4") || !strings.HasSuffix(second, ".mp4") {
		t.Fatalf("expected .mp4 suffix: %q %q", first, second)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected staging dir created: %v", err)
	}
}

func TestStagingPathRequiresDir(t *testing.T) {
	if _, err := StagingPath("", "video", "mp4"); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KiB",
		5 * 1024 * 1024: "5.0 MiB",
	}
	for in, want := range cases {
		if got := FormatBytes(in); got != want {
			t.Fatalf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
