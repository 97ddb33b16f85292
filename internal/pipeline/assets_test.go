package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempAsset(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	return path
}

func TestAssetRegistryReleaseAllRemovesEverything(t *testing.T) {
	dir := t.TempDir()
	registry := NewAssetRegistry(nil)

	first := writeTempAsset(t, dir, "video.mp4")
	second := writeTempAsset(t, dir, "audio.wav")
	registry.Register(first)
	registry.Register(second)

	registry.ReleaseAll()

	for _, path := range []string{first, second} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed, stat err = %v", path, err)
		}
	}
	if registry.Created() != 2 || registry.Released() != 2 {
		t.Errorf("created/released = %d/%d, want 2/2", registry.Created(), registry.Released())
	}
}

func TestAssetRegistryReleaseIsExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	registry := NewAssetRegistry(nil)

	path := writeTempAsset(t, dir, "frame.jpg")
	registry.Register(path)
	registry.Register(path) // duplicate registration is a no-op

	registry.Release(path)
	registry.Release(path)
	registry.ReleaseAll()

	if registry.Created() != 1 {
		t.Errorf("created = %d, want 1", registry.Created())
	}
	if registry.Released() != 1 {
		t.Errorf("released = %d, want 1", registry.Released())
	}
}

func TestAssetRegistryToleratesMissingFiles(t *testing.T) {
	registry := NewAssetRegistry(nil)
	registry.Register(filepath.Join(t.TempDir(), "never-created.bin"))

	// Must not panic or escalate; absence counts as released.
	registry.ReleaseAll()

	if registry.Released() != 1 {
		t.Errorf("released = %d, want 1", registry.Released())
	}
}

func TestAssetRegistryIgnoresUnknownRelease(t *testing.T) {
	registry := NewAssetRegistry(nil)
	registry.Release("/nonexistent/stranger.bin")
	if registry.Released() != 0 {
		t.Errorf("released = %d, want 0", registry.Released())
	}
}
