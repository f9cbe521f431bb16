package appconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte("viewer:\n  theme: dracula\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := Watch(ctx, p, logr.Discard())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	// unrelated files in the directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("viewer:\n  theme: Monokai\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-updates:
			if cfg.Viewer.Theme == "monokai" {
				cancel()
				for range updates {
				}
				return
			}
		case <-deadline:
			t.Fatalf("no reload seen")
		}
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "config.yaml"), logr.Discard())
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
