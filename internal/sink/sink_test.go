package sink

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Brownie44l1/gummy-api/internal/shared"
)

func TestDirSinkSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	s := NewDirSink(dir, "predict")

	name, err := s.Save(image.NewRGBA(image.Rect(0, 0, 8, 8)))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasPrefix(name, "predict_") || !strings.HasSuffix(name, ".jpg") {
		t.Errorf("unexpected name %q", name)
	}
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}

func TestDirSinkConcurrentNamesAreUnique(t *testing.T) {
	s := NewDirSink(t.TempDir(), "predict")
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	const n = 20
	names := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := s.Save(img)
			if err != nil {
				t.Errorf("Save() error = %v", err)
				return
			}
			names[i] = name
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			t.Fatalf("duplicate name %q", name)
		}
		seen[name] = true
	}
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != n {
		t.Errorf("found %d files, expected %d", len(entries), n)
	}
}

func TestDirSinkUnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewDirSink(filepath.Join(blocker, "uploads"), "predict")

	_, err := s.Save(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if !errors.Is(err, shared.ErrDiagnosticSink) {
		t.Errorf("Save() error = %v, expected ErrDiagnosticSink", err)
	}
}
