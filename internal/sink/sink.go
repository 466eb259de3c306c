// Package sink persists copies of request images for diagnostics and for
// the web result page.
package sink

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/Brownie44l1/gummy-api/internal/shared"
	"github.com/google/uuid"
)

// Sink stores an image and returns the name it was stored under.
type Sink interface {
	Save(img image.Image) (string, error)
}

// DirSink writes JPEG files into a directory. Every file gets a random
// UUID so concurrent saves never target the same name.
type DirSink struct {
	dir     string
	prefix  string
	quality int
}

func NewDirSink(dir, prefix string) *DirSink {
	return &DirSink{dir: dir, prefix: prefix, quality: 90}
}

func (s *DirSink) Dir() string {
	return s.dir
}

func (s *DirSink) Save(img image.Image) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", shared.ErrDiagnosticSink, s.dir, err)
	}

	name := fmt.Sprintf("%s_%s.jpg", s.prefix, uuid.New().String())
	path := filepath.Join(s.dir, name)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", shared.ErrDiagnosticSink, path, err)
	}

	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: s.quality}); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: encode %s: %w", shared.ErrDiagnosticSink, path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %w", shared.ErrDiagnosticSink, path, err)
	}
	return name, nil
}

// Discard drops every image.
type Discard struct{}

func (Discard) Save(image.Image) (string, error) {
	return "", nil
}
