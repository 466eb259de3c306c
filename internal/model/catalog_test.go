package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Brownie44l1/gummy-api/internal/shared"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "class_names.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{"unix newlines", "red\ngreen\nblue\n", []string{"red", "green", "blue"}},
		{"no trailing newline", "red\ngreen", []string{"red", "green"}},
		{"windows newlines", "red\r\ngreen\r\n", []string{"red", "green"}},
		{"blank line kept", "red\n\nblue\n", []string{"red", "", "blue"}},
		{"surrounding spaces", "  red \n\tgreen\n", []string{"red", "green"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classes, err := LoadCatalog(writeFile(t, tt.content))
			if err != nil {
				t.Fatalf("LoadCatalog() error = %v", err)
			}
			if len(classes) != len(tt.expected) {
				t.Fatalf("LoadCatalog() = %q, expected %q", classes, tt.expected)
			}
			for i := range classes {
				if classes[i] != tt.expected[i] {
					t.Errorf("classes[%d] = %q, expected %q", i, classes[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLoadCatalogUnavailable(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, shared.ErrCatalogUnavailable) {
		t.Errorf("missing file error = %v", err)
	}
	if _, err := LoadCatalog(writeFile(t, "")); !errors.Is(err, shared.ErrCatalogUnavailable) {
		t.Errorf("empty file error = %v", err)
	}
}
