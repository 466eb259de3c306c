package model

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/Brownie44l1/gummy-api/internal/shared"
)

// LoadCatalog reads one class label per line. Blank lines are kept so that
// line i always names model output i.
func LoadCatalog(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, shared.Wrap(shared.ErrCatalogUnavailable, err)
	}
	defer file.Close()

	var classes []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		classes = append(classes, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, shared.Wrap(shared.ErrCatalogUnavailable, err)
	}
	if len(classes) == 0 {
		return nil, shared.Wrap(shared.ErrCatalogUnavailable, errors.New("class names file is empty"))
	}
	return classes, nil
}
