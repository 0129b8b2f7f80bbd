package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/layoutkit/pkg/domain"
)

//go:embed default.json
var defaultCatalog []byte

// Format names a catalog encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor guesses the format from a file extension. Unknown extensions are JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes a catalog document.
func Parse(data []byte, format Format) (*domain.Catalog, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatJSON, "":
		return parseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
}

func parseJSON(data []byte) (*domain.Catalog, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return domain.NewCatalog(), nil
	}
	c := domain.NewCatalog()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return c, nil
}

// Default returns the catalog bundled with the binary.
func Default() *domain.Catalog {
	c, err := parseJSON(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: bundled catalog is invalid: %v", err))
	}
	return c
}

// FileLoader implements ports.CatalogLoader by reading a file on every call,
// so edits to the catalog are picked up without a restart.
// An empty Path serves the bundled default catalog.
type FileLoader struct {
	Path string
}

// NewFileLoader creates a loader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// LoadCatalog reads and decodes the catalog file.
func (l *FileLoader) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	if l.Path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", l.Path, err)
	}
	c, err := Parse(data, FormatFor(l.Path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	return c, nil
}
