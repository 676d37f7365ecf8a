package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/shopkeep/pkg/domain"
	"gopkg.in/yaml.v3"
)

// File represents the structure of a catalog file.
type File struct {
	Items []Item `yaml:"items" json:"items"`
}

// FileLoader implements ports.CatalogLoader over a single YAML or JSON file.
type FileLoader struct {
	Path string
}

// NewFileLoader creates a loader for path. The format follows the extension;
// anything other than .json is read as YAML.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// LoadCatalog reads and validates the file.
func (l *FileLoader) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data, strings.ToLower(filepath.Ext(l.Path)))
}

// Parse decodes catalog data. ext selects the format (".json" or YAML otherwise).
func Parse(data []byte, ext string) (*domain.Catalog, error) {
	var f File
	if ext == ".json" {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to parse catalog json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
		}
	}
	if len(f.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", domain.ErrInvalidCatalog)
	}
	return Build(f.Items)
}
