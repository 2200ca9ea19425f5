package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"storefront/catnav/internal/domain"
)

//go:embed data/storefront.yaml
var defaultDefinition []byte

type definition struct {
	Categories []*domain.Category `yaml:"categories"`
}

// LoadYAML decodes a tree definition and builds the tree.
func LoadYAML(r io.Reader) (*Tree, error) {
	var def definition
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to decode category definition: %w", err)
	}

	return New(def.Categories)
}

// LoadFile builds the tree from a YAML definition on disk.
func LoadFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open category definition: %w", err)
	}
	defer f.Close()

	return LoadYAML(f)
}

// Default builds the tree from the embedded storefront definition.
func Default() (*Tree, error) {
	return LoadYAML(bytes.NewReader(defaultDefinition))
}
