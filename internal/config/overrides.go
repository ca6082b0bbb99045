package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// overridesFile is the YAML layout of -producers-file:
//
//	producers:
//	  ecommerce/get_product_xss: 0.25
//	  ecommerce/get_product: 0.5
type overridesFile struct {
	Producers map[string]float64 `yaml:"producers"`
}

// LoadOverrides reads emission probability overrides keyed by producer name.
// Names and ranges are checked when producers are built.
func LoadOverrides(path string) (map[string]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read producers file: %w", err)
	}

	var f overridesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse producers file %s: %w", path, err)
	}
	if f.Producers == nil {
		f.Producers = make(map[string]float64)
	}
	return f.Producers, nil
}
