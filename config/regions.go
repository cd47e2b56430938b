package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Region describes one scrape target: the rumah123 region slug and the
// administrative names used to pick the location line out of a listing card.
type Region struct {
	Name   string   `yaml:"name"`
	ID     string   `yaml:"id"`
	Admins []string `yaml:"admins"`
}

// ExtractConfig mirrors configs/extract.yaml.
type ExtractConfig struct {
	Regions      []Region `yaml:"regions"`
	AdsType      string   `yaml:"ads_type"`
	PropertyType string   `yaml:"property_type"`
	NumPages     int      `yaml:"num_pages"`
}

// LoadConfig mirrors configs/load.yaml.
type LoadConfig struct {
	StagingTable    string `yaml:"stg_table"`
	ProductionTable string `yaml:"main_table"`
	UniqueKey       string `yaml:"unique_key"`
	BatchSize       int    `yaml:"batch_size"`
}

// ReadExtractConfig parses the extraction config from the given directory.
func ReadExtractConfig(dir string) (*ExtractConfig, error) {
	var cfg ExtractConfig
	if err := readYAML(filepath.Join(dir, "extract.yaml"), &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Regions) == 0 {
		return nil, fmt.Errorf("extract config: no regions defined")
	}
	if cfg.NumPages <= 0 {
		return nil, fmt.Errorf("extract config: num_pages must be a positive integer")
	}
	return &cfg, nil
}

// ReadLoadConfig parses the load config from the given directory.
func ReadLoadConfig(dir string) (*LoadConfig, error) {
	var cfg LoadConfig
	if err := readYAML(filepath.Join(dir, "load.yaml"), &cfg); err != nil {
		return nil, err
	}
	if cfg.StagingTable == "" || cfg.ProductionTable == "" {
		return nil, fmt.Errorf("load config: stg_table and main_table are required")
	}
	if cfg.UniqueKey == "" {
		cfg.UniqueKey = "link"
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("load config: batch_size must be a positive integer")
	}
	return &cfg, nil
}

// Region returns the named region from the config, or an error listing the
// valid names.
func (c *ExtractConfig) Region(name string) (*Region, error) {
	names := make([]string, 0, len(c.Regions))
	for i := range c.Regions {
		if c.Regions[i].Name == name {
			return &c.Regions[i], nil
		}
		names = append(names, c.Regions[i].Name)
	}
	return nil, fmt.Errorf("unknown region %q (configured: %v)", name, names)
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
