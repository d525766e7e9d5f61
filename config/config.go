// Package config loads YAML-tagged reconstruction configuration, mirroring
// the defaults called out across §4.7-§4.16.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pruning holds the hierarchical-pruning parameters of §4.11.
type Pruning struct {
	LThresh                float64 `yaml:"lThresh"`
	SrRatio                float64 `yaml:"srRatio"`
	SphereOverlapThreshold float64 `yaml:"sphereOverlapThreshold"`
	LeafPruneOverlap       float64 `yaml:"leafPruneOverlap"`
	EnableLeafJointPruning bool    `yaml:"enableLeafJointPruning"`
}

// Config is the full set of tunables for one automatic reconstruction run.
type Config struct {
	Threshold        float64 `yaml:"threshold"`        // θ; 0 means "auto = image mean"
	Connectivity     int     `yaml:"connectivity"`     // cnnType ∈ {1,2,3}
	AllowGap         bool    `yaml:"allowGap"`
	SmoothingWindow  int     `yaml:"smoothingWindow"`
	ResampleStep     float64 `yaml:"resampleStep"`
	StorageBackend   string  `yaml:"storageBackend"` // "dense" | "sparse" | "disk"
	Pruning          Pruning `yaml:"pruning"`
}

// Default returns the spec's literal default parameters.
func Default() Config {
	return Config{
		Connectivity:    3,
		SmoothingWindow: 5,
		ResampleStep:    1.0,
		StorageBackend:  "dense",
		Pruning: Pruning{
			LThresh:                5.0,
			SrRatio:                1.0 / 9.0,
			SphereOverlapThreshold: 0.10,
			LeafPruneOverlap:       0.9,
			EnableLeafJointPruning: true,
		},
	}
}

// Load reads and parses a YAML config file, filling unset fields from
// Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return cfg, nil
}
