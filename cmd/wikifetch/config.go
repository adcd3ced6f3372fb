package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// config is the optional yaml config file. Zero values defer to the library
// defaults.
type config struct {
	UserAgent         string   `yaml:"user_agent"`
	TimeoutSeconds    int      `yaml:"timeout_seconds"`
	APIPathCandidates []string `yaml:"api_path_candidates"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
