package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type cliConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Source     string `yaml:"source"`
	BatchCount int    `yaml:"batch_count"`
}

// loadCLIConfig reads the config file at path, or ~/.logtide.yaml when path
// is empty. A missing default file is not an error, the zero config is
// returned and flags fill the rest in.
func loadCLIConfig(path string) (*cliConfig, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return &cliConfig{}, nil
		}
		path = filepath.Join(home, ".logtide.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &cliConfig{}, nil
		}
		return nil, err
	}

	var cfg cliConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Env overrides
	if endpoint := os.Getenv("LOGTIDE_ENDPOINT"); endpoint != "" {
		cfg.Endpoint = endpoint
	}

	return &cfg, nil
}
