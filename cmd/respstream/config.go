package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the file-based settings shared by the subcommands. Flags
// override whatever the file sets.
type Config struct {
	NATS struct {
		URL     string `yaml:"url"`
		Subject string `yaml:"subject"`
	} `yaml:"nats"`
	Serve struct {
		Addr string `yaml:"addr"`
	} `yaml:"serve"`
}

// defaultConfig returns the config used when no file is given.
func defaultConfig() Config {
	var cfg Config
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.NATS.Subject = "respstream.events"
	cfg.Serve.Addr = ":8080"
	return cfg
}

// loadConfig reads a YAML config file, falling back to defaults when path is
// empty.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
