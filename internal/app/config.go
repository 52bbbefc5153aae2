package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath  string // profile .hcl file or directory
	ModulesPath string // plugin manifests (.hcl) living next to their handlers
	EnvDir      string // directory searched for dotenv layers; empty disables layering
	Profile     string

	LogFormat   string
	LogLevel    string
	Format      string // print encoding: 'json' or 'yaml'
	WorkerCount int
	StatusPort  int
	Strict      bool
	Watch       bool
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Profile == "" {
		cfg.Profile = "default"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}

	return &cfg, nil
}
