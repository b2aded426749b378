package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PipelinePath string // hcl pipeline definition

	Year  int
	Month int

	Step      string // run exactly one step
	StartFrom string // skip steps declared before this one
	Force     bool

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	if cfg.Year == 0 || cfg.Month == 0 {
		return nil, errors.New("Year and Month are required configuration fields")
	}

	return &cfg, nil
}
