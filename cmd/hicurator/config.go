// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/hicurator/pkg/logging"
)

// Config is the tool's YAML configuration.
type Config struct {
	Logging struct {
		// Level is one of debug, info, warn, error.
		Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

		// Dir receives JSON log files when set.
		Dir string `yaml:"dir"`
	} `yaml:"logging"`

	Telemetry struct {
		// Enabled turns on trace/metric export to stdout.
		Enabled bool `yaml:"enabled"`
	} `yaml:"telemetry"`

	Autocut struct {
		CutThreshold    float64 `yaml:"cut_threshold" validate:"omitempty,gt=0,lt=1"`
		WindowSize      int     `yaml:"window_size" validate:"omitempty,gte=1"`
		MinFragmentSize int     `yaml:"min_fragment_size" validate:"omitempty,gte=1"`
	} `yaml:"autocut"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultConfig returns the configuration used when config.yaml is
// absent.
func DefaultConfig() Config {
	var cfg Config
	cfg.Logging.Level = "info"
	return cfg
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// logLevel maps the configured level string onto the logging package's
// enum.
func (c Config) logLevel() logging.Level {
	switch c.Logging.Level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// newLogger builds the process logger from configuration.
func (c Config) newLogger() *logging.Logger {
	return logging.New(logging.Config{
		Level:   c.logLevel(),
		LogDir:  c.Logging.Dir,
		Service: "hicurator",
	})
}
