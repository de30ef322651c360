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
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

var config Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

// loadConfig reads config.yaml next to the binary's working directory.
// A missing file falls back to defaults; a malformed one is fatal.
func loadConfig(path string) Config {
	cfg := DefaultConfig()

	yamlFile, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg
		}
		log.Fatalf("Error reading %s: %v", path, err)
	}

	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		log.Fatalf("Error parsing %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration in %s: %v", path, err)
	}
	return cfg
}
