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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath    string
	matrixPath    string
	logPath       string
	outPath       string
	cutThreshold  float64
	windowSize    int
	minFragment   int
	demoSeed      int64
	demoContigs   int
	demoTexture   int
	applyCuts     bool

	rootCmd = &cobra.Command{
		Use:   "hicurator",
		Short: "A cli for contact-map assembly curation",
		Long: `Hicurator detects and applies misassembly corrections on Hi-C
contact maps and manages the provenance log of a curation session.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config = loadConfig(configPath)
		},
	}

	// --- Detection ---
	autocutCmd = &cobra.Command{
		Use:   "autocut [map.json]",
		Short: "Detect misassembly breakpoints and record the cuts as a curation log",
		Args:  cobra.ExactArgs(1),
		Run:   runAutocut, // Defined in cmd_autocut.go
	}

	// --- Provenance ---
	replayCmd = &cobra.Command{
		Use:   "replay [map.json] [log.json]",
		Short: "Verify a curation log replays deterministically over its map",
		Args:  cobra.ExactArgs(2),
		Run:   runReplay, // Defined in cmd_replay.go
	}

	// --- Utilities ---
	infoCmd = &cobra.Command{
		Use:   "info [map.json]",
		Short: "Summarize a map file's contigs, and optionally a curation log",
		Args:  cobra.ExactArgs(1),
		Run:   runInfo, // Defined in cmd_info.go
	}

	demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Generate a synthetic map and matrix with planted misjoins",
		Run:   runDemo, // Defined in cmd_demo.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")

	autocutCmd.Flags().StringVar(&matrixPath, "matrix", "", "Path to the contact matrix JSON (required)")
	autocutCmd.Flags().StringVar(&outPath, "out", "curation_log.json", "Path to write the curation log")
	autocutCmd.Flags().Float64Var(&cutThreshold, "threshold", 0, "Override the density drop threshold (0-1)")
	autocutCmd.Flags().IntVar(&windowSize, "window", 0, "Override the diagonal window size in pixels")
	autocutCmd.Flags().IntVar(&minFragment, "min-fragment", 0, "Override the minimum fragment size in pixels")
	autocutCmd.Flags().BoolVar(&applyCuts, "apply", true, "Apply the detected cuts (false = report only)")
	_ = autocutCmd.MarkFlagRequired("matrix")

	infoCmd.Flags().StringVar(&logPath, "log", "", "Also summarize a curation log JSON")

	demoCmd.Flags().Int64Var(&demoSeed, "seed", 1, "Random seed for the generated map")
	demoCmd.Flags().IntVar(&demoContigs, "contigs", 0, "Number of contigs (0 = default)")
	demoCmd.Flags().IntVar(&demoTexture, "texture", 0, "Texture size in pixels (0 = default)")
	demoCmd.Flags().StringVar(&outPath, "out", "demo", "Output prefix: <prefix>_map.json and <prefix>_matrix.json")

	rootCmd.AddCommand(autocutCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(demoCmd)
}
