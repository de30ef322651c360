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
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/hicurator/services/curation"
	"github.com/AleutianAI/hicurator/services/curation/autocut"
	"github.com/AleutianAI/hicurator/services/curation/telemetry"
)

// detectionOptions merges config file values and flag overrides onto
// the defaults. Flags win.
func detectionOptions() autocut.Options {
	opts := autocut.DefaultOptions()
	if config.Autocut.CutThreshold > 0 {
		opts.CutThreshold = config.Autocut.CutThreshold
	}
	if config.Autocut.WindowSize > 0 {
		opts.WindowSize = config.Autocut.WindowSize
	}
	if config.Autocut.MinFragmentSize > 0 {
		opts.MinFragmentSize = config.Autocut.MinFragmentSize
	}
	if cutThreshold > 0 {
		opts.CutThreshold = cutThreshold
	}
	if windowSize > 0 {
		opts.WindowSize = windowSize
	}
	if minFragment > 0 {
		opts.MinFragmentSize = minFragment
	}
	return opts
}

// newSession builds a curation service from the loaded configuration,
// with telemetry when enabled. The returned cleanup flushes exporters
// and the log file.
func newSession(ctx context.Context) (*curation.Service, func()) {
	logger := config.newLogger()

	var svcOpts []curation.ServiceOption
	svcOpts = append(svcOpts, curation.WithLogger(logger))

	shutdown := func(context.Context) error { return nil }
	if config.Telemetry.Enabled {
		var err error
		shutdown, err = telemetry.Init(ctx, telemetry.DefaultConfig())
		if err != nil {
			log.Fatalf("Error initializing telemetry: %v", err)
		}
		metrics, err := telemetry.NewMetrics()
		if err != nil {
			log.Fatalf("Error creating metrics: %v", err)
		}
		svcOpts = append(svcOpts, curation.WithMetrics(metrics))
	}

	cleanup := func() {
		_ = shutdown(context.Background())
		_ = logger.Close()
	}
	return curation.NewService(svcOpts...), cleanup
}

func runAutocut(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := loadMapFile(args[0])
	if err != nil {
		log.Fatalf("Error loading map: %v", err)
	}
	matrix, err := loadMatrixFile(matrixPath)
	if err != nil {
		log.Fatalf("Error loading matrix: %v", err)
	}

	svc, cleanup := newSession(ctx)
	defer cleanup()
	if err := svc.LoadMap(ctx, data); err != nil {
		log.Fatalf("Error loading map into session: %v", err)
	}

	opts := detectionOptions()
	if !applyCuts {
		result, err := svc.Detector().Run(ctx, matrix, svc.OrderedContigs(), opts)
		if err != nil {
			log.Fatalf("Error detecting breakpoints: %v", err)
		}
		printResult(result)
		return
	}

	result, cuts, err := svc.AutoCut(ctx, matrix, opts)
	if err != nil {
		log.Fatalf("Error applying autocut: %v", err)
	}
	printResult(result)

	doc, err := svc.ExportLog()
	if err != nil {
		log.Fatalf("Error exporting curation log: %v", err)
	}
	if err := os.WriteFile(outPath, doc, 0640); err != nil {
		log.Fatalf("Error writing curation log: %v", err)
	}
	fmt.Printf("Applied %d cuts; curation log written to %s\n", cuts, outPath)
}

func printResult(result *autocut.Result) {
	fmt.Printf("Detected %d breakpoint(s) in %d contig(s)\n",
		result.TotalBreakpoints, len(result.Contigs))
	for _, cr := range result.Contigs {
		for _, bp := range cr.Breakpoints {
			fmt.Printf("  %s: pixel %d (confidence %.2f)\n",
				cr.Name, cr.PixelStart+bp.Offset, bp.Confidence)
		}
	}
}
