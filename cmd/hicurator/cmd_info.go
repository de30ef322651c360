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
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/hicurator/services/curation/provenance"
)

func runInfo(cmd *cobra.Command, args []string) {
	data, err := loadMapFile(args[0])
	if err != nil {
		log.Fatalf("Error loading map: %v", err)
	}

	var totalBases int64
	for _, c := range data.Contigs {
		totalBases += c.Length
	}

	fmt.Printf("Source:      %s\n", data.SourceFile)
	fmt.Printf("Texture:     %dx%d pixels\n", data.TextureSize, data.TextureSize)
	fmt.Printf("Contigs:     %d (%d bp total)\n", len(data.Contigs), totalBases)

	orientation := map[bool]string{false: "+", true: "-"}
	for _, c := range data.Contigs {
		scaffold := c.ScaffoldID
		if scaffold == "" {
			scaffold = "-"
		}
		fmt.Printf("  [%d] %-20s %s  pixels %d-%d  %d bp  scaffold %s\n",
			c.OriginalIndex, c.Name, orientation[c.Inverted],
			c.PixelStart, c.PixelEnd, c.Length, scaffold)
	}

	if logPath != "" {
		printLogSummary(logPath)
	}
}

func printLogSummary(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Error reading curation log: %v", err)
	}
	imported, err := provenance.FromJSON(raw)
	if err != nil {
		log.Fatalf("Error parsing curation log: %v", err)
	}

	fmt.Printf("\nLog:         %s\n", path)
	fmt.Printf("Log source:  %s (%d contigs)\n", imported.SourceFile(), imported.TotalContigs())
	fmt.Printf("Entries:     %d\n", imported.Len())
	for _, e := range imported.Entries() {
		batch := ""
		if e.BatchID != "" {
			batch = "  [batch]"
		}
		fmt.Printf("  %3d  %-12s %s%s\n", e.Sequence, e.OperationType, e.Description, batch)
	}
}
