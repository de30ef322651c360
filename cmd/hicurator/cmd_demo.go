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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/hicurator/services/curation"
)

func runDemo(cmd *cobra.Command, args []string) {
	opts := curation.DefaultDemoOptions()
	if demoContigs > 0 {
		opts.Contigs = demoContigs
	}
	if demoTexture > 0 {
		opts.TextureSize = demoTexture
	}

	data, matrix, planted := curation.GenerateDemoMap(demoSeed, opts)

	mapPath := outPath + "_map.json"
	matrixOut := outPath + "_matrix.json"
	if err := saveMapFile(mapPath, data); err != nil {
		log.Fatalf("Error writing map: %v", err)
	}
	if err := saveMatrixFile(matrixOut, matrix); err != nil {
		log.Fatalf("Error writing matrix: %v", err)
	}

	fmt.Printf("Generated %d contigs over a %dx%d map (seed %d)\n",
		len(data.Contigs), opts.TextureSize, opts.TextureSize, demoSeed)
	fmt.Printf("Planted misjoins at pixels %v\n", planted)
	fmt.Printf("Wrote %s and %s\n", mapPath, matrixOut)
}
