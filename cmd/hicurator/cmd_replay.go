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
)

func runReplay(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := loadMapFile(args[0])
	if err != nil {
		log.Fatalf("Error loading map: %v", err)
	}
	doc, err := os.ReadFile(args[1])
	if err != nil {
		log.Fatalf("Error reading curation log: %v", err)
	}

	svc, cleanup := newSession(ctx)
	defer cleanup()
	if err := svc.LoadMap(ctx, data); err != nil {
		log.Fatalf("Error loading map into session: %v", err)
	}

	results, err := svc.ReplayLog(ctx, doc)
	if err != nil {
		log.Fatalf("Error replaying curation log: %v", err)
	}

	mismatches := 0
	for _, r := range results {
		status := "ok"
		if !r.Matches {
			mismatches++
			status = "MISMATCH"
			if r.Err != nil {
				status = fmt.Sprintf("ERROR: %v", r.Err)
			}
		}
		fmt.Printf("  entry %d: %s\n", r.Sequence, status)
	}

	if mismatches > 0 {
		log.Fatalf("Replay diverged on %d of %d entries", mismatches, len(results))
	}
	fmt.Printf("Replay verified: %d entries match\n", len(results))
}
