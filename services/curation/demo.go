// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package curation

import (
	"fmt"
	"math/rand"

	"github.com/AleutianAI/hicurator/services/curation/autocut"
	"github.com/AleutianAI/hicurator/services/curation/state"
)

// DemoOptions shapes a generated demonstration map.
type DemoOptions struct {
	// Contigs is how many contigs to generate.
	Contigs int

	// TextureSize is the map dimension in pixels.
	TextureSize int

	// PlantedBreaks is how many contigs receive a synthetic misjoin
	// (a dead band in their contact signal).
	PlantedBreaks int

	// BandWidth is the near-diagonal signal half-width in pixels.
	BandWidth int
}

// DefaultDemoOptions returns a map sized for quick experiments.
func DefaultDemoOptions() DemoOptions {
	return DemoOptions{
		Contigs:       6,
		TextureSize:   900,
		PlantedBreaks: 2,
		BandWidth:     8,
	}
}

// GenerateDemoMap builds a synthetic contact map with known misjoins,
// for demos and detector tuning. The same seed always produces the same
// map and the same planted breakpoint positions.
//
// Returns the map data, its contact matrix, and the absolute pixel
// positions of the planted breaks.
func GenerateDemoMap(seed int64, opts DemoOptions) (MapData, *autocut.ContactMatrix, []int) {
	rng := rand.New(rand.NewSource(seed))
	if opts.Contigs < 1 {
		opts = DefaultDemoOptions()
	}

	// Split the texture into contigs of uneven sizes, each at least
	// wide enough to be cuttable.
	minSpan := opts.TextureSize / (opts.Contigs * 2)
	bounds := make([]int, 0, opts.Contigs+1)
	bounds = append(bounds, 0)
	for i := 1; i < opts.Contigs; i++ {
		lo := bounds[i-1] + minSpan
		hi := opts.TextureSize - (opts.Contigs-i)*minSpan
		bounds = append(bounds, lo+rng.Intn(hi-lo+1))
	}
	bounds = append(bounds, opts.TextureSize)

	contigs := make([]state.Contig, opts.Contigs)
	for i := range contigs {
		span := bounds[i+1] - bounds[i]
		contigs[i] = state.Contig{
			OriginalIndex: i,
			Name:          fmt.Sprintf("demo_ctg_%d", i),
			Length:        int64(span) * 100, // 100 bp per pixel
			PixelStart:    bounds[i],
			PixelEnd:      bounds[i+1],
		}
	}

	// Near-diagonal signal with mild noise, confined to each contig.
	m := autocut.NewContactMatrix(opts.TextureSize)
	for _, c := range contigs {
		for i := c.PixelStart; i < c.PixelEnd; i++ {
			for d := -opts.BandWidth; d <= opts.BandWidth; d++ {
				j := i + d
				if j < c.PixelStart || j >= c.PixelEnd || d == 0 {
					continue
				}
				_ = m.Set(i, j, 0.8+0.4*rng.Float64())
			}
		}
	}

	// Plant dead bands: pick the widest contigs and erase the signal
	// around a point in their middle third.
	var planted []int
	for k := 0; k < opts.PlantedBreaks && k < len(contigs); k++ {
		c := contigs[(k*7)%len(contigs)]
		span := c.Span()
		if span < 6*opts.BandWidth {
			continue
		}
		pos := c.PixelStart + span/3 + rng.Intn(span/3)
		for i := pos - opts.BandWidth/2; i < pos+opts.BandWidth/2+2; i++ {
			for j := c.PixelStart; j < c.PixelEnd; j++ {
				_ = m.Set(i, j, 0)
				_ = m.Set(j, i, 0)
			}
		}
		planted = append(planted, pos)
	}

	data := MapData{
		Contigs:     contigs,
		TextureSize: opts.TextureSize,
		SourceFile:  fmt.Sprintf("demo_seed_%d.map", seed),
	}
	return data, m, planted
}
