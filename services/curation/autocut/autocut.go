// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package autocut proposes misassembly breakpoints from contact-map
// signal and drives the corresponding batch of cut operations.
package autocut

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/hicurator/pkg/logging"
	"github.com/AleutianAI/hicurator/services/curation/engine"
	"github.com/AleutianAI/hicurator/services/curation/state"
	"github.com/AleutianAI/hicurator/services/curation/telemetry"
)

const tracerName = "curation.autocut"

// ContigResult holds the breakpoints proposed for one contig.
// Breakpoint offsets are relative to PixelStart.
type ContigResult struct {
	ContigIndex int          `json:"contigIndex"`
	Name        string       `json:"name"`
	PixelStart  int          `json:"pixelStart"`
	Breakpoints []Breakpoint `json:"breakpoints"`
}

// Result is the outcome of one detection pass over the whole map.
type Result struct {
	Contigs          []ContigResult `json:"contigs"`
	TotalBreakpoints int            `json:"totalBreakpoints"`
}

// Detector runs breakpoint detection over a contact matrix.
type Detector struct {
	logger  *logging.Logger
	metrics *telemetry.Metrics
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithLogger sets the structured logger. Defaults to logging.Default().
func WithLogger(logger *logging.Logger) DetectorOption {
	return func(d *Detector) { d.logger = logger }
}

// WithMetrics attaches telemetry instruments.
func WithMetrics(metrics *telemetry.Metrics) DetectorOption {
	return func(d *Detector) { d.metrics = metrics }
}

// NewDetector creates a detector.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.Default()
	}
	return d
}

// Run detects breakpoints for every contig large enough to cut.
//
// # Description
//
// Contigs whose pixel span is under twice MinFragmentSize are skipped:
// no cut inside them could produce two valid fragments. The remaining
// contigs are analyzed concurrently, one density curve each.
//
// # Thread Safety
//
// Safe for concurrent use; the matrix is only read.
func (d *Detector) Run(ctx context.Context, m *ContactMatrix, contigs []state.Contig, opts Options) (*Result, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if m == nil {
		return nil, ErrNilMatrix
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Detector.Run",
		trace.WithAttributes(
			attribute.Int("contigs", len(contigs)),
			attribute.Float64("cut_threshold", opts.CutThreshold),
		))
	defer span.End()
	start := time.Now()

	eligible := make([]state.Contig, 0, len(contigs))
	for _, c := range contigs {
		if c.Span() >= 2*opts.MinFragmentSize {
			eligible = append(eligible, c)
		}
	}

	results := make([][]Breakpoint, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range eligible {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			curve, err := m.DiagonalDensity(c.PixelStart, c.PixelEnd, opts.WindowSize)
			if err != nil {
				return fmt.Errorf("contig %d (%s): %w", c.OriginalIndex, c.Name, err)
			}
			results[i] = DetectCurve(curve, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	out := &Result{}
	for i, c := range eligible {
		if len(results[i]) == 0 {
			continue
		}
		out.Contigs = append(out.Contigs, ContigResult{
			ContigIndex: c.OriginalIndex,
			Name:        c.Name,
			PixelStart:  c.PixelStart,
			Breakpoints: results[i],
		})
		out.TotalBreakpoints += len(results[i])
	}

	d.metrics.RecordAutocut(ctx, time.Since(start).Seconds(), out.TotalBreakpoints)
	d.logger.Info("autocut detection complete",
		"contigs_scanned", len(eligible),
		"breakpoints", out.TotalBreakpoints,
		"duration", time.Since(start).String(),
	)
	return out, nil
}

// Apply cuts the map at every detected breakpoint as one undoable batch.
//
// Within a contig the cuts run at descending offsets, so each cut's
// coordinate-left fragment keeps the original index and the remaining
// lower offsets stay addressable through it. Returns the number of cuts
// performed.
func (d *Detector) Apply(ctx context.Context, e *engine.Engine, result *Result, opts Options) (int, error) {
	if ctx == nil {
		return 0, ErrNilContext
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Detector.Apply",
		trace.WithAttributes(attribute.Int("breakpoints", result.TotalBreakpoints)))
	defer span.End()

	e.BeginBatch("autocut", map[string]string{
		"threshold":  fmt.Sprintf("%.2f", opts.CutThreshold),
		"windowSize": fmt.Sprintf("%d", opts.WindowSize),
	})
	defer e.EndBatch()

	cuts := 0
	for _, cr := range result.Contigs {
		bps := make([]Breakpoint, len(cr.Breakpoints))
		copy(bps, cr.Breakpoints)
		sort.Slice(bps, func(i, j int) bool { return bps[i].Offset > bps[j].Offset })

		for _, bp := range bps {
			if err := ctx.Err(); err != nil {
				return cuts, err
			}
			_, _, err := e.Cut(ctx, cr.ContigIndex, cr.PixelStart+bp.Offset)
			if err != nil {
				telemetry.RecordError(span, err)
				return cuts, fmt.Errorf("cut contig %d at %d: %w", cr.ContigIndex, cr.PixelStart+bp.Offset, err)
			}
			cuts++
		}
	}

	d.logger.Info("autocut applied", "cuts", cuts)
	return cuts, nil
}
