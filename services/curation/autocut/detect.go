// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package autocut

import "fmt"

// Options tunes breakpoint detection.
type Options struct {
	// CutThreshold is the fractional density drop, relative to the
	// running baseline, required to open a candidate region. 0.30 means
	// the signal must fall below 70% of baseline.
	CutThreshold float64 `json:"cutThreshold" validate:"gt=0,lt=1"`

	// WindowSize is the half-width, in pixels, of the diagonal band that
	// feeds the density curve. It also sets the smoothing horizon of the
	// baseline and the merge distance for nearby candidate regions.
	WindowSize int `json:"windowSize" validate:"gte=1"`

	// MinFragmentSize is the smallest fragment, in pixels, a cut may
	// produce. Troughs closer than this to either end are discarded.
	MinFragmentSize int `json:"minFragmentSize" validate:"gte=1"`
}

// DefaultOptions returns the tuning used by the interactive tool.
func DefaultOptions() Options {
	return Options{
		CutThreshold:    0.30,
		WindowSize:      8,
		MinFragmentSize: 16,
	}
}

func (o Options) validate() error {
	if o.CutThreshold <= 0 || o.CutThreshold >= 1 {
		return fmt.Errorf("%w: cutThreshold %v not in (0, 1)", ErrBadOptions, o.CutThreshold)
	}
	if o.WindowSize < 1 {
		return fmt.Errorf("%w: windowSize %d < 1", ErrBadOptions, o.WindowSize)
	}
	if o.MinFragmentSize < 1 {
		return fmt.Errorf("%w: minFragmentSize %d < 1", ErrBadOptions, o.MinFragmentSize)
	}
	return nil
}

// minRegionWidth is the narrowest candidate run kept as a real trough;
// anything narrower is treated as noise.
func (o Options) minRegionWidth() int {
	if w := o.WindowSize / 2; w > 3 {
		return w
	}
	return 3
}

// Breakpoint is one proposed cut position within a density curve, in
// curve-local pixel offsets.
type Breakpoint struct {
	// Offset is the pixel offset of the trough minimum, relative to the
	// start of the analyzed range.
	Offset int `json:"offset"`

	// Confidence in (0, 1]: how far the trough fell below baseline.
	Confidence float64 `json:"confidence"`

	// Density is the curve value at the trough minimum.
	Density float64 `json:"density"`

	// Baseline is the running density estimate when the trough opened.
	Baseline float64 `json:"baseline"`
}

// region is one contiguous run of below-threshold curve positions.
type region struct {
	start    int
	end      int // inclusive
	minPos   int
	minVal   float64
	baseline float64
}

// DetectCurve scans a density curve for troughs deep enough to indicate
// a misassembly.
//
// # Description
//
// A trailing exponential moving average tracks the expected density.
// When the signal drops below (1 - CutThreshold) x baseline a candidate
// region opens and the baseline freezes, so the trough cannot drag its
// own reference down. Candidate runs narrower than a noise floor are
// discarded, nearby runs merge, and troughs too close to either end of
// the curve are dropped so no cut could produce an undersized fragment.
// Each surviving trough becomes a breakpoint at its minimum, with
// confidence 1 - min/baseline; only confidences above 0.5 are returned.
func DetectCurve(curve []float64, opts Options) []Breakpoint {
	if len(curve) < 2*opts.MinFragmentSize {
		return nil
	}

	alpha := 2.0 / float64(opts.WindowSize+1)

	// Seed the baseline from the leading window so the first values do
	// not each compare against only themselves.
	seed := opts.WindowSize
	if seed > len(curve) {
		seed = len(curve)
	}
	var baseline float64
	for _, v := range curve[:seed] {
		baseline += v
	}
	baseline /= float64(seed)

	var regions []region
	var cur *region
	for i, v := range curve {
		inTrough := baseline > 0 && v < (1-opts.CutThreshold)*baseline
		switch {
		case inTrough && cur == nil:
			regions = append(regions, region{
				start: i, end: i, minPos: i, minVal: v, baseline: baseline,
			})
			cur = &regions[len(regions)-1]
		case inTrough:
			cur.end = i
			if v < cur.minVal {
				cur.minVal = v
				cur.minPos = i
			}
		default:
			cur = nil
			baseline += alpha * (v - baseline)
		}
	}

	regions = mergeRegions(regions, opts.WindowSize)

	var out []Breakpoint
	for _, r := range regions {
		if r.end-r.start+1 < opts.minRegionWidth() {
			continue
		}
		if r.minPos < opts.MinFragmentSize || r.minPos > len(curve)-opts.MinFragmentSize {
			continue
		}
		confidence := 1 - r.minVal/r.baseline
		if confidence > 1 {
			confidence = 1
		}
		if confidence <= 0.5 {
			continue
		}
		out = append(out, Breakpoint{
			Offset:     r.minPos,
			Confidence: confidence,
			Density:    r.minVal,
			Baseline:   r.baseline,
		})
	}
	return out
}

// mergeRegions collapses candidate runs separated by less than the
// window into one, keeping the deeper minimum. A single break often
// produces a ragged cluster of sub-threshold runs rather than one clean
// trough.
func mergeRegions(regions []region, windowSize int) []region {
	if len(regions) < 2 {
		return regions
	}
	merged := regions[:1]
	for _, r := range regions[1:] {
		last := &merged[len(merged)-1]
		if r.start-last.end <= windowSize {
			last.end = r.end
			if r.minVal < last.minVal {
				last.minVal = r.minVal
				last.minPos = r.minPos
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
