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

// ContactMatrix is a square contact-density matrix in texture pixel
// space, stored row-major. Cell (i, j) holds the proximity signal
// between pixels i and j.
//
// # Thread Safety
//
// Safe for concurrent reads once populated. Writes must not overlap
// reads.
type ContactMatrix struct {
	size int
	data []float64
}

// NewContactMatrix allocates a zeroed size x size matrix.
func NewContactMatrix(size int) *ContactMatrix {
	if size < 0 {
		size = 0
	}
	return &ContactMatrix{
		size: size,
		data: make([]float64, size*size),
	}
}

// Size returns the matrix dimension.
func (m *ContactMatrix) Size() int {
	return m.size
}

// At returns the signal at (i, j). Out-of-range cells read as zero,
// matching the absence of signal beyond the map edge.
func (m *ContactMatrix) At(i, j int) float64 {
	if i < 0 || j < 0 || i >= m.size || j >= m.size {
		return 0
	}
	return m.data[i*m.size+j]
}

// Set writes the signal at (i, j).
func (m *ContactMatrix) Set(i, j int, v float64) error {
	if i < 0 || j < 0 || i >= m.size || j >= m.size {
		return fmt.Errorf("%w: (%d, %d) in %dx%d matrix", ErrOutOfBounds, i, j, m.size, m.size)
	}
	m.data[i*m.size+j] = v
	return nil
}

// DiagonalDensity computes the near-diagonal contact density curve for
// the pixel range [start, end).
//
// # Description
//
// For each pixel p in the range, the value is the mean signal over
// cells (p, p±d) for d in [1, windowSize], skipping cells outside the
// matrix. A misassembly inside a contig shows up as a trough: positions
// spanning the break have little proximity signal to their neighbors.
func (m *ContactMatrix) DiagonalDensity(start, end, windowSize int) ([]float64, error) {
	if start < 0 || end > m.size || start > end {
		return nil, fmt.Errorf("%w: [%d, %d) in %dx%d matrix", ErrOutOfBounds, start, end, m.size, m.size)
	}
	if windowSize < 1 {
		windowSize = 1
	}

	curve := make([]float64, end-start)
	for p := start; p < end; p++ {
		var sum float64
		var n int
		for d := 1; d <= windowSize; d++ {
			if p-d >= start {
				sum += m.At(p, p-d)
				n++
			}
			if p+d < end {
				sum += m.At(p, p+d)
				n++
			}
		}
		if n > 0 {
			curve[p-start] = sum / float64(n)
		}
	}
	return curve, nil
}
