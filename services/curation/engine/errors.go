// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import "errors"

// Sentinel errors for the engine package. Every operation validates its
// arguments against the current snapshot before mutating anything, so a
// returned error always means the state is unchanged.
var (
	// ErrNilContext indicates a nil context was passed.
	ErrNilContext = errors.New("nil context")

	// ErrInvalidContig indicates the referenced contig does not exist.
	ErrInvalidContig = errors.New("invalid contig index")

	// ErrContigNotInOrder indicates the contig is excluded from the order.
	ErrContigNotInOrder = errors.New("contig not in order")

	// ErrContigInOrder indicates a re-include target is already ordered.
	ErrContigInOrder = errors.New("contig already in order")

	// ErrOffsetOutOfRange indicates a cut offset outside the contig's
	// exclusive pixel range.
	ErrOffsetOutOfRange = errors.New("cut offset out of range")

	// ErrNotAdjacent indicates a join of contigs that are not neighbors
	// in the current order.
	ErrNotAdjacent = errors.New("contigs not adjacent in order")

	// ErrPositionOutOfRange indicates an order position outside [0, len).
	ErrPositionOutOfRange = errors.New("order position out of range")

	// ErrUnknownPayload indicates a replay entry with a payload type
	// outside the closed operation set.
	ErrUnknownPayload = errors.New("unknown operation payload")

	// ErrReplayDiverged indicates a replayed entry produced a snapshot
	// different from the one recorded in the log.
	ErrReplayDiverged = errors.New("replayed state diverged from recorded snapshot")
)
