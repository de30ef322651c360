// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package state

import (
	"fmt"
	"time"
)

// OpKind identifies one of the closed set of curation operations.
type OpKind string

const (
	// OpCut splits one contig into two at a pixel offset.
	OpCut OpKind = "cut"

	// OpJoin merges the scaffold membership of two adjacent contigs.
	OpJoin OpKind = "join"

	// OpInvert flips orientation over a range of order positions,
	// reversing the range's relative order.
	OpInvert OpKind = "invert"

	// OpMove relocates one order entry to a new position.
	OpMove OpKind = "move"

	// OpPaint assigns or clears a contig's scaffold id.
	OpPaint OpKind = "paint"

	// OpExclude toggles a contig's membership in the order.
	OpExclude OpKind = "exclude"
)

// Valid reports whether k is a member of the closed kind set.
func (k OpKind) Valid() bool {
	switch k {
	case OpCut, OpJoin, OpInvert, OpMove, OpPaint, OpExclude:
		return true
	}
	return false
}

// Payload is the sealed union of per-kind operation parameters.
//
// Each kind carries exactly one payload type; applying or replaying an
// operation switches exhaustively over these types, so a new kind cannot
// be added without the compiler surfacing every site that must handle it.
type Payload interface {
	isPayload()
	// Kind returns the operation kind this payload belongs to.
	Kind() OpKind
}

// CutPayload parameterizes a cut. LeftIndex and RightIndex are the
// original indices assigned to the visual-left and visual-right fragments,
// recorded so a replay reproduces identical identities.
type CutPayload struct {
	ContigIndex int `json:"contigIndex"`
	PixelOffset int `json:"pixelOffset"`
	LeftIndex   int `json:"leftIndex"`
	RightIndex  int `json:"rightIndex"`
}

func (CutPayload) isPayload()   {}
func (CutPayload) Kind() OpKind { return OpCut }

// JoinMode selects how a join combines two adjacent contigs.
type JoinMode string

const (
	// JoinModeMerge physically collapses two coordinate-contiguous
	// fragments back into one order entry. This is the inverse of cut.
	JoinModeMerge JoinMode = "merge"

	// JoinModeScaffold keeps both order entries and gives them a shared
	// scaffold id. Used for contigs that are not fragments of the same
	// coordinate range.
	JoinModeScaffold JoinMode = "scaffold"
)

// JoinPayload parameterizes a join of two order-adjacent contigs.
// ScaffoldID is the group id both sides carry after a scaffold join;
// empty for merge joins.
type JoinPayload struct {
	LeftIndex  int      `json:"leftIndex"`
	RightIndex int      `json:"rightIndex"`
	Mode       JoinMode `json:"mode"`
	ScaffoldID string   `json:"scaffoldId,omitempty"`
}

func (JoinPayload) isPayload()   {}
func (JoinPayload) Kind() OpKind { return OpJoin }

// InvertPayload parameterizes an inversion over the inclusive order
// position range [StartPos, EndPos]. A single-contig invert has
// StartPos == EndPos.
type InvertPayload struct {
	StartPos int `json:"startPos"`
	EndPos   int `json:"endPos"`
}

func (InvertPayload) isPayload()   {}
func (InvertPayload) Kind() OpKind { return OpInvert }

// MovePayload parameterizes a relocation of one order entry.
type MovePayload struct {
	FromPos int `json:"fromPos"`
	ToPos   int `json:"toPos"`
}

func (MovePayload) isPayload()   {}
func (MovePayload) Kind() OpKind { return OpMove }

// PaintPayload parameterizes a scaffold assignment on one contig.
// PreviousScaffoldID is recorded for inspection; undo restores snapshots
// and does not depend on it.
type PaintPayload struct {
	ContigIndex        int    `json:"contigIndex"`
	ScaffoldID         string `json:"scaffoldId"`
	PreviousScaffoldID string `json:"previousScaffoldId,omitempty"`
}

func (PaintPayload) isPayload()   {}
func (PaintPayload) Kind() OpKind { return OpPaint }

// ExcludePayload parameterizes an exclude or re-include. Excluded is true
// when the operation removed the contig from the order, false when it
// restored it. Position is the order position removed from or inserted at.
type ExcludePayload struct {
	ContigIndex int  `json:"contigIndex"`
	Position    int  `json:"position"`
	Excluded    bool `json:"excluded"`
}

func (ExcludePayload) isPayload()   {}
func (ExcludePayload) Kind() OpKind { return OpExclude }

// Operation is one atomic, invertible curation edit.
type Operation struct {
	// Kind is the operation's tag within the closed variant set.
	Kind OpKind

	// Timestamp is when the operation was applied.
	Timestamp time.Time

	// Description is a human-readable summary, e.g. "cut contig_2 at 4500".
	Description string

	// BatchID groups operations that undo as one logical unit.
	// Empty for standalone operations.
	BatchID string

	// BatchMetadata carries auxiliary batch context, e.g.
	// {"algorithm": "autocut", "threshold": "0.30"}.
	BatchMetadata map[string]string

	// Payload holds the kind-specific parameters.
	Payload Payload
}

// NewPayload returns a pointer to a zero payload of the given kind,
// suitable as an unmarshal target. The concrete type matches what the
// engine records for that kind.
func NewPayload(kind OpKind) (any, error) {
	switch kind {
	case OpCut:
		return &CutPayload{}, nil
	case OpJoin:
		return &JoinPayload{}, nil
	case OpInvert:
		return &InvertPayload{}, nil
	case OpMove:
		return &MovePayload{}, nil
	case OpPaint:
		return &PaintPayload{}, nil
	case OpExclude:
		return &ExcludePayload{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOpKind, kind)
	}
}
