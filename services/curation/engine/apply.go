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

import (
	"fmt"

	"github.com/AleutianAI/hicurator/services/curation/state"
)

// The apply* functions are pure transformations from one snapshot to the
// next, driven entirely by the operation payload. Live operations and
// log replay share them, which is what makes a recorded session
// reproducible: the engine allocates identities once, records them in
// the payload, and replay feeds the same payload back through the same
// code path.

// applyCut splits one contig into two fragments at a pixel offset.
//
// The coordinate-left fragment keeps the original record's index; the
// other fragment is the payload's newly allocated index. For an inverted
// contig the visual-left fragment is the coordinate-right one, so the
// order replacement always reads visual left-to-right.
func applyCut(st state.AppState, p state.CutPayload) (state.AppState, error) {
	c, ok := st.Contigs.Get(p.ContigIndex)
	if !ok {
		return st, fmt.Errorf("%w: %d", ErrInvalidContig, p.ContigIndex)
	}
	pos := st.Order.PositionOf(p.ContigIndex)
	if pos < 0 {
		return st, fmt.Errorf("%w: %d", ErrContigNotInOrder, p.ContigIndex)
	}
	if p.PixelOffset <= c.PixelStart || p.PixelOffset >= c.PixelEnd {
		return st, fmt.Errorf("%w: %d not in (%d, %d)",
			ErrOffsetOutOfRange, p.PixelOffset, c.PixelStart, c.PixelEnd)
	}

	newIndex := p.RightIndex
	if c.Inverted {
		newIndex = p.LeftIndex
	}

	span := int64(c.Span())
	leftPixels := int64(p.PixelOffset - c.PixelStart)
	leftLength := c.Length * leftPixels / span
	rightLength := c.Length - leftLength

	coordLeft := state.Contig{
		OriginalIndex: p.ContigIndex,
		Name:          c.Name,
		Length:        leftLength,
		PixelStart:    c.PixelStart,
		PixelEnd:      p.PixelOffset,
		Inverted:      c.Inverted,
		ScaffoldID:    c.ScaffoldID,
	}
	coordRight := state.Contig{
		OriginalIndex: newIndex,
		Name:          c.Name,
		Length:        rightLength,
		PixelStart:    p.PixelOffset,
		PixelEnd:      c.PixelEnd,
		Inverted:      c.Inverted,
		ScaffoldID:    c.ScaffoldID,
	}

	st.Contigs = st.Contigs.WithUpdated(p.ContigIndex, coordLeft).WithAppended(coordRight)
	st.Order = st.Order.WithReplaced(pos, p.LeftIndex, p.RightIndex)
	return st, nil
}

// applyJoin combines two order-adjacent contigs.
//
// Merge mode collapses coordinate-contiguous fragments back into the
// left record's slot and drops the right entry from the order; this is
// the exact inverse of a cut. Scaffold mode keeps both entries and
// rewrites scaffold membership to the payload's shared id.
func applyJoin(st state.AppState, p state.JoinPayload) (state.AppState, error) {
	a, okA := st.Contigs.Get(p.LeftIndex)
	if !okA {
		return st, fmt.Errorf("%w: %d", ErrInvalidContig, p.LeftIndex)
	}
	b, okB := st.Contigs.Get(p.RightIndex)
	if !okB {
		return st, fmt.Errorf("%w: %d", ErrInvalidContig, p.RightIndex)
	}
	posA := st.Order.PositionOf(p.LeftIndex)
	posB := st.Order.PositionOf(p.RightIndex)
	if posA < 0 || posB < 0 || posB != posA+1 {
		return st, fmt.Errorf("%w: %d and %d", ErrNotAdjacent, p.LeftIndex, p.RightIndex)
	}

	switch p.Mode {
	case state.JoinModeMerge:
		if !mergeable(a, b) {
			return st, fmt.Errorf("%w: %d and %d are not coordinate-contiguous",
				ErrNotAdjacent, p.LeftIndex, p.RightIndex)
		}
		merged := a
		merged.Length = a.Length + b.Length
		if a.Inverted {
			merged.PixelStart = b.PixelStart
			merged.PixelEnd = a.PixelEnd
		} else {
			merged.PixelStart = a.PixelStart
			merged.PixelEnd = b.PixelEnd
		}
		st.Contigs = st.Contigs.WithUpdated(p.LeftIndex, merged)
		st.Order = st.Order.WithRemoved(posB)
		return st, nil

	case state.JoinModeScaffold:
		items := st.Contigs.All()
		for i := range items {
			c := items[i]
			member := c.OriginalIndex == p.LeftIndex || c.OriginalIndex == p.RightIndex ||
				(a.ScaffoldID != "" && c.ScaffoldID == a.ScaffoldID) ||
				(b.ScaffoldID != "" && c.ScaffoldID == b.ScaffoldID)
			if member {
				items[i].ScaffoldID = p.ScaffoldID
			}
		}
		st.Contigs = state.NewContigSet(items)
		return st, nil

	default:
		return st, fmt.Errorf("%w: join mode %q", ErrUnknownPayload, p.Mode)
	}
}

// mergeable reports whether two contigs are fragments of one contiguous
// coordinate range, in visual order, with matching orientation.
func mergeable(a, b state.Contig) bool {
	if a.Inverted != b.Inverted {
		return false
	}
	if a.Inverted {
		return b.PixelEnd == a.PixelStart
	}
	return a.PixelEnd == b.PixelStart
}

// applyInvert reverses the order range [StartPos, EndPos] and flips the
// inverted flag of every contig in it. A single-contig invert is the
// degenerate range where reversal is the identity.
func applyInvert(st state.AppState, p state.InvertPayload) (state.AppState, error) {
	n := st.Order.Len()
	if p.StartPos < 0 || p.EndPos >= n || p.StartPos > p.EndPos {
		return st, fmt.Errorf("%w: [%d, %d] with order length %d",
			ErrPositionOutOfRange, p.StartPos, p.EndPos, n)
	}

	flip := make(map[int]struct{}, p.EndPos-p.StartPos+1)
	for pos := p.StartPos; pos <= p.EndPos; pos++ {
		id, _ := st.Order.At(pos)
		flip[id] = struct{}{}
	}

	items := st.Contigs.All()
	for i := range items {
		if _, ok := flip[items[i].OriginalIndex]; ok {
			items[i].Inverted = !items[i].Inverted
		}
	}

	st.Contigs = state.NewContigSet(items)
	st.Order = st.Order.WithReversed(p.StartPos, p.EndPos)
	return st, nil
}

// applyMove relocates one order entry, shifting intervening entries.
func applyMove(st state.AppState, p state.MovePayload) (state.AppState, error) {
	n := st.Order.Len()
	if p.FromPos < 0 || p.FromPos >= n || p.ToPos < 0 || p.ToPos >= n {
		return st, fmt.Errorf("%w: move %d -> %d with order length %d",
			ErrPositionOutOfRange, p.FromPos, p.ToPos, n)
	}
	st.Order = st.Order.WithMoved(p.FromPos, p.ToPos)
	return st, nil
}

// applyExclude removes a contig from the order (Excluded true) or
// restores it at the payload position (Excluded false). The contig
// record itself is never discarded.
func applyExclude(st state.AppState, p state.ExcludePayload) (state.AppState, error) {
	if _, ok := st.Contigs.Get(p.ContigIndex); !ok {
		return st, fmt.Errorf("%w: %d", ErrInvalidContig, p.ContigIndex)
	}
	pos := st.Order.PositionOf(p.ContigIndex)

	if p.Excluded {
		if pos < 0 {
			return st, fmt.Errorf("%w: %d", ErrContigNotInOrder, p.ContigIndex)
		}
		st.Order = st.Order.WithRemoved(pos)
		return st, nil
	}

	if pos >= 0 {
		return st, fmt.Errorf("%w: %d", ErrContigInOrder, p.ContigIndex)
	}
	at := p.Position
	if at < 0 || at > st.Order.Len() {
		at = st.Order.Len()
	}
	st.Order = st.Order.WithInserted(at, p.ContigIndex)
	return st, nil
}

// applyPaint assigns (or clears, with an empty id) a contig's scaffold id.
func applyPaint(st state.AppState, p state.PaintPayload) (state.AppState, error) {
	c, ok := st.Contigs.Get(p.ContigIndex)
	if !ok {
		return st, fmt.Errorf("%w: %d", ErrInvalidContig, p.ContigIndex)
	}
	c.ScaffoldID = p.ScaffoldID
	st.Contigs = st.Contigs.WithUpdated(p.ContigIndex, c)
	return st, nil
}
