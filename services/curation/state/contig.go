// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package state holds the curation data model and the snapshot store.
//
// The model follows a copy-on-write discipline: every mutation produces a
// new ContigSet and/or ContigOrder value, so previously taken AppState
// snapshots stay valid and comparisons reduce to pointer identity. The
// contig arena only ever grows; a contig's OriginalIndex is stable for the
// life of a session and is never reused, even across undo.
package state

// Contig is one assembled DNA fragment, the atomic unit the curation
// engine reorders, cuts, and joins.
//
// PixelStart and PixelEnd locate the contig in the original, unsplit
// texture coordinate space of the loaded contact map. They never change
// after creation; splits create new records covering sub-ranges.
type Contig struct {
	// OriginalIndex is the stable identity of this contig within the
	// session. Indices are issued monotonically and never reused.
	OriginalIndex int `json:"originalIndex"`

	// Name is the display name, typically from the source assembly.
	Name string `json:"name"`

	// Length is the contig length in base pairs.
	Length int64 `json:"length"`

	// PixelStart is the inclusive start in texture pixels.
	PixelStart int `json:"pixelStart"`

	// PixelEnd is the exclusive end in texture pixels.
	PixelEnd int `json:"pixelEnd"`

	// Inverted reports whether the contig is displayed reverse-complemented.
	Inverted bool `json:"inverted"`

	// ScaffoldID is an optional grouping key. Empty means unscaffolded.
	ScaffoldID string `json:"scaffoldId,omitempty"`
}

// Span returns the contig's extent in pixels.
func (c Contig) Span() int {
	return c.PixelEnd - c.PixelStart
}

// ContigSet is the append-only arena of contig records, indexed by
// OriginalIndex.
//
// # Thread Safety
//
// A ContigSet is immutable after construction; sharing across goroutines
// is safe. Mutating helpers return a new set.
type ContigSet struct {
	items []Contig
}

// NewContigSet builds an arena from the given records.
//
// Records are keyed by their OriginalIndex field. Loader collaborators
// hand over a dense arena (items[i].OriginalIndex == i); the fast path
// in lookups assumes that shape but does not require it.
func NewContigSet(items []Contig) *ContigSet {
	copied := make([]Contig, len(items))
	copy(copied, items)
	return &ContigSet{items: copied}
}

// Len returns the number of contig records in the arena.
func (s *ContigSet) Len() int {
	return len(s.items)
}

// posOf resolves an original index to its arena position. In the common
// case positions and indices coincide; after an undo followed by new
// splits the arena can hold indices above its length, so a scan is the
// fallback.
func (s *ContigSet) posOf(index int) int {
	if index >= 0 && index < len(s.items) && s.items[index].OriginalIndex == index {
		return index
	}
	for i := range s.items {
		if s.items[i].OriginalIndex == index {
			return i
		}
	}
	return -1
}

// Get returns the contig with the given original index.
//
// The second return is false if no such contig exists.
func (s *ContigSet) Get(index int) (Contig, bool) {
	pos := s.posOf(index)
	if pos < 0 {
		return Contig{}, false
	}
	return s.items[pos], true
}

// All returns a copy of every record, in arena order.
func (s *ContigSet) All() []Contig {
	out := make([]Contig, len(s.items))
	copy(out, s.items)
	return out
}

// WithUpdated returns a new set where the record with the given original
// index is replaced. A missing index returns the receiver unchanged.
//
// Only the backing array is reallocated; sibling AppState fields keep
// their identity, which is what subscription selectors key on.
func (s *ContigSet) WithUpdated(index int, c Contig) *ContigSet {
	pos := s.posOf(index)
	if pos < 0 {
		return s
	}
	items := make([]Contig, len(s.items))
	copy(items, s.items)
	items[pos] = c
	return &ContigSet{items: items}
}

// MaxIndex returns the highest original index present, or -1 for an
// empty arena. The engine seeds its index allocator from this.
func (s *ContigSet) MaxIndex() int {
	max := -1
	for i := range s.items {
		if s.items[i].OriginalIndex > max {
			max = s.items[i].OriginalIndex
		}
	}
	return max
}

// WithAppended returns a new set with the given records appended.
func (s *ContigSet) WithAppended(contigs ...Contig) *ContigSet {
	items := make([]Contig, len(s.items), len(s.items)+len(contigs))
	copy(items, s.items)
	items = append(items, contigs...)
	return &ContigSet{items: items}
}

// ContigOrder is the curated visual order: a sequence of original indices.
//
// The order may be shorter than the arena (excluded contigs are omitted)
// but must never contain duplicates or dangling indices.
//
// # Thread Safety
//
// Immutable after construction; mutating helpers return a new order.
type ContigOrder struct {
	ids []int
}

// NewContigOrder builds an order from the given index sequence.
func NewContigOrder(ids []int) *ContigOrder {
	copied := make([]int, len(ids))
	copy(copied, ids)
	return &ContigOrder{ids: copied}
}

// Len returns the number of positions in the order.
func (o *ContigOrder) Len() int {
	return len(o.ids)
}

// At returns the original index at the given position.
//
// The second return is false if the position is out of range.
func (o *ContigOrder) At(pos int) (int, bool) {
	if pos < 0 || pos >= len(o.ids) {
		return 0, false
	}
	return o.ids[pos], true
}

// IDs returns a copy of the full index sequence.
func (o *ContigOrder) IDs() []int {
	out := make([]int, len(o.ids))
	copy(out, o.ids)
	return out
}

// PositionOf returns the position of the given original index, or -1 if
// the contig is not in the order (excluded).
func (o *ContigOrder) PositionOf(index int) int {
	for pos, id := range o.ids {
		if id == index {
			return pos
		}
	}
	return -1
}

// WithReplaced returns a new order where the entry at pos is replaced by
// the given indices. Used by cut: one entry becomes two.
func (o *ContigOrder) WithReplaced(pos int, indices ...int) *ContigOrder {
	ids := make([]int, 0, len(o.ids)-1+len(indices))
	ids = append(ids, o.ids[:pos]...)
	ids = append(ids, indices...)
	ids = append(ids, o.ids[pos+1:]...)
	return &ContigOrder{ids: ids}
}

// WithRemoved returns a new order without the entry at pos.
func (o *ContigOrder) WithRemoved(pos int) *ContigOrder {
	ids := make([]int, 0, len(o.ids)-1)
	ids = append(ids, o.ids[:pos]...)
	ids = append(ids, o.ids[pos+1:]...)
	return &ContigOrder{ids: ids}
}

// WithInserted returns a new order with index inserted at pos.
func (o *ContigOrder) WithInserted(pos, index int) *ContigOrder {
	ids := make([]int, 0, len(o.ids)+1)
	ids = append(ids, o.ids[:pos]...)
	ids = append(ids, index)
	ids = append(ids, o.ids[pos:]...)
	return &ContigOrder{ids: ids}
}

// WithMoved returns a new order where the entry at fromPos is relocated
// to toPos, shifting intervening entries.
func (o *ContigOrder) WithMoved(fromPos, toPos int) *ContigOrder {
	ids := make([]int, len(o.ids))
	copy(ids, o.ids)
	id := ids[fromPos]
	ids = append(ids[:fromPos], ids[fromPos+1:]...)
	// Insert at the target position in the shortened slice.
	ids = append(ids, 0)
	copy(ids[toPos+1:], ids[toPos:])
	ids[toPos] = id
	return &ContigOrder{ids: ids}
}

// WithReversed returns a new order where the range [startPos, endPos]
// (inclusive) is reversed in place.
func (o *ContigOrder) WithReversed(startPos, endPos int) *ContigOrder {
	ids := make([]int, len(o.ids))
	copy(ids, o.ids)
	for i, j := startPos, endPos; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return &ContigOrder{ids: ids}
}

// Validate checks the order invariants against the arena: every position
// must reference an existing contig and no index may appear twice.
func (o *ContigOrder) Validate(contigs *ContigSet) error {
	seen := make(map[int]struct{}, len(o.ids))
	for _, id := range o.ids {
		if _, ok := contigs.Get(id); !ok {
			return ErrDanglingOrderEntry
		}
		if _, dup := seen[id]; dup {
			return ErrDuplicateOrderEntry
		}
		seen[id] = struct{}{}
	}
	return nil
}
