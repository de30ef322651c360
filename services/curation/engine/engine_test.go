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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/hicurator/pkg/validation"
	"github.com/AleutianAI/hicurator/services/curation/provenance"
	"github.com/AleutianAI/hicurator/services/curation/state"
)

// testState builds the three-contig fixture used throughout: c0 spans
// pixels [0,1000), c1 [1000,3000), c2 [3000,6000), order [0,1,2].
func testState() state.AppState {
	contigs := []state.Contig{
		{OriginalIndex: 0, Name: "ctg_0", Length: 1000, PixelStart: 0, PixelEnd: 1000},
		{OriginalIndex: 1, Name: "ctg_1", Length: 2000, PixelStart: 1000, PixelEnd: 3000},
		{OriginalIndex: 2, Name: "ctg_2", Length: 3000, PixelStart: 3000, PixelEnd: 6000},
	}
	return state.AppState{
		Contigs:     state.NewContigSet(contigs),
		Order:       state.NewContigOrder([]int{0, 1, 2}),
		TextureSize: 6000,
		SourceFile:  "test.map",
	}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return New(state.NewStore(testState()))
}

func TestEngine_CutSplitsContig(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	left, right, err := e.Cut(ctx, 2, 4500)
	require.NoError(t, err)
	assert.Equal(t, 2, left)
	assert.Equal(t, 3, right)

	st := e.Store().Get()
	require.Equal(t, 4, st.Contigs.Len())
	assert.Equal(t, []int{0, 1, 2, 3}, st.Order.IDs())

	a, ok := st.Contigs.Get(2)
	require.True(t, ok)
	assert.Equal(t, 3000, a.PixelStart)
	assert.Equal(t, 4500, a.PixelEnd)
	assert.Equal(t, int64(1500), a.Length)

	b, ok := st.Contigs.Get(3)
	require.True(t, ok)
	assert.Equal(t, 4500, b.PixelStart)
	assert.Equal(t, 6000, b.PixelEnd)
	assert.Equal(t, int64(1500), b.Length)

	require.NoError(t, st.Order.Validate(st.Contigs))
}

func TestEngine_CutInvertedContigVisualOrder(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Invert(ctx, 2))
	left, right, err := e.Cut(ctx, 2, 4500)
	require.NoError(t, err)

	// Visual left is the coordinate-right fragment for an inverted
	// contig, so the fresh index comes first in the order.
	assert.Equal(t, 3, left)
	assert.Equal(t, 2, right)
	assert.Equal(t, []int{0, 1, 3, 2}, e.Store().Get().Order.IDs())
}

func TestEngine_CutRejectsBadOffset(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	before := state.TakeSnapshot(e.Store().Get())

	tests := []struct {
		name   string
		contig int
		offset int
		want   error
	}{
		{name: "offset at start", contig: 2, offset: 3000, want: ErrOffsetOutOfRange},
		{name: "offset at end", contig: 2, offset: 6000, want: ErrOffsetOutOfRange},
		{name: "offset outside", contig: 2, offset: 9999, want: ErrOffsetOutOfRange},
		{name: "unknown contig", contig: 42, offset: 100, want: ErrInvalidContig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := e.Cut(ctx, tt.contig, tt.offset)
			require.ErrorIs(t, err, tt.want)
		})
	}

	assert.True(t, before.Equal(state.TakeSnapshot(e.Store().Get())),
		"rejected operations must not mutate state")
	assert.False(t, e.CanUndo())
}

func TestEngine_CutJoinRoundTrip(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	before := state.TakeSnapshot(e.Store().Get())

	left, right, err := e.Cut(ctx, 2, 4500)
	require.NoError(t, err)
	require.NoError(t, e.Join(ctx, left, right))

	after := state.TakeSnapshot(e.Store().Get())
	assert.True(t, before.Equal(after), "cut then join must restore the pre-cut snapshot")
}

func TestEngine_JoinScaffoldMode(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	// c0 and c1 are order-adjacent but not coordinate fragments of one
	// contig record, so the join scaffolds instead of merging.
	require.NoError(t, e.Join(ctx, 0, 1))

	st := e.Store().Get()
	assert.Equal(t, []int{0, 1, 2}, st.Order.IDs())
	a, _ := st.Contigs.Get(0)
	b, _ := st.Contigs.Get(1)
	assert.Equal(t, "scaffold_1", a.ScaffoldID)
	assert.Equal(t, "scaffold_1", b.ScaffoldID)

	// Extending the scaffold reuses the existing id.
	require.NoError(t, e.Join(ctx, 1, 2))
	c, _ := e.Store().Get().Contigs.Get(2)
	assert.Equal(t, "scaffold_1", c.ScaffoldID)
}

func TestEngine_JoinRejectsNonAdjacent(t *testing.T) {
	e := testEngine(t)
	err := e.Join(context.Background(), 0, 2)
	require.ErrorIs(t, err, ErrNotAdjacent)
}

func TestEngine_InvertUndoRedo(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	before := state.TakeSnapshot(e.Store().Get())

	require.NoError(t, e.Invert(ctx, 1))
	applied := state.TakeSnapshot(e.Store().Get())
	c, _ := e.Store().Get().Contigs.Get(1)
	require.True(t, c.Inverted)

	res, err := e.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, res.Performed)
	assert.Equal(t, 1, res.Operations)
	assert.True(t, before.Equal(state.TakeSnapshot(e.Store().Get())))

	res, err = e.Redo(ctx)
	require.NoError(t, err)
	assert.True(t, res.Performed)
	assert.True(t, applied.Equal(state.TakeSnapshot(e.Store().Get())))
}

func TestEngine_InvertRangeReversesOrder(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	require.NoError(t, e.InvertRange(ctx, 0, 2))
	st := e.Store().Get()
	assert.Equal(t, []int{2, 1, 0}, st.Order.IDs())
	for _, c := range st.Contigs.All() {
		assert.True(t, c.Inverted, "contig %d", c.OriginalIndex)
	}

	// Inverting the same range again is the identity.
	require.NoError(t, e.InvertRange(ctx, 0, 2))
	after := state.TakeSnapshot(e.Store().Get())
	assert.True(t, after.Equal(state.TakeSnapshot(testState())))
}

func TestEngine_RedoClearsOnNewOperation(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Invert(ctx, 0))
	_, err := e.Undo(ctx)
	require.NoError(t, err)
	require.True(t, e.CanRedo())

	require.NoError(t, e.Invert(ctx, 1))
	assert.False(t, e.CanRedo())

	res, err := e.Redo(ctx)
	require.NoError(t, err)
	assert.False(t, res.Performed)
}

func TestEngine_UndoEmptyStackIsNoop(t *testing.T) {
	e := testEngine(t)
	res, err := e.Undo(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Performed)
	assert.Zero(t, res.Operations)
}

func TestEngine_MoveExcludeInclude(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Move(ctx, 0, 2))
	assert.Equal(t, []int{1, 2, 0}, e.Store().Get().Order.IDs())

	require.NoError(t, e.Exclude(ctx, 2))
	st := e.Store().Get()
	assert.Equal(t, []int{1, 0}, st.Order.IDs())
	_, ok := st.Contigs.Get(2)
	assert.True(t, ok, "excluded contig record must survive")

	require.ErrorIs(t, e.Exclude(ctx, 2), ErrContigNotInOrder)

	require.NoError(t, e.Include(ctx, 2))
	assert.Equal(t, []int{1, 0, 2}, e.Store().Get().Order.IDs())

	require.ErrorIs(t, e.Include(ctx, 2), ErrContigInOrder)
}

func TestEngine_Paint(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Paint(ctx, 1, "chr_7"))
	c, _ := e.Store().Get().Contigs.Get(1)
	assert.Equal(t, "chr_7", c.ScaffoldID)

	res, err := e.Undo(ctx)
	require.NoError(t, err)
	require.True(t, res.Performed)
	c, _ = e.Store().Get().Contigs.Get(1)
	assert.Empty(t, c.ScaffoldID)
}

func TestEngine_PaintRejectsBadScaffoldName(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	require.ErrorIs(t, e.Paint(ctx, 1, "bad name"), validation.ErrInvalidName)
	assert.False(t, e.CanUndo())
}

func TestEngine_BatchUndoesAtomically(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	before := state.TakeSnapshot(e.Store().Get())

	e.BeginBatch("autocut", map[string]string{"threshold": "0.30"})
	_, _, err := e.Cut(ctx, 2, 4500)
	require.NoError(t, err)
	_, _, err = e.Cut(ctx, 1, 2000)
	require.NoError(t, err)
	e.EndBatch()

	batched := state.TakeSnapshot(e.Store().Get())
	require.Equal(t, 5, e.Store().Get().Contigs.Len())

	res, err := e.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, res.Performed)
	assert.Equal(t, 2, res.Operations)
	assert.True(t, before.Equal(state.TakeSnapshot(e.Store().Get())))

	res, err = e.Redo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Operations)
	assert.True(t, batched.Equal(state.TakeSnapshot(e.Store().Get())))
}

func TestEngine_IndexNeverReissued(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	_, right1, err := e.Cut(ctx, 2, 4500)
	require.NoError(t, err)
	_, err = e.Undo(ctx)
	require.NoError(t, err)

	_, right2, err := e.Cut(ctx, 2, 4000)
	require.NoError(t, err)
	assert.NotEqual(t, right1, right2,
		"an index observed in any snapshot must never identify a different contig")

	st := e.Store().Get()
	require.NoError(t, st.Order.Validate(st.Contigs))
}

func TestEngine_OrderInvariantsAfterSequence(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	left, right, err := e.Cut(ctx, 2, 4500)
	require.NoError(t, err)
	require.NoError(t, e.Invert(ctx, left))
	require.NoError(t, e.Move(ctx, 0, 3))
	require.NoError(t, e.Exclude(ctx, 0))
	require.NoError(t, e.Paint(ctx, right, "chr_1"))
	require.NoError(t, e.Include(ctx, 0))
	_, err = e.Undo(ctx)
	require.NoError(t, err)
	_, err = e.Redo(ctx)
	require.NoError(t, err)

	st := e.Store().Get()
	require.NoError(t, st.Order.Validate(st.Contigs))

	seen := make(map[int]bool)
	for _, id := range st.Order.IDs() {
		require.False(t, seen[id], "duplicate order entry %d", id)
		seen[id] = true
	}
}

func TestEngine_RecordsLogEntries(t *testing.T) {
	log := provenance.NewLog()
	store := state.NewStore(testState())
	e := New(store, WithLog(log))
	e.Reset()
	ctx := context.Background()

	_, _, err := e.Cut(ctx, 2, 4500)
	require.NoError(t, err)
	require.NoError(t, e.Invert(ctx, 0))
	require.Equal(t, 2, log.Len())

	// Undo removes the matching log entries; redo re-records them.
	_, err = e.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, log.Len())

	_, err = e.Redo(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, log.Len())

	entries := log.Entries()
	assert.Equal(t, state.OpCut, entries[0].OperationType)
	assert.Equal(t, state.OpInvert, entries[1].OperationType)
	assert.Equal(t, 0, entries[0].Sequence)
	assert.Equal(t, 1, entries[1].Sequence)
}

func TestEngine_ReplayDeterminism(t *testing.T) {
	log := provenance.NewLog()
	e := New(state.NewStore(testState()), WithLog(log))
	e.Reset()
	ctx := context.Background()

	left, right, err := e.Cut(ctx, 2, 4500)
	require.NoError(t, err)
	require.NoError(t, e.Invert(ctx, left))
	require.NoError(t, e.Join(ctx, 0, 1))
	require.NoError(t, e.Move(ctx, 0, 2))
	require.NoError(t, e.Paint(ctx, right, "chr_3"))
	require.NoError(t, e.Exclude(ctx, 0))

	results, final, err := log.Replay(ctx, testState(), ApplyEntry)
	require.NoError(t, err)
	require.Len(t, results, 6)
	for _, r := range results {
		assert.True(t, r.Matches, "entry %d diverged", r.Sequence)
		assert.NoError(t, r.Err)
	}
	assert.True(t, state.TakeSnapshot(e.Store().Get()).Equal(state.TakeSnapshot(final)))
}

func TestEngine_NilContext(t *testing.T) {
	e := testEngine(t)

	_, _, err := e.Cut(nil, 2, 4500) //nolint:staticcheck
	require.ErrorIs(t, err, ErrNilContext)
	require.ErrorIs(t, e.Invert(nil, 0), ErrNilContext)           //nolint:staticcheck
	require.ErrorIs(t, e.Join(nil, 0, 1), ErrNilContext)          //nolint:staticcheck
	require.ErrorIs(t, e.Move(nil, 0, 1), ErrNilContext)          //nolint:staticcheck
	require.ErrorIs(t, e.Exclude(nil, 0), ErrNilContext)          //nolint:staticcheck
	require.ErrorIs(t, e.Paint(nil, 0, "chr_1"), ErrNilContext)   //nolint:staticcheck
	_, err = e.Undo(nil)                                          //nolint:staticcheck
	require.ErrorIs(t, err, ErrNilContext)
}

// Scenario walk-through: invert, cut, then two undos restore the
// original three-contig layout.
func TestEngine_Scenario(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Invert(ctx, 1))
	st := e.Store().Get()
	assert.Equal(t, []int{0, 1, 2}, st.Order.IDs())
	c1, _ := st.Contigs.Get(1)
	assert.True(t, c1.Inverted)

	_, _, err := e.Cut(ctx, 2, 4500)
	require.NoError(t, err)
	st = e.Store().Get()
	assert.Equal(t, 4, st.Contigs.Len())
	assert.Equal(t, []int{0, 1, 2, 3}, st.Order.IDs())

	_, err = e.Undo(ctx)
	require.NoError(t, err)
	_, err = e.Undo(ctx)
	require.NoError(t, err)

	st = e.Store().Get()
	assert.Equal(t, []int{0, 1, 2}, st.Order.IDs())
	c1, _ = st.Contigs.Get(1)
	assert.False(t, c1.Inverted)
	assert.False(t, e.CanUndo())
	assert.True(t, e.CanRedo())
}
