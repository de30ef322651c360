// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package provenance

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/hicurator/services/curation/state"
)

func testState() state.AppState {
	contigs := []state.Contig{
		{OriginalIndex: 0, Name: "ctg_0", Length: 1000, PixelStart: 0, PixelEnd: 1000},
		{OriginalIndex: 1, Name: "ctg_1", Length: 2000, PixelStart: 1000, PixelEnd: 3000},
	}
	return state.AppState{
		Contigs:     state.NewContigSet(contigs),
		Order:       state.NewContigOrder([]int{0, 1}),
		TextureSize: 3000,
		SourceFile:  "sample.map",
	}
}

// recordedLog builds a log with one invert and one move entry.
func recordedLog(t *testing.T) *Log {
	t.Helper()
	st := testState()
	l := NewLog()
	l.Initialize(st)

	snap := state.TakeSnapshot(st)
	l.Record(state.Operation{
		Kind:        state.OpInvert,
		Timestamp:   time.Now().UTC(),
		Description: "invert ctg_0",
		Payload:     state.InvertPayload{StartPos: 0, EndPos: 0},
	}, snap, snap)
	l.Record(state.Operation{
		Kind:        state.OpMove,
		Timestamp:   time.Now().UTC(),
		Description: "move position 0 to 1",
		BatchID:     "batch-1",
		Payload:     state.MovePayload{FromPos: 0, ToPos: 1},
	}, snap, snap)
	return l
}

func TestLog_RecordAndRemove(t *testing.T) {
	l := recordedLog(t)
	require.Equal(t, 2, l.Len())
	assert.Equal(t, "sample.map", l.SourceFile())
	assert.Equal(t, 2, l.TotalContigs())

	entries := l.Entries()
	assert.Equal(t, 0, entries[0].Sequence)
	assert.Equal(t, 1, entries[1].Sequence)
	assert.Equal(t, state.OpInvert, entries[0].OperationType)

	l.RemoveLast(1)
	assert.Equal(t, 1, l.Len())

	// Removing more than exists empties, never panics.
	l.RemoveLast(10)
	assert.Zero(t, l.Len())
}

func TestLog_JSONRoundTrip(t *testing.T) {
	l := recordedLog(t)
	data, err := l.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(data)
	require.NoError(t, err)
	require.Equal(t, 2, restored.Len())
	assert.Equal(t, l.SourceFile(), restored.SourceFile())
	assert.Equal(t, l.TotalContigs(), restored.TotalContigs())

	entries := restored.Entries()
	require.IsType(t, state.InvertPayload{}, entries[0].Parameters)
	require.IsType(t, state.MovePayload{}, entries[1].Parameters)
	assert.Equal(t, state.MovePayload{FromPos: 0, ToPos: 1}, entries[1].Parameters)
	assert.Equal(t, "batch-1", entries[1].BatchID)
	assert.True(t, state.TakeSnapshot(testState()).Equal(entries[0].After))
}

func TestFromJSON_RequiredFields(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{name: "missing version", doc: `{"entries": []}`, want: ErrMissingVersion},
		{name: "missing entries", doc: `{"version": "1.0.0"}`, want: ErrMissingEntries},
		{name: "empty document", doc: `{}`, want: ErrMissingVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON([]byte(tt.doc))
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("empty entries is legal", func(t *testing.T) {
		l, err := FromJSON([]byte(`{"version": "1.0.0", "entries": []}`))
		require.NoError(t, err)
		assert.Zero(t, l.Len())
	})

	t.Run("not json", func(t *testing.T) {
		_, err := FromJSON([]byte("not json"))
		require.Error(t, err)
	})
}

func TestFromJSON_ChecksumTamper(t *testing.T) {
	l := recordedLog(t)
	data, err := l.ToJSON()
	require.NoError(t, err)

	tampered := strings.Replace(string(data), "invert ctg_0", "invert ctg_1", 1)
	_, err = FromJSON([]byte(tampered))
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestFromJSON_ChecksumOptional(t *testing.T) {
	l := recordedLog(t)
	doc := l.Export()
	doc.Checksum = ""
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	restored, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Len())
}

func TestFromJSON_UnknownOperationType(t *testing.T) {
	doc := `{
		"version": "1.0.0",
		"entries": [{"sequence": 0, "operationType": "teleport", "parameters": {}}]
	}`
	_, err := FromJSON([]byte(doc))
	require.ErrorIs(t, err, state.ErrUnknownOpKind)
}

func TestLog_InitializeResets(t *testing.T) {
	l := recordedLog(t)
	require.Equal(t, 2, l.Len())

	st := testState()
	st.SourceFile = "other.map"
	l.Initialize(st)
	assert.Zero(t, l.Len())
	assert.Equal(t, "other.map", l.SourceFile())
}

func TestLog_Replay(t *testing.T) {
	l := recordedLog(t)
	ctx := context.Background()

	t.Run("matching handler", func(t *testing.T) {
		results, final, err := l.Replay(ctx, testState(),
			func(st state.AppState, entry Entry) (state.AppState, error) {
				// The fixture records identical before/after snapshots,
				// so the identity handler matches every entry.
				return st, nil
			})
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.True(t, r.Matches)
			assert.NoError(t, r.Err)
		}
		assert.True(t, state.TakeSnapshot(testState()).Equal(state.TakeSnapshot(final)))
	})

	t.Run("diverging handler", func(t *testing.T) {
		results, _, err := l.Replay(ctx, testState(),
			func(st state.AppState, entry Entry) (state.AppState, error) {
				st.Order = st.Order.WithReversed(0, st.Order.Len()-1)
				return st, nil
			})
		require.NoError(t, err)
		assert.False(t, results[0].Matches)
	})

	t.Run("failing handler reports per entry", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		results, _, err := l.Replay(ctx, testState(),
			func(st state.AppState, entry Entry) (state.AppState, error) {
				calls++
				if entry.Sequence == 0 {
					return st, boom
				}
				return st, nil
			})
		require.NoError(t, err)
		assert.Equal(t, 2, calls, "replay continues past a failing entry")
		assert.ErrorIs(t, results[0].Err, boom)
		assert.False(t, results[0].Matches)
		assert.True(t, results[1].Matches)
	})

	t.Run("nil arguments", func(t *testing.T) {
		_, _, err := l.Replay(nil, testState(), nil) //nolint:staticcheck
		require.ErrorIs(t, err, ErrNilContext)
		_, _, err = l.Replay(ctx, testState(), nil)
		require.ErrorIs(t, err, ErrNilApply)
	})
}
