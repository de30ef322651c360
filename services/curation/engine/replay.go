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
	"fmt"
	"strconv"
	"strings"

	"github.com/AleutianAI/hicurator/services/curation/provenance"
	"github.com/AleutianAI/hicurator/services/curation/state"
	"github.com/AleutianAI/hicurator/services/curation/telemetry"
)

// ApplyEntry re-applies one recorded log entry to a snapshot. The
// payload carries every identity the original operation allocated, so
// replay is deterministic and shares the transform code with the live
// engine.
func ApplyEntry(st state.AppState, entry provenance.Entry) (state.AppState, error) {
	switch p := entry.Parameters.(type) {
	case state.CutPayload:
		return applyCut(st, p)
	case state.JoinPayload:
		return applyJoin(st, p)
	case state.InvertPayload:
		return applyInvert(st, p)
	case state.MovePayload:
		return applyMove(st, p)
	case state.ExcludePayload:
		return applyExclude(st, p)
	case state.PaintPayload:
		return applyPaint(st, p)
	default:
		return st, fmt.Errorf("%w: %T", ErrUnknownPayload, entry.Parameters)
	}
}

// Rehydrate rebuilds the engine from an initial snapshot plus a
// recorded entry sequence, restoring full undo history.
//
// Each entry's result is checked against its recorded after snapshot;
// a divergence aborts with ErrReplayDiverged and leaves the engine on
// the initial state. Used when importing a saved session log.
func (e *Engine) Rehydrate(ctx context.Context, initial state.AppState, entries []provenance.Entry) error {
	if ctx == nil {
		return ErrNilContext
	}
	_, span := telemetry.StartSpan(ctx, tracerName, "Engine.Rehydrate")
	defer span.End()

	st := initial
	rebuilt := make([]undoEntry, 0, len(entries))
	for _, entry := range entries {
		next, err := ApplyEntry(st, entry)
		if err != nil {
			return fmt.Errorf("entry %d: %w", entry.Sequence, err)
		}
		if !state.TakeSnapshot(next).Equal(entry.After) {
			return fmt.Errorf("entry %d (%s): %w", entry.Sequence, entry.OperationType, ErrReplayDiverged)
		}
		rebuilt = append(rebuilt, undoEntry{
			op: state.Operation{
				Kind:          entry.OperationType,
				Timestamp:     entry.Timestamp,
				Description:   entry.Description,
				BatchID:       entry.BatchID,
				BatchMetadata: entry.BatchMetadata,
				Payload:       entry.Parameters,
			},
			before: st,
			after:  next,
		})
		st = next
	}

	e.store.Reset(initial)
	e.undo.Clear()
	e.redo.Clear()
	if e.log != nil {
		e.log.Initialize(initial)
	}
	for _, u := range rebuilt {
		e.store.Apply(func(state.AppState) state.AppState { return u.after })
		e.undo.Push(u)
		if e.log != nil {
			e.log.Record(u.op, state.TakeSnapshot(u.before), state.TakeSnapshot(u.after))
		}
	}

	e.nextContig = st.Contigs.MaxIndex() + 1
	e.nextScaffold = maxScaffoldSeq(st) + 1
	return nil
}

// maxScaffoldSeq finds the highest engine-issued scaffold id in use, so
// a rehydrated engine keeps allocating fresh ids.
func maxScaffoldSeq(st state.AppState) int {
	max := 0
	for _, c := range st.Contigs.All() {
		seq, ok := strings.CutPrefix(c.ScaffoldID, "scaffold_")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(seq); err == nil && n > max {
			max = n
		}
	}
	return max
}
