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

	"github.com/AleutianAI/hicurator/services/curation/state"
)

// ApplyFunc re-executes one recorded operation against the running state.
//
// The handler must perform the same transformation the original
// operation did, using the entry's recorded parameters. It returns the
// resulting state, or an error if the entry cannot be applied.
type ApplyFunc func(st state.AppState, entry Entry) (state.AppState, error)

// ValidationResult reports the outcome of replaying one entry.
type ValidationResult struct {
	// Sequence is the entry's position in the log.
	Sequence int `json:"sequence"`

	// Matches is true when the replayed state's snapshot structurally
	// equals the entry's recorded after snapshot.
	Matches bool `json:"matches"`

	// Expected is the recorded after snapshot.
	Expected state.Snapshot `json:"expected"`

	// Actual is the snapshot of the replayed state.
	Actual state.Snapshot `json:"actual"`

	// Err is non-nil if the handler failed on this entry.
	Err error `json:"-"`
}

// Replay re-applies every log entry in sequence against initial.
//
// # Description
//
// For each entry, the handler is invoked against the running state, the
// result is snapshotted, and the snapshot is compared structurally to
// the entry's recorded after snapshot. For a correct handler and an
// untampered log every comparison succeeds. Mismatches and handler
// errors are reported per entry without aborting the replay; the caller
// decides whether a mismatch is fatal. When the handler fails, the
// running state is left at the last successful entry.
//
// # Inputs
//
//   - ctx: Context for cancellation between entries.
//   - initial: A freshly constructed state matching the log's source.
//   - apply: Handler that re-executes one entry.
//
// # Outputs
//
//   - []ValidationResult: One result per replayed entry.
//   - state.AppState: The final replayed state.
//   - error: Non-nil only for invalid arguments or context cancellation.
func (l *Log) Replay(ctx context.Context, initial state.AppState, apply ApplyFunc) ([]ValidationResult, state.AppState, error) {
	if ctx == nil {
		return nil, initial, ErrNilContext
	}
	if apply == nil {
		return nil, initial, ErrNilApply
	}

	results := make([]ValidationResult, 0, len(l.entries))
	current := initial

	for _, entry := range l.entries {
		if err := ctx.Err(); err != nil {
			return results, current, err
		}

		next, err := apply(current, entry)
		if err != nil {
			results = append(results, ValidationResult{
				Sequence: entry.Sequence,
				Matches:  false,
				Expected: entry.After,
				Actual:   state.TakeSnapshot(current),
				Err:      err,
			})
			continue
		}

		actual := state.TakeSnapshot(next)
		results = append(results, ValidationResult{
			Sequence: entry.Sequence,
			Matches:  actual.Equal(entry.After),
			Expected: entry.After,
			Actual:   actual,
		})
		current = next
	}

	return results, current, nil
}
