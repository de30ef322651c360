// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package provenance records every curation operation with before/after
// state snapshots, round-trips the record through a versioned JSON
// document, and replays a log against a fresh state to verify that a
// session is reproducible.
package provenance

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AleutianAI/hicurator/services/curation/state"
)

// Entry is one recorded operation with its surrounding snapshots.
//
// Entries are append-only except for truncation from the tail (paired
// with undo) or a full clear.
type Entry struct {
	// Sequence is the 0-based, monotonic position in the log.
	Sequence int `json:"sequence"`

	// Timestamp is when the operation was applied.
	Timestamp time.Time `json:"timestamp"`

	// OperationType is the operation's kind tag.
	OperationType state.OpKind `json:"operationType"`

	// Description is the human-readable operation summary.
	Description string `json:"description"`

	// BatchID groups entries recorded under one batch context.
	BatchID string `json:"batchId,omitempty"`

	// BatchMetadata carries the batch context's auxiliary metadata.
	BatchMetadata map[string]string `json:"batchMetadata,omitempty"`

	// Parameters holds the typed, kind-specific payload.
	Parameters state.Payload `json:"parameters"`

	// Before is the state snapshot taken before the operation.
	Before state.Snapshot `json:"before"`

	// After is the state snapshot taken after the operation.
	After state.Snapshot `json:"after"`
}

// UnmarshalJSON decodes an entry, reconstructing the typed payload from
// the operationType tag.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Sequence      int               `json:"sequence"`
		Timestamp     time.Time         `json:"timestamp"`
		OperationType state.OpKind      `json:"operationType"`
		Description   string            `json:"description"`
		BatchID       string            `json:"batchId"`
		BatchMetadata map[string]string `json:"batchMetadata"`
		Parameters    json.RawMessage   `json:"parameters"`
		Before        state.Snapshot    `json:"before"`
		After         state.Snapshot    `json:"after"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode entry: %w", err)
	}

	e.Sequence = raw.Sequence
	e.Timestamp = raw.Timestamp
	e.OperationType = raw.OperationType
	e.Description = raw.Description
	e.BatchID = raw.BatchID
	e.BatchMetadata = raw.BatchMetadata
	e.Before = raw.Before
	e.After = raw.After

	target, err := state.NewPayload(raw.OperationType)
	if err != nil {
		return fmt.Errorf("entry %d: %w", raw.Sequence, err)
	}
	if len(raw.Parameters) > 0 {
		if err := json.Unmarshal(raw.Parameters, target); err != nil {
			return fmt.Errorf("entry %d parameters: %w", raw.Sequence, err)
		}
	}

	switch p := target.(type) {
	case *state.CutPayload:
		e.Parameters = *p
	case *state.JoinPayload:
		e.Parameters = *p
	case *state.InvertPayload:
		e.Parameters = *p
	case *state.MovePayload:
		e.Parameters = *p
	case *state.PaintPayload:
		e.Parameters = *p
	case *state.ExcludePayload:
		e.Parameters = *p
	default:
		return fmt.Errorf("entry %d: %w: %q", raw.Sequence, state.ErrUnknownOpKind, raw.OperationType)
	}
	return nil
}

// Log is the session's curation record.
//
// # Thread Safety
//
// NOT safe for concurrent use; the curation engine mutates it from its
// single operating goroutine.
type Log struct {
	sourceFile   string
	totalContigs int
	createdAt    time.Time
	lastModified time.Time
	entries      []Entry
}

// NewLog creates an empty, uninitialized log.
func NewLog() *Log {
	now := time.Now().UTC()
	return &Log{createdAt: now, lastModified: now}
}

// Initialize captures the source identity of the given state and clears
// all entries. Call when a map is loaded or the session resets.
func (l *Log) Initialize(st state.AppState) {
	l.sourceFile = st.SourceFile
	l.totalContigs = st.Contigs.Len()
	l.createdAt = time.Now().UTC()
	l.lastModified = l.createdAt
	l.entries = nil
}

// Record appends an entry for the given operation with its surrounding
// snapshots. Sequence numbers are 0-based and monotonic.
func (l *Log) Record(op state.Operation, before, after state.Snapshot) {
	entry := Entry{
		Sequence:      len(l.entries),
		Timestamp:     op.Timestamp,
		OperationType: op.Kind,
		Description:   op.Description,
		BatchID:       op.BatchID,
		BatchMetadata: op.BatchMetadata,
		Parameters:    op.Payload,
		Before:        before,
		After:         after,
	}
	l.entries = append(l.entries, entry)
	l.lastModified = time.Now().UTC()
}

// RemoveLast truncates up to n entries from the tail. Pairs with undo.
func (l *Log) RemoveLast(n int) {
	if n <= 0 {
		return
	}
	if n > len(l.entries) {
		n = len(l.entries)
	}
	l.entries = l.entries[:len(l.entries)-n]
	l.lastModified = time.Now().UTC()
}

// Clear removes every entry but keeps the source identity.
func (l *Log) Clear() {
	l.entries = nil
	l.lastModified = time.Now().UTC()
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the recorded entries, oldest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// SourceFile returns the captured source identity.
func (l *Log) SourceFile() string {
	return l.sourceFile
}

// TotalContigs returns the contig count captured at initialization.
func (l *Log) TotalContigs() int {
	return l.totalContigs
}
