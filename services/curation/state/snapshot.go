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

// SnapshotContig is the per-contig projection recorded in a snapshot.
type SnapshotContig struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Inverted   bool   `json:"inverted"`
	ScaffoldID string `json:"scaffoldId,omitempty"`
}

// Snapshot is the minimal projection of an AppState used for provenance
// comparison and replay verification: the contig order plus, per contig
// in that order, the fields a curation operation can change.
type Snapshot struct {
	Order   []int            `json:"order"`
	Contigs []SnapshotContig `json:"contigs"`
}

// TakeSnapshot projects the given state into a Snapshot.
//
// Contigs appear in order sequence, so two snapshots of equal states are
// element-wise identical regardless of arena layout history.
func TakeSnapshot(st AppState) Snapshot {
	ids := st.Order.IDs()
	contigs := make([]SnapshotContig, 0, len(ids))
	for _, id := range ids {
		c, ok := st.Contigs.Get(id)
		if !ok {
			// Order invariants forbid this; record a hole rather than panic.
			contigs = append(contigs, SnapshotContig{Index: id})
			continue
		}
		contigs = append(contigs, SnapshotContig{
			Index:      c.OriginalIndex,
			Name:       c.Name,
			Inverted:   c.Inverted,
			ScaffoldID: c.ScaffoldID,
		})
	}
	return Snapshot{Order: ids, Contigs: contigs}
}

// Equal reports structural equality: orders match element-wise and every
// per-contig field matches.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.Order) != len(other.Order) || len(s.Contigs) != len(other.Contigs) {
		return false
	}
	for i, id := range s.Order {
		if id != other.Order[i] {
			return false
		}
	}
	for i, c := range s.Contigs {
		if c != other.Contigs[i] {
			return false
		}
	}
	return true
}
