// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AleutianAI/hicurator/services/curation"
	"github.com/AleutianAI/hicurator/services/curation/autocut"
)

// matrixFile is the on-disk form of a contact matrix: row-major flat
// values.
type matrixFile struct {
	Size   int       `json:"size"`
	Values []float64 `json:"values"`
}

// loadMapFile parses a map JSON file into loader-facing map data.
func loadMapFile(path string) (curation.MapData, error) {
	var data curation.MapData
	raw, err := os.ReadFile(path)
	if err != nil {
		return data, fmt.Errorf("read map file: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("parse map file %s: %w", path, err)
	}
	if data.SourceFile == "" {
		data.SourceFile = path
	}
	return data, nil
}

// saveMapFile writes map data as indented JSON.
func saveMapFile(path string, data curation.MapData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal map: %w", err)
	}
	if err := os.WriteFile(path, raw, 0640); err != nil {
		return fmt.Errorf("write map file: %w", err)
	}
	return nil
}

// loadMatrixFile parses a contact matrix JSON file.
func loadMatrixFile(path string) (*autocut.ContactMatrix, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read matrix file: %w", err)
	}
	var mf matrixFile
	if err := json.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("parse matrix file %s: %w", path, err)
	}
	if len(mf.Values) != mf.Size*mf.Size {
		return nil, fmt.Errorf("matrix file %s: %d values for size %d", path, len(mf.Values), mf.Size)
	}

	m := autocut.NewContactMatrix(mf.Size)
	for i := 0; i < mf.Size; i++ {
		for j := 0; j < mf.Size; j++ {
			if v := mf.Values[i*mf.Size+j]; v != 0 {
				if err := m.Set(i, j, v); err != nil {
					return nil, err
				}
			}
		}
	}
	return m, nil
}

// saveMatrixFile writes a contact matrix as flat JSON.
func saveMatrixFile(path string, m *autocut.ContactMatrix) error {
	mf := matrixFile{
		Size:   m.Size(),
		Values: make([]float64, 0, m.Size()*m.Size()),
	}
	for i := 0; i < m.Size(); i++ {
		for j := 0; j < m.Size(); j++ {
			mf.Values = append(mf.Values, m.At(i, j))
		}
	}

	raw, err := json.Marshal(mf)
	if err != nil {
		return fmt.Errorf("marshal matrix: %w", err)
	}
	if err := os.WriteFile(path, raw, 0640); err != nil {
		return fmt.Errorf("write matrix file: %w", err)
	}
	return nil
}
