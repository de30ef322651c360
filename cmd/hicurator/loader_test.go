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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/hicurator/services/curation"
	"github.com/AleutianAI/hicurator/services/curation/autocut"
	"github.com/AleutianAI/hicurator/services/curation/state"
)

func TestMapFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.json")

	want := curation.MapData{
		Contigs: []state.Contig{
			{OriginalIndex: 0, Name: "ctg_0", Length: 1000, PixelStart: 0, PixelEnd: 100},
			{OriginalIndex: 1, Name: "ctg_1", Length: 2000, PixelStart: 100, PixelEnd: 300, Inverted: true},
		},
		ContigOrder: []int{1, 0},
		TextureSize: 300,
		SourceFile:  "sample.map",
	}
	require.NoError(t, saveMapFile(path, want))

	got, err := loadMapFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMapFile_DefaultsSourceToPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"contigs": [], "textureSize": 10}`), 0640))

	got, err := loadMapFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got.SourceFile)
}

func TestLoadMapFile_Errors(t *testing.T) {
	_, err := loadMapFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0640))
	_, err = loadMapFile(bad)
	require.Error(t, err)
}

func TestMatrixFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.json")

	m := autocut.NewContactMatrix(4)
	require.NoError(t, m.Set(0, 1, 1.5))
	require.NoError(t, m.Set(3, 2, 0.25))
	require.NoError(t, saveMatrixFile(path, m))

	got, err := loadMatrixFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Size())
	assert.Equal(t, 1.5, got.At(0, 1))
	assert.Equal(t, 0.25, got.At(3, 2))
	assert.Zero(t, got.At(2, 2))
}

func TestLoadMatrixFile_RejectsSizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrix.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"size": 3, "values": [1, 2]}`), 0640))

	_, err := loadMatrixFile(path)
	require.Error(t, err)
}
