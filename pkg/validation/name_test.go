// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Valid names
		{"simple", "ctg_1", false},
		{"single char", "c", false},
		{"assembler style", "scaffold_12.1", false},
		{"hyphenated", "chr2-part3", false},
		{"digits first", "7_ctg", false},
		{"max length", strings.Repeat("a", 128), false},

		// Invalid names
		{"empty", "", true},
		{"leading dot", ".hidden", true},
		{"leading underscore", "_ctg", true},
		{"path traversal", "../etc/passwd", true},
		{"whitespace", "ctg 1", true},
		{"shell metachars", "ctg;rm", true},
		{"too long", strings.Repeat("a", 129), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNames(t *testing.T) {
	if err := ValidateNames([]string{"ctg_0", "ctg_1"}); err != nil {
		t.Fatalf("expected valid names, got %v", err)
	}

	err := ValidateNames([]string{"ctg_0", "bad name", ".dot"})
	if err == nil {
		t.Fatal("expected error for invalid names")
	}
	for _, want := range []string{`"bad name"`, `".dot"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should list %s", err.Error(), want)
		}
	}
}
