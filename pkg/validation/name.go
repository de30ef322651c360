// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation for identifiers that
// flow into exported files and log documents.
//
// Contig and scaffold names end up in AGP/BED output and in curation
// log JSON. Validating them at the load boundary keeps malformed or
// hostile identifiers out of every downstream format.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// namePattern matches sequence identifiers as produced by common
// assemblers: alphanumerics plus underscore, dot, and hyphen, not
// starting with a separator.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,127}$`)

// ErrInvalidName is returned for names that fail validation.
var ErrInvalidName = fmt.Errorf("invalid sequence name")

// ValidateName validates a contig or scaffold identifier.
//
// Valid names:
//   - 1-128 characters
//   - Letters, digits, underscores, dots, hyphens
//   - Must start with a letter or digit
//
// Example:
//
//	if err := validation.ValidateName(contig.Name); err != nil {
//	    return fmt.Errorf("contig %d: %w", i, err)
//	}
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q (must be 1-128 chars of letters, digits, '.', '_', '-', not starting with a separator)",
			ErrInvalidName, name)
	}
	return nil
}

// ValidateNames validates a batch of identifiers. Returns an error
// listing every invalid name if any fail.
func ValidateNames(names []string) error {
	var invalid []string
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			invalid = append(invalid, fmt.Sprintf("%q", name))
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidName, strings.Join(invalid, ", "))
	}
	return nil
}
