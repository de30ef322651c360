// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package autocut

import "errors"

// ErrNilContext is returned when a nil context is passed to a detection
// entry point.
var ErrNilContext = errors.New("context cannot be nil")

// ErrNilMatrix is returned when detection runs without a contact matrix.
var ErrNilMatrix = errors.New("contact matrix cannot be nil")

// ErrBadOptions is returned when detection options fail validation.
var ErrBadOptions = errors.New("invalid detection options")

// ErrOutOfBounds is returned when a requested pixel range falls outside
// the matrix.
var ErrOutOfBounds = errors.New("pixel range outside matrix bounds")
