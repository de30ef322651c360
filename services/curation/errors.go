// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package curation

import "errors"

// ErrNilContext is returned when a nil context is passed to a service
// method.
var ErrNilContext = errors.New("context cannot be nil")

// ErrNoMap is returned when an operation needs a loaded map and none
// has been loaded.
var ErrNoMap = errors.New("no map loaded")

// ErrInvalidMap is returned when loaded map data fails validation.
var ErrInvalidMap = errors.New("invalid map data")

// ErrLogMismatch is returned when an imported log does not belong to
// the loaded map.
var ErrLogMismatch = errors.New("curation log does not match the loaded map")
