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

import "errors"

// Sentinel errors for the provenance package.
var (
	// ErrNilContext indicates a nil context was passed.
	ErrNilContext = errors.New("nil context")

	// ErrNilApply indicates Replay was called without a handler.
	ErrNilApply = errors.New("nil apply handler")

	// ErrMissingVersion indicates an imported document has no version field.
	ErrMissingVersion = errors.New("log document missing version")

	// ErrMissingEntries indicates an imported document has no entries field.
	ErrMissingEntries = errors.New("log document missing entries")

	// ErrChecksumMismatch indicates the imported document's checksum does
	// not match its entries.
	ErrChecksumMismatch = errors.New("log checksum mismatch")
)
