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

import "errors"

// Sentinel errors for the state package.
var (
	// ErrDanglingOrderEntry indicates the order references a contig index
	// outside the arena.
	ErrDanglingOrderEntry = errors.New("order references unknown contig")

	// ErrDuplicateOrderEntry indicates a contig index appears twice in the order.
	ErrDuplicateOrderEntry = errors.New("duplicate contig in order")

	// ErrUnknownOpKind indicates an operation kind outside the closed set.
	ErrUnknownOpKind = errors.New("unknown operation kind")

	// ErrNilSubscriber indicates Select was called with a nil selector or callback.
	ErrNilSubscriber = errors.New("nil selector or callback")
)
