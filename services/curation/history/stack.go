// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package history provides the stack primitive backing undo and redo.
package history

// Stack is a LIFO sequence.
//
// # Description
//
// Provides O(1) amortized push and pop. Under the copy-on-write state
// model an undo entry only holds snapshot references, so an unbounded
// stack stays cheap for realistic session lengths.
//
// # Thread Safety
//
// NOT safe for concurrent use; caller must synchronize.
type Stack[T any] struct {
	items []T
}

// NewStack creates an empty stack.
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

// Push adds an item to the top of the stack.
func (s *Stack[T]) Push(item T) {
	s.items = append(s.items, item)
}

// Pop removes and returns the top item.
//
// # Outputs
//
//   - T: The top item.
//   - bool: False if the stack is empty.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	item := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = zero // Clear reference
	s.items = s.items[:len(s.items)-1]
	return item, true
}

// Peek returns the top item without removing it.
//
// # Outputs
//
//   - T: The top item.
//   - bool: False if the stack is empty.
func (s *Stack[T]) Peek() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the number of items on the stack.
func (s *Stack[T]) Len() int {
	return len(s.items)
}

// Clear removes all items.
func (s *Stack[T]) Clear() {
	var zero T
	for i := range s.items {
		s.items[i] = zero // Drop references for GC
	}
	s.items = s.items[:0]
}
