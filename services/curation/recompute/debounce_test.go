// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package recompute

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var runs atomic.Int32
	d := New(30*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})
	defer d.Close()

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Fatalf("expected one run for a burst of triggers, got %d", got)
	}
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	var runs atomic.Int32
	d := New(10*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})
	defer d.Close()

	d.Trigger()
	time.Sleep(50 * time.Millisecond)
	d.Trigger()
	time.Sleep(50 * time.Millisecond)

	if got := runs.Load(); got != 2 {
		t.Fatalf("expected two runs for two separated triggers, got %d", got)
	}
}

func TestDebouncer_Flush(t *testing.T) {
	var runs atomic.Int32
	d := New(time.Hour, func(ctx context.Context) {
		runs.Add(1)
	})
	defer d.Close()

	d.Trigger()
	d.Flush()

	if got := runs.Load(); got != 1 {
		t.Fatalf("expected flush to run the task once, got %d", got)
	}
}

func TestDebouncer_CloseCancelsPending(t *testing.T) {
	var runs atomic.Int32
	d := New(20*time.Millisecond, func(ctx context.Context) {
		runs.Add(1)
	})

	d.Trigger()
	d.Close()
	time.Sleep(50 * time.Millisecond)

	if got := runs.Load(); got != 0 {
		t.Fatalf("expected no runs after close, got %d", got)
	}

	// Triggers after close are ignored.
	d.Trigger()
	time.Sleep(50 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Fatalf("expected trigger after close to be ignored, got %d runs", got)
	}
}

func TestDebouncer_TriggerDuringRunCancelsContext(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	d := New(5*time.Millisecond, func(ctx context.Context) {
		select {
		case started <- struct{}{}:
			<-ctx.Done()
			close(cancelled)
		default:
		}
	})
	defer d.Close()

	d.Trigger()
	<-started
	d.Trigger()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("expected a new trigger to cancel the running task")
	}
}
