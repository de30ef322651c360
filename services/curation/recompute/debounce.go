// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package recompute coalesces bursts of state-change notifications into
// single recompute runs. It sits between store subscriptions and
// expensive consumers (density analysis, export views) so a drag of
// twenty move operations triggers one recompute, not twenty.
package recompute

import (
	"context"
	"sync"
	"time"
)

// Task is the work run after the quiet period. The context is cancelled
// when a newer trigger supersedes the pending run or the debouncer
// closes; long tasks should honor it.
type Task func(ctx context.Context)

// Debouncer runs a task once per burst of Trigger calls.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type Debouncer struct {
	delay time.Duration
	task  Task

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// New creates a debouncer that runs task after delay of quiet.
func New(delay time.Duration, task Task) *Debouncer {
	return &Debouncer{delay: delay, task: task}
}

// Trigger schedules (or reschedules) the task. A trigger during the
// quiet period restarts the clock; a trigger while the task is running
// cancels the running task's context and schedules a fresh run.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	d.timer = time.AfterFunc(d.delay, d.fire)
}

// fire runs the task on the timer goroutine.
func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = nil
	d.wg.Add(1)
	d.mu.Unlock()

	defer d.wg.Done()
	defer cancel()
	d.task(ctx)
}

// Flush cancels any pending timer and runs the task immediately,
// blocking until it returns. No-op after Close.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.mu.Unlock()

	defer cancel()
	d.task(ctx)
}

// Close cancels pending work and waits for a running task to finish.
// Triggers after Close are ignored.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}
