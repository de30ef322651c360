// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics contains pre-defined instruments for the curation engine.
//
// Description:
//
//	Provides counters and histograms for curation operations, undo/redo
//	traffic, and autocut runs. All instruments use the "curation_"
//	prefix for consistent naming.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// OperationsTotal counts applied curation operations by kind.
	OperationsTotal metric.Int64Counter

	// OperationFailures counts rejected operations by kind.
	OperationFailures metric.Int64Counter

	// UndoTotal counts undo invocations, including no-ops.
	UndoTotal metric.Int64Counter

	// RedoTotal counts redo invocations, including no-ops.
	RedoTotal metric.Int64Counter

	// AutocutDuration records detector run duration in seconds.
	AutocutDuration metric.Float64Histogram

	// BreakpointsDetected counts surfaced breakpoints.
	BreakpointsDetected metric.Int64Counter
}

// NewMetrics creates the standard instrument set on the global meter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("curation")

	operationsTotal, err := meter.Int64Counter("curation_operations_total",
		metric.WithDescription("Applied curation operations by kind"))
	if err != nil {
		return nil, fmt.Errorf("create operations counter: %w", err)
	}

	operationFailures, err := meter.Int64Counter("curation_operation_failures_total",
		metric.WithDescription("Rejected curation operations by kind"))
	if err != nil {
		return nil, fmt.Errorf("create failures counter: %w", err)
	}

	undoTotal, err := meter.Int64Counter("curation_undo_total",
		metric.WithDescription("Undo invocations"))
	if err != nil {
		return nil, fmt.Errorf("create undo counter: %w", err)
	}

	redoTotal, err := meter.Int64Counter("curation_redo_total",
		metric.WithDescription("Redo invocations"))
	if err != nil {
		return nil, fmt.Errorf("create redo counter: %w", err)
	}

	autocutDuration, err := meter.Float64Histogram("curation_autocut_duration_seconds",
		metric.WithDescription("Breakpoint detector run duration"))
	if err != nil {
		return nil, fmt.Errorf("create autocut histogram: %w", err)
	}

	breakpointsDetected, err := meter.Int64Counter("curation_breakpoints_detected_total",
		metric.WithDescription("Breakpoints surfaced above the confidence floor"))
	if err != nil {
		return nil, fmt.Errorf("create breakpoints counter: %w", err)
	}

	return &Metrics{
		OperationsTotal:     operationsTotal,
		OperationFailures:   operationFailures,
		UndoTotal:           undoTotal,
		RedoTotal:           redoTotal,
		AutocutDuration:     autocutDuration,
		BreakpointsDetected: breakpointsDetected,
	}, nil
}

// RecordOperation counts one applied operation of the given kind.
func (m *Metrics) RecordOperation(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.OperationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordFailure counts one rejected operation of the given kind.
func (m *Metrics) RecordFailure(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.OperationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordUndo counts one undo invocation.
func (m *Metrics) RecordUndo(ctx context.Context, performed bool) {
	if m == nil {
		return
	}
	m.UndoTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("performed", performed)))
}

// RecordRedo counts one redo invocation.
func (m *Metrics) RecordRedo(ctx context.Context, performed bool) {
	if m == nil {
		return
	}
	m.RedoTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("performed", performed)))
}

// RecordAutocut records one detector run.
func (m *Metrics) RecordAutocut(ctx context.Context, seconds float64, breakpoints int) {
	if m == nil {
		return
	}
	m.AutocutDuration.Record(ctx, seconds)
	m.BreakpointsDetected.Add(ctx, int64(breakpoints))
}
