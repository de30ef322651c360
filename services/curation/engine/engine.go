// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine applies curation operations to the contig order and
// arena, maintaining undo/redo stacks and the provenance log.
//
// Every operation validates against the current snapshot before any
// mutation, then commits atomically: new snapshot installed, undo entry
// pushed, redo stack cleared, log entry recorded. A returned error
// always means nothing changed.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/hicurator/pkg/logging"
	"github.com/AleutianAI/hicurator/pkg/validation"
	"github.com/AleutianAI/hicurator/services/curation/history"
	"github.com/AleutianAI/hicurator/services/curation/provenance"
	"github.com/AleutianAI/hicurator/services/curation/state"
	"github.com/AleutianAI/hicurator/services/curation/telemetry"
)

const tracerName = "curation.engine"

// undoEntry pairs an operation with the snapshots around it. Under
// copy-on-write these are cheap references, so undo is a pointer swap.
type undoEntry struct {
	op     state.Operation
	before state.AppState
	after  state.AppState
}

// StackResult reports the outcome of an undo or redo call.
//
// An empty stack is not an error: Performed is false and Operations is
// zero.
type StackResult struct {
	// Performed is false when there was nothing to undo or redo.
	Performed bool

	// Operations is how many recorded operations were unwound or
	// re-applied. Greater than one when a batch undoes as a unit.
	Operations int

	// Description summarizes the affected operation or batch.
	Description string
}

// Engine is the curation state engine.
//
// # Thread Safety
//
// The engine is single-threaded by contract: callers must not invoke
// overlapping operations concurrently. Store subscribers may read from
// other goroutines; they always observe fully formed snapshots.
type Engine struct {
	store   *state.Store
	log     *provenance.Log
	logger  *logging.Logger
	metrics *telemetry.Metrics

	undo *history.Stack[undoEntry]
	redo *history.Stack[undoEntry]

	// nextContig issues original indices for cut fragments. It never
	// rewinds, not even on undo, so an index observed in any snapshot
	// is never reissued for a different contig.
	nextContig int

	// nextScaffold issues sequential scaffold ids for joins.
	nextScaffold int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLog attaches a provenance log; every committed operation is
// recorded with before/after snapshots.
func WithLog(log *provenance.Log) Option {
	return func(e *Engine) { e.log = log }
}

// WithLogger sets the structured logger. Defaults to logging.Default().
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics attaches telemetry instruments.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(e *Engine) { e.metrics = metrics }
}

// New creates an engine over the given store.
func New(store *state.Store, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		undo:         history.NewStack[undoEntry](),
		redo:         history.NewStack[undoEntry](),
		nextContig:   store.Get().Contigs.MaxIndex() + 1,
		nextScaffold: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.Default()
	}
	return e
}

// Reset clears both stacks and reseeds the index allocator from the
// store's current snapshot. Call after loading a new map.
func (e *Engine) Reset() {
	e.undo.Clear()
	e.redo.Clear()
	e.nextContig = e.store.Get().Contigs.MaxIndex() + 1
	e.nextScaffold = 1
	if e.log != nil {
		e.log.Initialize(e.store.Get())
	}
}

// Store returns the underlying state store.
func (e *Engine) Store() *state.Store {
	return e.store
}

// Log returns the attached provenance log, or nil.
func (e *Engine) Log() *provenance.Log {
	return e.log
}

// CanUndo reports whether the undo stack is non-empty.
func (e *Engine) CanUndo() bool { return e.undo.Len() > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (e *Engine) CanRedo() bool { return e.redo.Len() > 0 }

// BeginBatch opens a batch context on the store. Operations applied
// until EndBatch carry the batch id and undo as one unit.
func (e *Engine) BeginBatch(algorithm string, metadata map[string]string) state.Batch {
	return e.store.BeginBatch(algorithm, metadata)
}

// EndBatch closes the active batch context.
func (e *Engine) EndBatch() {
	e.store.EndBatch()
}

// newOperation stamps an operation with the current time and, when a
// batch context is active, the batch id and metadata.
func (e *Engine) newOperation(kind state.OpKind, description string, payload state.Payload) state.Operation {
	op := state.Operation{
		Kind:        kind,
		Timestamp:   time.Now().UTC(),
		Description: description,
		Payload:     payload,
	}
	if b := e.store.ActiveBatch(); b != nil {
		op.BatchID = b.ID
		meta := make(map[string]string, len(b.Metadata)+1)
		if b.Algorithm != "" {
			meta["algorithm"] = b.Algorithm
		}
		for k, v := range b.Metadata {
			meta[k] = v
		}
		op.BatchMetadata = meta
	}
	return op
}

// commit installs the new snapshot and records the operation. All
// bookkeeping happens here so no path can half-commit.
func (e *Engine) commit(ctx context.Context, op state.Operation, before, after state.AppState) {
	e.store.Apply(func(state.AppState) state.AppState { return after })
	e.undo.Push(undoEntry{op: op, before: before, after: after})
	e.redo.Clear()
	if e.log != nil {
		e.log.Record(op, state.TakeSnapshot(before), state.TakeSnapshot(after))
	}
	e.metrics.RecordOperation(ctx, string(op.Kind))
	e.logger.Debug("operation applied",
		"kind", string(op.Kind),
		"description", op.Description,
		"batch_id", op.BatchID,
	)
}

// fail records a rejected operation and returns the error unchanged.
func (e *Engine) fail(ctx context.Context, span trace.Span, kind state.OpKind, err error) error {
	telemetry.RecordError(span, err)
	e.metrics.RecordFailure(ctx, string(kind))
	e.logger.Warn("operation rejected", "kind", string(kind), "error", err.Error())
	return err
}

// Cut splits the contig at pixelOffset, measured in the contig's own
// coordinate space.
//
// # Description
//
// The offset must fall strictly inside the contig's pixel range. The
// split produces two fragments covering [pixelStart, pixelOffset) and
// [pixelOffset, pixelEnd); the one order entry becomes two, reading
// visual left-to-right even when the contig is inverted.
//
// # Outputs
//
//   - left, right: original indices of the visual-left and visual-right
//     fragments.
//   - error: Non-nil if validation fails; the state is then unchanged.
func (e *Engine) Cut(ctx context.Context, contigIndex, pixelOffset int) (left, right int, err error) {
	if ctx == nil {
		return 0, 0, ErrNilContext
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Engine.Cut",
		trace.WithAttributes(
			attribute.Int("contig", contigIndex),
			attribute.Int("offset", pixelOffset),
		))
	defer span.End()

	before := e.store.Get()
	c, ok := before.Contigs.Get(contigIndex)
	if !ok {
		return 0, 0, e.fail(ctx, span, state.OpCut, fmt.Errorf("%w: %d", ErrInvalidContig, contigIndex))
	}

	left, right = contigIndex, e.nextContig
	if c.Inverted {
		left, right = e.nextContig, contigIndex
	}
	payload := state.CutPayload{
		ContigIndex: contigIndex,
		PixelOffset: pixelOffset,
		LeftIndex:   left,
		RightIndex:  right,
	}

	after, err := applyCut(before, payload)
	if err != nil {
		return 0, 0, e.fail(ctx, span, state.OpCut, err)
	}
	e.nextContig++

	op := e.newOperation(state.OpCut,
		fmt.Sprintf("cut %s at pixel %d", c.Name, pixelOffset), payload)
	e.commit(ctx, op, before, after)
	return left, right, nil
}

// Join combines two contigs that are adjacent in the current order,
// indexA immediately before indexB.
//
// Coordinate-contiguous fragments (a previous cut) merge back into one
// order entry; anything else becomes a scaffold join that keeps both
// entries under a shared scaffold id.
func (e *Engine) Join(ctx context.Context, indexA, indexB int) error {
	if ctx == nil {
		return ErrNilContext
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Engine.Join",
		trace.WithAttributes(
			attribute.Int("left", indexA),
			attribute.Int("right", indexB),
		))
	defer span.End()

	before := e.store.Get()
	a, okA := before.Contigs.Get(indexA)
	b, okB := before.Contigs.Get(indexB)
	if !okA || !okB {
		return e.fail(ctx, span, state.OpJoin, fmt.Errorf("%w: %d, %d", ErrInvalidContig, indexA, indexB))
	}

	payload := state.JoinPayload{LeftIndex: indexA, RightIndex: indexB}
	allocatedScaffold := false
	if mergeable(a, b) {
		payload.Mode = state.JoinModeMerge
	} else {
		payload.Mode = state.JoinModeScaffold
		switch {
		case a.ScaffoldID != "":
			payload.ScaffoldID = a.ScaffoldID
		case b.ScaffoldID != "":
			payload.ScaffoldID = b.ScaffoldID
		default:
			payload.ScaffoldID = fmt.Sprintf("scaffold_%d", e.nextScaffold)
			allocatedScaffold = true
		}
	}

	after, err := applyJoin(before, payload)
	if err != nil {
		return e.fail(ctx, span, state.OpJoin, err)
	}
	if allocatedScaffold {
		e.nextScaffold++
	}

	op := e.newOperation(state.OpJoin,
		fmt.Sprintf("join %s + %s (%s)", a.Name, b.Name, payload.Mode), payload)
	e.commit(ctx, op, before, after)
	return nil
}

// Invert flips the orientation of a single contig. The order is
// unchanged.
func (e *Engine) Invert(ctx context.Context, contigIndex int) error {
	if ctx == nil {
		return ErrNilContext
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Engine.Invert",
		trace.WithAttributes(attribute.Int("contig", contigIndex)))
	defer span.End()

	before := e.store.Get()
	c, ok := before.Contigs.Get(contigIndex)
	if !ok {
		return e.fail(ctx, span, state.OpInvert, fmt.Errorf("%w: %d", ErrInvalidContig, contigIndex))
	}
	pos := before.Order.PositionOf(contigIndex)
	if pos < 0 {
		return e.fail(ctx, span, state.OpInvert, fmt.Errorf("%w: %d", ErrContigNotInOrder, contigIndex))
	}

	payload := state.InvertPayload{StartPos: pos, EndPos: pos}
	after, err := applyInvert(before, payload)
	if err != nil {
		return e.fail(ctx, span, state.OpInvert, err)
	}

	op := e.newOperation(state.OpInvert, fmt.Sprintf("invert %s", c.Name), payload)
	e.commit(ctx, op, before, after)
	return nil
}

// InvertRange inverts the contiguous order positions [startPos, endPos]:
// every contig's orientation flips and the range's relative order
// reverses, matching a biological inversion.
func (e *Engine) InvertRange(ctx context.Context, startPos, endPos int) error {
	if ctx == nil {
		return ErrNilContext
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Engine.InvertRange",
		trace.WithAttributes(
			attribute.Int("start", startPos),
			attribute.Int("end", endPos),
		))
	defer span.End()

	before := e.store.Get()
	payload := state.InvertPayload{StartPos: startPos, EndPos: endPos}
	after, err := applyInvert(before, payload)
	if err != nil {
		return e.fail(ctx, span, state.OpInvert, err)
	}

	op := e.newOperation(state.OpInvert,
		fmt.Sprintf("invert positions %d-%d", startPos, endPos), payload)
	e.commit(ctx, op, before, after)
	return nil
}

// Move relocates the order entry at fromPos to toPos, shifting
// intervening entries. Used for drag-reorder.
func (e *Engine) Move(ctx context.Context, fromPos, toPos int) error {
	if ctx == nil {
		return ErrNilContext
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Engine.Move",
		trace.WithAttributes(
			attribute.Int("from", fromPos),
			attribute.Int("to", toPos),
		))
	defer span.End()

	before := e.store.Get()
	payload := state.MovePayload{FromPos: fromPos, ToPos: toPos}
	after, err := applyMove(before, payload)
	if err != nil {
		return e.fail(ctx, span, state.OpMove, err)
	}

	op := e.newOperation(state.OpMove,
		fmt.Sprintf("move position %d to %d", fromPos, toPos), payload)
	e.commit(ctx, op, before, after)
	return nil
}

// Exclude removes a contig from the order without discarding its
// record.
func (e *Engine) Exclude(ctx context.Context, contigIndex int) error {
	if ctx == nil {
		return ErrNilContext
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Engine.Exclude",
		trace.WithAttributes(attribute.Int("contig", contigIndex)))
	defer span.End()

	before := e.store.Get()
	c, ok := before.Contigs.Get(contigIndex)
	if !ok {
		return e.fail(ctx, span, state.OpExclude, fmt.Errorf("%w: %d", ErrInvalidContig, contigIndex))
	}

	payload := state.ExcludePayload{
		ContigIndex: contigIndex,
		Position:    before.Order.PositionOf(contigIndex),
		Excluded:    true,
	}
	after, err := applyExclude(before, payload)
	if err != nil {
		return e.fail(ctx, span, state.OpExclude, err)
	}

	op := e.newOperation(state.OpExclude, fmt.Sprintf("exclude %s", c.Name), payload)
	e.commit(ctx, op, before, after)
	return nil
}

// Include restores a previously excluded contig at the end of the
// order.
func (e *Engine) Include(ctx context.Context, contigIndex int) error {
	if ctx == nil {
		return ErrNilContext
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Engine.Include",
		trace.WithAttributes(attribute.Int("contig", contigIndex)))
	defer span.End()

	before := e.store.Get()
	c, ok := before.Contigs.Get(contigIndex)
	if !ok {
		return e.fail(ctx, span, state.OpExclude, fmt.Errorf("%w: %d", ErrInvalidContig, contigIndex))
	}

	payload := state.ExcludePayload{
		ContigIndex: contigIndex,
		Position:    before.Order.Len(),
		Excluded:    false,
	}
	after, err := applyExclude(before, payload)
	if err != nil {
		return e.fail(ctx, span, state.OpExclude, err)
	}

	op := e.newOperation(state.OpExclude, fmt.Sprintf("include %s", c.Name), payload)
	e.commit(ctx, op, before, after)
	return nil
}

// Paint assigns the given scaffold id to one contig. An empty id clears
// the assignment.
func (e *Engine) Paint(ctx context.Context, contigIndex int, scaffoldID string) error {
	if ctx == nil {
		return ErrNilContext
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Engine.Paint",
		trace.WithAttributes(
			attribute.Int("contig", contigIndex),
			attribute.String("scaffold", scaffoldID),
		))
	defer span.End()

	if scaffoldID != "" {
		if err := validation.ValidateName(scaffoldID); err != nil {
			return e.fail(ctx, span, state.OpPaint, err)
		}
	}
	before := e.store.Get()
	c, ok := before.Contigs.Get(contigIndex)
	if !ok {
		return e.fail(ctx, span, state.OpPaint, fmt.Errorf("%w: %d", ErrInvalidContig, contigIndex))
	}

	payload := state.PaintPayload{
		ContigIndex:        contigIndex,
		ScaffoldID:         scaffoldID,
		PreviousScaffoldID: c.ScaffoldID,
	}
	after, err := applyPaint(before, payload)
	if err != nil {
		return e.fail(ctx, span, state.OpPaint, err)
	}

	desc := fmt.Sprintf("paint %s as %s", c.Name, scaffoldID)
	if scaffoldID == "" {
		desc = fmt.Sprintf("clear scaffold of %s", c.Name)
	}
	op := e.newOperation(state.OpPaint, desc, payload)
	e.commit(ctx, op, before, after)
	return nil
}

// Undo unwinds the most recent operation by restoring its before
// snapshot. Operations sharing a batch id unwind together as one unit.
//
// An empty stack is a no-op result, not an error.
func (e *Engine) Undo(ctx context.Context) (StackResult, error) {
	if ctx == nil {
		return StackResult{}, ErrNilContext
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Engine.Undo")
	defer span.End()

	top, ok := e.undo.Pop()
	if !ok {
		e.metrics.RecordUndo(ctx, false)
		return StackResult{Description: "nothing to undo"}, nil
	}

	// Pop the rest of the batch, newest first.
	group := []undoEntry{top}
	if top.op.BatchID != "" {
		for {
			next, ok := e.undo.Peek()
			if !ok || next.op.BatchID != top.op.BatchID {
				break
			}
			e.undo.Pop()
			group = append(group, next)
		}
	}

	restore := group[len(group)-1].before
	e.store.Apply(func(state.AppState) state.AppState { return restore })
	for _, entry := range group {
		e.redo.Push(entry)
	}
	if e.log != nil {
		e.log.RemoveLast(len(group))
	}

	e.metrics.RecordUndo(ctx, true)
	e.logger.Debug("undo", "operations", len(group), "description", top.op.Description)
	return StackResult{
		Performed:   true,
		Operations:  len(group),
		Description: top.op.Description,
	}, nil
}

// Redo re-applies the most recently undone operation (or batch) by
// restoring its after snapshot and re-recording the log entries.
//
// An empty stack is a no-op result, not an error.
func (e *Engine) Redo(ctx context.Context) (StackResult, error) {
	if ctx == nil {
		return StackResult{}, ErrNilContext
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "Engine.Redo")
	defer span.End()

	first, ok := e.redo.Pop()
	if !ok {
		e.metrics.RecordRedo(ctx, false)
		return StackResult{Description: "nothing to redo"}, nil
	}

	// Pop the rest of the batch, oldest first.
	group := []undoEntry{first}
	if first.op.BatchID != "" {
		for {
			next, ok := e.redo.Peek()
			if !ok || next.op.BatchID != first.op.BatchID {
				break
			}
			e.redo.Pop()
			group = append(group, next)
		}
	}

	final := group[len(group)-1].after
	e.store.Apply(func(state.AppState) state.AppState { return final })
	for _, entry := range group {
		e.undo.Push(entry)
		if e.log != nil {
			e.log.Record(entry.op, state.TakeSnapshot(entry.before), state.TakeSnapshot(entry.after))
		}
	}

	e.metrics.RecordRedo(ctx, true)
	e.logger.Debug("redo", "operations", len(group), "description", first.op.Description)
	return StackResult{
		Performed:   true,
		Operations:  len(group),
		Description: first.op.Description,
	}, nil
}
