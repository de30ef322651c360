// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package curation wires the state store, curation engine, breakpoint
// detector and provenance log into one session facade. Loaders hand it
// map data; exporters and UIs read its snapshot views; batch drivers
// call through to the engine.
package curation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/hicurator/pkg/logging"
	"github.com/AleutianAI/hicurator/pkg/validation"
	"github.com/AleutianAI/hicurator/services/curation/autocut"
	"github.com/AleutianAI/hicurator/services/curation/engine"
	"github.com/AleutianAI/hicurator/services/curation/provenance"
	"github.com/AleutianAI/hicurator/services/curation/recompute"
	"github.com/AleutianAI/hicurator/services/curation/state"
	"github.com/AleutianAI/hicurator/services/curation/telemetry"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// MapData is the loader-facing description of a contact map. The
// service does not parse any file format itself; loaders produce this
// structure.
type MapData struct {
	// Contigs lists the assembly's contigs with pixel coordinates into
	// the map texture.
	Contigs []state.Contig `json:"contigs" validate:"required,min=1"`

	// ContigOrder is the initial visual order as original indices.
	// Empty means identity order.
	ContigOrder []int `json:"contigOrder"`

	// TextureSize is the contact map texture dimension in pixels.
	TextureSize int `json:"textureSize" validate:"gt=0"`

	// SourceFile names the map's origin, recorded in the curation log.
	SourceFile string `json:"sourceFile"`
}

// Service is one curation session over one loaded map.
//
// # Thread Safety
//
// Mutating methods follow the engine's single-writer contract. Snapshot
// views may be read from any goroutine.
type Service struct {
	store    *state.Store
	engine   *engine.Engine
	log      *provenance.Log
	detector *autocut.Detector
	logger   *logging.Logger
	metrics  *telemetry.Metrics

	initial state.AppState
	loaded  bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the structured logger for the service and everything
// it wires up. Defaults to logging.Default().
func WithLogger(logger *logging.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches telemetry instruments.
func WithMetrics(metrics *telemetry.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = metrics }
}

// NewService creates an empty session. Call LoadMap before operating.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}

	empty := state.AppState{
		Contigs: state.NewContigSet(nil),
		Order:   state.NewContigOrder(nil),
	}
	s.store = state.NewStore(empty)
	s.log = provenance.NewLog()
	s.engine = engine.New(s.store,
		engine.WithLog(s.log),
		engine.WithLogger(s.logger),
		engine.WithMetrics(s.metrics),
	)
	s.detector = autocut.NewDetector(
		autocut.WithLogger(s.logger),
		autocut.WithMetrics(s.metrics),
	)
	return s
}

// Engine returns the curation engine for direct operation calls.
func (s *Service) Engine() *engine.Engine {
	return s.engine
}

// Store returns the state store, for subscriptions.
func (s *Service) Store() *state.Store {
	return s.store
}

// Log returns the session's provenance log.
func (s *Service) Log() *provenance.Log {
	return s.log
}

// Detector returns the breakpoint detector.
func (s *Service) Detector() *autocut.Detector {
	return s.detector
}

// Loaded reports whether a map has been loaded.
func (s *Service) Loaded() bool {
	return s.loaded
}

// LoadMap validates map data and resets the session onto it. Any prior
// history and log content is discarded.
func (s *Service) LoadMap(ctx context.Context, data MapData) error {
	if ctx == nil {
		return ErrNilContext
	}
	if err := validate.Struct(data); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}
	names := make([]string, len(data.Contigs))
	for i, c := range data.Contigs {
		names[i] = c.Name
	}
	if err := validation.ValidateNames(names); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}

	order := data.ContigOrder
	if len(order) == 0 {
		order = make([]int, len(data.Contigs))
		for i, c := range data.Contigs {
			order[i] = c.OriginalIndex
		}
	}

	st := state.AppState{
		Contigs:     state.NewContigSet(data.Contigs),
		Order:       state.NewContigOrder(order),
		TextureSize: data.TextureSize,
		SourceFile:  data.SourceFile,
	}
	if err := st.Order.Validate(st.Contigs); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}

	s.initial = st
	s.store.Reset(st)
	s.engine.Reset()
	s.loaded = true
	s.logger.Info("map loaded",
		"source", data.SourceFile,
		"contigs", len(data.Contigs),
		"texture_size", data.TextureSize,
	)
	return nil
}

// Reset discards all curation since LoadMap, restoring the initial
// snapshot and clearing history and log.
func (s *Service) Reset(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if !s.loaded {
		return ErrNoMap
	}
	s.store.Reset(s.initial)
	s.engine.Reset()
	s.logger.Info("session reset", "source", s.initial.SourceFile)
	return nil
}

// Snapshot returns a structural snapshot of the current state.
func (s *Service) Snapshot() state.Snapshot {
	return state.TakeSnapshot(s.store.Get())
}

// OrderedContigs returns the contigs in current visual order. The
// returned slice is the caller's; the underlying records are values.
//
// Exporters (AGP, BED, FASTA writers) consume this view; between
// operations it is always internally consistent.
func (s *Service) OrderedContigs() []state.Contig {
	st := s.store.Get()
	out := make([]state.Contig, 0, st.Order.Len())
	for _, id := range st.Order.IDs() {
		if c, ok := st.Contigs.Get(id); ok {
			out = append(out, c)
		}
	}
	return out
}

// ExcludedContigs returns contig records that are not in the order.
func (s *Service) ExcludedContigs() []state.Contig {
	st := s.store.Get()
	var out []state.Contig
	for _, c := range st.Contigs.All() {
		if st.Order.PositionOf(c.OriginalIndex) < 0 {
			out = append(out, c)
		}
	}
	return out
}

// AutoCut runs breakpoint detection over the matrix and applies every
// accepted breakpoint as one undoable batch. Returns the detection
// result and the number of cuts performed.
func (s *Service) AutoCut(ctx context.Context, m *autocut.ContactMatrix, opts autocut.Options) (*autocut.Result, int, error) {
	if ctx == nil {
		return nil, 0, ErrNilContext
	}
	if !s.loaded {
		return nil, 0, ErrNoMap
	}

	result, err := s.detector.Run(ctx, m, s.OrderedContigs(), opts)
	if err != nil {
		return nil, 0, err
	}
	cuts, err := s.detector.Apply(ctx, s.engine, result, opts)
	if err != nil {
		return result, cuts, err
	}
	return result, cuts, nil
}

// OnChange runs task, debounced by delay, whenever the contig arena or
// order changes. A drag of many operations triggers one run. The
// returned stop function unsubscribes and waits for a running task.
func (s *Service) OnChange(delay time.Duration, task recompute.Task) func() {
	d := recompute.New(delay, task)
	unsubOrder := state.Select(s.store,
		func(st state.AppState) *state.ContigOrder { return st.Order },
		func(_, _ *state.ContigOrder) { d.Trigger() })
	unsubContigs := state.Select(s.store,
		func(st state.AppState) *state.ContigSet { return st.Contigs },
		func(_, _ *state.ContigSet) { d.Trigger() })
	return func() {
		unsubOrder()
		unsubContigs()
		d.Close()
	}
}

// ExportLog serializes the session's curation log as a versioned JSON
// document.
func (s *Service) ExportLog() ([]byte, error) {
	if !s.loaded {
		return nil, ErrNoMap
	}
	return s.log.ToJSON()
}

// ImportLog replays a previously exported log document on top of the
// loaded map, restoring the session it recorded, with full undo
// history.
//
// The document must reference the same source file and contig count as
// the loaded map, and every entry must replay to its recorded snapshot.
func (s *Service) ImportLog(ctx context.Context, data []byte) error {
	if ctx == nil {
		return ErrNilContext
	}
	if !s.loaded {
		return ErrNoMap
	}

	imported, err := provenance.FromJSON(data)
	if err != nil {
		return err
	}
	if imported.SourceFile() != s.initial.SourceFile {
		return fmt.Errorf("%w: log source %q, loaded map %q",
			ErrLogMismatch, imported.SourceFile(), s.initial.SourceFile)
	}
	if imported.TotalContigs() != s.initial.Contigs.Len() {
		return fmt.Errorf("%w: log has %d contigs, loaded map %d",
			ErrLogMismatch, imported.TotalContigs(), s.initial.Contigs.Len())
	}

	if err := s.engine.Rehydrate(ctx, s.initial, imported.Entries()); err != nil {
		return err
	}
	s.logger.Info("log imported", "entries", imported.Len())
	return nil
}

// ReplayLog verifies a log document against the loaded map without
// touching the session: every entry is re-applied to a fresh initial
// state and compared to its recorded snapshot.
func (s *Service) ReplayLog(ctx context.Context, data []byte) ([]provenance.ValidationResult, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if !s.loaded {
		return nil, ErrNoMap
	}

	imported, err := provenance.FromJSON(data)
	if err != nil {
		return nil, err
	}
	results, _, err := imported.Replay(ctx, s.initial, engine.ApplyEntry)
	return results, err
}
