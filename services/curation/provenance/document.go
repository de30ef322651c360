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

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Version is the current log document format version (semver).
// The format is forward-compatible by additive fields.
const Version = "1.0.0"

// Tool is the producer string stamped into exported documents.
const Tool = "hicurator"

// Document is the on-disk JSON form of a curation log.
type Document struct {
	Version        string    `json:"version"`
	SourceFile     string    `json:"sourceFile"`
	CreatedAt      time.Time `json:"createdAt"`
	LastModifiedAt time.Time `json:"lastModifiedAt"`
	Tool           string    `json:"tool"`
	TotalContigs   int       `json:"totalContigs"`

	// Checksum is a sha256 over the entries for tamper detection.
	// Optional on import for compatibility with older producers.
	Checksum string `json:"checksum,omitempty"`

	Entries []Entry `json:"entries"`
}

// documentProbe validates the presence of the required fields before the
// full document is accepted. Pointer fields distinguish "absent" from
// "empty": an empty entries array is a legal log, a missing one is not.
type documentProbe struct {
	Version *string  `json:"version" validate:"required"`
	Entries *[]Entry `json:"entries" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Export builds the versioned document for the current log contents.
func (l *Log) Export() Document {
	doc := Document{
		Version:        Version,
		SourceFile:     l.sourceFile,
		CreatedAt:      l.createdAt,
		LastModifiedAt: l.lastModified,
		Tool:           Tool,
		TotalContigs:   l.totalContigs,
		Entries:        l.Entries(),
	}
	doc.Checksum = computeChecksum(doc)
	return doc
}

// ToJSON serializes the log as an indented JSON document.
func (l *Log) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(l.Export(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal log: %w", err)
	}
	return data, nil
}

// FromJSON parses and validates a log document.
//
// # Description
//
// Import fails with a descriptive error when the document is not JSON,
// when version or entries is missing, or when an embedded checksum does
// not match the entries. No partial log is ever installed: the returned
// log is complete or the error is non-nil.
func FromJSON(data []byte) (*Log, error) {
	var probe documentProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse log document: %w", err)
	}
	if err := validate.Struct(probe); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			for _, f := range fields {
				switch f.StructField() {
				case "Version":
					return nil, ErrMissingVersion
				case "Entries":
					return nil, ErrMissingEntries
				}
			}
		}
		return nil, fmt.Errorf("validate log document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse log document: %w", err)
	}

	if doc.Checksum != "" {
		want := computeChecksum(doc)
		if doc.Checksum != want {
			return nil, fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, doc.Checksum, want)
		}
	}

	// Renumber defensively so downstream replay can trust monotonic sequences.
	for i := range doc.Entries {
		doc.Entries[i].Sequence = i
	}

	return &Log{
		sourceFile:   doc.SourceFile,
		totalContigs: doc.TotalContigs,
		createdAt:    doc.CreatedAt,
		lastModified: doc.LastModifiedAt,
		entries:      doc.Entries,
	}, nil
}

// computeChecksum hashes the identity and entries of a document,
// excluding the checksum field itself and the modification times.
func computeChecksum(doc Document) string {
	payload := struct {
		Version      string  `json:"version"`
		SourceFile   string  `json:"sourceFile"`
		TotalContigs int     `json:"totalContigs"`
		Entries      []Entry `json:"entries"`
	}{
		Version:      doc.Version,
		SourceFile:   doc.SourceFile,
		TotalContigs: doc.TotalContigs,
		Entries:      doc.Entries,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// Entries are plain data; marshal cannot fail for them.
		return ""
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
